package format

import "encoding/binary"

// Tags are stored little-endian regardless of host byte order so that a heap
// image written through a file-backed arena can be attached on any machine.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+WordSize], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+WordSize])
}
