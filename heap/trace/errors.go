package trace

import "github.com/cockroachdb/errors"

var (
	// ErrSyntax indicates a malformed trace file.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrIntegrity indicates a payload changed while its block was live.
	ErrIntegrity = errors.New("trace: payload integrity violated")
)
