package main

// Exit codes for the mbtidash CLI.
const (
	ExitOK               = 0
	ExitInvalidSelection = 1 // Unknown type code passed to show.
	ExitFailure          = 1 // Any other runtime failure.
	ExitBadConfig        = 2 // Environment failed validation.
)

// exitCodeError carries a process exit code alongside the error.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }
