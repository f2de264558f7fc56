package cli

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes: 0 ok, 1 runtime error, 2 usage error.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// CodeError carries the process exit code alongside the cause.
type CodeError struct {
	Code int
	Err  error
	Hint string // optional muted follow-up line
}

func (e *CodeError) Error() string { return e.Err.Error() }
func (e *CodeError) Unwrap() error { return e.Err }

func usageErr(format string, a ...any) error {
	return &CodeError{Code: ExitUsage, Err: fmt.Errorf(format, a...)}
}

func usageWrap(err error) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: ExitUsage, Err: err}
}

// ExitCode maps an error returned by the command tree to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return ExitUsage
	}
	return ExitError
}
