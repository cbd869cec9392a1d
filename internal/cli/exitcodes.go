package cli

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/models"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: storage failures, network errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations,
	// or a missing acting user.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Boards, columns and cards the acting user cannot see count as missing.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: an unparseable due date or a malformed config file.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: empty titles, out-of-range ranks, reorder lists that are
	// not a permutation.
	ExitValidation = 5

	// ExitConflict indicates a concurrent change won; the command may be retried.
	ExitConflict = 6

	// ExitUnauthorized indicates bad credentials.
	ExitUnauthorized = 7
)

// usageError marks errors caused by how the command was invoked
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// UsageError reports incorrect command usage
func UsageError(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// dataError marks input that could not be parsed
type dataError struct {
	err error
}

func (e *dataError) Error() string { return e.err.Error() }
func (e *dataError) Unwrap() error { return e.err }

// DataError reports malformed input data
func DataError(err error) error {
	return &dataError{err: err}
}

// ExitCodeFor maps an error returned by a command to the process exit code
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	var de *dataError
	if errors.As(err, &de) {
		return ExitDataErr
	}

	switch models.KindOf(err) {
	case models.KindNotFound:
		return ExitNotFound
	case models.KindValidation:
		return ExitValidation
	case models.KindConflict:
		return ExitConflict
	case models.KindUnauthorized:
		return ExitUnauthorized
	default:
		return ExitError
	}
}

// ErrorCode is the machine-readable code printed with --json
func ErrorCode(err error) string {
	switch ExitCodeFor(err) {
	case ExitUsage:
		return "USAGE"
	case ExitDataErr:
		return "INVALID_DATA"
	case ExitNotFound:
		return "NOT_FOUND"
	case ExitValidation:
		return "VALIDATION"
	case ExitConflict:
		return "CONFLICT"
	case ExitUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "ERROR"
	}
}
