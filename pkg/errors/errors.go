package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCriteriaValue     = errors.New("invalid criteria value")
	ErrNoMatch                  = errors.New("no lines matched")
	ErrMalformedCatalog         = errors.New("malformed catalog")
	ErrMalformedScore           = errors.New("malformed score")
	ErrAmbiguousAggregationMode = errors.New("ambiguous aggregation mode")
	ErrResultShapeMismatch      = errors.New("result shape mismatch")
	ErrInvalidInput             = errors.New("invalid input")
)

// Process exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitInternal = 1
	ExitUsage    = 2
	ExitNoMatch  = 3
	ExitData     = 4
	ExitShape    = 5
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCodeFor(sentinel),
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCodeFor(sentinel),
	}
}

// Is and As are re-exported so callers only need one errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.ExitCode != 0 {
		return appErr.ExitCode
	}
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCriteriaValue),
		errors.Is(err, ErrAmbiguousAggregationMode),
		errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrNoMatch):
		return ExitNoMatch
	case errors.Is(err, ErrMalformedCatalog), errors.Is(err, ErrMalformedScore):
		return ExitData
	case errors.Is(err, ErrResultShapeMismatch):
		return ExitShape
	default:
		return ExitInternal
	}
}
