package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExitCode checks that wrapped sentinels map to their exit codes.
func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"criteria", New(ErrInvalidCriteriaValue, "sq: erhuan"), ExitUsage},
		{"wrapped no match", fmt.Errorf("ph: %w", New(ErrNoMatch, "nothing")), ExitNoMatch},
		{"bare catalog", fmt.Errorf("row 3: %w", ErrMalformedCatalog), ExitData},
		{"shape", Newf(ErrResultShapeMismatch, "%d != %d", 3, 4), ExitShape},
		{"mode", ErrAmbiguousAggregationMode, ExitUsage},
		{"unknown", fmt.Errorf("boom"), ExitInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

// TestAppErrorUnwrap checks that errors.Is sees through AppError.
func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrMalformedCatalog, "row %d: data row before any score", 1)
	assert.True(t, Is(err, ErrMalformedCatalog))
	assert.Equal(t, "malformed catalog: row 1: data row before any score", err.Error())

	var appErr *AppError
	assert.True(t, As(fmt.Errorf("load: %w", err), &appErr))
	assert.Equal(t, ExitData, appErr.ExitCode)
}
