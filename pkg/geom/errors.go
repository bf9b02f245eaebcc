package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is matched by every InvalidConfigurationError.
var ErrInvalidConfiguration = errors.New("geom: invalid configuration")

// InvalidConfigurationError reports a caller contract violation such as a
// non-positive grid spacing or a malformed tolerance.
type InvalidConfigurationError struct {
	Field string
	Value float64
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("geom: invalid configuration: %s must be positive and finite, got %g", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) succeed.
func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// CheckSpacing validates a grid spacing.
func CheckSpacing(spacing float64) error {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return &InvalidConfigurationError{Field: "grid spacing", Value: spacing}
	}
	return nil
}

// CheckTolerance validates a comparison tolerance. Zero is allowed and
// means exact comparison.
func CheckTolerance(tol float64) error {
	if tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		return &InvalidConfigurationError{Field: "tolerance", Value: tol}
	}
	return nil
}
