package pins

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRotation = errors.New("pins: invalid rotation")
	ErrPinNotFound     = errors.New("pins: pin not found")
)

// InvalidRotationError carries the rejected angle and the accepted set so
// callers can print an actionable message.
type InvalidRotationError struct {
	Rotation float64
	Valid    []Rotation
}

func (e *InvalidRotationError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, r := range e.Valid {
		valid[i] = fmt.Sprint(int(r))
	}
	return fmt.Sprintf("pins: invalid rotation %g (valid: %s)", e.Rotation, strings.Join(valid, ", "))
}

func (e *InvalidRotationError) Is(target error) bool {
	return target == ErrInvalidRotation
}

// PinNotFoundError reports a pin number or name missing from a component,
// together with the pins that do exist.
type PinNotFoundError struct {
	Component string
	Pin       string
	Available []string
}

func (e *PinNotFoundError) Error() string {
	msg := fmt.Sprintf("pins: pin %q not found", e.Pin)
	if e.Component != "" {
		msg = fmt.Sprintf("pins: pin %q not found on %s", e.Pin, e.Component)
	}
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

func (e *PinNotFoundError) Is(target error) bool {
	return target == ErrPinNotFound
}
