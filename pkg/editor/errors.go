package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

var (
	ErrComponentNotFound = errors.New("editor: component not found")
	ErrAmbiguousPin      = errors.New("editor: ambiguous pin")
)

// ComponentNotFoundError names a reference that is not on the sheet.
// Available lists the references that are, sorted.
type ComponentNotFoundError struct {
	Ref       string
	Available []string
}

func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("editor: component %q not found (available: %s)", e.Ref, strings.Join(e.Available, ", "))
}

func (e *ComponentNotFoundError) Is(target error) bool {
	return target == ErrComponentNotFound
}

// AmbiguousPinError is returned when a pin name matches several pins of a
// component and no pin number matches.
type AmbiguousPinError struct {
	Component string
	Pin       string
	Matches   []pins.Key
}

func (e *AmbiguousPinError) Error() string {
	numbers := make([]string, len(e.Matches))
	for i, k := range e.Matches {
		numbers[i] = k.Number
	}
	return fmt.Sprintf("editor: pin name %q of %s matches pins %s; use a pin number",
		e.Pin, e.Component, strings.Join(numbers, ", "))
}

func (e *AmbiguousPinError) Is(target error) bool {
	return target == ErrAmbiguousPin
}
