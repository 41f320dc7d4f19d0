package vehicle

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedElement matches a recognized element missing a required attribute.
	ErrMalformedElement = errors.New("vehicle: malformed element")

	// ErrNumericFormat matches a numeric field whose text is not a finite number.
	ErrNumericFormat = errors.New("vehicle: invalid numeric value")

	errNonFinite = errors.New("value is not finite")
)

// MalformedElementError describes a skipped element. Position is the
// element's ordinal in pre-order traversal, starting at 0 for the root.
type MalformedElementError struct {
	Tag       string
	Attribute string
	Position  int
}

func (e *MalformedElementError) Error() string {
	return fmt.Sprintf("element #%d <%s>: missing required attribute %q", e.Position, e.Tag, e.Attribute)
}

func (e *MalformedElementError) Is(target error) bool {
	return target == ErrMalformedElement
}

type NumericFormatError struct {
	Tag       string
	Attribute string
	Value     string
	Err       error
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("<%s %s=%q>: %v", e.Tag, e.Attribute, e.Value, e.Err)
}

func (e *NumericFormatError) Is(target error) bool {
	return target == ErrNumericFormat
}

func (e *NumericFormatError) Unwrap() error {
	return e.Err
}
