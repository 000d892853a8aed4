package sno

import (
	"errors"
	"fmt"
)

// Decode failures. Every error returned by Decode matches exactly one of these
// with errors.Is.
var (
	ErrFormatMismatch         = errors.New("format mismatch")
	ErrTruncatedInput         = errors.New("truncated input")
	ErrUnknownEnumValue       = errors.New("unknown enum value")
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
)

// FormatMismatchError reports a magic that is not "SNOD".
type FormatMismatchError struct {
	Expected string
	Actual   string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("format mismatch: expected magic %q, got %q", e.Expected, e.Actual)
}

func (e *FormatMismatchError) Is(target error) bool { return target == ErrFormatMismatch }

// TruncatedInputError reports a read that would pass the end of the buffer.
type TruncatedInputError struct {
	Offset    int
	Want      int
	Remaining int
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("truncated input at offset %d: need %d bytes, %d remaining",
		e.Offset, e.Want, e.Remaining)
}

func (e *TruncatedInputError) Is(target error) bool { return target == ErrTruncatedInput }

// UnknownEnumValueError reports a raw floor value outside the known set.
type UnknownEnumValueError struct {
	Raw uint32
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown floor value %d (0x%08x)", e.Raw, e.Raw)
}

func (e *UnknownEnumValueError) Is(target error) bool { return target == ErrUnknownEnumValue }

// at prefixes err with the field being decoded.
func at(field string, err error) error {
	return fmt.Errorf("%s: %w", field, err)
}
