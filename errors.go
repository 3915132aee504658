package graymix

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is, or is a *SizeMismatch.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("graymix: invalid dimensions")

	// ErrIO is returned when a byte source or sink fails or is unavailable.
	ErrIO = errors.New("graymix: i/o failure")

	// ErrDecode is returned for a malformed or unsupported PNG stream.
	ErrDecode = errors.New("graymix: decode failed")

	// ErrEncode is returned when a buffer cannot be encoded, for example
	// because its sample count does not match its dimensions.
	ErrEncode = errors.New("graymix: encode failed")
)

// Operand is a named buffer taking part in a multi-buffer operation.
type Operand struct {
	Name   string
	Buffer *Buffer
}

// OperandSize is the reported size of one operand.
type OperandSize struct {
	Name string
	Size image.Point
}

// SizeMismatch reports operands whose dimensions differ from the first one.
//
// It is a diagnostic, not a failure by itself: callers decide whether a
// mismatch aborts their work.
type SizeMismatch struct {
	// Expected is the size of the first operand.
	Expected image.Point

	// Operands lists the size of every operand, in call order.
	Operands []OperandSize
}

// Mismatched returns the operands whose size differs from Expected.
func (e *SizeMismatch) Mismatched() []OperandSize {
	var out []OperandSize
	for _, op := range e.Operands {
		if op.Size != e.Expected {
			out = append(out, op)
		}
	}
	return out
}

// Error implements the error interface.
func (e *SizeMismatch) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "graymix: size mismatch: expected %dx%d", e.Expected.X, e.Expected.Y)
	for _, op := range e.Mismatched() {
		fmt.Fprintf(&sb, ", %s is %dx%d", op.Name, op.Size.X, op.Size.Y)
	}
	return sb.String()
}
