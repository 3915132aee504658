package graymix

import "strconv"

// CheckOperands verifies that all operands share the dimensions of the
// first one. It returns nil when they do and a *SizeMismatch otherwise.
// A nil buffer is reported with size 0x0.
//
// The check has no side effects; the caller decides whether a mismatch is
// fatal.
func CheckOperands(ops ...Operand) error {
	if len(ops) == 0 {
		return nil
	}
	m := &SizeMismatch{Operands: make([]OperandSize, len(ops))}
	ok := true
	for i, op := range ops {
		var sz OperandSize
		sz.Name = op.Name
		if op.Buffer != nil {
			sz.Size = op.Buffer.Size()
		}
		m.Operands[i] = sz
		if i == 0 {
			m.Expected = sz.Size
		} else if sz.Size != m.Expected {
			ok = false
		}
	}
	if ok {
		return nil
	}
	return m
}

// CheckSameSize is CheckOperands for unnamed buffers. Operands are named
// "buffer 1", "buffer 2" and so on.
func CheckSameSize(bufs ...*Buffer) error {
	ops := make([]Operand, len(bufs))
	for i, b := range bufs {
		ops[i] = Operand{Name: "buffer " + strconv.Itoa(i+1), Buffer: b}
	}
	return CheckOperands(ops...)
}
