package purchase

// PinLength is the exact transaction-PIN length; the pad auto-submits at
// this length and never below it.
const PinLength = 4

// Pad buffers transaction-PIN digits. It holds at most PinLength digits;
// extra presses are dropped until the buffer is cleared.
type Pad struct {
	digits []byte
}

// Press appends one digit. It reports whether the buffer just became
// complete, handing back the full PIN exactly once. Non-digit input and
// presses on a full buffer are ignored.
func (p *Pad) Press(digit byte) (pin string, complete bool) {
	if digit < '0' || digit > '9' {
		return "", false
	}
	if len(p.digits) >= PinLength {
		return "", false
	}
	p.digits = append(p.digits, digit)
	if len(p.digits) == PinLength {
		return string(p.digits), true
	}
	return "", false
}

// Delete removes the last digit.
func (p *Pad) Delete() {
	if len(p.digits) > 0 {
		p.digits = p.digits[:len(p.digits)-1]
	}
}

// Len returns the current buffer length, for rendering the PIN dots.
func (p *Pad) Len() int {
	return len(p.digits)
}

// Reset wipes the buffer, zeroing the digits first so the PIN does not
// linger in memory beyond one submission.
func (p *Pad) Reset() {
	for i := range p.digits {
		p.digits[i] = 0
	}
	p.digits = p.digits[:0]
}
