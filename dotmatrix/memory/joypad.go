package memory

import "github.com/aferran/go-dotmatrix/dotmatrix/bit"

// JoypadKey represents a key on the joypad.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad implements the P1 register: a selector (bits 4-5) that maps one of
// two button groups onto the low nibble. 0 means pressed, 1 released.
type Joypad struct {
	buttons uint8 // A/B/Select/Start on bits 0-3
	dpad    uint8 // Right/Left/Up/Down on bits 0-3
	line    uint8 // selection bits 4-5 as last written
}

// NewJoypad creates a joypad with no keys held.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// Read composes the P1 register from the selection bits and button state.
//
//   - bit 4 low selects the d-pad group
//   - bit 5 low selects the button group
//   - both low ANDs the two groups together
//   - neither low floats the nibble high
//
// Bits 6-7 are unused and always read as 1.
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.line

	selectDpad := !bit.IsSet(4, j.line)
	selectButtons := !bit.IsSet(5, j.line)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write sets the selection bits; only bits 4-5 are writable.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

// Press records a key press. It returns true when the key changed state
// from released to pressed, which is what requests the Joypad interrupt.
func (j *Joypad) Press(key JoypadKey) bool {
	oldButtons, oldDpad := j.buttons, j.dpad

	switch key {
	case JoypadRight:
		j.dpad = bit.Clear(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Clear(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Clear(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Clear(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Clear(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Clear(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Clear(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Clear(3, j.buttons)
	}

	return (oldButtons&^j.buttons)|(oldDpad&^j.dpad) != 0
}

// Release records a key release.
func (j *Joypad) Release(key JoypadKey) {
	switch key {
	case JoypadRight:
		j.dpad = bit.Set(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Set(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Set(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Set(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Set(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Set(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Set(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Set(3, j.buttons)
	}
}
