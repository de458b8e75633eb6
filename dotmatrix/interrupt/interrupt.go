// Package interrupt implements the DMG interrupt controller: the IE and IF
// registers and the priority logic that decides which source is serviced next.
package interrupt

import "github.com/aferran/go-dotmatrix/dotmatrix/bit"

// Source identifies one of the five interrupt sources, in priority order.
// Lower values win when multiple sources are pending at once.
type Source uint8

const (
	// VBlank is requested when the PPU enters the vertical blanking period.
	VBlank Source = iota
	// LCDSTAT is requested on one of the STAT register conditions.
	LCDSTAT
	// Timer is requested when TIMA overflows.
	Timer
	// Serial is requested when a serial transfer completes.
	Serial
	// Joypad is requested when a selected button line goes low.
	Joypad

	sourceCount
)

var sourceNames = [sourceCount]string{"VBlank", "LCDSTAT", "Timer", "Serial", "Joypad"}

func (s Source) String() string {
	if s < sourceCount {
		return sourceNames[s]
	}
	return "Unknown"
}

// Vector returns the fixed handler address for the source.
// The five handlers sit 8 bytes apart starting at 0x40.
func (s Source) Vector() uint16 {
	return 0x40 + uint16(s)*8
}

// Controller holds the IE and IF registers. Only the low 5 bits of each are
// backed by hardware; the upper 3 bits of IF always read as 1.
type Controller struct {
	enable byte // IE, 0xFFFF
	flags  byte // IF, 0xFF0F
}

// Request sets the IF bit for the given source. Called by the timer, PPU,
// serial port and joypad, never by the CPU.
func (c *Controller) Request(s Source) {
	c.flags = bit.Set(uint8(s), c.flags)
}

// Acknowledge clears the IF bit for the source being serviced.
func (c *Controller) Acknowledge(s Source) {
	c.flags = bit.Clear(uint8(s), c.flags)
}

// Pending returns the highest-priority source that is both enabled and
// requested, if any.
func (c *Controller) Pending() (Source, bool) {
	masked := c.enable & c.flags & 0x1F
	if masked == 0 {
		return 0, false
	}
	for i := uint8(0); i < uint8(sourceCount); i++ {
		if bit.IsSet(i, masked) {
			return Source(i), true
		}
	}
	return 0, false
}

// AnyPending reports whether IE & IF is nonzero, regardless of IME.
// This is the condition that wakes the CPU from HALT.
func (c *Controller) AnyPending() bool {
	return c.enable&c.flags&0x1F != 0
}

// ReadIE returns the IE register.
func (c *Controller) ReadIE() byte {
	return c.enable
}

// WriteIE sets the IE register. All 8 bits are stored, though only the low
// 5 take part in dispatch.
func (c *Controller) WriteIE(value byte) {
	c.enable = value
}

// ReadIF returns the IF register. The unused upper 3 bits read as 1.
func (c *Controller) ReadIF() byte {
	return c.flags | 0xE0
}

// WriteIF sets the IF register.
func (c *Controller) WriteIF(value byte) {
	c.flags = value | 0xE0
}
