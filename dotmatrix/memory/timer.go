package memory

import (
	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/bit"
)

// tacLookup maps TAC input clock select (bits 1-0) to the bit position of
// the 16-bit internal divider used as the timer's clock source. TIMA
// increments on falling edges of this selected bit while the timer is
// enabled (TAC bit 2 = 1).
//
// Mapping per Pan Docs (DMG):
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var tacLookup = [4]uint16{9, 3, 5, 7}

// Timer implements the DIV/TIMA/TMA/TAC register cluster, including the
// falling-edge increment behavior that makes DIV and TAC writes able to
// glitch an extra TIMA increment.
type Timer struct {
	systemCounter uint16 // internal 16-bit counter, DIV is the upper 8 bits
	lastTimerBit  bool   // previous state of the selected bit for edge detection
	timaOverflow  int    // cycles remaining until an overflowed TIMA reloads

	tima byte
	tma  byte
	tac  byte

	// IRQ requester callback
	TimerInterruptHandler func()
}

// SetSeed initializes the internal divider counter; the hardware model
// decides the post-boot value.
func (t *Timer) SetSeed(seed uint16) {
	t.systemCounter = seed
	t.lastTimerBit = t.timerBit()
	t.timaOverflow = 0
}

// Tick advances the timer by the given number of t-cycles.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		t.systemCounter++

		if t.timaOverflow > 0 {
			// TIMA reads 0 for 4 cycles after overflow, then the reload
			// from TMA and the interrupt request land together.
			t.timaOverflow--
			if t.timaOverflow == 0 {
				t.tima = t.tma
				if t.TimerInterruptHandler != nil {
					t.TimerInterruptHandler()
				}
			}
			continue
		}

		current := t.timerBit()
		if t.lastTimerBit && !current {
			t.incrementTIMA()
		}
		t.lastTimerBit = current
	}
}

// timerBit is the edge detector input: the selected divider bit ANDed with
// the enable bit.
func (t *Timer) timerBit() bool {
	return bit.IsSet(2, t.tac) && bit.IsSet16(tacLookup[t.tac&0x03], t.systemCounter)
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.timaOverflow = 4
	}
	t.tima++
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return byte(t.systemCounter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// Zeroing the counter can itself be a falling edge of the
		// selected bit, which increments TIMA.
		if t.timerBit() {
			t.incrementTIMA()
		}
		t.systemCounter = 0
		t.lastTimerBit = false
	case addr.TIMA:
		// A write during the overflow window cancels the pending reload
		if t.timaOverflow > 0 {
			t.timaOverflow = 0
		}
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		// Changing the clock select or disabling the timer while the old
		// selected bit is high is also a falling edge.
		oldBit := t.timerBit()
		t.tac = value & 0x07
		newBit := t.timerBit()
		if oldBit && !newBit {
			t.incrementTIMA()
		}
		t.lastTimerBit = newBit
	}
}
