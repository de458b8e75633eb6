package memory

import (
	"testing"

	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/stretchr/testify/assert"
)

func TestDIVCounts(t *testing.T) {
	timer := &Timer{}

	timer.Tick(255)
	assert.Equal(t, byte(0), timer.Read(addr.DIV))

	timer.Tick(1)
	assert.Equal(t, byte(1), timer.Read(addr.DIV))

	timer.Tick(256)
	assert.Equal(t, byte(2), timer.Read(addr.DIV))
}

func TestDIVWriteResetsCounter(t *testing.T) {
	timer := &Timer{}
	timer.Tick(1000)
	timer.Write(addr.DIV, 0x12) // any value resets
	assert.Equal(t, byte(0), timer.Read(addr.DIV))
}

func TestTIMAIncrements(t *testing.T) {
	timer := &Timer{}
	timer.Write(addr.TAC, 0x05) // enabled, bit 3 (increment every 16 cycles)

	timer.Tick(15)
	assert.Equal(t, byte(0), timer.Read(addr.TIMA))

	// the falling edge of bit 3 lands on cycle 16
	timer.Tick(1)
	assert.Equal(t, byte(1), timer.Read(addr.TIMA))

	timer.Tick(16 * 10)
	assert.Equal(t, byte(11), timer.Read(addr.TIMA))
}

func TestTIMADisabled(t *testing.T) {
	timer := &Timer{}
	timer.Write(addr.TAC, 0x01) // clock selected but not enabled
	timer.Tick(1024)
	assert.Equal(t, byte(0), timer.Read(addr.TIMA))
}

func TestTIMAOverflow(t *testing.T) {
	irqs := 0
	timer := &Timer{TimerInterruptHandler: func() { irqs++ }}
	timer.Write(addr.TAC, 0x05)
	timer.Write(addr.TMA, 0x42)
	timer.Write(addr.TIMA, 0xFF)

	timer.Tick(16)
	// overflowed: TIMA holds 0 for 4 cycles before the TMA reload
	assert.Equal(t, byte(0), timer.Read(addr.TIMA))
	assert.Equal(t, 0, irqs)

	timer.Tick(3)
	assert.Equal(t, byte(0), timer.Read(addr.TIMA))
	assert.Equal(t, 0, irqs)

	// reload and interrupt land together on the 4th cycle
	timer.Tick(1)
	assert.Equal(t, byte(0x42), timer.Read(addr.TIMA))
	assert.Equal(t, 1, irqs)
}

func TestTIMAWriteCancelsReload(t *testing.T) {
	irqs := 0
	timer := &Timer{TimerInterruptHandler: func() { irqs++ }}
	timer.Write(addr.TAC, 0x05)
	timer.Write(addr.TMA, 0x42)
	timer.Write(addr.TIMA, 0xFF)

	timer.Tick(17) // inside the overflow window
	timer.Write(addr.TIMA, 0x10)

	timer.Tick(8)
	assert.Equal(t, byte(0x10), timer.Read(addr.TIMA))
	assert.Equal(t, 0, irqs)
}

func TestDIVWriteGlitch(t *testing.T) {
	timer := &Timer{}
	timer.Write(addr.TAC, 0x05) // bit 3 selected

	// park the counter where the selected bit is high
	timer.Tick(8)
	assert.Equal(t, byte(0), timer.Read(addr.TIMA))

	// zeroing the counter is a falling edge of bit 3
	timer.Write(addr.DIV, 0x00)
	assert.Equal(t, byte(1), timer.Read(addr.TIMA))
}

func TestTACWriteGlitch(t *testing.T) {
	timer := &Timer{}
	timer.Write(addr.TAC, 0x05)
	timer.Tick(8) // bit 3 high

	// disabling the timer while the selected bit is high is a falling edge
	timer.Write(addr.TAC, 0x01)
	assert.Equal(t, byte(1), timer.Read(addr.TIMA))

	// park the counter at 40 (bits 3 and 5 both high), then switch the
	// clock select between them: no falling edge, no glitch
	timer.Tick(32)
	timer.Write(addr.TAC, 0x05)
	timer.Write(addr.TAC, 0x06)
	assert.Equal(t, byte(1), timer.Read(addr.TIMA))
}

func TestTACReadsUpperBitsSet(t *testing.T) {
	timer := &Timer{}
	timer.Write(addr.TAC, 0x05)
	assert.Equal(t, byte(0xFD), timer.Read(addr.TAC))
}

func TestSeedSetsDIV(t *testing.T) {
	timer := &Timer{}
	timer.SetSeed(0xABC9)
	assert.Equal(t, byte(0xAB), timer.Read(addr.DIV))
}
