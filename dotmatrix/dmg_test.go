package dotmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/memory"
	"github.com/aferran/go-dotmatrix/dotmatrix/model"
)

// buildTestROM assembles a minimal 32KB cartridge: entry point jumping to
// 0x0150, a valid header, and the given program at 0x0150.
func buildTestROM(program ...byte) []byte {
	rom := make([]byte, 0x8000)

	rom[0x100] = 0x00 // NOP
	rom[0x101] = 0xC3 // JP 0x0150
	rom[0x102] = 0x50
	rom[0x103] = 0x01

	copy(rom[0x150:], program)

	var checksum uint8
	for i := 0x134; i <= 0x14C; i++ {
		checksum = checksum - rom[i] - 1
	}
	rom[0x14D] = checksum

	return rom
}

func TestNewRejectsBadROMs(t *testing.T) {
	_, err := New([]byte{0x01, 0x02})
	assert.Error(t, err)

	rom := buildTestROM()
	rom[0x147] = 0xC0 // no such mapper
	_, err = New(rom)
	assert.Error(t, err)
}

func TestStepExecutesInstructions(t *testing.T) {
	dmg, err := New(buildTestROM(
		0x3E, 0x42, // LD A, 0x42
		0x18, 0xFE, // JR -2
	))
	require.NoError(t, err)

	assert.Equal(t, 4, dmg.Step())  // NOP at the entry point
	assert.Equal(t, 16, dmg.Step()) // JP 0x0150
	assert.Equal(t, uint16(0x0150), dmg.CPU().GetPC())

	dmg.Step()
	assert.Equal(t, uint8(0x42), dmg.CPU().GetA())

	// the JR loop spins in place
	dmg.Step()
	assert.Equal(t, uint16(0x0152), dmg.CPU().GetPC())
}

func TestNOPLoop(t *testing.T) {
	rom := buildTestROM()
	copy(rom[0x100:], []byte{
		0x00,             // NOP
		0x00,             // NOP
		0xC3, 0x00, 0x01, // JP 0x0100
	})

	dmg, err := New(rom)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, uint16(0x0100), dmg.CPU().GetPC())
		assert.Equal(t, 4, dmg.Step())
		assert.Equal(t, uint16(0x0101), dmg.CPU().GetPC())
		assert.Equal(t, 4, dmg.Step())
		assert.Equal(t, uint16(0x0102), dmg.CPU().GetPC())
		assert.Equal(t, 16, dmg.Step())
	}
}

func TestBootState(t *testing.T) {
	t.Run("DMG", func(t *testing.T) {
		dmg, err := New(buildTestROM(0x18, 0xFE))
		require.NoError(t, err)

		c := dmg.CPU()
		assert.Equal(t, uint8(0x01), c.GetA())
		assert.Equal(t, uint8(0xB0), c.GetF())
		assert.Equal(t, uint16(0x0100), c.GetPC())
		assert.Equal(t, uint16(0xFFFE), c.GetSP())

		assert.Equal(t, uint8(0xAB), dmg.Read(addr.DIV))
		assert.Equal(t, uint8(0x91), dmg.Read(addr.LCDC))
		assert.Equal(t, uint8(0x87), dmg.Read(addr.STAT))
		assert.Equal(t, uint8(0xE1), dmg.Read(addr.IF))
		assert.Equal(t, uint8(0xCF), dmg.Read(addr.P1))
	})

	t.Run("SGB", func(t *testing.T) {
		dmg, err := New(buildTestROM(0x18, 0xFE), WithModel(model.SGB))
		require.NoError(t, err)

		c := dmg.CPU()
		assert.Equal(t, uint8(0x01), c.GetA())
		assert.Equal(t, uint8(0x00), c.GetF())
		assert.Equal(t, uint16(0xC060), uint16(c.GetH())<<8|uint16(c.GetL()))
		assert.Equal(t, uint8(0xD8), dmg.Read(addr.DIV))
		assert.Equal(t, uint8(0x85), dmg.Read(addr.STAT))
		assert.Equal(t, model.SGB, dmg.Model())
	})

	t.Run("MGB", func(t *testing.T) {
		dmg, err := New(buildTestROM(0x18, 0xFE), WithModel(model.MGB))
		require.NoError(t, err)

		assert.Equal(t, uint8(0xFF), dmg.CPU().GetA())
	})
}

func TestRunUntilFrame(t *testing.T) {
	dmg, err := New(buildTestROM(0x18, 0xFE)) // JR -2
	require.NoError(t, err)

	dmg.RunUntilFrame()

	cycles := dmg.CPU().GetCycles()
	assert.GreaterOrEqual(t, cycles, uint64(CyclesPerFrame))
	// the overshoot is at most one instruction
	assert.Less(t, cycles, uint64(CyclesPerFrame+24))

	// leftover cycles carry over instead of stretching the next frame
	dmg.RunUntilFrame()
	assert.GreaterOrEqual(t, dmg.CPU().GetCycles(), uint64(2*CyclesPerFrame))
	assert.Less(t, dmg.CPU().GetCycles(), uint64(2*CyclesPerFrame+24))
}

func TestSerialListener(t *testing.T) {
	var captured []byte
	dmg, err := New(buildTestROM(
		0x3E, 0x55, // LD A, 0x55
		0xE0, 0x01, // LDH (SB), A
		0x3E, 0x81, // LD A, 0x81
		0xE0, 0x02, // LDH (SC), A
		0x18, 0xFE, // JR -2
	), WithSerialListener(func(b byte) { captured = append(captured, b) }))
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		dmg.Step()
	}

	assert.Equal(t, []byte{0x55}, captured)
	assert.Equal(t, uint8(0xE9), dmg.Read(addr.IF)) // serial interrupt raised
}

func TestJoypadKeys(t *testing.T) {
	dmg, err := New(buildTestROM(0x18, 0xFE))
	require.NoError(t, err)

	dmg.Write(addr.P1, 0x10) // select buttons
	dmg.Press(memory.JoypadA)
	assert.Equal(t, uint8(0xDE), dmg.Read(addr.P1))

	dmg.Release(memory.JoypadA)
	assert.Equal(t, uint8(0xDF), dmg.Read(addr.P1))
}
