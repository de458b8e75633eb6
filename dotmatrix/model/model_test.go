package model

import (
	"strings"
	"testing"

	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/stretchr/testify/assert"
)

func TestBootRegisters(t *testing.T) {
	cases := []struct {
		model Model
		af    uint16
		bc    uint16
		de    uint16
		hl    uint16
		div   uint16
	}{
		{DMG, 0x01B0, 0x0013, 0x00D8, 0x014D, 0xABC9},
		{DMG0, 0x0100, 0xFF13, 0x00C1, 0x8403, 0x182F},
		{MGB, 0xFFB0, 0x0013, 0x00D8, 0x014D, 0xABC9},
		{SGB, 0x0100, 0x0014, 0x0000, 0xC060, 0xD85F},
		{SGB2, 0xFF00, 0x0014, 0x0000, 0xC060, 0xD84F},
	}

	for _, c := range cases {
		t.Run(c.model.String(), func(t *testing.T) {
			boot := c.model.Boot()
			assert.Equal(t, c.af, boot.AF)
			assert.Equal(t, c.bc, boot.BC)
			assert.Equal(t, c.de, boot.DE)
			assert.Equal(t, c.hl, boot.HL)
			assert.Equal(t, c.div, boot.DIV)
			assert.Equal(t, uint16(0xFFFE), boot.SP)
			assert.Equal(t, uint16(0x0100), boot.PC)
		})
	}
}

func TestFromString(t *testing.T) {
	for _, name := range []string{"DMG", "dmg0", "mgb", "SGB", "sgb2"} {
		m, err := FromString(name)
		assert.NoError(t, err)
		assert.True(t, strings.EqualFold(name, m.String()), "round trip for %s", name)
	}

	_, err := FromString("CGB")
	assert.Error(t, err)
}

func TestIOValueOverrides(t *testing.T) {
	find := func(values []IOValue, address uint16) byte {
		var last byte
		for _, v := range values {
			if v.Address == address {
				last = v.Value
			}
		}
		return last
	}

	assert.Equal(t, byte(0x87), find(DMG.IOValues(), addr.STAT))
	assert.Equal(t, byte(0xF1), find(DMG.IOValues(), addr.NR52))

	// SGB boots with a different STAT and sound status
	assert.Equal(t, byte(0x85), find(SGB.IOValues(), addr.STAT))
	assert.Equal(t, byte(0xF0), find(SGB.IOValues(), addr.NR52))
	assert.Equal(t, byte(0xF0), find(SGB2.IOValues(), addr.NR52))
}
