package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testROM builds a minimal ROM image with a valid header.
func testROM(cartType, romSizeCode, ramSizeCode uint8) []byte {
	banks := 2 << romSizeCode
	rom := make([]byte, banks*0x4000)
	copy(rom[titleAddress:], "TEST CART")
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = romSizeCode
	rom[ramSizeAddress] = ramSizeCode

	var checksum uint8
	for i := titleAddress; i <= versionNumberAddress; i++ {
		checksum = checksum - rom[i] - 1
	}
	rom[headerChecksumAddress] = checksum
	return rom
}

func TestNewCartridge(t *testing.T) {
	cart, err := NewCartridge(testROM(0x00, 0x00, 0x00))
	require.NoError(t, err)
	assert.Equal(t, "TEST CART", cart.Title())
	assert.Equal(t, NoMBCType, cart.mbcType)
	assert.Equal(t, 2, cart.romBankCount)
	assert.Equal(t, uint8(0), cart.ramBankCount)
	assert.Equal(t, "ROM ONLY", cart.TypeName())
}

func TestCartridgeTypes(t *testing.T) {
	cases := []struct {
		cartType   uint8
		mbcType    MBCType
		hasBattery bool
		hasRTC     bool
		hasRumble  bool
	}{
		{0x00, NoMBCType, false, false, false},
		{0x01, MBC1Type, false, false, false},
		{0x03, MBC1Type, true, false, false},
		{0x05, MBC2Type, false, false, false},
		{0x06, MBC2Type, true, false, false},
		{0x0F, MBC3Type, true, true, false},
		{0x10, MBC3Type, true, true, false},
		{0x11, MBC3Type, false, false, false},
		{0x13, MBC3Type, true, false, false},
		{0x19, MBC5Type, false, false, false},
		{0x1B, MBC5Type, true, false, false},
		{0x1C, MBC5Type, false, false, true},
		{0x1E, MBC5Type, true, false, true},
	}

	for _, c := range cases {
		cart, err := NewCartridge(testROM(c.cartType, 0x00, 0x00))
		require.NoError(t, err, "type 0x%02X", c.cartType)
		assert.Equal(t, c.mbcType, cart.mbcType, "type 0x%02X", c.cartType)
		assert.Equal(t, c.hasBattery, cart.hasBattery, "type 0x%02X battery", c.cartType)
		assert.Equal(t, c.hasRTC, cart.hasRTC, "type 0x%02X rtc", c.cartType)
		assert.Equal(t, c.hasRumble, cart.hasRumble, "type 0x%02X rumble", c.cartType)
	}
}

func TestCartridgeErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := NewCartridge(testROM(0x42, 0x00, 0x00))
		assert.ErrorIs(t, err, ErrUnknownCartridgeType)
	})

	t.Run("no header", func(t *testing.T) {
		_, err := NewCartridge(make([]byte, 0x100))
		assert.ErrorIs(t, err, ErrROMTooSmall)
	})

	t.Run("truncated image", func(t *testing.T) {
		rom := testROM(0x01, 0x02, 0x00) // declares 8 banks
		_, err := NewCartridge(rom[:4*0x4000])
		assert.ErrorIs(t, err, ErrROMTooSmall)
	})

	t.Run("invalid size codes", func(t *testing.T) {
		_, err := NewCartridge(testROM(0x00, 0x09, 0x00))
		assert.Error(t, err)

		_, err = NewCartridge(testROM(0x00, 0x00, 0x06))
		assert.Error(t, err)
	})
}

func TestCartridgeTrimsToDeclaredSize(t *testing.T) {
	rom := testROM(0x01, 0x00, 0x00)
	padded := append(rom, make([]byte, 0x4000)...)

	cart, err := NewCartridge(padded)
	require.NoError(t, err)
	assert.Equal(t, len(rom), len(cart.data))
}

func TestCartridgeBadChecksumStillLoads(t *testing.T) {
	rom := testROM(0x00, 0x00, 0x00)
	rom[headerChecksumAddress] ^= 0xFF

	_, err := NewCartridge(rom)
	assert.NoError(t, err)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "POKEMON RED", cleanTitle([]byte("POKEMON RED\x00\x00\x00\x00\x00")))
	assert.Equal(t, "(Untitled)", cleanTitle(make([]byte, 16)))
	assert.Equal(t, "A?B", cleanTitle([]byte{'A', 0x01, 'B'}))
}
