package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

const titleLength = 16

const (
	entryPointAddress      = 0x100
	logoAddress            = 0x104
	titleAddress           = 0x134
	cgbFlagAddress         = 0x143
	newLicenseCodeAddress  = 0x144
	sgbFlagAddress         = 0x146
	cartridgeTypeAddress   = 0x147
	romSizeAddress         = 0x148
	ramSizeAddress         = 0x149
	destinationCodeAddress = 0x14A
	oldLicenseCodeAddress  = 0x14B
	versionNumberAddress   = 0x14C
	headerChecksumAddress  = 0x14D
	globalChecksumAddress  = 0x14E
	headerEndAddress       = 0x150
)

var (
	// ErrROMTooSmall indicates the ROM image is smaller than its header
	// requires (either no full header, or fewer banks than declared).
	ErrROMTooSmall = errors.New("rom image too small")
	// ErrUnknownCartridgeType indicates an unsupported value in the
	// cartridge type header byte (0x147).
	ErrUnknownCartridgeType = errors.New("unknown cartridge type")
)

// MBCType identifies which memory bank controller a cartridge carries.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC2Type
	MBC3Type
	MBC5Type
)

// cartTypeNames maps the raw cartridge type byte to its conventional name.
var cartTypeNames = map[uint8]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
}

// ramBankCounts maps the RAM size header byte (0x149) to 8KB bank counts.
var ramBankCounts = [6]uint8{0, 0, 1, 4, 16, 8}

// Cartridge holds a parsed ROM image and its header metadata.
type Cartridge struct {
	data         []byte
	title        string
	mbcType      MBCType
	cartType     uint8
	romBankCount int
	ramBankCount uint8
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	version      uint8
}

// NewCartridge parses a ROM image and validates its header. All cartridge
// problems surface here; once a Cartridge exists every bus access succeeds.
func NewCartridge(data []byte) (*Cartridge, error) {
	if len(data) < headerEndAddress {
		return nil, fmt.Errorf("%w: %d bytes, header needs at least %d", ErrROMTooSmall, len(data), headerEndAddress)
	}

	cart := &Cartridge{
		title:    cleanTitle(data[titleAddress : titleAddress+titleLength]),
		cartType: data[cartridgeTypeAddress],
		version:  data[versionNumberAddress],
	}

	switch cart.cartType {
	case 0x00:
		cart.mbcType = NoMBCType
	case 0x01, 0x02:
		cart.mbcType = MBC1Type
	case 0x03:
		cart.mbcType = MBC1Type
		cart.hasBattery = true
	case 0x05:
		cart.mbcType = MBC2Type
	case 0x06:
		cart.mbcType = MBC2Type
		cart.hasBattery = true
	case 0x08:
		cart.mbcType = NoMBCType
	case 0x09:
		cart.mbcType = NoMBCType
		cart.hasBattery = true
	case 0x0F, 0x10:
		cart.mbcType = MBC3Type
		cart.hasRTC = true
		cart.hasBattery = true
	case 0x11, 0x12:
		cart.mbcType = MBC3Type
	case 0x13:
		cart.mbcType = MBC3Type
		cart.hasBattery = true
	case 0x19, 0x1A:
		cart.mbcType = MBC5Type
	case 0x1B:
		cart.mbcType = MBC5Type
		cart.hasBattery = true
	case 0x1C, 0x1D:
		cart.mbcType = MBC5Type
		cart.hasRumble = true
	case 0x1E:
		cart.mbcType = MBC5Type
		cart.hasRumble = true
		cart.hasBattery = true
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownCartridgeType, cart.cartType)
	}

	romSizeCode := data[romSizeAddress]
	if romSizeCode > 0x08 {
		return nil, fmt.Errorf("invalid ROM size code 0x%02X", romSizeCode)
	}
	cart.romBankCount = 2 << romSizeCode
	declaredSize := cart.romBankCount * 0x4000
	if len(data) < declaredSize {
		return nil, fmt.Errorf("%w: %d bytes, header declares %d banks (%d bytes)",
			ErrROMTooSmall, len(data), cart.romBankCount, declaredSize)
	}

	ramSizeCode := data[ramSizeAddress]
	if int(ramSizeCode) >= len(ramBankCounts) {
		return nil, fmt.Errorf("invalid RAM size code 0x%02X", ramSizeCode)
	}
	cart.ramBankCount = ramBankCounts[ramSizeCode]

	// Keep exactly the declared banks so bank wrap arithmetic stays exact.
	cart.data = make([]byte, declaredSize)
	copy(cart.data, data)

	// A wrong header checksum means the ROM would not boot on hardware past
	// the boot ROM, but the cartridge itself still works. Warn, don't fail.
	var checksum uint8
	for i := titleAddress; i <= versionNumberAddress; i++ {
		checksum = checksum - data[i] - 1
	}
	if checksum != data[headerChecksumAddress] {
		slog.Warn("Header checksum mismatch",
			"computed", fmt.Sprintf("0x%02X", checksum),
			"header", fmt.Sprintf("0x%02X", data[headerChecksumAddress]))
	}

	slog.Debug("Parsed cartridge",
		"title", cart.title,
		"type", cart.TypeName(),
		"romBanks", cart.romBankCount,
		"ramBanks", cart.ramBankCount)

	return cart, nil
}

// Title returns the cleaned-up title string from the cartridge header.
func (c *Cartridge) Title() string {
	return c.title
}

// TypeName returns the conventional name of the cartridge type byte.
func (c *Cartridge) TypeName() string {
	if name, ok := cartTypeNames[c.cartType]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (0x%02X)", c.cartType)
}

// cleanTitle processes a raw header title: NULL bytes become spaces,
// non-printable bytes become '?', and the result is trimmed.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
