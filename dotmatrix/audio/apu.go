// Package audio implements the register file of the APU. Channel synthesis is
// not emulated; the registers store, mask and power-gate exactly as hardware
// does so that programs probing NR10-NR52 observe correct values.
package audio

import (
	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/bit"
)

const registerCount = 0x30 // FF10-FF3F

// readMasks is OR-ed into every register read. Write-only and unused bits
// read back as 1 on hardware.
var readMasks = [registerCount]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // FF15, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // FF1F, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // FF27-FF2F
	// wave RAM reads back as written
}

// APU holds the audio register file.
type APU struct {
	enabled   bool
	registers [registerCount]byte
}

// New creates an APU with the master enable on. Register power-on values are
// seeded by the hardware model at construction.
func New() *APU {
	return &APU{enabled: true}
}

// Tick advances the APU clock. With synthesis out of scope there is no
// observable frame-sequencer state, so this only exists to keep the APU
// phase-locked on the shared tick path.
func (a *APU) Tick(cycles int) {}

// ReadRegister reads from an audio register, applying the hardware read-back
// mask for the address.
func (a *APU) ReadRegister(address uint16) byte {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return 0xFF
	}
	index := address - addr.AudioStart
	if index >= uint16(len(readMasks)) {
		// wave RAM
		return a.registers[index]
	}
	return a.registers[index] | readMasks[index]
}

// WriteRegister writes to an audio register. While the APU is powered off
// every register except NR52 and wave RAM ignores writes, and powering off
// clears the whole register file.
func (a *APU) WriteRegister(address uint16, value byte) {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return
	}
	index := address - addr.AudioStart

	if address == addr.NR52 {
		wasEnabled := a.enabled
		a.enabled = bit.IsSet(7, value)
		if wasEnabled && !a.enabled {
			for i := range a.registers {
				if uint16(i) < addr.WaveRAMStart-addr.AudioStart {
					a.registers[i] = 0
				}
			}
		}
		// only bit 7 of NR52 is writable
		a.registers[index] = value & 0x80
		return
	}

	if !a.enabled && address < addr.WaveRAMStart {
		return
	}

	a.registers[index] = value
}

// Enabled reports the NR52 master enable bit.
func (a *APU) Enabled() bool {
	return a.enabled
}
