package memory

import (
	"time"

	"github.com/aferran/go-dotmatrix/dotmatrix/bit"
)

// MBC is the interface every memory bank controller implements. Reads cover
// the cartridge ROM window (0x0000-0x7FFF) and external RAM (0xA000-0xBFFF);
// writes into the ROM window drive the controller's banking registers.
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// NoMBC covers cartridges without a banking chip: a flat 32KB ROM mapped to
// 0x0000-0x7FFF, plus optional external RAM at 0xA000-0xBFFF (type 0x08/0x09).
type NoMBC struct {
	rom []uint8
	ram []uint8
}

// NewNoMBC creates a controller for an unbanked cartridge.
func NewNoMBC(romData []uint8, ramBankCount uint8) *NoMBC {
	return &NoMBC{
		rom: romData,
		ram: make([]uint8, uint32(ramBankCount)*0x2000),
	}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x7FFF:
		if int(addr) >= len(m.rom) {
			return 0xFF
		}
		return m.rom[addr]
	case addr >= 0xA000 && addr <= 0xBFFF:
		offset := int(addr - 0xA000)
		if offset >= len(m.ram) {
			return 0xFF
		}
		return m.ram[offset]
	default:
		return 0xFF
	}
}

func (m *NoMBC) Write(addr uint16, value uint8) {
	if addr >= 0xA000 && addr <= 0xBFFF {
		offset := int(addr - 0xA000)
		if offset < len(m.ram) {
			m.ram[offset] = value
		}
	}
	// ROM writes do nothing, there are no banking registers
}

// MBC1 is the first and most common banking chip.
//   - Up to 2MB ROM and 32KB RAM
//   - Bank 0 fixed at 0x0000-0x3FFF, switchable bank at 0x4000-0x7FFF
//   - Two banking modes: mode 0 gives the full ROM range but a single RAM
//     bank, mode 1 routes the 2-bit register to RAM banking instead
type MBC1 struct {
	rom          []uint8
	ram          []uint8
	romBank      uint8
	ramBank      uint8
	ramEnabled   bool
	bankingMode  uint8
	hasBattery   bool
	ramBankCount uint8
}

// NewMBC1 creates a new MBC1 controller.
func NewMBC1(romData []uint8, hasBattery bool, ramBankCount uint8) *MBC1 {
	return &MBC1{
		rom:          romData,
		ram:          make([]uint8, uint32(ramBankCount)*0x2000),
		romBank:      1,
		hasBattery:   hasBattery,
		ramBankCount: ramBankCount,
	}
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr >= 0x4000 && addr <= 0x7FFF:
		// Banks past the end of the ROM wrap around
		offset := (uint32(m.romBank) * 0x4000) % uint32(len(m.rom))
		return m.rom[offset+uint32(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := (uint32(m.ramBank) * 0x2000) % uint32(len(m.ram))
		return m.ram[offset+uint32(addr-0xA000)]
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr >= 0x2000 && addr <= 0x3FFF:
		// Lower 5 bits of the ROM bank; 0 always selects 1
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBank = (m.romBank & 0x60) | bank
	case addr >= 0x4000 && addr <= 0x5FFF:
		if m.bankingMode == 0 {
			m.romBank = (m.romBank & 0x1F) | ((value & 0x03) << 5)
		} else {
			m.ramBank = value & 0x03
		}
	case addr >= 0x6000 && addr <= 0x7FFF:
		m.bankingMode = value & 0x01
		if m.bankingMode == 1 {
			m.romBank &= 0x1F
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := (uint32(m.ramBank) * 0x2000) % uint32(len(m.ram))
		m.ram[offset+uint32(addr-0xA000)] = value
	}
}

// MBC2 is a simpler chip with 512 half-bytes of built-in RAM.
//   - Up to 256KB ROM
//   - Bit 8 of the address decides whether a 0x0000-0x3FFF write hits the
//     RAM enable (clear) or the ROM bank register (set)
//   - RAM stores 4-bit values; the upper nibble reads back as 1s
type MBC2 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint8
	ramEnabled bool
	hasBattery bool
}

// NewMBC2 creates a new MBC2 controller.
func NewMBC2(romData []uint8, hasBattery bool) *MBC2 {
	return &MBC2{
		rom:        romData,
		ram:        make([]uint8, 512),
		romBank:    1,
		hasBattery: hasBattery,
	}
}

func (m *MBC2) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr >= 0x4000 && addr <= 0x7FFF:
		offset := (uint32(m.romBank) * 0x4000) % uint32(len(m.rom))
		return m.rom[offset+uint32(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		// 512 half-bytes, echoed through the whole external RAM window
		return m.ram[(addr-0xA000)&0x01FF] | 0xF0
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x3FFF:
		if addr&0x0100 != 0 {
			m.romBank = value & 0x0F
			if m.romBank == 0 {
				m.romBank = 1
			}
		} else {
			m.ramEnabled = (value & 0x0F) == 0x0A
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[(addr-0xA000)&0x01FF] = value & 0x0F
	}
}

// Clock abstracts the wall clock so RTC behavior is testable.
type Clock interface {
	Now() time.Time
}

type systemClockFunc func() time.Time

func (s systemClockFunc) Now() time.Time {
	return s()
}

// RTC register indexes within the bank-mapped register window (0x08-0x0C).
const (
	rtcSeconds = iota
	rtcMinutes
	rtcHours
	rtcDaysLow
	rtcDaysHigh
)

// MBC3 adds a real-time clock to MBC1-style banking.
//   - Up to 2MB ROM, 32KB RAM
//   - 7-bit ROM bank register with no mode quirks
//   - RAM bank values 0x08-0x0C map the external RAM window onto one of the
//     five RTC registers instead of RAM
//   - Writing 0x00 then 0x01 to 0x6000-0x7FFF latches the running clock into
//     a stable snapshot that reads serve from
type MBC3 struct {
	rom        []uint8
	ram        []uint8
	rtc        [5]uint8 // running clock registers
	latched    [5]uint8 // snapshot served to reads
	romBank    uint8
	ramBank    uint8
	ramEnabled bool
	hasRTC     bool
	latchState uint8
	clock      Clock
	rtcTime    time.Time
}

// NewMBC3 creates a new MBC3 controller. A nil clock falls back to the
// system clock when the cartridge has an RTC.
func NewMBC3(romData []uint8, ramBankCount uint8, hasRTC bool, clock Clock) *MBC3 {
	m := &MBC3{
		rom:        romData,
		ram:        make([]uint8, uint32(ramBankCount)*0x2000),
		romBank:    1,
		hasRTC:     hasRTC,
		latchState: 0xFF,
	}
	if hasRTC {
		if clock == nil {
			clock = systemClockFunc(time.Now)
		}
		m.clock = clock
		m.rtcTime = clock.Now()
	}
	return m
}

func (m *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr >= 0x4000 && addr <= 0x7FFF:
		offset := (uint32(m.romBank) * 0x4000) % uint32(len(m.rom))
		return m.rom[offset+uint32(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramBank <= 0x03 {
			if len(m.ram) == 0 {
				return 0xFF
			}
			offset := (uint32(m.ramBank) * 0x2000) % uint32(len(m.ram))
			return m.ram[offset+uint32(addr-0xA000)]
		}
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			return m.latched[m.ramBank-0x08]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr >= 0x2000 && addr <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value
	case addr >= 0x6000 && addr <= 0x7FFF:
		// 0x00 followed by 0x01 latches the clock
		if m.latchState == 0x00 && value == 0x01 && m.hasRTC {
			m.updateRTC()
			m.latched = m.rtc
		}
		m.latchState = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.ramBank <= 0x03 {
			if len(m.ram) == 0 {
				return
			}
			offset := (uint32(m.ramBank) * 0x2000) % uint32(len(m.ram))
			m.ram[offset+uint32(addr-0xA000)] = value
		} else if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.updateRTC()
			m.rtc[m.ramBank-0x08] = value
			m.latched[m.ramBank-0x08] = value
		}
	}
}

// updateRTC folds wall-clock time elapsed since the last update into the
// running registers. The halt bit (days-high bit 6) freezes the clock.
func (m *MBC3) updateRTC() {
	now := m.clock.Now()
	elapsed := now.Sub(m.rtcTime)
	m.rtcTime = now

	if bit.IsSet(6, m.rtc[rtcDaysHigh]) {
		return
	}

	total := int64(m.rtc[rtcSeconds]) +
		int64(m.rtc[rtcMinutes])*60 +
		int64(m.rtc[rtcHours])*3600 +
		(int64(m.rtc[rtcDaysLow])|int64(m.rtc[rtcDaysHigh]&0x01)<<8)*86400 +
		int64(elapsed.Seconds())

	m.rtc[rtcSeconds] = uint8(total % 60)
	m.rtc[rtcMinutes] = uint8((total / 60) % 60)
	m.rtc[rtcHours] = uint8((total / 3600) % 24)

	days := total / 86400
	m.rtc[rtcDaysLow] = uint8(days)
	m.rtc[rtcDaysHigh] &= 0xFE
	m.rtc[rtcDaysHigh] |= uint8(days>>8) & 0x01
	if days > 0x1FF {
		// day counter overflow sticks until software clears it
		m.rtc[rtcDaysHigh] = bit.Set(7, m.rtc[rtcDaysHigh])
	}
}

// MBC5 is the last DMG-compatible banking chip.
//   - Up to 8MB ROM via a 9-bit bank register, so all 512 banks are directly
//     addressable and bank 0 can be mapped into the switchable window
//   - Up to 128KB RAM (16 banks)
//   - Optional rumble motor on cartridge types 0x1C-0x1E
type MBC5 struct {
	rom        []uint8
	ram        []uint8
	romBank    uint16
	ramBank    uint8
	ramEnabled bool
	hasRumble  bool
}

// NewMBC5 creates a new MBC5 controller.
func NewMBC5(romData []uint8, hasRumble bool, ramBankCount uint8) *MBC5 {
	return &MBC5{
		rom:       romData,
		ram:       make([]uint8, uint32(ramBankCount)*0x2000),
		romBank:   1,
		hasRumble: hasRumble,
	}
}

func (m *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr >= 0x4000 && addr <= 0x7FFF:
		offset := (uint32(m.romBank) * 0x4000) % uint32(len(m.rom))
		return m.rom[offset+uint32(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := (uint32(m.ramBank) * 0x2000) % uint32(len(m.ram))
		return m.ram[offset+uint32(addr-0xA000)]
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr >= 0x2000 && addr <= 0x2FFF:
		// Low 8 bits of the 9-bit ROM bank; 0 stays 0 on MBC5
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case addr >= 0x3000 && addr <= 0x3FFF:
		m.romBank = (m.romBank & 0xFF) | (uint16(value&0x01) << 8)
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := (uint32(m.ramBank) * 0x2000) % uint32(len(m.ram))
		m.ram[offset+uint32(addr-0xA000)] = value
	}
}
