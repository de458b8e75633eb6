package memory

import (
	"fmt"
	"log/slog"

	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/audio"
	"github.com/aferran/go-dotmatrix/dotmatrix/interrupt"
	"github.com/aferran/go-dotmatrix/dotmatrix/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// PPU is the display controller seen from the bus: it owns the LCD registers
// (except DMA) and advances with bus time.
type PPU interface {
	Tick(cycles int)
	ReadRegister(address uint16) byte
	WriteRegister(address uint16, value byte)
}

// MMU routes every bus access to the component that owns the address and
// advances all memory-mapped peripherals with bus time.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	APU       *audio.APU
	regionMap [256]memRegion

	joypad     *Joypad
	serial     SerialPort
	timer      Timer
	interrupts *interrupt.Controller
	ppu        PPU

	dmaActive bool
	dmaSource uint16
	dmaIndex  uint16
	dmaCycles int
}

// New creates a memory unit with no cartridge loaded. Reads from the
// cartridge regions return open bus until a cartridge is attached, which is
// enough for tests that only exercise RAM and registers.
func New() *MMU {
	mmu := &MMU{
		memory:     make([]byte, 0x10000),
		APU:        audio.New(),
		joypad:     NewJoypad(),
		interrupts: &interrupt.Controller{},
	}
	mmu.serial = serial.NewLogSink(func() { mmu.interrupts.Request(interrupt.Serial) })
	mmu.timer.TimerInterruptHandler = func() { mmu.interrupts.Request(interrupt.Timer) }
	initRegionMap(mmu)
	return mmu
}

// NewWithCartridge creates a memory unit with the given cartridge mapped in.
// The banking controller is chosen from the parsed header.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.mbcType {
	case NoMBCType:
		mmu.mbc = NewNoMBC(cart.data, cart.ramBankCount)
	case MBC1Type:
		mmu.mbc = NewMBC1(cart.data, cart.hasBattery, cart.ramBankCount)
	case MBC2Type:
		mmu.mbc = NewMBC2(cart.data, cart.hasBattery)
	case MBC3Type:
		mmu.mbc = NewMBC3(cart.data, cart.ramBankCount, cart.hasRTC, nil)
	case MBC5Type:
		mmu.mbc = NewMBC5(cart.data, cart.hasRumble, cart.ramBankCount)
	default:
		// NewCartridge rejects anything it cannot map to a controller
		panic(fmt.Sprintf("unsupported MBC type: %d", cart.mbcType))
	}

	return mmu
}

func initRegionMap(m *MMU) {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM: 0xFE00-0xFE9F, open bus: 0xFEA0-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM + IE: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// Interrupts exposes the interrupt controller, which the CPU polls for
// dispatch and peripherals request through.
func (m *MMU) Interrupts() *interrupt.Controller {
	return m.interrupts
}

// Cart returns the loaded cartridge, nil when running without one.
func (m *MMU) Cart() *Cartridge {
	return m.cart
}

// AttachPPU connects a display controller to the LCD register range and the
// shared tick path.
func (m *MMU) AttachPPU(ppu PPU) {
	m.ppu = ppu
}

// SetSerial replaces the serial device. The default is a log sink wired to
// the serial interrupt.
func (m *MMU) SetSerial(s SerialPort) {
	m.serial = s
}

// SetTimerSeed initializes the internal timer divider, and with it DIV.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// Tick advances every memory-mapped peripheral by the given t-cycles.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	m.tickDMA(cycles)
	if m.ppu != nil {
		m.ppu.Tick(cycles)
	}
	m.APU.Tick(cycles)
}

// tickDMA copies one byte into OAM per machine cycle while a transfer is
// active. The whole transfer takes 160 machine cycles.
func (m *MMU) tickDMA(cycles int) {
	if !m.dmaActive {
		return
	}
	m.dmaCycles += cycles
	for m.dmaActive && m.dmaCycles >= 4 {
		m.dmaCycles -= 4
		source := m.dmaSource + m.dmaIndex
		if source >= 0xE000 {
			// sources past WRAM read through the echo region
			source -= 0x2000
		}
		m.memory[addr.OAMStart+m.dmaIndex] = m.busRead(source)
		m.dmaIndex++
		if m.dmaIndex == 160 {
			m.dmaActive = false
			m.dmaCycles = 0
		}
	}
}

// DMAActive reports whether an OAM DMA transfer is in progress.
func (m *MMU) DMAActive() bool {
	return m.dmaActive
}

// RequestInterrupt sets the IF bit for the given source.
func (m *MMU) RequestInterrupt(source interrupt.Source) {
	m.interrupts.Request(source)
}

// Read performs a bus read. While an OAM DMA transfer is running the bus is
// held by the transfer and only HRAM (and IE) is reachable; everything else
// reads open bus.
func (m *MMU) Read(address uint16) byte {
	if m.dmaActive && address < 0xFF80 {
		return 0xFF
	}
	return m.busRead(address)
}

// ReadVRAM reads video memory directly. The PPU keeps its own access to VRAM
// while the CPU bus is held by an OAM DMA transfer.
func (m *MMU) ReadVRAM(address uint16) byte {
	return m.memory[address]
}

func (m *MMU) busRead(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.memory[address]
		}
		// 0xFEA0-0xFEFF is open bus
		return 0xFF
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("Attempted read at unmapped address: 0x%X", address))
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address == addr.IF:
		return m.interrupts.ReadIF()
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.APU.ReadRegister(address)
	case address == addr.DMA:
		return m.memory[address]
	case address >= addr.LCDC && address <= addr.WX:
		if m.ppu != nil {
			return m.ppu.ReadRegister(address)
		}
		return m.memory[address]
	case address == addr.IE:
		return m.interrupts.ReadIE()
	case address >= 0xFF80:
		// HRAM
		return m.memory[address]
	default:
		// unmapped IO reads open bus
		return 0xFF
	}
}

// Write performs a bus write. Writes outside HRAM are dropped while an OAM
// DMA transfer holds the bus, except a write to the DMA register itself,
// which restarts the transfer.
func (m *MMU) Write(address uint16, value byte) {
	if m.dmaActive && address < 0xFF80 && address != addr.DMA {
		return
	}
	m.busWrite(address, value)
}

func (m *MMU) busWrite(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			slog.Warn("Write with no cartridge", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.memory[address] = value
		}
		// writes into 0xFEA0-0xFEFF are dropped
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("Attempted write at unmapped address: 0x%X", address))
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
	case address == addr.IF:
		m.interrupts.WriteIF(value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.APU.WriteRegister(address, value)
	case address == addr.DMA:
		m.memory[address] = value
		m.dmaActive = true
		m.dmaSource = uint16(value) << 8
		m.dmaIndex = 0
		m.dmaCycles = 0
	case address >= addr.LCDC && address <= addr.WX:
		if m.ppu != nil {
			m.ppu.WriteRegister(address, value)
			return
		}
		m.memory[address] = value
	case address == addr.IE:
		m.interrupts.WriteIE(value)
	case address >= 0xFF80:
		// HRAM
		m.memory[address] = value
	default:
		// unmapped IO ignores writes
	}
}

// HandleKeyPress records a key press and requests the Joypad interrupt on a
// released-to-pressed transition.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.Press(key) {
		m.interrupts.Request(interrupt.Joypad)
	}
}

// HandleKeyRelease records a key release.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}
