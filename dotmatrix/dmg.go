package dotmatrix

import (
	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/cpu"
	"github.com/aferran/go-dotmatrix/dotmatrix/interrupt"
	"github.com/aferran/go-dotmatrix/dotmatrix/memory"
	"github.com/aferran/go-dotmatrix/dotmatrix/model"
	"github.com/aferran/go-dotmatrix/dotmatrix/serial"
	"github.com/aferran/go-dotmatrix/dotmatrix/video"
)

// CyclesPerFrame is the length of one LCD frame in t-cycles.
const CyclesPerFrame = 70224

// DMG is the root struct and entry point for running the emulation.
type DMG struct {
	cpu *cpu.CPU
	gpu *video.GPU
	mmu *memory.MMU

	model       model.Model
	frameCycles int
}

type Option func(*config)

type config struct {
	model          model.Model
	serialListener func(byte)
}

// WithModel selects the hardware revision whose power-on state is applied.
// The default is the common DMG.
func WithModel(m model.Model) Option {
	return func(c *config) {
		c.model = m
	}
}

// WithSerialListener registers a callback invoked for every byte the
// running program pushes out of the serial port.
func WithSerialListener(fn func(byte)) Option {
	return func(c *config) {
		c.serialListener = fn
	}
}

// New creates an emulator instance from raw cartridge data. The ROM header
// is validated here; a running emulator never returns errors.
func New(rom []byte, opts ...Option) (*DMG, error) {
	cfg := &config{model: model.DMG}
	for _, opt := range opts {
		opt(cfg)
	}

	cart, err := memory.NewCartridge(rom)
	if err != nil {
		return nil, err
	}

	d := &DMG{model: cfg.model}
	d.mmu = memory.NewWithCartridge(cart)
	d.gpu = video.NewGpu(d.mmu)
	d.mmu.AttachPPU(d.gpu)
	d.cpu = cpu.New(d.mmu, d.mmu.Interrupts())

	if cfg.serialListener != nil {
		irq := func() { d.mmu.RequestInterrupt(interrupt.Serial) }
		d.mmu.SetSerial(serial.NewLogSink(irq, serial.WithListener(cfg.serialListener)))
	}

	d.applyBootState(cfg.model)
	return d, nil
}

// applyBootState seeds registers and I/O to the values the boot ROM of the
// chosen revision leaves behind, so execution can start at 0x0100 directly.
func (d *DMG) applyBootState(m model.Model) {
	boot := m.Boot()
	d.cpu.SetRegisters(boot.AF, boot.BC, boot.DE, boot.HL, boot.SP, boot.PC)
	d.mmu.SetTimerSeed(boot.DIV)

	for _, io := range m.IOValues() {
		if io.Address == addr.STAT {
			// STAT mode bits are read-only through the bus
			d.gpu.Seed(io.Value)
			continue
		}
		d.mmu.Write(io.Address, io.Value)
	}
}

// Step executes a single CPU instruction (or interrupt dispatch) with all
// peripherals ticked in lockstep. Returns the t-cycles consumed.
func (d *DMG) Step() int {
	cycles := d.cpu.Exec()
	d.frameCycles += cycles
	return cycles
}

// RunUntilFrame steps the emulation until one full frame worth of cycles
// has elapsed. Leftover cycles carry into the next frame.
func (d *DMG) RunUntilFrame() {
	for d.frameCycles < CyclesPerFrame {
		d.Step()
	}
	d.frameCycles -= CyclesPerFrame
}

// GetCurrentFrame returns the framebuffer holding the most recent output.
func (d *DMG) GetCurrentFrame() *video.FrameBuffer {
	return d.gpu.Framebuffer()
}

// Read reads a byte through the memory bus, exactly as the CPU would see it.
func (d *DMG) Read(address uint16) byte {
	return d.mmu.Read(address)
}

// Write writes a byte through the memory bus.
func (d *DMG) Write(address uint16, value byte) {
	d.mmu.Write(address, value)
}

// CPU returns the processor, exposed for inspection and tracing.
func (d *DMG) CPU() *cpu.CPU {
	return d.cpu
}

// Cart returns the loaded cartridge.
func (d *DMG) Cart() *memory.Cartridge {
	return d.mmu.Cart()
}

// Model returns the hardware revision this instance boots as.
func (d *DMG) Model() model.Model {
	return d.model
}

func (d *DMG) Press(key memory.JoypadKey) {
	d.mmu.HandleKeyPress(key)
}

func (d *DMG) Release(key memory.JoypadKey) {
	d.mmu.HandleKeyRelease(key)
}
