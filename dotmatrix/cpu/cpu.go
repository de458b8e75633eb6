package cpu

import (
	"github.com/aferran/go-dotmatrix/dotmatrix/bit"
	"github.com/aferran/go-dotmatrix/dotmatrix/interrupt"
)

// Bus provides the interface for component communication. Tick advances
// every peripheral on the bus; the CPU calls it once per machine cycle so
// memory traffic and peripheral time stay interleaved.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Tick(cycles int)
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// CPU holds the SM83 core state.
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	eiPending         bool // EI delay: interrupts enable after the next instruction
	currentOpcode     uint16
	halted            bool
	stopped           bool
	locked            bool // executed an unused opcode; only a reset recovers
	cycles            uint64

	// haltBug indicates the next opcode fetch should not advance PC.
	// Set by HALT when IME=0 and an interrupt is already pending.
	haltBug bool

	bus        Bus
	interrupts *interrupt.Controller
}

// New returns a CPU with DMG post-boot register values. Use SetRegisters to
// apply a different hardware model's boot state.
func New(bus Bus, interrupts *interrupt.Controller) *CPU {
	cpu := &CPU{
		bus:        bus,
		interrupts: interrupts,
	}

	cpu.setAF(0x01B0)
	cpu.setBC(0x0013)
	cpu.setDE(0x00D8)
	cpu.setHL(0x014D)
	cpu.sp = 0xFFFE
	cpu.pc = 0x0100

	return cpu
}

// SetRegisters loads the full register file at once.
func (c *CPU) SetRegisters(af, bc, de, hl, sp, pc uint16) {
	c.setAF(af)
	c.setBC(bc)
	c.setDE(de)
	c.setHL(hl)
	c.sp = sp
	c.pc = pc
}

// Exec runs one instruction (or services one interrupt) and returns the
// t-cycles it took. The bus is ticked once per machine cycle as the
// instruction performs its memory accesses, so peripherals observe every
// intermediate bus state.
func (c *CPU) Exec() int {
	if c.locked {
		c.bus.Tick(4)
		c.cycles += 4
		return 4
	}

	if c.halted {
		// any enabled pending interrupt wakes the CPU, IME or not
		if c.interrupts.AnyPending() {
			c.halted = false
		} else {
			c.bus.Tick(4)
			c.cycles += 4
			return 4
		}
	}

	if c.interruptsEnabled {
		if source, ok := c.interrupts.Pending(); ok {
			return c.serviceInterrupt(source)
		}
	}

	opcode := c.readCycle(c.pc)
	if c.haltBug {
		// the fetch after a buggy HALT reads the opcode without
		// advancing PC, so the byte executes twice
		c.haltBug = false
	} else {
		c.pc++
	}

	var instruction Opcode
	if opcode == 0xCB {
		cb := c.readCycle(c.pc)
		c.pc++
		c.currentOpcode = bit.Combine(0xCB, cb)
		instruction = opcodesCB[cb]
	} else {
		c.currentOpcode = uint16(opcode)
		instruction = opcodes[opcode]
	}

	cycles := instruction(c)
	c.cycles += uint64(cycles)

	// EI takes effect after the instruction that follows it. The check
	// against the current opcode keeps EI itself from opening the window.
	if c.eiPending && c.currentOpcode != 0xFB {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	return cycles
}

// serviceInterrupt dispatches to an interrupt vector: two idle machine
// cycles, the PC push, and the jump. 5 machine cycles in total.
func (c *CPU) serviceInterrupt(source interrupt.Source) int {
	c.internalCycle()
	c.internalCycle()

	c.sp--
	c.writeCycle(c.sp, bit.High(c.pc))
	c.sp--
	c.writeCycle(c.sp, bit.Low(c.pc))

	c.internalCycle()
	c.pc = source.Vector()

	c.interruptsEnabled = false
	c.interrupts.Acknowledge(source)

	c.cycles += 20
	return 20
}

// readCycle performs one machine cycle ending in a bus read.
func (c *CPU) readCycle(address uint16) byte {
	c.bus.Tick(4)
	return c.bus.Read(address)
}

// writeCycle performs one machine cycle ending in a bus write.
func (c *CPU) writeCycle(address uint16, value byte) {
	c.bus.Tick(4)
	c.bus.Write(address, value)
}

// internalCycle performs one machine cycle with no bus access.
func (c *CPU) internalCycle() {
	c.bus.Tick(4)
}

// readImmediate consumes the operand byte at PC ('n' in mnemonics).
func (c *CPU) readImmediate() uint8 {
	n := c.readCycle(c.pc)
	c.pc++
	return n
}

// readImmediateWord consumes the two operand bytes at PC ('nn' in mnemonics).
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

// readSignedImmediate consumes the operand byte at PC as signed ('*' in mnemonics).
func (c *CPU) readSignedImmediate() int8 {
	return int8(c.readImmediate())
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &= uint8(flag ^ 0xFF)
}

func (c CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}

	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}

	c.setFlag(flag)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// Getter methods for register display and tracing
func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetB() uint8       { return c.b }
func (c *CPU) GetC() uint8       { return c.c }
func (c *CPU) GetD() uint8       { return c.d }
func (c *CPU) GetE() uint8       { return c.e }
func (c *CPU) GetH() uint8       { return c.h }
func (c *CPU) GetL() uint8       { return c.l }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }

// Execution state getters
func (c *CPU) GetIME() bool    { return c.interruptsEnabled }
func (c *CPU) IsHalted() bool  { return c.halted }
func (c *CPU) IsStopped() bool { return c.stopped }
func (c *CPU) IsLocked() bool  { return c.locked }

// GetFlagString returns a human-readable representation of the flag register
func (c *CPU) GetFlagString() string {
	flags := ""
	if c.f&uint8(zeroFlag) != 0 {
		flags += "Z"
	} else {
		flags += "-"
	}
	if c.f&uint8(subFlag) != 0 {
		flags += "N"
	} else {
		flags += "-"
	}
	if c.f&uint8(halfCarryFlag) != 0 {
		flags += "H"
	} else {
		flags += "-"
	}
	if c.f&uint8(carryFlag) != 0 {
		flags += "C"
	} else {
		flags += "-"
	}
	return flags
}
