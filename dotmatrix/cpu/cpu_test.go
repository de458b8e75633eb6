package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aferran/go-dotmatrix/dotmatrix/interrupt"
)

// flatBus is a 64KB scratch bus that records how many t-cycles the CPU
// ticked it for, so tests can check instruction timing against the
// returned cycle counts.
type flatBus struct {
	mem   [0x10000]byte
	ticks int
}

func (b *flatBus) Read(address uint16) byte         { return b.mem[address] }
func (b *flatBus) Write(address uint16, value byte) { b.mem[address] = value }
func (b *flatBus) Tick(cycles int)                  { b.ticks += cycles }

func newFlatBusCPU(program ...byte) (*CPU, *flatBus) {
	bus := &flatBus{}
	copy(bus.mem[0x0100:], program)
	return New(bus, &interrupt.Controller{}), bus
}

func TestNewDefaults(t *testing.T) {
	cpu, _ := newTestCPU()

	assert.Equal(t, uint16(0x01B0), cpu.getAF())
	assert.Equal(t, uint16(0x0013), cpu.getBC())
	assert.Equal(t, uint16(0x00D8), cpu.getDE())
	assert.Equal(t, uint16(0x014D), cpu.getHL())
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
	assert.Equal(t, uint16(0x0100), cpu.pc)
	assert.False(t, cpu.GetIME())
}

func TestSetRegisters(t *testing.T) {
	cpu, _ := newTestCPU()

	cpu.SetRegisters(0x1180, 0x2233, 0x4455, 0x6677, 0x8899, 0xAABB)

	assert.Equal(t, uint16(0x1180), cpu.getAF())
	assert.Equal(t, uint16(0x2233), cpu.getBC())
	assert.Equal(t, uint16(0x4455), cpu.getDE())
	assert.Equal(t, uint16(0x6677), cpu.getHL())
	assert.Equal(t, uint16(0x8899), cpu.GetSP())
	assert.Equal(t, uint16(0xAABB), cpu.GetPC())
}

func TestSetAFMasksFlagBits(t *testing.T) {
	cpu, _ := newTestCPU()

	cpu.setAF(0x12FF)

	assert.Equal(t, uint8(0xF0), cpu.f)
	assert.Equal(t, uint16(0x12F0), cpu.getAF())
}

func TestInstructionTiming(t *testing.T) {
	testCases := []struct {
		desc    string
		program []byte
		cycles  int
		setup   func(cpu *CPU)
	}{
		{desc: "NOP", program: []byte{0x00}, cycles: 4},
		{desc: "LD BC,nn", program: []byte{0x01, 0x34, 0x12}, cycles: 12},
		{desc: "LD (BC),A", program: []byte{0x02}, cycles: 8},
		{desc: "INC BC", program: []byte{0x03}, cycles: 8},
		{desc: "LD B,n", program: []byte{0x06, 0x42}, cycles: 8},
		{desc: "LD (nn),SP", program: []byte{0x08, 0x00, 0xC0}, cycles: 20},
		{desc: "ADD HL,BC", program: []byte{0x09}, cycles: 8},
		{desc: "JR n", program: []byte{0x18, 0x05}, cycles: 12},
		{desc: "JR NZ taken", program: []byte{0x20, 0x05}, cycles: 12},
		{desc: "JR NZ not taken", program: []byte{0x20, 0x05}, cycles: 8,
			setup: func(cpu *CPU) { cpu.setFlag(zeroFlag) }},
		{desc: "INC (HL)", program: []byte{0x34}, cycles: 12,
			setup: func(cpu *CPU) { cpu.setHL(0xC000) }},
		{desc: "LD (HL),n", program: []byte{0x36, 0x42}, cycles: 12,
			setup: func(cpu *CPU) { cpu.setHL(0xC000) }},
		{desc: "LD B,C", program: []byte{0x41}, cycles: 4},
		{desc: "LD B,(HL)", program: []byte{0x46}, cycles: 8},
		{desc: "ADD A,B", program: []byte{0x80}, cycles: 4},
		{desc: "ADD A,(HL)", program: []byte{0x86}, cycles: 8},
		{desc: "RET NZ taken", program: []byte{0xC0}, cycles: 20},
		{desc: "RET NZ not taken", program: []byte{0xC0}, cycles: 8,
			setup: func(cpu *CPU) { cpu.setFlag(zeroFlag) }},
		{desc: "POP BC", program: []byte{0xC1}, cycles: 12},
		{desc: "JP nn", program: []byte{0xC3, 0x00, 0x02}, cycles: 16},
		{desc: "JP NZ not taken", program: []byte{0xC2, 0x00, 0x02}, cycles: 12,
			setup: func(cpu *CPU) { cpu.setFlag(zeroFlag) }},
		{desc: "CALL nn", program: []byte{0xCD, 0x00, 0x02}, cycles: 24},
		{desc: "CALL NZ not taken", program: []byte{0xC4, 0x00, 0x02}, cycles: 12,
			setup: func(cpu *CPU) { cpu.setFlag(zeroFlag) }},
		{desc: "PUSH BC", program: []byte{0xC5}, cycles: 16},
		{desc: "RET", program: []byte{0xC9}, cycles: 16},
		{desc: "RST 0x18", program: []byte{0xDF}, cycles: 16},
		{desc: "LD (0xFF00+n),A", program: []byte{0xE0, 0x80}, cycles: 12},
		{desc: "LD (0xFF00+C),A", program: []byte{0xE2}, cycles: 8},
		{desc: "ADD SP,n", program: []byte{0xE8, 0x05}, cycles: 16},
		{desc: "JP (HL)", program: []byte{0xE9}, cycles: 4},
		{desc: "LD (nn),A", program: []byte{0xEA, 0x00, 0xC0}, cycles: 16},
		{desc: "LD HL,SP+n", program: []byte{0xF8, 0x05}, cycles: 12},
		{desc: "LD SP,HL", program: []byte{0xF9}, cycles: 8},
		{desc: "CP n", program: []byte{0xFE, 0x42}, cycles: 8},
		{desc: "RL B", program: []byte{0xCB, 0x10}, cycles: 8},
		{desc: "BIT 0 (HL)", program: []byte{0xCB, 0x46}, cycles: 12},
		{desc: "SET 0 (HL)", program: []byte{0xCB, 0xC6}, cycles: 16,
			setup: func(cpu *CPU) { cpu.setHL(0xC000) }},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu, bus := newFlatBusCPU(tC.program...)
			if tC.setup != nil {
				tC.setup(cpu)
			}

			cycles := cpu.Exec()

			assert.Equal(t, tC.cycles, cycles)
			assert.Equal(t, tC.cycles, bus.ticks, "bus ticks don't match the returned cycle count")
		})
	}
}

func TestExecAccumulatesCycles(t *testing.T) {
	cpu, _ := newFlatBusCPU(0x00, 0x01, 0x34, 0x12) // NOP; LD BC,nn

	cpu.Exec()
	cpu.Exec()

	assert.Equal(t, uint64(16), cpu.GetCycles())
	assert.Equal(t, uint16(0x1234), cpu.getBC())
}

func TestCBDispatch(t *testing.T) {
	cpu, _ := newFlatBusCPU(0xCB, 0x37) // SWAP A

	cpu.a = 0xA5
	cpu.Exec()

	assert.Equal(t, uint8(0x5A), cpu.a)
	assert.Equal(t, uint16(0xCB37), cpu.currentOpcode)
	assert.Equal(t, uint16(0x0102), cpu.pc)
}

func TestGetOpcodeName(t *testing.T) {
	cpu, _ := newFlatBusCPU(0x01, 0x34, 0x12)

	assert.Equal(t, "0x01 (LD BC,nn) n=0x34 nn=0x1234", GetOpcodeName(cpu))

	cpu, _ = newFlatBusCPU(0xCB, 0x46)
	assert.Equal(t, "0xcb46 (BIT 0 (HL))", GetOpcodeName(cpu))
}
