package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aferran/go-dotmatrix/dotmatrix/memory"
)

func newTestCPU() (*CPU, *memory.MMU) {
	mmu := memory.New()
	return New(mmu, mmu.Interrupts()), mmu
}

func TestCPU_stack(t *testing.T) {
	cpu, _ := newTestCPU()

	cpu.sp = 0xFFFE
	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xFFFC), cpu.sp)

	popped := cpu.popStack()

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
}

func TestCPU_inc(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "increases", reg: &cpu.a, arg: 0x0A, want: 0x0B},
		{desc: "sets zero flag", reg: &cpu.a, arg: 0xFF, want: 0, flags: zeroFlag | halfCarryFlag},
		{desc: "sets half carry flag", reg: &cpu.a, arg: 0x0F, want: 0x10, flags: halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.inc(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_dec(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "decreases", reg: &cpu.a, arg: 0x0A, want: 0x09, flags: subFlag},
		{desc: "sets half carry flag", reg: &cpu.a, arg: 0, want: 0xFF, flags: subFlag | halfCarryFlag},
		{desc: "sets zero flag", reg: &cpu.a, arg: 0x01, want: 0, flags: subFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.dec(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_addToA(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "adds", a: 0x01, arg: 0x02, want: 0x03},
		{desc: "sets half carry flag", a: 0x0F, arg: 0x01, want: 0x10, flags: halfCarryFlag},
		{desc: "sets carry flag", a: 0xF0, arg: 0x20, want: 0x10, flags: carryFlag},
		{desc: "sets zero flag on wrap", a: 0xFF, arg: 0x01, want: 0, flags: zeroFlag | halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.addToA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_adcToA(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc         string
		a            uint8
		arg          uint8
		want         uint8
		initialFlags Flag
		flags        Flag
	}{
		{desc: "adds without carry", a: 0x01, arg: 0x02, want: 0x03},
		{desc: "adds the carry bit", a: 0x01, arg: 0x02, want: 0x04, initialFlags: carryFlag},
		{desc: "carry causes half carry", a: 0x0F, arg: 0x00, want: 0x10, initialFlags: carryFlag, flags: halfCarryFlag},
		{desc: "wraps to zero", a: 0xFF, arg: 0x00, want: 0, initialFlags: carryFlag, flags: zeroFlag | halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			cpu.a = tC.a
			cpu.adcToA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_subFromA(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		a     uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "subtracts", a: 0x03, arg: 0x02, want: 0x01, flags: subFlag},
		{desc: "sets zero flag", a: 0x42, arg: 0x42, want: 0, flags: zeroFlag | subFlag},
		{desc: "sets half carry flag", a: 0x10, arg: 0x01, want: 0x0F, flags: subFlag | halfCarryFlag},
		{desc: "borrow sets carry flag", a: 0x00, arg: 0x01, want: 0xFF, flags: subFlag | halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.a
			cpu.subFromA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_sbcFromA(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc         string
		a            uint8
		arg          uint8
		want         uint8
		initialFlags Flag
		flags        Flag
	}{
		{desc: "subtracts without carry", a: 0x03, arg: 0x02, want: 0x01, flags: subFlag},
		{desc: "subtracts the carry bit", a: 0x03, arg: 0x02, want: 0, initialFlags: carryFlag, flags: zeroFlag | subFlag},
		{desc: "carry causes borrow", a: 0x10, arg: 0x0F, want: 0, initialFlags: carryFlag, flags: zeroFlag | subFlag | halfCarryFlag},
		{desc: "wraps below zero", a: 0x00, arg: 0x00, want: 0xFF, initialFlags: carryFlag, flags: subFlag | halfCarryFlag | carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			cpu.a = tC.a
			cpu.sbcFromA(tC.arg)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_logicOps(t *testing.T) {
	cpu, _ := newTestCPU()

	t.Run("and", func(t *testing.T) {
		cpu.f = uint8(carryFlag)
		cpu.a = 0xF0
		cpu.andA(0x0F)
		assert.Equal(t, uint8(0), cpu.a)
		assert.Equal(t, uint8(zeroFlag|halfCarryFlag), cpu.f)
	})

	t.Run("or", func(t *testing.T) {
		cpu.f = uint8(subFlag | halfCarryFlag | carryFlag)
		cpu.a = 0xF0
		cpu.orA(0x0F)
		assert.Equal(t, uint8(0xFF), cpu.a)
		assert.Equal(t, uint8(0), cpu.f)
	})

	t.Run("xor", func(t *testing.T) {
		cpu.f = 0
		cpu.a = 0xFF
		cpu.xorA(0xFF)
		assert.Equal(t, uint8(0), cpu.a)
		assert.Equal(t, uint8(zeroFlag), cpu.f)
	})

	t.Run("cp leaves A untouched", func(t *testing.T) {
		cpu.f = 0
		cpu.a = 0x42
		cpu.compareA(0x42)
		assert.Equal(t, uint8(0x42), cpu.a)
		assert.Equal(t, uint8(zeroFlag|subFlag), cpu.f)
	})
}

func TestCPU_daa(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc         string
		a            uint8
		initialFlags Flag
		want         uint8
		flags        Flag
	}{
		{desc: "adjusts low nibble after add", a: 0x0A, want: 0x10},
		{desc: "adjusts high nibble after add", a: 0xA0, want: 0x00, flags: zeroFlag | carryFlag},
		{desc: "adjusts after half carry", a: 0x12, initialFlags: halfCarryFlag, want: 0x18},
		{desc: "adjusts after subtract", a: 0x0F, initialFlags: subFlag | halfCarryFlag, want: 0x09, flags: subFlag},
		{desc: "carry is sticky", a: 0x00, initialFlags: carryFlag, want: 0x60, flags: carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			cpu.a = tC.a
			cpu.daa()
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_rlc(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		reg   *uint8
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "rotates left", reg: &cpu.a, arg: 0x01, want: 0x02},
		{desc: "bit 7 wraps to bit 0", reg: &cpu.a, arg: 0x80, want: 0x01, flags: carryFlag},
		{desc: "sets zero flag", reg: &cpu.b, arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = tC.arg
			cpu.rlc(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_rl(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc         string
		reg          *uint8
		arg          uint8
		want         uint8
		initialFlags Flag
		flags        Flag
	}{
		{desc: "rotates left", reg: &cpu.a, arg: 0x01, want: 0x02},
		{desc: "adds carry bit", reg: &cpu.a, arg: 0x01, want: 0x03, initialFlags: carryFlag},
		{desc: "sets carry flag", reg: &cpu.a, arg: 0x80, want: 0, flags: carryFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			*tC.reg = tC.arg
			cpu.rl(tC.reg)
			assert.Equal(t, tC.want, *tC.reg)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_rrc(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		arg   uint8
		want  uint8
		flags Flag
	}{
		{desc: "rotates right", arg: 0x02, want: 0x01},
		{desc: "bit 0 wraps to bit 7", arg: 0x01, want: 0x80, flags: carryFlag},
		{desc: "sets zero flag", arg: 0, want: 0, flags: zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.a = tC.arg
			cpu.rrc(&cpu.a)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_rr(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc         string
		arg          uint8
		want         uint8
		initialFlags Flag
		flags        Flag
	}{
		{desc: "rotates right", arg: 0x02, want: 0x01},
		{desc: "adds carry bit", arg: 0x02, want: 0x81, initialFlags: carryFlag},
		{desc: "sets carry flag", arg: 0x01, want: 0, flags: carryFlag | zeroFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(tC.initialFlags)
			cpu.a = tC.arg
			cpu.rr(&cpu.a)
			assert.Equal(t, tC.want, cpu.a)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}

func TestCPU_shifts(t *testing.T) {
	cpu, _ := newTestCPU()

	t.Run("sla shifts out bit 7", func(t *testing.T) {
		cpu.f = 0
		cpu.a = 0x81
		cpu.sla(&cpu.a)
		assert.Equal(t, uint8(0x02), cpu.a)
		assert.Equal(t, uint8(carryFlag), cpu.f)
	})

	t.Run("sra keeps the sign bit", func(t *testing.T) {
		cpu.f = 0
		cpu.a = 0x81
		cpu.sra(&cpu.a)
		assert.Equal(t, uint8(0xC0), cpu.a)
		assert.Equal(t, uint8(carryFlag), cpu.f)
	})

	t.Run("srl clears the sign bit", func(t *testing.T) {
		cpu.f = 0
		cpu.a = 0x81
		cpu.srl(&cpu.a)
		assert.Equal(t, uint8(0x40), cpu.a)
		assert.Equal(t, uint8(carryFlag), cpu.f)
	})

	t.Run("swap exchanges nibbles", func(t *testing.T) {
		cpu.f = uint8(carryFlag)
		cpu.a = 0xA5
		cpu.swap(&cpu.a)
		assert.Equal(t, uint8(0x5A), cpu.a)
		assert.Equal(t, uint8(0), cpu.f)
	})
}

func TestCPU_testBit(t *testing.T) {
	cpu, _ := newTestCPU()

	cpu.f = 0
	cpu.testBit(3, 0x08)
	assert.Equal(t, uint8(halfCarryFlag), cpu.f)

	cpu.f = 0
	cpu.testBit(3, 0xF7)
	assert.Equal(t, uint8(zeroFlag|halfCarryFlag), cpu.f)
}

func TestCPU_addToHL(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc  string
		hl    uint16
		arg   uint16
		want  uint16
		flags Flag
	}{
		{desc: "adds", hl: 0x0102, arg: 0x0304, want: 0x0406},
		{desc: "sets half carry on bit 11", hl: 0x0FFF, arg: 0x0001, want: 0x1000, flags: halfCarryFlag},
		{desc: "sets carry on overflow", hl: 0x8000, arg: 0x8000, want: 0, flags: carryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.setHL(tC.hl)
			cpu.addToHL(tC.arg)
			assert.Equal(t, tC.want, cpu.getHL())
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}

	t.Run("keeps the zero flag", func(t *testing.T) {
		cpu.f = uint8(zeroFlag)
		cpu.setHL(0x0100)
		cpu.addToHL(0x0100)
		assert.Equal(t, uint8(zeroFlag), cpu.f)
	})
}

func TestCPU_addToSP(t *testing.T) {
	cpu, _ := newTestCPU()

	testCases := []struct {
		desc   string
		sp     uint16
		offset int8
		want   uint16
		flags  Flag
	}{
		{desc: "adds positive offset", sp: 0xFFF0, offset: 0x05, want: 0xFFF5},
		{desc: "adds negative offset", sp: 0xFFF0, offset: -0x10, want: 0xFFE0, flags: carryFlag},
		{desc: "flags come from the low byte", sp: 0x00FF, offset: 0x01, want: 0x0100, flags: halfCarryFlag | carryFlag},
		{desc: "half carry only", sp: 0x000F, offset: 0x01, want: 0x0010, flags: halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.sp = tC.sp
			got := cpu.addToSP(tC.offset)
			assert.Equal(t, tC.want, got)
			assert.Equal(t, uint8(tC.flags), cpu.f)
		})
	}
}
