package cpu

import "github.com/aferran/go-dotmatrix/dotmatrix/bit"

// 8-bit arithmetic

func (c *CPU) addToA(value uint8) {
	result := uint16(c.a) + uint16(value)
	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.a&0x0F)+(value&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, result > 0xFF)
	c.a = uint8(result)
}

func (c *CPU) adcToA(value uint8) {
	carry := c.flagToBit(carryFlag)
	result := uint16(c.a) + uint16(value) + uint16(carry)
	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.a&0x0F)+(value&0x0F)+carry > 0x0F)
	c.setFlagToCondition(carryFlag, result > 0xFF)
	c.a = uint8(result)
}

func (c *CPU) subFromA(value uint8) {
	c.compareA(value)
	c.a -= value
}

func (c *CPU) sbcFromA(value uint8) {
	carry := c.flagToBit(carryFlag)
	result := int16(c.a) - int16(value) - int16(carry)
	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, int16(c.a&0x0F)-int16(value&0x0F)-int16(carry) < 0)
	c.setFlagToCondition(carryFlag, result < 0)
	c.a = uint8(result)
}

func (c *CPU) andA(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) orA(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) xorA(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// compareA sets the flags for A - value without storing the result.
func (c *CPU) compareA(value uint8) {
	c.setFlagToCondition(zeroFlag, c.a == value)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, c.a&0x0F < value&0x0F)
	c.setFlagToCondition(carryFlag, c.a < value)
}

func (c *CPU) inc(reg *uint8) {
	*reg++
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *reg&0x0F == 0)
}

func (c *CPU) dec(reg *uint8) {
	*reg--
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *reg&0x0F == 0x0F)
}

// daa adjusts A after a BCD add or subtract, using the sub, half-carry and
// carry flags to decide which nibbles to correct.
func (c *CPU) daa() {
	a := uint16(c.a)

	if !c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
		if c.isSetFlag(carryFlag) || a > 0x9F {
			a += 0x60
		}
	} else {
		if c.isSetFlag(halfCarryFlag) {
			a = (a - 0x06) & 0xFF
		}
		if c.isSetFlag(carryFlag) {
			a -= 0x60
		}
	}

	c.resetFlag(halfCarryFlag)
	if a&0x100 != 0 {
		// carry is sticky: DAA sets it but never clears it
		c.setFlag(carryFlag)
	}

	c.a = uint8(a)
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

// 16-bit arithmetic

// addToHL adds a 16-bit value into HL. Takes the extra machine cycle the
// hardware spends on the high-byte add.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagToCondition(carryFlag, result > 0xFFFF)
	c.setHL(uint16(result))
	c.internalCycle()
}

// addToSP computes SP plus a signed offset. The half-carry and carry flags
// come from the low byte only, as for an 8-bit add.
func (c *CPU) addToSP(offset int8) uint16 {
	value := uint16(uint8(offset))
	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (c.sp&0x0F)+(value&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, (c.sp&0xFF)+value > 0xFF)
	return uint16(int32(c.sp) + int32(offset))
}

// rotates and shifts

func (c *CPU) rlc(reg *uint8) {
	carry := *reg >> 7
	*reg = *reg<<1 | carry
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

func (c *CPU) rl(reg *uint8) {
	carry := *reg >> 7
	*reg = *reg<<1 | c.flagToBit(carryFlag)
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

func (c *CPU) rrc(reg *uint8) {
	carry := *reg & 1
	*reg = *reg>>1 | carry<<7
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

func (c *CPU) rr(reg *uint8) {
	carry := *reg & 1
	*reg = *reg>>1 | c.flagToBit(carryFlag)<<7
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

func (c *CPU) sla(reg *uint8) {
	carry := *reg >> 7
	*reg <<= 1
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

// sra shifts right keeping bit 7 (arithmetic shift).
func (c *CPU) sra(reg *uint8) {
	carry := *reg & 1
	*reg = *reg>>1 | *reg&0x80
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

func (c *CPU) srl(reg *uint8) {
	carry := *reg & 1
	*reg >>= 1
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry != 0)
}

func (c *CPU) swap(reg *uint8) {
	*reg = *reg<<4 | *reg>>4
	c.setFlagToCondition(zeroFlag, *reg == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// testBit sets the zero flag from the chosen bit of value.
func (c *CPU) testBit(index uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// stack

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.writeCycle(c.sp, bit.High(value))
	c.sp--
	c.writeCycle(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.readCycle(c.sp)
	c.sp++
	high := c.readCycle(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// control flow

func (c *CPU) jr() {
	offset := c.readSignedImmediate()
	c.internalCycle()
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) jrIf(condition bool) int {
	if condition {
		c.jr()
		return 12
	}
	// the operand byte is read either way
	c.readSignedImmediate()
	return 8
}

func (c *CPU) jp() {
	address := c.readImmediateWord()
	c.internalCycle()
	c.pc = address
}

func (c *CPU) jpIf(condition bool) int {
	if condition {
		c.jp()
		return 16
	}
	c.readImmediateWord()
	return 12
}

func (c *CPU) call() {
	address := c.readImmediateWord()
	c.internalCycle()
	c.pushStack(c.pc)
	c.pc = address
}

func (c *CPU) callIf(condition bool) int {
	if condition {
		c.call()
		return 24
	}
	c.readImmediateWord()
	return 12
}

func (c *CPU) ret() {
	c.pc = c.popStack()
	c.internalCycle()
}

// retIf spends a machine cycle on the condition check before the pop, which
// is why conditional returns cost one cycle more than RET.
func (c *CPU) retIf(condition bool) int {
	c.internalCycle()
	if condition {
		c.ret()
		return 20
	}
	return 8
}

func (c *CPU) rst(vector uint16) {
	c.internalCycle()
	c.pushStack(c.pc)
	c.pc = vector
}
