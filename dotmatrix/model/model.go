// Package model enumerates the supported hardware revisions and their
// documented power-on state. The boot ROM is not emulated; instead the CPU
// registers, the divider seed and the I/O registers are set to the values
// each revision leaves behind when it hands control to the cartridge.
package model

import (
	"fmt"
	"strings"

	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
)

// Model identifies a hardware revision.
type Model int

const (
	// DMG is the standard Game Boy (DMG-ABC mainboards), the default.
	DMG Model = iota
	// DMG0 is the early Japan-only Game Boy revision.
	DMG0
	// MGB is the Game Boy Pocket.
	MGB
	// SGB is the Super Game Boy.
	SGB
	// SGB2 is the Super Game Boy 2.
	SGB2
)

var names = map[Model]string{
	DMG:  "DMG",
	DMG0: "DMG0",
	MGB:  "MGB",
	SGB:  "SGB",
	SGB2: "SGB2",
}

func (m Model) String() string {
	if n, ok := names[m]; ok {
		return n
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// FromString parses a model name (case insensitive).
func FromString(s string) (Model, error) {
	for m, n := range names {
		if strings.EqualFold(s, n) {
			return m, nil
		}
	}
	return DMG, fmt.Errorf("unknown hardware model %q", s)
}

// BootState holds the CPU register pairs and the divider counter seed at the
// moment the boot ROM jumps to 0x0100.
type BootState struct {
	AF, BC, DE, HL uint16
	SP, PC         uint16
	DIV            uint16
}

var bootStates = map[Model]BootState{
	DMG:  {AF: 0x01B0, BC: 0x0013, DE: 0x00D8, HL: 0x014D, DIV: 0xABC9},
	DMG0: {AF: 0x0100, BC: 0xFF13, DE: 0x00C1, HL: 0x8403, DIV: 0x182F},
	MGB:  {AF: 0xFFB0, BC: 0x0013, DE: 0x00D8, HL: 0x014D, DIV: 0xABC9},
	SGB:  {AF: 0x0100, BC: 0x0014, DE: 0x0000, HL: 0xC060, DIV: 0xD85F},
	SGB2: {AF: 0xFF00, BC: 0x0014, DE: 0x0000, HL: 0xC060, DIV: 0xD84F},
}

// Boot returns the power-on register state for the model.
// SP and PC are the same on every revision.
func (m Model) Boot() BootState {
	s, ok := bootStates[m]
	if !ok {
		s = bootStates[DMG]
	}
	s.SP = 0xFFFE
	s.PC = 0x0100
	return s
}

// IOValue is an I/O register seed applied at power-on.
type IOValue struct {
	Address uint16
	Value   byte
}

// commonIO holds the register values shared by all DMG-family revisions.
var commonIO = []IOValue{
	{addr.P1, 0xCF},
	{addr.TAC, 0xF8},
	{addr.IF, 0xE1},
	{addr.LCDC, 0x91},
	{addr.STAT, 0x87},
	{addr.SCY, 0x00},
	{addr.SCX, 0x00},
	{addr.LYC, 0x00},
	{addr.BGP, 0xFC},
	{addr.OBP0, 0xFF},
	{addr.OBP1, 0xFF},
	{addr.WY, 0x00},
	{addr.WX, 0x00},
	{addr.NR10, 0x80},
	{addr.NR11, 0xBF},
	{addr.NR12, 0xF3},
	{addr.NR14, 0xBF},
	{addr.NR21, 0x3F},
	{addr.NR22, 0x00},
	{addr.NR24, 0xBF},
	{addr.NR30, 0x7F},
	{addr.NR31, 0xFF},
	{addr.NR32, 0x9F},
	{addr.NR34, 0xBF},
	{addr.NR41, 0xFF},
	{addr.NR42, 0x00},
	{addr.NR43, 0x00},
	{addr.NR44, 0xBF},
	{addr.NR50, 0x77},
	{addr.NR51, 0xF3},
	{addr.NR52, 0xF1},
}

// IOValues returns the I/O register seeds for the model, common values first
// followed by per-revision overrides.
func (m Model) IOValues() []IOValue {
	out := make([]IOValue, len(commonIO))
	copy(out, commonIO)
	switch m {
	case SGB:
		out = append(out, IOValue{addr.STAT, 0x85}, IOValue{addr.NR52, 0xF0})
	case SGB2:
		out = append(out, IOValue{addr.NR52, 0xF0})
	}
	return out
}
