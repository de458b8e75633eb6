// Package addr collects the memory-mapped register addresses of the DMG.
package addr

// lcd registers
const (
	// LCDC is the LCD Control register.
	LCDC uint16 = 0xFF40
	// STAT is the LCD Status register.
	STAT uint16 = 0xFF41
	// SCY is the background Scroll Y register.
	SCY uint16 = 0xFF42
	// SCX is the background Scroll X register.
	SCX uint16 = 0xFF43
	// LY is the current scanline (readonly).
	LY uint16 = 0xFF44
	// LYC is the LY Compare register.
	LYC uint16 = 0xFF45
	// DMA starts an OAM DMA transfer when written.
	DMA uint16 = 0xFF46
	// BGP is the background palette register.
	BGP uint16 = 0xFF47
	// OBP0 is the first object palette register.
	OBP0 uint16 = 0xFF48
	// OBP1 is the second object palette register.
	OBP1 uint16 = 0xFF49
	// WY is the window Y position register.
	WY uint16 = 0xFF4A
	// WX is the window X position register (offset by 7).
	WX uint16 = 0xFF4B
)

// Audio registers (APU).
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	// Channel 1 - square wave with sweep
	NR10 uint16 = 0xFF10 // sweep
	NR11 uint16 = 0xFF11 // length timer & duty cycle
	NR12 uint16 = 0xFF12 // volume & envelope
	NR13 uint16 = 0xFF13 // period low
	NR14 uint16 = 0xFF14 // period high & control

	// Channel 2 - square wave
	NR21 uint16 = 0xFF16
	NR22 uint16 = 0xFF17
	NR23 uint16 = 0xFF18
	NR24 uint16 = 0xFF19

	// Channel 3 - wave
	NR30 uint16 = 0xFF1A // DAC enable
	NR31 uint16 = 0xFF1B // length timer
	NR32 uint16 = 0xFF1C // output level
	NR33 uint16 = 0xFF1D // period low
	NR34 uint16 = 0xFF1E // period high & control

	// Channel 4 - noise
	NR41 uint16 = 0xFF20
	NR42 uint16 = 0xFF21
	NR43 uint16 = 0xFF22
	NR44 uint16 = 0xFF23

	// Global sound control
	NR50 uint16 = 0xFF24 // master volume & VIN panning
	NR51 uint16 = 0xFF25 // sound panning
	NR52 uint16 = 0xFF26 // sound on/off and channel status

	// Wave pattern RAM (32 samples, 4-bit each)
	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// OAM (Object Attribute Memory) - sprite data
const (
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each).
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of OAM memory.
	OAMEnd uint16 = 0xFE9F
)

// tile data and tile maps
const (
	// TileData0 is the start of the unsigned tile data region (tiles 0-255).
	TileData0 uint16 = 0x8000
	// TileData1 is the start of the signed tile data region (tiles -128 to -1).
	TileData1 uint16 = 0x8800
	// TileData2 is the continuation of the signed tile data region (tiles 0-127).
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0.
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1.
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address of the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address of the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 selects and reads the joypad button matrix.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB (serial transfer data, 0xFF01)
	//
	// Holds the 8-bit data to be transmitted. Bits shift out MSB-first during
	// a transfer; after completion SB contains the byte received from the peer
	// (0xFF when nothing is connected).
	SB uint16 = 0xFF01
	// SC (serial transfer control, 0xFF02)
	//  - Bit 7 (start): writing 1 starts an 8-bit transfer; hardware clears it
	//    when the transfer completes.
	//  - Bit 0 (clock): 1=internal clock (~8192 Hz bit clock on DMG),
	//    0=external clock driven by the peer.
	//  - On completion the Serial interrupt (IF bit 3) is requested.
	SC uint16 = 0xFF02
)

// timer
const (
	// DIV is the divider register, the upper byte of the internal 16-bit
	// counter. Writing any value resets the whole counter.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Requests an interrupt on overflow.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register, loaded into TIMA after overflow.
	TMA uint16 = 0xFF06
	// TAC is the timer control register (enable bit + 2-bit clock select).
	TAC uint16 = 0xFF07
)
