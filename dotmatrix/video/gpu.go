package video

import (
	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/bit"
	"github.com/aferran/go-dotmatrix/dotmatrix/interrupt"
	"github.com/aferran/go-dotmatrix/dotmatrix/memory"
)

type GpuMode int

const (
	oamRead GpuMode = iota
	vramRead
	hblank
	vblank
)

// statModeBits maps internal modes to the STAT mode field encoding.
var statModeBits = [4]byte{2, 3, 0, 1}

const (
	hblankCycles       = 204
	oamScanlineCycles  = 80
	vramScanlineCycles = 172
	scanlineCycles     = oamScanlineCycles + vramScanlineCycles + hblankCycles

	visibleLines = 144
	totalLines   = 154
)

// LCDC (LCD Control) register bits
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On)

type lcdcFlag uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect    lcdcFlag = 6
	windowDisplayEnable    lcdcFlag = 5
	bgWindowTileDataSelect lcdcFlag = 4
	bgTileMapDisplaySelect lcdcFlag = 3
	spriteSize             lcdcFlag = 2
	spriteDisplayEnable    lcdcFlag = 1
	bgDisplay              lcdcFlag = 0
)

// STAT interrupt select bits
const (
	statHBlankIRQ      = 3
	statVBlankIRQ      = 4
	statOAMIRQ         = 5
	statCoincidenceIRQ = 6
)

// shades maps a 2-bit palette output to a display color.
var shades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// GPU owns the LCD registers and renders the background and window into a
// framebuffer one scanline at a time, stepping through the hardware's
// OAM scan / pixel transfer / hblank / vblank mode cycle.
type GPU struct {
	bus         *memory.MMU
	framebuffer *FrameBuffer

	mode   GpuMode
	cycles int

	lcdc byte
	stat byte // writable interrupt-select bits only (3-6)
	scy  byte
	scx  byte
	line byte
	lyc  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	windowLine int
}

// NewGpu creates a GPU reading tile data through the given memory unit.
// The caller attaches it to the bus.
func NewGpu(bus *memory.MMU) *GPU {
	return &GPU{
		bus:         bus,
		framebuffer: NewFrameBuffer(),
		mode:        oamRead,
	}
}

// Framebuffer returns the render target. Its contents are stable for a
// full frame after each vblank.
func (g *GPU) Framebuffer() *FrameBuffer {
	return g.framebuffer
}

// Seed forces the STAT register to a raw post-boot value, including the
// normally read-only mode bits.
func (g *GPU) Seed(stat byte) {
	g.stat = stat & 0x78
	switch stat & 0x03 {
	case 0:
		g.mode = hblank
	case 1:
		g.mode = vblank
	case 2:
		g.mode = oamRead
	case 3:
		g.mode = vramRead
	}
	g.cycles = 0
}

// Tick advances the mode state machine by the given t-cycles.
func (g *GPU) Tick(cycles int) {
	if !bit.IsSet(uint8(lcdDisplayEnable), g.lcdc) {
		return
	}

	g.cycles += cycles
	for g.step() {
	}
}

// step consumes one mode transition, returning false when not enough
// cycles are banked to finish the current mode.
func (g *GPU) step() bool {
	switch g.mode {
	case oamRead:
		if g.cycles < oamScanlineCycles {
			return false
		}
		g.cycles -= oamScanlineCycles
		g.mode = vramRead
	case vramRead:
		if g.cycles < vramScanlineCycles {
			return false
		}
		g.cycles -= vramScanlineCycles
		g.drawScanline()
		g.setMode(hblank)
	case hblank:
		if g.cycles < hblankCycles {
			return false
		}
		g.cycles -= hblankCycles
		g.line++
		g.compareLYC()

		if g.line == visibleLines {
			g.setMode(vblank)
			g.bus.RequestInterrupt(interrupt.VBlank)
		} else {
			g.setMode(oamRead)
		}
	case vblank:
		if g.cycles < scanlineCycles {
			return false
		}
		g.cycles -= scanlineCycles
		g.line++

		if g.line == totalLines {
			g.line = 0
			g.windowLine = 0
			g.compareLYC()
			g.setMode(oamRead)
		} else {
			g.compareLYC()
		}
	}
	return true
}

// setMode switches mode and raises the STAT interrupt when the new mode's
// select bit is enabled.
func (g *GPU) setMode(mode GpuMode) {
	g.mode = mode

	var irqBit uint8
	switch mode {
	case hblank:
		irqBit = statHBlankIRQ
	case vblank:
		irqBit = statVBlankIRQ
	case oamRead:
		irqBit = statOAMIRQ
	default:
		return
	}
	if bit.IsSet(irqBit, g.stat) {
		g.bus.RequestInterrupt(interrupt.LCDSTAT)
	}
}

// compareLYC requests the STAT interrupt on an LY=LYC match when enabled.
func (g *GPU) compareLYC() {
	if g.line == g.lyc && bit.IsSet(statCoincidenceIRQ, g.stat) {
		g.bus.RequestInterrupt(interrupt.LCDSTAT)
	}
}

func (g *GPU) ReadRegister(address uint16) byte {
	switch address {
	case addr.LCDC:
		return g.lcdc
	case addr.STAT:
		result := byte(0x80) | g.stat
		if g.line == g.lyc {
			result = bit.Set(2, result)
		}
		if bit.IsSet(uint8(lcdDisplayEnable), g.lcdc) {
			result |= statModeBits[g.mode]
		}
		return result
	case addr.SCY:
		return g.scy
	case addr.SCX:
		return g.scx
	case addr.LY:
		return g.line
	case addr.LYC:
		return g.lyc
	case addr.BGP:
		return g.bgp
	case addr.OBP0:
		return g.obp0
	case addr.OBP1:
		return g.obp1
	case addr.WY:
		return g.wy
	case addr.WX:
		return g.wx
	default:
		return 0xFF
	}
}

func (g *GPU) WriteRegister(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		wasEnabled := bit.IsSet(uint8(lcdDisplayEnable), g.lcdc)
		g.lcdc = value
		enabled := bit.IsSet(uint8(lcdDisplayEnable), g.lcdc)
		if wasEnabled && !enabled {
			// turning the LCD off resets the scan position
			g.line = 0
			g.windowLine = 0
			g.cycles = 0
			g.mode = hblank
			g.framebuffer.Clear(WhiteColor)
		} else if !wasEnabled && enabled {
			g.cycles = 0
			g.mode = oamRead
			g.compareLYC()
		}
	case addr.STAT:
		// only the interrupt select bits are writable
		g.stat = value & 0x78
	case addr.SCY:
		g.scy = value
	case addr.SCX:
		g.scx = value
	case addr.LY:
		// read-only
	case addr.LYC:
		g.lyc = value
		g.compareLYC()
	case addr.BGP:
		g.bgp = value
	case addr.OBP0:
		g.obp0 = value
	case addr.OBP1:
		g.obp1 = value
	case addr.WY:
		g.wy = value
	case addr.WX:
		g.wx = value
	}
}

func (g *GPU) drawScanline() {
	if !bit.IsSet(uint8(bgDisplay), g.lcdc) {
		for x := uint(0); x < FramebufferWidth; x++ {
			g.framebuffer.SetPixel(x, uint(g.line), WhiteColor)
		}
		return
	}

	windowOnLine := bit.IsSet(uint8(windowDisplayEnable), g.lcdc) &&
		g.line >= g.wy && g.wx <= 166
	windowDrawn := false

	for x := 0; x < FramebufferWidth; x++ {
		var colorIndex uint8
		if windowOnLine && x >= int(g.wx)-7 {
			colorIndex = g.windowPixel(x)
			windowDrawn = true
		} else {
			colorIndex = g.backgroundPixel(x)
		}

		shade := bit.ExtractBits(g.bgp, colorIndex*2+1, colorIndex*2)
		g.framebuffer.SetPixel(uint(x), uint(g.line), shades[shade])
	}

	if windowDrawn {
		g.windowLine++
	}
}

func (g *GPU) backgroundPixel(x int) uint8 {
	mapBase := addr.TileMap0
	if bit.IsSet(uint8(bgTileMapDisplaySelect), g.lcdc) {
		mapBase = addr.TileMap1
	}
	bgX := (x + int(g.scx)) & 0xFF
	bgY := (int(g.line) + int(g.scy)) & 0xFF
	return g.tilePixel(mapBase, bgX, bgY)
}

func (g *GPU) windowPixel(x int) uint8 {
	mapBase := addr.TileMap0
	if bit.IsSet(uint8(windowTileMapSelect), g.lcdc) {
		mapBase = addr.TileMap1
	}
	winX := x - (int(g.wx) - 7)
	return g.tilePixel(mapBase, winX, g.windowLine)
}

// tilePixel resolves a 2-bit color index from the tile map at the given
// map-space coordinates, honoring the LCDC tile data addressing mode.
func (g *GPU) tilePixel(mapBase uint16, x, y int) uint8 {
	tileNumber := g.bus.ReadVRAM(mapBase + uint16((y/8)*32+x/8))

	var tileAddress uint16
	if bit.IsSet(uint8(bgWindowTileDataSelect), g.lcdc) {
		tileAddress = addr.TileData0 + uint16(tileNumber)*16
	} else {
		// signed indexing around 0x9000
		tileAddress = uint16(0x9000 + int(int8(tileNumber))*16)
	}

	rowOffset := uint16(y%8) * 2
	low := g.bus.ReadVRAM(tileAddress + rowOffset)
	high := g.bus.ReadVRAM(tileAddress + rowOffset + 1)

	pixelBit := uint8(7 - x%8)
	return bit.Value(pixelBit, high)<<1 | bit.Value(pixelBit, low)
}
