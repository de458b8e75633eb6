package video

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// GBColor is a display color in ARGB order. The DMG has exactly four shades.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// Display dimensions in pixels.
const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// shadeRunes maps the four shades to characters, darkest last.
var shadeRunes = map[GBColor]rune{
	WhiteColor:     ' ',
	LightGreyColor: '░',
	DarkGreyColor:  '▒',
	BlackColor:     '█',
}

type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the display size, cleared to white.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferWidth*FramebufferHeight),
	}
	fb.Clear(WhiteColor)
	return fb
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Clear fills the whole buffer with one color.
func (fb *FrameBuffer) Clear(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice returns the backing pixel slice, row-major.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Hash returns a digest of the pixel contents, stable across runs. Test
// harnesses compare it against known-good frames.
func (fb *FrameBuffer) Hash() uint64 {
	digest := xxhash.New()
	var px [4]byte
	for _, p := range fb.buffer {
		binary.LittleEndian.PutUint32(px[:], p)
		digest.Write(px[:])
	}
	return digest.Sum64()
}

// Snapshot renders the buffer as text, one rune per pixel. Useful for
// eyeballing output in headless runs.
func (fb *FrameBuffer) Snapshot() string {
	var sb strings.Builder
	for y := uint(0); y < fb.height; y++ {
		for x := uint(0); x < fb.width; x++ {
			r, ok := shadeRunes[GBColor(fb.GetPixel(x, y))]
			if !ok {
				r = '?'
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
