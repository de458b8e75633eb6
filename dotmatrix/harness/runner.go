// Package harness runs test ROMs headlessly and reports their verdict.
//
// Two reporting conventions are recognized: text pushed out of the serial
// port, and the RAM-based protocol where results live at 0xA000 in external
// RAM. Either one can end a run early; otherwise the run stops at the frame
// budget.
package harness

import (
	"log/slog"
	"strings"

	"github.com/aferran/go-dotmatrix/dotmatrix"
	"github.com/aferran/go-dotmatrix/dotmatrix/model"
)

// Status is the verdict of a test ROM run.
type Status int

const (
	StatusUnknown Status = iota
	StatusPassed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a run.
type Result struct {
	Status Status
	// Output is the text the ROM reported, from the serial port or from
	// the RAM protocol area.
	Output string
	// Frames is how many full frames ran before the verdict.
	Frames int
	// FrameHash fingerprints the final framebuffer contents.
	FrameHash uint64
}

const (
	ramStatusAddr    = 0xA000
	ramSignatureAddr = 0xA001
	ramTextAddr      = 0xA004

	ramStatusRunning = 0x80
	ramStatusPassed  = 0x00
)

var ramSignature = [3]byte{0xDE, 0xB0, 0x61}

// Runner drives an emulator instance until a test ROM reports a result.
type Runner struct {
	dmg       *dotmatrix.DMG
	serialLog strings.Builder
	maxFrames int
}

type Option func(*Runner)

// WithMaxFrames caps the run length. The default is 1200 frames, about 20
// seconds of emulated time.
func WithMaxFrames(frames int) Option {
	return func(r *Runner) { r.maxFrames = frames }
}

// New creates a runner for the given ROM. Hardware model selection follows
// the emulator default unless hw differs from model.DMG.
func New(rom []byte, hw model.Model, opts ...Option) (*Runner, error) {
	r := &Runner{maxFrames: 1200}
	for _, opt := range opts {
		opt(r)
	}

	dmg, err := dotmatrix.New(rom,
		dotmatrix.WithModel(hw),
		dotmatrix.WithSerialListener(func(b byte) {
			r.serialLog.WriteByte(b)
		}))
	if err != nil {
		return nil, err
	}
	r.dmg = dmg

	return r, nil
}

// Run executes frames until the ROM reports a verdict or the frame budget
// runs out. A budget overrun with no verdict returns StatusUnknown.
func (r *Runner) Run() *Result {
	result := &Result{Status: StatusUnknown}

	for frame := 0; frame < r.maxFrames; frame++ {
		r.dmg.RunUntilFrame()
		result.Frames = frame + 1

		if status, ok := r.checkSerial(); ok {
			result.Status = status
			break
		}
		if status, ok := r.checkRAM(); ok {
			result.Status = status
			break
		}
	}

	result.Output = r.output()
	result.FrameHash = r.dmg.GetCurrentFrame().Hash()

	slog.Debug("test ROM run finished",
		"status", result.Status,
		"frames", result.Frames,
		"cycles", r.dmg.CPU().GetCycles())

	return result
}

// Snapshot renders the final framebuffer as text, one rune per pixel.
func (r *Runner) Snapshot() string {
	return r.dmg.GetCurrentFrame().Snapshot()
}

func (r *Runner) checkSerial() (Status, bool) {
	text := r.serialLog.String()
	if strings.Contains(text, "Passed") {
		return StatusPassed, true
	}
	if strings.Contains(text, "Failed") {
		return StatusFailed, true
	}
	return StatusUnknown, false
}

func (r *Runner) checkRAM() (Status, bool) {
	for i, want := range ramSignature {
		if r.dmg.Read(uint16(ramSignatureAddr+i)) != want {
			return StatusUnknown, false
		}
	}

	status := r.dmg.Read(ramStatusAddr)
	if status == ramStatusRunning {
		return StatusUnknown, false
	}
	if status == ramStatusPassed {
		return StatusPassed, true
	}
	return StatusFailed, true
}

// output prefers serial text and falls back to the RAM protocol text area.
func (r *Runner) output() string {
	if r.serialLog.Len() > 0 {
		return r.serialLog.String()
	}

	for i, want := range ramSignature {
		if r.dmg.Read(uint16(ramSignatureAddr+i)) != want {
			return ""
		}
	}

	var sb strings.Builder
	for addr := uint16(ramTextAddr); addr < 0xC000; addr++ {
		b := r.dmg.Read(addr)
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String()
}
