// Package serial implements the link-port side of the SB/SC registers.
package serial

import (
	"log/slog"

	"github.com/aferran/go-dotmatrix/dotmatrix/addr"
	"github.com/aferran/go-dotmatrix/dotmatrix/bit"
)

// LogSink is a serial device with no peer attached: outgoing bytes are logged
// as text and reads shift in 0xFF. Test ROMs report their results over the
// link port, so this is enough to run them headless.
type LogSink struct {
	irqHandler     func()
	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	// settings
	immediate bool
	defaultRX byte // value shifted into SB when no peer is connected
	listener  func(byte)

	// line buffer for readable log output
	line []byte
}

// LogSinkOption configures a LogSink.
type LogSinkOption func(*LogSink)

// WithFixedTiming makes transfers complete after a fixed countdown
// (~4096 CPU cycles per byte on DMG) instead of immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithListener registers a callback invoked with every byte the program
// sends, before any line buffering. Used by the test-ROM harness to capture
// raw output.
func WithListener(fn func(byte)) LogSinkOption { return func(s *LogSink) { s.listener = fn } }

// NewLogSink creates a logging serial device. The irq function is called when
// a transfer completes and should request the Serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Write handles writes to SB and SC.
func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	default:
		panic("serial.LogSink: invalid write address")
	}
}

// Read handles reads of SB and SC.
func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		// only the start and clock-select bits exist, the rest read as 1
		return s.sc | 0x7E
	default:
		panic("serial.LogSink: invalid read address")
	}
}

// Tick advances an in-flight transfer by the given number of clock cycles.
func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

// Reset returns the port to its power-on state.
func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
	s.line = s.line[:0]
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// a transfer starts when bit 7 (start) and bit 0 (internal clock) of SC
	// are both set. With an external clock and no peer, nothing ever clocks
	// the shift register, matching real hardware with no cable attached.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if s.listener != nil {
		s.listener(b)
	}

	// log the outgoing byte as text; buffer until newline for readability
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = 4096
}

func (s *LogSink) completeTransfer() {
	s.sb = s.defaultRX
	// hardware clears the start bit to signal completion
	s.sc = bit.Clear(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
