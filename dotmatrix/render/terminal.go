// Package render draws emulator output into a terminal using tcell.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/aferran/go-dotmatrix/dotmatrix"
	"github.com/aferran/go-dotmatrix/dotmatrix/memory"
	"github.com/aferran/go-dotmatrix/dotmatrix/video"
)

const (
	scaleX    = 2
	scaleY    = 1
	frameTime = time.Second / 60
)

var shadeChars = []rune{'█', '▓', '▒', '░'}

type TerminalRenderer struct {
	screen tcell.Screen
	dmg    *dotmatrix.DMG

	// key presses cross from the input goroutine to the frame loop over
	// this channel, so the emulator is only ever touched between frames
	keys chan memory.JoypadKey
	quit chan struct{}
}

func NewTerminalRenderer(dmg *dotmatrix.DMG) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &TerminalRenderer{
		screen: screen,
		dmg:    dmg,
		keys:   make(chan memory.JoypadKey, 8),
		quit:   make(chan struct{}),
	}, nil
}

func (t *TerminalRenderer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		t.screen.Fini()
	}()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			t.drainKeys()
			t.dmg.RunUntilFrame()
			t.render()
			t.screen.Show()
		case <-t.quit:
			return nil
		case <-signals:
			slog.Info("Received signal to stop")
			return nil
		}
	}
}

// drainKeys injects every queued key press before the next frame runs.
func (t *TerminalRenderer) drainKeys() {
	for {
		select {
		case key := <-t.keys:
			t.dmg.Press(key)
		default:
			return
		}
	}
}

func (t *TerminalRenderer) handleInput() {
	for {
		// PollEvent returns nil once the screen is finalized
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape:
				close(t.quit)
				return
			case tcell.KeyEnter:
				t.queueKey(memory.JoypadStart)
			case tcell.KeyRight:
				t.queueKey(memory.JoypadRight)
			case tcell.KeyLeft:
				t.queueKey(memory.JoypadLeft)
			case tcell.KeyUp:
				t.queueKey(memory.JoypadUp)
			case tcell.KeyDown:
				t.queueKey(memory.JoypadDown)
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'a':
					t.queueKey(memory.JoypadA)
				case 's':
					t.queueKey(memory.JoypadB)
				case 'q':
					t.queueKey(memory.JoypadSelect)
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *TerminalRenderer) queueKey(key memory.JoypadKey) {
	select {
	case t.keys <- key:
	default:
		// frame loop has fallen behind, drop the press
	}
}

func (t *TerminalRenderer) render() {
	fb := t.dmg.GetCurrentFrame()
	frame := fb.ToSlice()

	t.screen.Clear()

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			pixel := frame[y*video.FramebufferWidth+x]
			shade := 3 - (pixel&0xFF)/64
			if shade > 3 {
				shade = 3
			}
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			char := shadeChars[shade]
			screenX := x * scaleX
			screenY := y * scaleY
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}
