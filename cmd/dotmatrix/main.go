package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/aferran/go-dotmatrix/dotmatrix"
	"github.com/aferran/go-dotmatrix/dotmatrix/harness"
	"github.com/aferran/go-dotmatrix/dotmatrix/model"
	"github.com/aferran/go-dotmatrix/dotmatrix/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A Game Boy (DMG) emulation core"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "model",
			Usage: "Hardware revision to boot as (dmg, dmg0, mgb, sgb, sgb2)",
			Value: "dmg",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run (headless and test modes)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "test",
			Usage: "Run the ROM as a test ROM and report its verdict",
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write a text snapshot of the final frame to this file",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	hw, err := model.FromString(c.String("model"))
	if err != nil {
		return err
	}

	if c.Bool("test") {
		return runTest(c, rom, hw)
	}

	dmg, err := dotmatrix.New(rom, dotmatrix.WithModel(hw))
	if err != nil {
		return err
	}

	slog.Info("Loaded ROM",
		"title", dmg.Cart().Title(),
		"type", dmg.Cart().TypeName(),
		"model", hw)

	if c.Bool("headless") {
		return runHeadless(c, dmg)
	}

	renderer, err := render.NewTerminalRenderer(dmg)
	if err != nil {
		return err
	}
	return renderer.Run()
}

func runTest(c *cli.Context, rom []byte, hw model.Model) error {
	var opts []harness.Option
	if frames := c.Int("frames"); frames > 0 {
		opts = append(opts, harness.WithMaxFrames(frames))
	}

	runner, err := harness.New(rom, hw, opts...)
	if err != nil {
		return err
	}

	result := runner.Run()

	fmt.Printf("status: %s\n", result.Status)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Printf("frame hash: %016x\n", result.FrameHash)
	if result.Output != "" {
		fmt.Printf("output:\n%s\n", result.Output)
	}

	if path := c.String("snapshot"); path != "" {
		if err := os.WriteFile(path, []byte(runner.Snapshot()), 0644); err != nil {
			return err
		}
	}

	if result.Status != harness.StatusPassed {
		return fmt.Errorf("test ROM did not pass (status: %s)", result.Status)
	}
	return nil
}

func runHeadless(c *cli.Context, dmg *dotmatrix.DMG) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}

	for i := 0; i < frames; i++ {
		dmg.RunUntilFrame()
		if i%60 == 0 {
			slog.Debug("Frame progress", "completed", i+1, "total", frames)
		}
	}

	slog.Info("Headless execution completed",
		"frames", frames,
		"cycles", dmg.CPU().GetCycles())

	if path := c.String("snapshot"); path != "" {
		snapshot := dmg.GetCurrentFrame().Snapshot()
		if err := os.WriteFile(path, []byte(snapshot), 0644); err != nil {
			return err
		}
		slog.Info("Saved frame snapshot", "path", path)
	}

	return nil
}
