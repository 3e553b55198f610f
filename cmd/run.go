package cmd

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/faiface/pixel/pixelgl"
	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/c8/internal/chip8"
	"github.com/bradford-hamilton/c8/internal/config"
	"github.com/bradford-hamilton/c8/internal/pixel"
)

// refreshRate drives EmulateCycle; the timers decrement once per cycle, so
// 60 cycles per second gives the canonical 60 Hz timer cadence.
const refreshRate = 60

var (
	flagConfig     string
	flagSpeed      uint
	flagFg         string
	flagBg         string
	flagShiftQuirk bool
	flagIndexQuirk bool
)

// runCmd runs the c8 virtual machine until the window is closed
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run the c8 emulator",
	Long:  "Run `c8 run path/to/rom` to open a window and start the ROM. Space pauses, Backspace resets.",
	Args:  cobra.ExactArgs(1),
	RunE:  runC8,
}

func init() {
	runCmd.Flags().StringVar(&flagConfig, "config", "", "path to a TOML config file")
	runCmd.Flags().UintVar(&flagSpeed, "speed", 0, "instructions per cycle (1-100, overrides config)")
	runCmd.Flags().StringVar(&flagFg, "fg", "", "foreground color as RRGGBB hex (overrides config)")
	runCmd.Flags().StringVar(&flagBg, "bg", "", "background color as RRGGBB hex (overrides config)")
	runCmd.Flags().BoolVar(&flagShiftQuirk, "shift-quirk", false, "8XY6/8XYE copy VY into VX before shifting")
	runCmd.Flags().BoolVar(&flagIndexQuirk, "index-quirk", false, "FX55/FX65 leave I incremented by X+1")
}

func runC8(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("speed") {
		cfg.Speed = flagSpeed
	}
	if flagFg != "" {
		cfg.Fg = flagFg
	}
	if flagBg != "" {
		cfg.Bg = flagBg
	}
	if flagShiftQuirk {
		cfg.Quirks.ShiftSourceY = true
	}
	if flagIndexQuirk {
		cfg.Quirks.IndexIncrement = true
	}

	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read rom file %s: %w", args[0], err)
	}

	fg, err := decodeColor(cfg.Fg)
	if err != nil {
		return fmt.Errorf("foreground color: %w", err)
	}
	bg, err := decodeColor(cfg.Bg)
	if err != nil {
		return fmt.Errorf("background color: %w", err)
	}

	vm := chip8.New()
	vm.SetQuirks(cfg.VMQuirks())
	vm.SetSpeed(cfg.Speed)
	if err := vm.LoadROM(rom); err != nil {
		return err
	}

	// pixelgl needs the main thread; Run blocks until the loop returns.
	pixelgl.Run(func() {
		if err := runLoop(vm, rom, cfg.Speed, fg, bg); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	})
	return nil
}

// runLoop is the host driver: it owns the window and is the single writer of
// VM state. Every tick it samples key edges, runs a cycle, and renders the
// framebuffer when the VM says it changed.
func runLoop(vm *chip8.VM, rom []byte, speed uint, fg, bg color.RGBA) error {
	win, err := pixel.NewWindow("c8", fg, bg)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second / refreshRate)
	defer ticker.Stop()

	for range ticker.C {
		if win.Closed() {
			break
		}

		if win.JustPressed(pixelgl.KeySpace) {
			vm.SetPaused(!vm.Paused())
		}
		if win.JustPressed(pixelgl.KeyBackspace) {
			vm.Reset()
			vm.SetSpeed(speed)
			if err := vm.LoadROM(rom); err != nil {
				return err
			}
		}

		win.ForwardKeys(vm.KeyPress, vm.KeyRelease)
		vm.EmulateCycle()

		if vm.DrawFlag() {
			win.DrawGraphics(vm.Display())
			vm.ClearDrawFlag()
		} else {
			win.UpdateInput()
		}
	}

	fmt.Println("exit signal detected, gracefully shutting down...")
	return nil
}

func decodeColor(s string) (color.RGBA, error) {
	data, err := hex.DecodeString(s)
	if err != nil || len(data) != 3 {
		return color.RGBA{}, fmt.Errorf("want RRGGBB hex, got %q", s)
	}
	return color.RGBA{R: data[0], G: data[1], B: data[2], A: 0xFF}, nil
}
