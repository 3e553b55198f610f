// Package pixel owns the emulator window: framebuffer rendering and the
// hex keypad mapping onto a physical keyboard.
package pixel

import (
	"fmt"
	"image/color"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

const winX float64 = 64
const winY float64 = 32
const screenWidth float64 = 1024
const screenHeight float64 = 768

// Window embeds a pixelgl window and holds a keymapping of hex key -> pixelgl.Button.
//
// Chip8 keypad layout:   Mapped to keyboard:
//  1 2 3 C                1 2 3 4
//  4 5 6 D                Q W E R
//  7 8 9 E                A S D F
//  A 0 B F                Z X C V
type Window struct {
	*pixelgl.Window
	KeyMap map[uint8]pixelgl.Button

	fg pixel.RGBA
	bg color.RGBA
}

// NewWindow handles creating a new pixelgl window config, initializing the
// window, and returning a Window with an embedded *pixelgl.Window. fg and bg
// are the colors for lit and unlit pixels.
func NewWindow(title string, fg, bg color.RGBA) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  title,
		Bounds: pixel.R(0, 0, screenWidth, screenHeight),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	km := map[uint8]pixelgl.Button{
		0x1: pixelgl.Key1, 0x2: pixelgl.Key2,
		0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
		0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW,
		0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
		0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS,
		0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
		0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX,
		0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
	}
	w.Clear(colornames.Black)
	w.Update()

	return &Window{
		Window: w,
		KeyMap: km,
		fg:     pixel.ToRGBA(fg),
		bg:     bg,
	}, nil
}

// ForwardKeys samples the keyboard and reports hex keypad edges through the
// two callbacks. Called once per cycle on the emulator goroutine so the VM
// has a single writer.
func (w *Window) ForwardKeys(press, release func(k uint8)) {
	for k, button := range w.KeyMap {
		if w.JustPressed(button) {
			press(k)
		}
		if w.JustReleased(button) {
			release(k)
		}
	}
}

// DrawGraphics renders the framebuffer, row 0 topmost. pixelgl's origin is
// bottom-left, so rows are flipped on the way out.
func (w *Window) DrawGraphics(display [32][64]byte) {
	w.Clear(w.bg)
	imDraw := imdraw.New(nil)
	imDraw.Color = w.fg
	width, height := screenWidth/winX, screenHeight/winY

	for row := 0; row < 32; row++ {
		for col := 0; col < 64; col++ {
			if display[row][col] != 1 {
				continue
			}
			x := width * float64(col)
			y := height * float64(31-row)
			imDraw.Push(pixel.V(x, y))
			imDraw.Push(pixel.V(x+width, y+height))
			imDraw.Rectangle(0)
		}
	}

	imDraw.Draw(w)
	w.Update()
}
