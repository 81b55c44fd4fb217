package main

import (
	"fmt"

	"github.com/massung/chip8vm/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

// Screen presents the CHIP-8 display in an SDL window.
type Screen struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	// window pixels per display pixel
	scale int32
}

// NewScreen opens a window sized to the display times scale.
func NewScreen(scale int) (*Screen, error) {
	s := int32(scale)

	window, err := sdl.CreateWindow("CHIP-8",
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		chip8.DisplayWidth*s, chip8.DisplayHeight*s,
		sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	return &Screen{
		window:   window,
		renderer: renderer,
		scale:    s,
	}, nil
}

// Present redraws the window from the display.
func (s *Screen) Present(d *chip8.Display) error {
	// the background color for the screen
	if err := s.renderer.SetDrawColor(143, 145, 133, 255); err != nil {
		return err
	}
	if err := s.renderer.Clear(); err != nil {
		return err
	}

	// the pixel color
	if err := s.renderer.SetDrawColor(17, 29, 43, 255); err != nil {
		return err
	}

	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if !d.Pixel(x, y) {
				continue
			}

			rect := sdl.Rect{
				X: int32(x) * s.scale,
				Y: int32(y) * s.scale,
				W: s.scale,
				H: s.scale,
			}

			if err := s.renderer.FillRect(&rect); err != nil {
				return err
			}
		}
	}

	s.renderer.Present()

	return nil
}

// SetTitle updates the window title.
func (s *Screen) SetTitle(title string) {
	s.window.SetTitle(title)
}

// Close destroys the renderer and window.
func (s *Screen) Close() {
	_ = s.renderer.Destroy()
	_ = s.window.Destroy()
}
