package chip8

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

func TestDisplayPixel(t *testing.T) {
	var d Display

	d.Set(0, 0, true)
	assert.Equal(t, byte(0x80), d.Video[0])
	assert.True(t, d.Pixel(0, 0))

	d.Set(63, 31, true)
	assert.Equal(t, byte(0x01), d.Video[videoSize-1])

	// coordinates wrap
	assert.True(t, d.Pixel(64, 32))
	assert.True(t, d.Pixel(-1, -1))

	d.Set(0, 0, false)
	assert.False(t, d.Pixel(0, 0))
	assert.Equal(t, 1, d.Lit())

	d.Clear()
	assert.Equal(t, 0, d.Lit())
}

func TestDisplayDraw(t *testing.T) {
	sprite := Font[0][:]

	tests := []struct {
		name string
		x, y int
		clip bool
		lit  [][2]int
	}{
		{
			name: "origin",
			x:    0, y: 0,
			lit: [][2]int{{0, 0}, {3, 0}, {0, 1}, {3, 4}},
		},
		{
			name: "origin wraps",
			x:    64 + 2, y: 32 + 1,
			lit: [][2]int{{2, 1}, {5, 5}},
		},
		{
			name: "columns wrap",
			x:    62, y: 0,
			lit: [][2]int{{62, 0}, {63, 0}, {0, 0}, {1, 0}},
		},
		{
			name: "rows wrap",
			x:    0, y: 30,
			lit: [][2]int{{0, 30}, {0, 31}, {0, 0}, {3, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Display

			collision := d.Draw(sprite, tt.x, tt.y, tt.clip)
			assert.False(t, collision)

			for _, p := range tt.lit {
				assert.True(t, d.Pixel(p[0], p[1]))
			}

			// digit 0 has 14 pixels on
			assert.Equal(t, 14, d.Lit())
		})
	}
}

func TestDisplayDrawClip(t *testing.T) {
	var d Display

	d.Draw([]byte{0xFF, 0xFF}, 60, 31, true)

	// only the visible part of the first row remains
	assert.Equal(t, 4, d.Lit())
	assert.True(t, d.Pixel(60, 31))
	assert.False(t, d.Pixel(0, 31))
	assert.False(t, d.Pixel(60, 0))
}

func TestDisplayDrawCollision(t *testing.T) {
	var d Display

	sprite := []byte{0xF0, 0x90}

	assert.False(t, d.Draw(sprite, 10, 10, false))
	before := d.Video

	// drawing the same sprite again erases it
	assert.True(t, d.Draw(sprite, 10, 10, false))
	assert.Equal(t, 0, d.Lit())

	assert.False(t, d.Draw(sprite, 10, 10, false))
	if diff := cmp.Diff(before, d.Video); diff != "" {
		t.Errorf("video: (-want, +got)\n%s", diff)
	}

	// no pixel turned off
	assert.False(t, d.Draw([]byte{0x0F}, 10, 10, false))
}
