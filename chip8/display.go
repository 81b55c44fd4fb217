package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32

	// pitch is the number of bytes in one scan line
	pitch     = DisplayWidth / 8
	videoSize = pitch * DisplayHeight
)

// Display is the 64x32 monochrome frame buffer. Each bit is one pixel,
// stored MSB first: pixel <0,0> is bit 0x80 of byte 0.
type Display struct {
	Video [videoSize]byte
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.Video = [videoSize]byte{}
}

// Pixel reports whether the pixel at x, y is on. Coordinates wrap.
func (d *Display) Pixel(x, y int) bool {
	i, mask := d.bit(x, y)
	return d.Video[i]&mask != 0
}

// Set turns the pixel at x, y on or off. Coordinates wrap.
func (d *Display) Set(x, y int, on bool) {
	i, mask := d.bit(x, y)
	if on {
		d.Video[i] |= mask
	} else {
		d.Video[i] &^= mask
	}
}

// Draw XORs an 8 pixel wide sprite onto the display with its top-left
// corner at x, y. The origin always wraps; the rows and columns of the
// sprite that cross an edge wrap too unless clip is set, in which case
// they are discarded. Draw returns true if any pixel was turned off.
func (d *Display) Draw(sprite []byte, x, y int, clip bool) bool {
	collision := false

	// the origin is always on screen
	x %= DisplayWidth
	y %= DisplayHeight

	for row, bits := range sprite {
		py := y + row

		if py >= DisplayHeight {
			if clip {
				break
			}
			py %= DisplayHeight
		}

		for col := 0; col < 8; col++ {
			if bits&(0x80>>uint(col)) == 0 {
				continue
			}

			px := x + col

			if px >= DisplayWidth {
				if clip {
					break
				}
				px %= DisplayWidth
			}

			i, mask := d.bit(px, py)

			// was a pixel turned off?
			if d.Video[i]&mask != 0 {
				collision = true
			}

			d.Video[i] ^= mask
		}
	}

	return collision
}

// Lit returns the number of pixels that are on.
func (d *Display) Lit() int {
	n := 0
	for _, b := range d.Video {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

// bit returns the byte index and mask of a pixel.
func (d *Display) bit(x, y int) (int, byte) {
	x = ((x % DisplayWidth) + DisplayWidth) % DisplayWidth
	y = ((y % DisplayHeight) + DisplayHeight) % DisplayHeight

	return y*pitch + x>>3, 0x80 >> uint(x&7)
}
