package components

import "math/rand"

// Color is a lineage tint with channels in [0, 1].
type Color struct {
	R, G, B float32
}

// Perturb walks each channel by a uniform offset in [-step, step] and clamps
// the result back into [0, 1].
func (c *Color) Perturb(rng *rand.Rand, step float32) {
	c.R = clampUnit(c.R + (rng.Float32()*2-1)*step)
	c.G = clampUnit(c.G + (rng.Float32()*2-1)*step)
	c.B = clampUnit(c.B + (rng.Float32()*2-1)*step)
}

// RGBA returns 8-bit channels for renderers.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c.R * 255), uint8(c.G * 255), uint8(c.B * 255), 255
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
