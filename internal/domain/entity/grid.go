package entity

import "strings"

// BrightnessGrid holds one brightness value per pixel, row-major.
type BrightnessGrid [][]uint8

// Dims returns the grid width and height.
func (g BrightnessGrid) Dims() (width, height int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g[0]), len(g)
}

// GlyphGrid holds one ramp character per pixel of its source BrightnessGrid.
type GlyphGrid [][]byte

func (g GlyphGrid) Dims() (width, height int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g[0]), len(g)
}

// String joins the rows with newlines, without a trailing newline.
func (g GlyphGrid) String() string {
	var sb strings.Builder
	w, h := g.Dims()
	sb.Grow((w + 1) * h)
	for y, row := range g {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.Write(row)
	}
	return sb.String()
}

// FrameSequence is the ordered list of glyph frames handed to the player.
type FrameSequence []GlyphGrid
