package ascii

import "github.com/fiapx/fiapx-ascii-player/internal/domain/entity"

// Ramp lists the glyphs from darkest to brightest.
const Ramp = " .:-+=%@"

// FallbackGlyph is used for values outside every bucket. The last bucket
// is [224,255), so 255 always lands here.
const FallbackGlyph byte = '@'

type bucket struct {
	lo, hi int
	glyph  byte
}

var buckets = [...]bucket{
	{0, 32, ' '},
	{32, 64, '.'},
	{64, 96, ':'},
	{96, 128, '-'},
	{128, 160, '+'},
	{160, 192, '='},
	{192, 224, '%'},
	{224, 255, '@'},
}

// Glyph maps a brightness value to its ramp character. Buckets are
// half-open and checked in order.
func Glyph(v int) byte {
	for _, b := range buckets {
		if v >= b.lo && v < b.hi {
			return b.glyph
		}
	}
	return FallbackGlyph
}

// Quantize returns a new GlyphGrid with the same shape as grid.
func Quantize(grid entity.BrightnessGrid) entity.GlyphGrid {
	out := make(entity.GlyphGrid, len(grid))
	for y, row := range grid {
		glyphs := make([]byte, len(row))
		for x, v := range row {
			glyphs[x] = Glyph(int(v))
		}
		out[y] = glyphs
	}
	return out
}
