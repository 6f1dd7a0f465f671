package ascii

import (
	"image"
	"image/color"
	"testing"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlyphBuckets(t *testing.T) {
	tests := []struct {
		v    int
		want byte
	}{
		{0, ' '}, {31, ' '},
		{32, '.'}, {63, '.'},
		{64, ':'}, {95, ':'},
		{96, '-'}, {127, '-'},
		{128, '+'}, {159, '+'},
		{160, '='}, {191, '='},
		{192, '%'}, {223, '%'},
		{224, '@'}, {254, '@'},
		{255, FallbackGlyph},
		{-1, FallbackGlyph},
		{300, FallbackGlyph},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, Glyph(tt.v), "Glyph(%d)", tt.v)
	}
}

func TestGlyphAlwaysInRamp(t *testing.T) {
	for v := 0; v <= 255; v++ {
		assert.Contains(t, Ramp, string(Glyph(v)))
		// bucket is determined by v/32 alone
		if v < 255 {
			assert.Equal(t, Ramp[v/32], Glyph(v))
		}
	}
}

func TestBrightnessAveragesChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{30, 60, 90, 255})
	img.Set(1, 0, color.RGBA{0, 0, 0, 255})
	img.Set(2, 0, color.RGBA{255, 255, 255, 255})

	grid := Brightness(img)
	require.Len(t, grid, 1)
	assert.Equal(t, []uint8{60, 0, 255}, grid[0])
	assert.Equal(t, byte('.'), Glyph(int(grid[0][0])))
	assert.Equal(t, byte(' '), Glyph(int(grid[0][1])))
	assert.Equal(t, FallbackGlyph, Glyph(int(grid[0][2])))
}

func TestBrightnessRounding(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{1, 0, 0, 255}) // 0.33
	img.Set(1, 0, color.RGBA{1, 1, 0, 255}) // 0.67

	grid := Brightness(img)
	assert.Equal(t, []uint8{0, 1}, grid[0])
}

func TestBrightnessNormalizesChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 100})
	assert.Equal(t, uint8(100), Brightness(gray)[0][0])

	// alpha is discarded, not composited
	nrgba := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	nrgba.SetNRGBA(0, 0, color.NRGBA{R: 90, G: 90, B: 90, A: 10})
	assert.Equal(t, uint8(90), Brightness(nrgba)[0][0])
}

func TestBrightnessHandlesOffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(5, 7, 9, 10))
	grid := Brightness(img)
	w, h := grid.Dims()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
}

func TestConvertPreservesDimensions(t *testing.T) {
	for _, size := range []image.Point{{1, 1}, {7, 3}, {196, 55}} {
		img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
		brightness := Brightness(img)
		glyphs := Quantize(brightness)

		bw, bh := brightness.Dims()
		gw, gh := glyphs.Dims()
		assert.Equal(t, size.X, bw)
		assert.Equal(t, size.Y, bh)
		assert.Equal(t, bw, gw)
		assert.Equal(t, bh, gh)
	}
}

func TestQuantizeDoesNotMutateInput(t *testing.T) {
	grid := entity.BrightnessGrid{{0, 255}, {128, 64}}
	_ = Quantize(grid)
	assert.Equal(t, entity.BrightnessGrid{{0, 255}, {128, 64}}, grid)
}

func TestConvertTwoFrameScenario(t *testing.T) {
	frame := func(a, b uint8) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(0, 0, color.RGBA{a, a, a, 255})
		img.Set(1, 0, color.RGBA{b, b, b, 255})
		return img
	}

	seq := entity.FrameSequence{
		Convert(frame(0, 255)),
		Convert(frame(128, 64)),
	}
	assert.Equal(t, entity.FrameSequence{
		{[]byte{' ', '@'}},
		{[]byte{'+', ':'}},
	}, seq)
}
