package ascii

import (
	"image"
	"image/color"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
)

// Brightness reduces img to one value per pixel: the equal-weight mean of
// its red, green and blue channels, rounded to the nearest integer.
//
// Pixels are first forced to three 8-bit channels. Gray sources replicate
// their single channel and any alpha is dropped without compositing, so a
// translucent red pixel still counts as red.
func Brightness(img image.Image) entity.BrightnessGrid {
	b := img.Bounds()
	grid := make(entity.BrightnessGrid, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]uint8, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl := rgb(img.At(x, y))
			row[x-b.Min.X] = mean3(r, g, bl)
		}
		grid[y-b.Min.Y] = row
	}
	return grid
}

func rgb(c color.Color) (r, g, b uint8) {
	switch v := c.(type) {
	case color.RGBA:
		if v.A == 0xff {
			return v.R, v.G, v.B
		}
	case color.Gray:
		return v.Y, v.Y, v.Y
	case color.YCbCr:
		return color.YCbCrToRGB(v.Y, v.Cb, v.Cr)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B
}

// mean3 rounds half up. A sum of three integers over 3 leaves a remainder
// of 0, 1 or 2, so an exact .5 never occurs.
func mean3(r, g, b uint8) uint8 {
	sum := int(r) + int(g) + int(b)
	return uint8((sum + 1) / 3)
}
