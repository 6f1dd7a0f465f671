package ascii

import (
	"image"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
)

// Convert runs the reducer and the quantizer over a single still.
func Convert(img image.Image) entity.GlyphGrid {
	return Quantize(Brightness(img))
}
