package imaging

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/fiapx/fiapx-ascii-player/internal/infra/config"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

// CellAspect compensates for terminal cells being about twice as tall as
// they are wide.
const CellAspect = 2.0

type ResizerConfig struct {
	Mode     string
	Width    int
	Height   int
	MaxWidth int
	Quality  int
}

type Resizer struct {
	cfg    ResizerConfig
	logger *zap.Logger
}

func NewResizer(cfg ResizerConfig, logger *zap.Logger) *Resizer {
	return &Resizer{cfg: cfg, logger: logger}
}

// TargetSize returns the output size for a source of the given size.
//
// In aspect mode the height is fixed and the width is
// round(height × srcW/srcH × CellAspect). In fixed mode both are fixed.
// MaxWidth, when positive, caps the width in either mode.
func (r *Resizer) TargetSize(src image.Point) image.Point {
	var dst image.Point
	switch r.cfg.Mode {
	case config.ResizeFixed:
		dst = image.Pt(r.cfg.Width, r.cfg.Height)
	case config.ResizeAspect:
		w := math.Round(float64(r.cfg.Height) * float64(src.X) / float64(src.Y) * CellAspect)
		dst = image.Pt(int(w), r.cfg.Height)
	default:
		return src
	}
	if dst.X < 1 {
		dst.X = 1
	}
	if r.cfg.MaxWidth > 0 && dst.X > r.cfg.MaxWidth {
		dst.X = r.cfg.MaxWidth
	}
	return dst
}

func (r *Resizer) Resize(img image.Image) image.Image {
	if r.cfg.Mode == config.ResizeNone {
		return img
	}
	dst := r.TargetSize(img.Bounds().Size())
	if dst == img.Bounds().Size() {
		return img
	}
	return resize.Resize(uint(dst.X), uint(dst.Y), img, resize.Bilinear)
}

// ResizeAll rewrites every still in place at its target size, keeping
// each file's format.
func (r *Resizer) ResizeAll(ctx context.Context, framePaths []string) error {
	if r.cfg.Mode == config.ResizeNone {
		r.logger.Debug("resize skipped", zap.Int("frames", len(framePaths)))
		return nil
	}

	var last image.Point
	for _, p := range framePaths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		img, err := Load(p)
		if err != nil {
			return fmt.Errorf("load frame: %w", err)
		}
		out := r.Resize(img)
		if err := Save(p, out, r.cfg.Quality); err != nil {
			return fmt.Errorf("save frame: %w", err)
		}
		last = out.Bounds().Size()
	}

	r.logger.Info("frames resized",
		zap.Int("count", len(framePaths)),
		zap.String("mode", r.cfg.Mode),
		zap.Int("width", last.X),
		zap.Int("height", last.Y),
	)
	return nil
}
