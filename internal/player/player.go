package player

import (
	"context"
	"fmt"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
	"github.com/fiapx/fiapx-ascii-player/internal/domain/port"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/metrics"
	"go.uber.org/zap"
)

// DefaultFrameDelay is used when neither the configuration nor the source
// gives a frame rate. Roughly 30fps.
const DefaultFrameDelay = 33 * time.Millisecond

// FrameDelay picks the inter-frame pause: the configured value when set,
// else one period of the source's nominal frame rate.
func FrameDelay(configured time.Duration, fps float64) time.Duration {
	switch {
	case configured > 0:
		return configured
	case fps > 0:
		return time.Duration(float64(time.Second) / fps)
	default:
		return DefaultFrameDelay
	}
}

// Player makes one forward pass over a frame sequence. There is no pause,
// seek or rewind.
type Player struct {
	renderer port.Renderer
	logger   *zap.Logger
}

func New(renderer port.Renderer, logger *zap.Logger) *Player {
	return &Player{renderer: renderer, logger: logger}
}

func (p *Player) Play(ctx context.Context, frames entity.FrameSequence, delay time.Duration) error {
	if len(frames) == 0 {
		return port.ErrNoFrames
	}

	w, h := frames[0].Dims()
	p.logger.Debug("playback starting",
		zap.Int("frames", len(frames)),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Duration("frame_delay", delay),
	)

	metrics.Playing.Set(1)
	defer metrics.Playing.Set(0)

	start := time.Now()
	if err := p.renderer.Render(ctx, frames, delay); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	metrics.FramesRenderedTotal.Add(float64(len(frames)))

	p.logger.Info("playback finished",
		zap.Int("frames", len(frames)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
