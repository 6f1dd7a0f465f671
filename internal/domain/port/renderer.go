package port

import (
	"context"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
)

// Renderer draws a frame sequence to a terminal, holding each frame for
// delay. It must leave the terminal as it found it on every return path.
type Renderer interface {
	Render(ctx context.Context, frames entity.FrameSequence, delay time.Duration) error
}
