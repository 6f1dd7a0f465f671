package terminal

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
)

// ScrollingRenderer prints each frame and clears the whole screen before
// the next one. Simple, may flicker.
type ScrollingRenderer struct {
	out io.Writer
}

func NewScrollingRenderer(out io.Writer) *ScrollingRenderer {
	return &ScrollingRenderer{out: out}
}

func (r *ScrollingRenderer) Render(ctx context.Context, frames entity.FrameSequence, delay time.Duration) (err error) {
	sess, err := Open(r.out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(r.out)
	for i, frame := range frames {
		if i > 0 {
			w.WriteString(clearScreen)
		}
		w.WriteString(frame.String())
		w.WriteByte('\n')
		if err := w.Flush(); err != nil {
			return err
		}
		if err := hold(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func hold(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
