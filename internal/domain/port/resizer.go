package port

import "context"

type FrameResizer interface {
	ResizeAll(ctx context.Context, framePaths []string) error
}
