package port

import "context"

type FrameExtractionResult struct {
	FramePaths []string
	FrameCount int
	// AdvisoryCount is the frame count declared by the container, -1 when
	// unknown. It is for progress display only.
	AdvisoryCount int
	FrameRate     float64
	VideoDuration float64
}

type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*FrameExtractionResult, error)
}
