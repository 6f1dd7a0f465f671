package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/port"
	"github.com/schollz/progressbar/v3"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

type Extractor struct {
	binary   string
	quality  int
	progress io.Writer
	logger   *zap.Logger
}

// NewExtractor returns an extractor that writes JPEG stills at the given
// quality. When progress is non-nil a bar sized by the container's frame
// count is drawn to it.
func NewExtractor(quality int, progress io.Writer, logger *zap.Logger) *Extractor {
	return &Extractor{binary: "ffmpeg", quality: quality, progress: progress, logger: logger}
}

func (e *Extractor) ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameExtractionResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	info, err := probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", port.ErrSourceUnreadable, videoPath, err)
	}

	e.logger.Info("video probed",
		zap.String("source", videoPath),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Int("advisory_frames", info.AdvisoryCount),
		zap.Float64("frame_rate", info.FrameRate),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	args := ffmpeggo.Input(videoPath).
		Output("pipe:", ffmpeggo.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgb24",
			"s":       fmt.Sprintf("%dx%d", info.Width, info.Height),
		}).
		GlobalArgs("-hide_banner", "-loglevel", "error").
		GetArgs()

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	bar := e.newBar(info.AdvisoryCount)
	frames, writeErr := writeFrames(ctx, stdout, info.Width, info.Height, outputDir, e.quality, bar.tick)
	bar.finish()
	if writeErr != nil {
		cancel()
		_ = cmd.Wait()
		return nil, fmt.Errorf("extract frames: %w", writeErr)
	}

	if err := cmd.Wait(); err != nil {
		if len(frames) == 0 {
			return nil, fmt.Errorf("%w: %s: %v", port.ErrSourceUnreadable, videoPath, ffmpegError(err, &stderr))
		}
		return nil, fmt.Errorf("ffmpeg decode: %w", ffmpegError(err, &stderr))
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s: decoded zero frames", port.ErrSourceUnreadable, videoPath)
	}

	if info.AdvisoryCount >= 0 && info.AdvisoryCount != len(frames) {
		e.logger.Debug("decoded frame count differs from container metadata",
			zap.Int("advisory_frames", info.AdvisoryCount),
			zap.Int("frame_count", len(frames)),
		)
	}
	e.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.String("output_dir", outputDir),
		zap.Float64("video_duration", info.Duration),
	)

	return &port.FrameExtractionResult{
		FramePaths:    frames,
		FrameCount:    len(frames),
		AdvisoryCount: info.AdvisoryCount,
		FrameRate:     info.FrameRate,
		VideoDuration: info.Duration,
	}, nil
}

func ffmpegError(err error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w, output: %s", err, msg)
}

type extractBar struct {
	bar *progressbar.ProgressBar
	max int
	n   int
}

func (e *Extractor) newBar(advisory int) *extractBar {
	if e.progress == nil {
		return &extractBar{}
	}
	limit := advisory
	if limit <= 0 {
		limit = -1
	}
	return &extractBar{
		max: limit,
		bar: progressbar.NewOptions(limit,
			progressbar.OptionSetWriter(e.progress),
			progressbar.OptionSetDescription("extracting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (b *extractBar) tick() {
	if b.bar == nil {
		return
	}
	b.n++
	if b.max > 0 && b.n > b.max {
		b.max = b.n
		b.bar.ChangeMax(b.max)
	}
	_ = b.bar.Add(1)
}

func (b *extractBar) finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}
