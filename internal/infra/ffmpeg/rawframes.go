package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/fiapx/fiapx-ascii-player/internal/infra/imaging"
)

// FrameName returns the scratch file name for frame index i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%04d.jpg", i)
}

// writeFrames reads packed rgb24 frames from r until end-of-stream and
// encodes each one as a JPEG in outputDir. Frames are numbered from 0 in
// read order. A trailing partial frame is dropped.
func writeFrames(ctx context.Context, r io.Reader, width, height int, outputDir string, quality int, onFrame func()) ([]string, error) {
	frameSize := width * height * 3
	buf := make([]byte, frameSize)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	var paths []string
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return paths, ctx.Err()
		default:
		}

		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return paths, nil
			}
			return paths, fmt.Errorf("read frame %d: %w", i, err)
		}

		for p, q := 0, 0; p < frameSize; p, q = p+3, q+4 {
			img.Pix[q] = buf[p]
			img.Pix[q+1] = buf[p+1]
			img.Pix[q+2] = buf[p+2]
			img.Pix[q+3] = 0xff
		}

		path := filepath.Join(outputDir, FrameName(i))
		if err := imaging.SaveJPEG(path, img, quality); err != nil {
			return paths, fmt.Errorf("write frame %d: %w", i, err)
		}
		paths = append(paths, path)
		if onFrame != nil {
			onFrame()
		}
	}
}
