package ffmpeg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

type probeInfo struct {
	Width         int
	Height        int
	AdvisoryCount int
	FrameRate     float64
	Duration      float64
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		NbFrames   string `json:"nb_frames"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probe(videoPath string) (*probeInfo, error) {
	data, err := ffmpeggo.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(data)
}

func parseProbe(data string) (*probeInfo, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("video stream has no dimensions")
		}

		info := &probeInfo{
			Width:         s.Width,
			Height:        s.Height,
			AdvisoryCount: -1,
			FrameRate:     parseRate(s.RFrameRate),
		}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			info.AdvisoryCount = n
		}
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			info.Duration = d
		}
		return info, nil
	}
	return nil, fmt.Errorf("no video stream")
}

// parseRate reads ffprobe rationals such as "30000/1001". Zero means unknown.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
