package entity

import "github.com/google/uuid"

// RunStatusMessage is published on every run status transition.
type RunStatusMessage struct {
	RunID          uuid.UUID `json:"run_id"`
	Source         string    `json:"source"`
	Status         RunStatus `json:"status"`
	AdvisoryFrames int       `json:"advisory_frames,omitempty"`
	FrameCount     int       `json:"frame_count,omitempty"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
	FrameDelayMs   int64     `json:"frame_delay_ms,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

func NewRunStatusMessage(r *Run) RunStatusMessage {
	return RunStatusMessage{
		RunID:          r.ID,
		Source:         r.Source,
		Status:         r.Status,
		AdvisoryFrames: r.AdvisoryFrames,
		FrameCount:     r.FrameCount,
		Width:          r.Width,
		Height:         r.Height,
		FrameDelayMs:   r.FrameDelay.Milliseconds(),
		ErrorMessage:   r.ErrorMessage,
	}
}
