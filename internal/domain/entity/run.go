package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending    RunStatus = "PENDING"
	RunStatusExtracting RunStatus = "EXTRACTING"
	RunStatusConverting RunStatus = "CONVERTING"
	RunStatusPlaying    RunStatus = "PLAYING"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// Run records one pass of the pipeline over a single source.
type Run struct {
	ID             uuid.UUID
	Source         string
	FramesDir      string
	Status         RunStatus
	AdvisoryFrames int
	FrameCount     int
	Width          int
	Height         int
	FrameDelay     time.Duration
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

func NewRun(source, framesDir string) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        uuid.New(),
		Source:    source,
		FramesDir: framesDir,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Run) MarkExtracting() {
	r.Status = RunStatusExtracting
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) MarkConverting(advisory, actual int) {
	r.Status = RunStatusConverting
	r.AdvisoryFrames = advisory
	r.FrameCount = actual
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) MarkPlaying(width, height int, delay time.Duration) {
	r.Status = RunStatusPlaying
	r.Width = width
	r.Height = height
	r.FrameDelay = delay
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) MarkCompleted() {
	now := time.Now().UTC()
	r.Status = RunStatusCompleted
	r.UpdatedAt = now
	r.CompletedAt = &now
}

func (r *Run) MarkFailed(errMsg string) {
	r.Status = RunStatusFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now().UTC()
}

func (r *Run) Finished() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
