package port

import "errors"

var (
	// ErrSourceUnreadable is returned when a video source cannot be opened
	// or decodes to zero frames.
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrNoFrames         = errors.New("no frames found")
	ErrRunNotFound      = errors.New("run not found")
)
