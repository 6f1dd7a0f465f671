package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlyphGridString(t *testing.T) {
	g := GlyphGrid{[]byte(" @"), []byte("+:")}
	assert.Equal(t, " @\n+:", g.String())

	w, h := g.Dims()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
}

func TestEmptyGridDims(t *testing.T) {
	w, h := BrightnessGrid(nil).Dims()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, "", GlyphGrid(nil).String())
}

func TestRunLifecycle(t *testing.T) {
	r := NewRun("clip.mp4", "/tmp/frames")
	assert.Equal(t, RunStatusPending, r.Status)
	assert.False(t, r.Finished())

	r.MarkExtracting()
	r.MarkConverting(120, 118)
	assert.Equal(t, 120, r.AdvisoryFrames)
	assert.Equal(t, 118, r.FrameCount)

	r.MarkCompleted()
	assert.True(t, r.Finished())
	assert.NotNil(t, r.CompletedAt)

	msg := NewRunStatusMessage(r)
	assert.Equal(t, r.ID, msg.RunID)
	assert.Equal(t, RunStatusCompleted, msg.Status)
}
