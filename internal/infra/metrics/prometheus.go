package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asciiplay_runs_total",
		Help: "Total number of pipeline runs, by final status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "asciiplay_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asciiplay_frames_extracted_total",
		Help: "Total number of still frames extracted from video sources",
	})

	FramesConvertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asciiplay_frames_converted_total",
		Help: "Total number of stills converted to glyph grids",
	})

	FramesRenderedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asciiplay_frames_rendered_total",
		Help: "Total number of glyph frames handed to the terminal",
	})

	Playing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asciiplay_playing",
		Help: "1 while playback is in progress",
	})
)
