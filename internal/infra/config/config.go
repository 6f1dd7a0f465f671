package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ResizeAspect = "aspect"
	ResizeFixed  = "fixed"
	ResizeNone   = "none"

	RenderScrolling  = "scrolling"
	RenderFullscreen = "fullscreen"
)

type Config struct {
	OutputDir     string        `env:"OUTPUT_DIR"     envDefault:"frames"`
	TargetHeight  int           `env:"TARGET_HEIGHT"  envDefault:"55"`
	TargetWidth   int           `env:"TARGET_WIDTH"   envDefault:"160"`
	MaxWidth      int           `env:"MAX_WIDTH"      envDefault:"0"`
	ResizeMode    string        `env:"RESIZE_MODE"    envDefault:"aspect"`
	FrameDelay    time.Duration `env:"FRAME_DELAY"    envDefault:"0s"`
	RenderMode    string        `env:"RENDER_MODE"    envDefault:"scrolling"`
	NoExtract     bool          `env:"NO_EXTRACT"     envDefault:"false"`
	CleanupFrames bool          `env:"CLEANUP_FRAMES" envDefault:"false"`
	ArchiveFrames bool          `env:"ARCHIVE_FRAMES" envDefault:"false"`
	JPEGQuality   int           `env:"JPEG_QUALITY"   envDefault:"90"`
	ShowProgress  bool          `env:"SHOW_PROGRESS"  envDefault:"true"`

	MinIOEndpoint      string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey     string `env:"MINIO_ACCESS_KEY"     envDefault:"minioadmin"`
	MinIOSecretKey     string `env:"MINIO_SECRET_KEY"     envDefault:"minioadmin"`
	MinIOUseSSL        bool   `env:"MINIO_USE_SSL"        envDefault:"false"`
	MinIOArchiveBucket string `env:"MINIO_ARCHIVE_BUCKET" envDefault:"ascii-frames"`

	DatabaseURL string `env:"DATABASE_URL"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"fiapx.ascii"`

	MetricsPort          int    `env:"METRICS_PORT"           envDefault:"0"`
	OTelExporterEndpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
	LogLevel             string `env:"LOG_LEVEL"              envDefault:"info"`
	LogFile              string `env:"LOG_FILE"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.ResizeMode {
	case ResizeAspect:
		if c.TargetHeight <= 0 {
			return fmt.Errorf("target height must be positive, got %d", c.TargetHeight)
		}
	case ResizeFixed:
		if c.TargetHeight <= 0 || c.TargetWidth <= 0 {
			return fmt.Errorf("target size must be positive, got %dx%d", c.TargetWidth, c.TargetHeight)
		}
	case ResizeNone:
	default:
		return fmt.Errorf("unknown resize mode %q", c.ResizeMode)
	}

	switch c.RenderMode {
	case RenderScrolling, RenderFullscreen:
	default:
		return fmt.Errorf("unknown render mode %q", c.RenderMode)
	}

	if c.MaxWidth < 0 {
		return fmt.Errorf("max width must not be negative, got %d", c.MaxWidth)
	}
	if c.FrameDelay < 0 {
		return fmt.Errorf("frame delay must not be negative, got %s", c.FrameDelay)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be within 1..100, got %d", c.JPEGQuality)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir must not be empty")
	}
	return nil
}
