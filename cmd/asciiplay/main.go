package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/port"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/archive"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/config"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/ffmpeg"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/imaging"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/metrics"
	miniostorage "github.com/fiapx/fiapx-ascii-player/internal/infra/minio"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/postgres"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/rabbitmq"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/terminal"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/tracing"
	"github.com/fiapx/fiapx-ascii-player/internal/player"
	"github.com/fiapx/fiapx-ascii-player/internal/usecase"
	"github.com/fiapx/fiapx-ascii-player/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	os.Exit(execute(newRootCmd(cfg)))
}

// execute runs cmd and maps its outcome to the process exit status.
func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asciiplay <video|frames-dir|s3://bucket/key>",
		Short: "Play a video as character art in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			// Usage is only useful for argument errors.
			cmd.SilenceUsage = true
			return run(cfg, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "directory for extracted stills")
	f.IntVar(&cfg.TargetHeight, "target-height", cfg.TargetHeight, "output height in rows")
	f.IntVar(&cfg.TargetWidth, "target-width", cfg.TargetWidth, "output width in columns (fixed mode)")
	f.IntVar(&cfg.MaxWidth, "max-width", cfg.MaxWidth, "clamp output width (0 disables)")
	f.StringVar(&cfg.ResizeMode, "resize-mode", cfg.ResizeMode, "aspect, fixed or none")
	f.DurationVar(&cfg.FrameDelay, "frame-delay", cfg.FrameDelay, "pause between frames (0 follows the source frame rate)")
	f.StringVar(&cfg.RenderMode, "render-mode", cfg.RenderMode, "scrolling or fullscreen")
	f.BoolVar(&cfg.NoExtract, "no-extract", cfg.NoExtract, "treat the argument as a directory of stills")
	f.BoolVar(&cfg.CleanupFrames, "cleanup", cfg.CleanupFrames, "remove extracted stills after playback")
	f.BoolVar(&cfg.ArchiveFrames, "archive", cfg.ArchiveFrames, "zip the resized stills")
	f.BoolVar(&cfg.ShowProgress, "progress", cfg.ShowProgress, "show extraction and conversion progress")
	return cmd
}

func run(cfg *config.Config, source string) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(ctx, cfg.OTelExporterEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	if srv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log); srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	var progress io.Writer
	if cfg.ShowProgress {
		progress = os.Stderr
	}

	c := usecase.Collaborators{
		Extractor: ffmpeg.NewExtractor(cfg.JPEGQuality, progress, log),
		Resizer: imaging.NewResizer(imaging.ResizerConfig{
			Mode:     cfg.ResizeMode,
			Width:    cfg.TargetWidth,
			Height:   cfg.TargetHeight,
			MaxWidth: cfg.MaxWidth,
			Quality:  cfg.JPEGQuality,
		}, log),
		Player:   player.New(newRenderer(cfg, source), log),
		Archiver: archive.NewZipCreator("frames"),
	}

	if cfg.MinIOEndpoint != "" {
		storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			UseSSL:        cfg.MinIOUseSSL,
			ArchiveBucket: cfg.MinIOArchiveBucket,
		})
		if err != nil {
			return err
		}
		if cfg.ArchiveFrames {
			if err := storage.EnsureArchiveBucket(ctx); err != nil {
				return fmt.Errorf("ensure archive bucket: %w", err)
			}
		}
		c.Storage = storage
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		repo := postgres.NewRunRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		c.Repo = repo
	}

	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer conn.Close()

		pub, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQExchange)
		if err != nil {
			return fmt.Errorf("create rabbitmq publisher: %w", err)
		}
		defer pub.Close()
		c.Publisher = rabbitmq.NewStatusPublisher(pub)
	}

	uc := usecase.NewPlayVideoUseCase(c, log, usecase.PlayVideoConfig{
		OutputDir:     cfg.OutputDir,
		NoExtract:     cfg.NoExtract,
		FrameDelay:    cfg.FrameDelay,
		CleanupFrames: cfg.CleanupFrames,
		ArchiveFrames: cfg.ArchiveFrames,
		Progress:      progress,
	})

	log.Info("starting playback",
		zap.String("source", source),
		zap.String("resize_mode", cfg.ResizeMode),
		zap.String("render_mode", cfg.RenderMode),
	)

	r, err := uc.Execute(ctx, source)
	switch {
	case err == nil:
		log.Info("playback finished", zap.String("run_id", r.ID.String()), zap.Int("frame_count", r.FrameCount))
		return nil
	case usecase.IsUnreadable(err):
		log.Error("source unreadable", zap.String("source", source), zap.Error(err))
	case ctx.Err() != nil, errors.Is(err, terminal.ErrInterrupted):
		log.Info("playback interrupted", zap.String("run_id", r.ID.String()))
	default:
		log.Error("playback failed", zap.String("run_id", r.ID.String()), zap.Error(err))
	}
	return err
}

func newRenderer(cfg *config.Config, source string) port.Renderer {
	if cfg.RenderMode == config.RenderFullscreen {
		return terminal.NewFullscreenRenderer(nil, os.Stdout, filepath.Base(source))
	}
	return terminal.NewScrollingRenderer(os.Stdout)
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
