package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/ascii"
	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
	"github.com/fiapx/fiapx-ascii-player/internal/domain/port"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/imaging"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/metrics"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/minio"
	"github.com/fiapx/fiapx-ascii-player/internal/player"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type PlayVideoUseCase struct {
	extractor port.FrameExtractor
	resizer   port.FrameResizer
	player    *player.Player
	storage   port.SourceStorage
	archiver  port.Archiver
	repo      port.RunRepository
	publisher port.StatusPublisher
	logger    *zap.Logger
	cfg       PlayVideoConfig
}

type PlayVideoConfig struct {
	OutputDir     string
	NoExtract     bool
	FrameDelay    time.Duration
	CleanupFrames bool
	ArchiveFrames bool
	// Progress receives the conversion progress bar; nil disables it.
	Progress io.Writer
}

// Optional collaborators may be nil: storage (s3:// sources and archive
// upload), archiver, repo and publisher.
type Collaborators struct {
	Extractor port.FrameExtractor
	Resizer   port.FrameResizer
	Player    *player.Player
	Storage   port.SourceStorage
	Archiver  port.Archiver
	Repo      port.RunRepository
	Publisher port.StatusPublisher
}

func NewPlayVideoUseCase(c Collaborators, logger *zap.Logger, cfg PlayVideoConfig) *PlayVideoUseCase {
	return &PlayVideoUseCase{
		extractor: c.Extractor,
		resizer:   c.Resizer,
		player:    c.Player,
		storage:   c.Storage,
		archiver:  c.Archiver,
		repo:      c.Repo,
		publisher: c.Publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// Execute runs the whole pipeline for one source: resolve, extract,
// resize, convert and play. Any stage failure ends the run.
func (uc *PlayVideoUseCase) Execute(ctx context.Context, source string) (*entity.Run, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "PlayVideoUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("run.source", source))

	run := entity.NewRun(source, uc.cfg.OutputDir)
	log := uc.logger.With(zap.String("run_id", run.ID.String()), zap.String("source", source))

	if uc.repo != nil {
		if err := uc.repo.Create(ctx, run); err != nil {
			log.Error("failed to create run record", zap.Error(err))
			return run, fmt.Errorf("create run: %w", err)
		}
	}

	if err := uc.pipeline(ctx, run, log); err != nil {
		run.MarkFailed(err.Error())
		uc.transition(ctx, run, log)
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		span.SetAttributes(attribute.String("run.status", string(run.Status)))
		return run, err
	}

	run.MarkCompleted()
	uc.transition(ctx, run, log)
	metrics.RunsTotal.WithLabelValues("completed").Inc()
	span.SetAttributes(attribute.String("run.status", string(run.Status)))
	return run, nil
}

func (uc *PlayVideoUseCase) pipeline(ctx context.Context, run *entity.Run, log *zap.Logger) error {
	tracer := otel.Tracer("usecase")

	// Checked before resolveSource, which may create the directory.
	scratch := newScratch(uc.cfg.OutputDir)

	videoPath, framesDir, extract, err := uc.resolveSource(ctx, run.Source, log)
	if err != nil {
		return err
	}
	run.FramesDir = framesDir
	if extract && uc.cfg.CleanupFrames {
		if videoPath != run.Source {
			scratch.add(videoPath)
		}
		defer scratch.remove(log)
	}

	// Frames
	run.MarkExtracting()
	uc.transition(ctx, run, log)
	exStart := time.Now()
	ctx2, spanEx := tracer.Start(ctx, "extract_frames")
	result, err := uc.frames(ctx2, videoPath, framesDir, extract)
	spanEx.End()
	if err != nil {
		log.Error("frame extraction failed", zap.Error(err))
		return err
	}
	if extract {
		scratch.add(result.FramePaths...)
	}
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(exStart).Seconds())
	metrics.FramesExtractedTotal.Add(float64(result.FrameCount))

	// Resize
	rsStart := time.Now()
	ctx3, spanRs := tracer.Start(ctx, "resize_frames")
	err = uc.resizer.ResizeAll(ctx3, result.FramePaths)
	spanRs.End()
	if err != nil {
		log.Error("resize failed", zap.Error(err))
		return fmt.Errorf("resize frames: %w", err)
	}
	metrics.StageDuration.WithLabelValues("resize").Observe(time.Since(rsStart).Seconds())

	if uc.cfg.ArchiveFrames {
		zipPath, err := uc.archive(ctx, run, result.FramePaths, framesDir, log)
		if zipPath != "" && extract {
			scratch.add(zipPath)
		}
		if err != nil {
			return err
		}
	}

	// Convert
	run.MarkConverting(result.AdvisoryCount, result.FrameCount)
	uc.transition(ctx, run, log)
	cvStart := time.Now()
	ctx4, spanCv := tracer.Start(ctx, "convert_frames")
	frames, err := uc.convert(ctx4, result.FramePaths)
	spanCv.End()
	if err != nil {
		log.Error("conversion failed", zap.Error(err))
		return err
	}
	metrics.StageDuration.WithLabelValues("convert").Observe(time.Since(cvStart).Seconds())

	// Play
	w, h := frames[0].Dims()
	delay := player.FrameDelay(uc.cfg.FrameDelay, result.FrameRate)
	run.MarkPlaying(w, h, delay)
	uc.transition(ctx, run, log)
	plStart := time.Now()
	ctx5, spanPl := tracer.Start(ctx, "play")
	err = uc.player.Play(ctx5, frames, delay)
	spanPl.End()
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	metrics.StageDuration.WithLabelValues("play").Observe(time.Since(plStart).Seconds())

	log.Info("run completed",
		zap.Int("frame_count", len(frames)),
		zap.Int("advisory_frames", result.AdvisoryCount),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return nil
}

// resolveSource returns the local video path and frames directory. extract
// is false when the source is already a directory of stills.
func (uc *PlayVideoUseCase) resolveSource(ctx context.Context, source string, log *zap.Logger) (videoPath, framesDir string, extract bool, err error) {
	if bucket, key, ok := minio.ParseSource(source); ok {
		if uc.storage == nil {
			return "", "", false, fmt.Errorf("%w: %s: object storage is not configured", port.ErrSourceUnreadable, source)
		}
		if err := os.MkdirAll(uc.cfg.OutputDir, 0755); err != nil {
			return "", "", false, fmt.Errorf("create output dir: %w", err)
		}

		dlStart := time.Now()
		ctx2, spanDl := otel.Tracer("usecase").Start(ctx, "download_source")
		dest := filepath.Join(uc.cfg.OutputDir, "source"+path.Ext(key))
		err := uc.storage.DownloadSource(ctx2, bucket, key, dest)
		spanDl.End()
		if err != nil {
			log.Error("failed to download source", zap.Error(err))
			return "", "", false, fmt.Errorf("%w: %v", port.ErrSourceUnreadable, err)
		}
		metrics.StageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())
		return dest, uc.cfg.OutputDir, true, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", "", false, fmt.Errorf("%w: %v", port.ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return "", source, false, nil
	}
	if uc.cfg.NoExtract {
		return "", "", false, fmt.Errorf("%w: %s is not a directory of stills", port.ErrSourceUnreadable, source)
	}
	return source, uc.cfg.OutputDir, true, nil
}

func (uc *PlayVideoUseCase) frames(ctx context.Context, videoPath, framesDir string, extract bool) (*port.FrameExtractionResult, error) {
	if extract {
		return uc.extractor.ExtractFrames(ctx, videoPath, framesDir)
	}

	paths, err := imaging.ListFrames(framesDir)
	if err != nil {
		return nil, err
	}
	return &port.FrameExtractionResult{
		FramePaths:    paths,
		FrameCount:    len(paths),
		AdvisoryCount: len(paths),
	}, nil
}

func (uc *PlayVideoUseCase) convert(ctx context.Context, paths []string) (entity.FrameSequence, error) {
	var bar *progressbar.ProgressBar
	if uc.cfg.Progress != nil {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(uc.cfg.Progress),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	frames := make(entity.FrameSequence, 0, len(paths))
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := imaging.Load(p)
		if err != nil {
			return nil, fmt.Errorf("convert frame: %w", err)
		}
		frames = append(frames, ascii.Convert(img))
		metrics.FramesConvertedTotal.Inc()
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return frames, nil
}

// archive returns the local zip path once the file has been created, even
// when a later upload fails.
func (uc *PlayVideoUseCase) archive(ctx context.Context, run *entity.Run, paths []string, framesDir string, log *zap.Logger) (string, error) {
	if uc.archiver == nil {
		log.Warn("archive requested but no archiver configured")
		return "", nil
	}

	arStart := time.Now()
	ctx2, span := otel.Tracer("usecase").Start(ctx, "archive_frames")
	defer span.End()

	zipPath := filepath.Join(framesDir, fmt.Sprintf("frames_%s.zip", run.ID))
	if err := uc.archiver.CreateZip(ctx2, paths, zipPath); err != nil {
		log.Error("zip creation failed", zap.Error(err))
		return zipPath, fmt.Errorf("archive frames: %w", err)
	}

	if uc.storage != nil {
		f, err := os.Open(zipPath)
		if err != nil {
			return zipPath, fmt.Errorf("open archive: %w", err)
		}
		defer f.Close()
		stat, err := f.Stat()
		if err != nil {
			return zipPath, fmt.Errorf("stat archive: %w", err)
		}
		key := fmt.Sprintf("%s/frames.zip", run.ID)
		if err := uc.storage.UploadArchive(ctx2, key, f, stat.Size()); err != nil {
			log.Error("archive upload failed", zap.Error(err))
			return zipPath, fmt.Errorf("upload archive: %w", err)
		}
		log.Info("archive uploaded", zap.String("key", key))
	}

	metrics.StageDuration.WithLabelValues("archive").Observe(time.Since(arStart).Seconds())
	log.Info("frames archived", zap.String("path", zipPath), zap.Int("count", len(paths)))
	return zipPath, nil
}

// scratch tracks the files a run wrote into the output directory. Only
// those are removed; the directory itself goes only when this run created
// it and nothing else is left in it.
type scratch struct {
	dir        string
	createdDir bool
	files      []string
}

func newScratch(dir string) *scratch {
	_, err := os.Stat(dir)
	return &scratch{dir: dir, createdDir: errors.Is(err, fs.ErrNotExist)}
}

func (s *scratch) add(paths ...string) {
	s.files = append(s.files, paths...)
}

func (s *scratch) remove(log *zap.Logger) {
	for _, f := range s.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("failed to remove scratch file", zap.String("path", f), zap.Error(err))
		}
	}
	if s.createdDir {
		// os.Remove leaves a non-empty directory in place.
		if err := os.Remove(s.dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Debug("scratch dir kept", zap.String("dir", s.dir), zap.Error(err))
		}
	}
	log.Info("scratch files removed", zap.String("dir", s.dir), zap.Int("count", len(s.files)))
}

// transition records the run's current status. Journal and event failures
// are logged; they never fail playback.
func (uc *PlayVideoUseCase) transition(ctx context.Context, run *entity.Run, log *zap.Logger) {
	// Terminal transitions must still be recorded after an interrupt.
	if run.Finished() && ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}

	log.Debug("run status", zap.String("status", string(run.Status)))

	if uc.repo != nil {
		if err := uc.repo.Update(ctx, run); err != nil {
			log.Error("failed to update run record", zap.Error(err))
		}
	}

	if uc.publisher != nil {
		data, err := json.Marshal(entity.NewRunStatusMessage(run))
		if err != nil {
			log.Error("failed to encode status", zap.Error(err))
			return
		}
		if err := uc.publisher.PublishStatus(ctx, data); err != nil {
			log.Error("failed to publish status", zap.Error(err))
		}
	}
}

// IsUnreadable reports whether err means the source could not be opened.
func IsUnreadable(err error) bool {
	return errors.Is(err, port.ErrSourceUnreadable)
}
