package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
	"github.com/fiapx/fiapx-ascii-player/internal/domain/port"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/archive"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/config"
	"github.com/fiapx/fiapx-ascii-player/internal/infra/imaging"
	"github.com/fiapx/fiapx-ascii-player/internal/player"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRenderer struct {
	frames entity.FrameSequence
	delay  time.Duration
}

func (r *recordingRenderer) Render(_ context.Context, frames entity.FrameSequence, delay time.Duration) error {
	r.frames = frames
	r.delay = delay
	return nil
}

// fakeExtractor writes the given gray pixel rows as PNG stills.
type fakeExtractor struct {
	frames    [][]uint8
	fps       float64
	advisory  int
	gotSource string
}

func (f *fakeExtractor) ExtractFrames(_ context.Context, videoPath, outputDir string) (*port.FrameExtractionResult, error) {
	f.gotSource = videoPath
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for i, row := range f.frames {
		p := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.png", i))
		if err := writeGrayPNG(p, row); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, port.ErrSourceUnreadable
	}
	return &port.FrameExtractionResult{
		FramePaths:    paths,
		FrameCount:    len(paths),
		AdvisoryCount: f.advisory,
		FrameRate:     f.fps,
	}, nil
}

type memRepo struct {
	runs    map[uuid.UUID]entity.Run
	history []entity.RunStatus
}

func newMemRepo() *memRepo { return &memRepo{runs: map[uuid.UUID]entity.Run{}} }

func (m *memRepo) Create(_ context.Context, r *entity.Run) error {
	m.runs[r.ID] = *r
	m.history = append(m.history, r.Status)
	return nil
}

func (m *memRepo) Update(_ context.Context, r *entity.Run) error {
	m.runs[r.ID] = *r
	m.history = append(m.history, r.Status)
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, port.ErrRunNotFound
	}
	return &r, nil
}

type memPublisher struct {
	msgs []entity.RunStatusMessage
}

func (m *memPublisher) PublishStatus(_ context.Context, data []byte) error {
	var msg entity.RunStatusMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

type fakeStorage struct {
	downloaded string
	uploaded   string
	size       int64
}

func (f *fakeStorage) DownloadSource(_ context.Context, bucket, key, dest string) error {
	f.downloaded = bucket + "/" + key
	return os.WriteFile(dest, []byte("video"), 0644)
}

func (f *fakeStorage) UploadArchive(_ context.Context, key string, r io.Reader, size int64) error {
	f.uploaded = key
	f.size = size
	_, err := io.Copy(io.Discard, r)
	return err
}

// writeGrayPNG stores a one-row gray still. PNG keeps the exact values.
func writeGrayPNG(path string, row []uint8) error {
	img := image.NewRGBA(image.Rect(0, 0, len(row), 1))
	for x, v := range row {
		img.Set(x, 0, color.RGBA{v, v, v, 255})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func newUseCase(t *testing.T, c Collaborators, cfg PlayVideoConfig) (*PlayVideoUseCase, *recordingRenderer) {
	t.Helper()
	r := &recordingRenderer{}
	if c.Resizer == nil {
		c.Resizer = imaging.NewResizer(imaging.ResizerConfig{Mode: config.ResizeNone}, zap.NewNop())
	}
	c.Player = player.New(r, zap.NewNop())
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(t.TempDir(), "frames")
	}
	return NewPlayVideoUseCase(c, zap.NewNop(), cfg), r
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))
	return path
}

func TestExecuteTwoFrameScenario(t *testing.T) {
	ex := &fakeExtractor{frames: [][]uint8{{0, 255}, {128, 64}}, fps: 30, advisory: 3}
	repo := newMemRepo()
	pub := &memPublisher{}
	uc, r := newUseCase(t, Collaborators{Extractor: ex, Repo: repo, Publisher: pub}, PlayVideoConfig{})

	src := touch(t, filepath.Join(t.TempDir(), "clip.mp4"))
	run, err := uc.Execute(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, entity.FrameSequence{
		{[]byte{' ', '@'}},
		{[]byte{'+', ':'}},
	}, r.frames)
	assert.Equal(t, src, ex.gotSource)
	assert.Equal(t, player.FrameDelay(0, 30), r.delay)

	assert.Equal(t, entity.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.AdvisoryFrames)
	assert.Equal(t, 2, run.FrameCount)
	assert.Equal(t, 2, run.Width)
	assert.Equal(t, 1, run.Height)

	assert.Equal(t, []entity.RunStatus{
		entity.RunStatusPending,
		entity.RunStatusExtracting,
		entity.RunStatusConverting,
		entity.RunStatusPlaying,
		entity.RunStatusCompleted,
	}, repo.history)
	require.Len(t, pub.msgs, 4)
	assert.Equal(t, entity.RunStatusCompleted, pub.msgs[3].Status)
}

func TestExecuteDirectorySkipsExtraction(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeGrayPNG(filepath.Join(dir, "frame_0001.png"), []uint8{200}))
	require.NoError(t, writeGrayPNG(filepath.Join(dir, "frame_0000.png"), []uint8{10}))

	ex := &fakeExtractor{}
	uc, r := newUseCase(t, Collaborators{Extractor: ex}, PlayVideoConfig{FrameDelay: 5 * time.Millisecond})

	_, err := uc.Execute(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, ex.gotSource)
	assert.Equal(t, entity.FrameSequence{{[]byte{' '}}, {[]byte{'%'}}}, r.frames)
	assert.Equal(t, 5*time.Millisecond, r.delay)
}

func TestExecuteMissingSourceFailsFast(t *testing.T) {
	repo := newMemRepo()
	uc, r := newUseCase(t, Collaborators{Extractor: &fakeExtractor{}, Repo: repo}, PlayVideoConfig{})

	run, err := uc.Execute(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)
	assert.True(t, IsUnreadable(err))
	assert.Equal(t, entity.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
	assert.Nil(t, r.frames)

	stored, err := repo.FindByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusFailed, stored.Status)
}

func TestExecuteZeroFramesFailsFast(t *testing.T) {
	uc, r := newUseCase(t, Collaborators{Extractor: &fakeExtractor{}}, PlayVideoConfig{})

	_, err := uc.Execute(context.Background(), touch(t, filepath.Join(t.TempDir(), "empty.mp4")))
	assert.True(t, errors.Is(err, port.ErrSourceUnreadable))
	assert.Nil(t, r.frames)
}

func TestExecuteNoExtractRequiresDirectory(t *testing.T) {
	uc, _ := newUseCase(t, Collaborators{Extractor: &fakeExtractor{}}, PlayVideoConfig{NoExtract: true})

	_, err := uc.Execute(context.Background(), touch(t, filepath.Join(t.TempDir(), "clip.mp4")))
	assert.True(t, IsUnreadable(err))
}

func TestExecuteObjectSourceWithoutStorage(t *testing.T) {
	uc, _ := newUseCase(t, Collaborators{Extractor: &fakeExtractor{frames: [][]uint8{{1}}}}, PlayVideoConfig{})

	_, err := uc.Execute(context.Background(), "s3://videos/clip.mp4")
	assert.True(t, IsUnreadable(err))
}

func TestExecuteObjectSourceDownloadsAndArchives(t *testing.T) {
	ex := &fakeExtractor{frames: [][]uint8{{1}, {2}}}
	st := &fakeStorage{}
	out := filepath.Join(t.TempDir(), "scratch")
	uc, _ := newUseCase(t, Collaborators{
		Extractor: ex,
		Storage:   st,
		Archiver:  archive.NewZipCreator("frames"),
	}, PlayVideoConfig{OutputDir: out, ArchiveFrames: true})

	run, err := uc.Execute(context.Background(), "s3://videos/clips/clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, "videos/clips/clip.mp4", st.downloaded)
	assert.Equal(t, filepath.Join(out, "source.mp4"), ex.gotSource)
	assert.Equal(t, run.ID.String()+"/frames.zip", st.uploaded)
	assert.Greater(t, st.size, int64(0))
	assert.FileExists(t, filepath.Join(out, "frames_"+run.ID.String()+".zip"))
}

func TestExecuteCleanupRemovesScratch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scratch")
	uc, r := newUseCase(t, Collaborators{Extractor: &fakeExtractor{frames: [][]uint8{{100}}}},
		PlayVideoConfig{OutputDir: out, CleanupFrames: true})

	_, err := uc.Execute(context.Background(), touch(t, filepath.Join(t.TempDir(), "clip.mp4")))
	require.NoError(t, err)
	assert.Len(t, r.frames, 1)
	assert.NoDirExists(t, out)
}

func TestExecuteCleanupKeepsUnrelatedFiles(t *testing.T) {
	out := t.TempDir()
	keep := filepath.Join(out, "holiday.mov")
	require.NoError(t, os.WriteFile(keep, []byte("mine"), 0644))

	uc, _ := newUseCase(t, Collaborators{Extractor: &fakeExtractor{frames: [][]uint8{{100}, {200}}}},
		PlayVideoConfig{OutputDir: out, CleanupFrames: true})

	_, err := uc.Execute(context.Background(), touch(t, filepath.Join(t.TempDir(), "clip.mp4")))
	require.NoError(t, err)

	assert.FileExists(t, keep)
	assert.NoFileExists(t, filepath.Join(out, "frame_0000.png"))
	assert.NoFileExists(t, filepath.Join(out, "frame_0001.png"))
}

func TestExecuteCleanupRemovesDownloadAndArchive(t *testing.T) {
	out := t.TempDir()
	keep := filepath.Join(out, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("mine"), 0644))

	uc, _ := newUseCase(t, Collaborators{
		Extractor: &fakeExtractor{frames: [][]uint8{{1}}},
		Storage:   &fakeStorage{},
		Archiver:  archive.NewZipCreator("frames"),
	}, PlayVideoConfig{OutputDir: out, ArchiveFrames: true, CleanupFrames: true})

	run, err := uc.Execute(context.Background(), "s3://videos/clip.mp4")
	require.NoError(t, err)

	assert.FileExists(t, keep)
	assert.NoFileExists(t, filepath.Join(out, "source.mp4"))
	assert.NoFileExists(t, filepath.Join(out, "frames_"+run.ID.String()+".zip"))
	assert.NoFileExists(t, filepath.Join(out, "frame_0000.png"))
}

func TestExecuteCleanupKeepsUserDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeGrayPNG(filepath.Join(dir, "frame_0000.png"), []uint8{10}))

	uc, _ := newUseCase(t, Collaborators{Extractor: &fakeExtractor{}}, PlayVideoConfig{CleanupFrames: true})
	_, err := uc.Execute(context.Background(), dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestExecuteKeepsScratchByDefault(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scratch")
	uc, _ := newUseCase(t, Collaborators{Extractor: &fakeExtractor{frames: [][]uint8{{100}}}}, PlayVideoConfig{OutputDir: out})

	_, err := uc.Execute(context.Background(), touch(t, filepath.Join(t.TempDir(), "clip.mp4")))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "frame_0000.png"))
}

func TestExecuteCancelledContext(t *testing.T) {
	repo := newMemRepo()
	uc, r := newUseCase(t, Collaborators{Extractor: &fakeExtractor{frames: [][]uint8{{1}, {2}}}, Repo: repo}, PlayVideoConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := uc.Execute(ctx, touch(t, filepath.Join(t.TempDir(), "clip.mp4")))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r.frames)
	assert.Equal(t, entity.RunStatusFailed, repo.runs[run.ID].Status)
}
