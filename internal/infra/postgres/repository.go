package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fiapx/fiapx-ascii-player/internal/domain/entity"
	"github.com/fiapx/fiapx-ascii-player/internal/domain/port"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS playback_runs (
	id              UUID PRIMARY KEY,
	source          TEXT        NOT NULL,
	frames_dir      TEXT        NOT NULL,
	status          TEXT        NOT NULL,
	advisory_frames INTEGER     NOT NULL DEFAULT 0,
	frame_count     INTEGER     NOT NULL DEFAULT 0,
	width           INTEGER     NOT NULL DEFAULT 0,
	height          INTEGER     NOT NULL DEFAULT 0,
	frame_delay_ms  BIGINT      NOT NULL DEFAULT 0,
	error_message   TEXT        NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ
)`

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create playback_runs: %w", err)
	}
	return nil
}

func (r *RunRepository) Create(ctx context.Context, run *entity.Run) error {
	query := `
		INSERT INTO playback_runs (
			id, source, frames_dir, status, advisory_frames, frame_count,
			width, height, frame_delay_ms, error_message,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.Source, run.FramesDir, string(run.Status),
		run.AdvisoryFrames, run.FrameCount, run.Width, run.Height,
		run.FrameDelay.Milliseconds(), run.ErrorMessage,
		run.CreatedAt, run.UpdatedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepository) Update(ctx context.Context, run *entity.Run) error {
	query := `
		UPDATE playback_runs SET
			frames_dir=$2, status=$3, advisory_frames=$4, frame_count=$5, width=$6,
			height=$7, frame_delay_ms=$8, error_message=$9, updated_at=$10, completed_at=$11
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		run.ID, run.FramesDir, string(run.Status), run.AdvisoryFrames, run.FrameCount,
		run.Width, run.Height, run.FrameDelay.Milliseconds(),
		run.ErrorMessage, run.UpdatedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

func (r *RunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	query := `
		SELECT id, source, frames_dir, status, advisory_frames, frame_count,
			width, height, frame_delay_ms, error_message,
			created_at, updated_at, completed_at
		FROM playback_runs WHERE id=$1`

	run := &entity.Run{}
	var status string
	var delayMs int64
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Source, &run.FramesDir, &status,
		&run.AdvisoryFrames, &run.FrameCount, &run.Width, &run.Height,
		&delayMs, &run.ErrorMessage,
		&run.CreatedAt, &run.UpdatedAt, &run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("find run %s: %w", id, port.ErrRunNotFound)
		}
		return nil, fmt.Errorf("find run by id: %w", err)
	}
	run.Status = entity.RunStatus(status)
	run.FrameDelay = time.Duration(delayMs) * time.Millisecond
	return run, nil
}
