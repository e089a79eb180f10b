package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

// JobOutcome summarizes a finished document run.
type JobOutcome struct {
	PageCount   int
	FailedPages int
	Result      any // marshalled into result_json
}

type ExtractJobRepository interface {
	Create(ctx context.Context, id uuid.UUID, sourcePath string, kind constants.DocumentKind, format string) (*entity.ExtractJob, error)
	Start(ctx context.Context, id uuid.UUID) error
	FinishSuccess(ctx context.Context, id uuid.UUID, outcome JobOutcome) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log}
}

// Create records a QUEUED job.
func (r *extractJobRepo) Create(ctx context.Context, id uuid.UUID, sourcePath string, kind constants.DocumentKind, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:         id,
		SourcePath: sourcePath,
		Kind:       string(kind),
		Format:     format,
		StartedAt:  time.Now().UTC(),
		Status:     string(constants.JobStatusQueued),
	}
	_, err := r.db.exec(ctx,
		`INSERT INTO extract_jobs (id, source_path, kind, format, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID.String(), job.SourcePath, job.Kind, job.Format, job.Status, job.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		r.log.Error("extract_job create failed", "job_id", id, "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("extract_job queued", "job_id", id, "path", sourcePath, "kind", kind)
	return job, nil
}

func (r *extractJobRepo) Start(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id,
		`UPDATE extract_jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(constants.JobStatusRunning), time.Now().UTC().Format(time.RFC3339Nano), id.String())
}

// FinishSuccess marks the job OK, or PARTIAL when some pages failed.
func (r *extractJobRepo) FinishSuccess(ctx context.Context, id uuid.UUID, outcome JobOutcome) error {
	var result []byte
	if outcome.Result != nil {
		b, err := json.Marshal(outcome.Result)
		if err != nil {
			return fmt.Errorf("marshal job result: %w", err)
		}
		result = b
	}
	status := constants.JobStatusOK
	if outcome.FailedPages > 0 {
		status = constants.JobStatusPartial
	}
	err := r.update(ctx, id,
		`UPDATE extract_jobs SET status = ?, page_count = ?, failed_pages = ?, result_json = ?, finished_at = ? WHERE id = ?`,
		string(status), outcome.PageCount, outcome.FailedPages, string(result), time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return err
	}
	r.log.Info("extract_job finished", "job_id", id, "status", status, "pages", outcome.PageCount, "failed_pages", outcome.FailedPages)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	err := r.update(ctx, id,
		`UPDATE extract_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", id, "error", message)
	return nil
}

func (r *extractJobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractJob, error) {
	var (
		job                   = entity.ExtractJob{ID: id}
		started               string
		errMsg, result, ended sql.NullString
	)
	err := r.db.queryRow(ctx,
		`SELECT source_path, kind, format, status, error_message, page_count, failed_pages, result_json, started_at, finished_at
		 FROM extract_jobs WHERE id = ?`, id.String()).
		Scan(&job.SourcePath, &job.Kind, &job.Format, &job.Status, &errMsg, &job.PageCount, &job.FailedPages, &result, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: extract job %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	job.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if result.Valid && result.String != "" {
		job.ResultJSON = json.RawMessage(result.String)
	}
	if ended.Valid {
		if t, err := time.Parse(time.RFC3339Nano, ended.String); err == nil {
			job.FinishedAt = &t
		}
	}
	return &job, nil
}

func (r *extractJobRepo) update(ctx context.Context, id uuid.UUID, q string, args ...any) error {
	res, err := r.db.exec(ctx, q, args...)
	if err != nil {
		r.log.Error("extract_job update failed", "job_id", id, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: extract job %s", common.ErrNotFound, id)
	}
	return nil
}
