package async

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/repository"
)

// DocumentProcessor is the extraction pipeline as seen by the queue.
type DocumentProcessor interface {
	ProcessFile(ctx context.Context, path, referenceName string) (entity.DocumentResult, error)
	ProcessDepositFile(ctx context.Context, path string) ([]entity.DepositSlip, error)
}

// ExtractJobProcessor runs the pipeline for a job and records its status.
type ExtractJobProcessor struct {
	docs   DocumentProcessor
	jobs   repository.ExtractJobRepository
	logger *slog.Logger
}

func NewExtractJobProcessor(docs DocumentProcessor, jobs repository.ExtractJobRepository, logger *slog.Logger) *ExtractJobProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractJobProcessor{docs: docs, jobs: jobs, logger: logger}
}

func (p *ExtractJobProcessor) ProcessJob(ctx context.Context, job Job) error {
	if err := p.jobs.Start(ctx, job.ID); err != nil {
		return err
	}

	var (
		outcome repository.JobOutcome
		err     error
	)
	switch job.Kind {
	case constants.KindBuktiSetor:
		var slips []entity.DepositSlip
		slips, err = p.docs.ProcessDepositFile(ctx, job.Path)
		outcome = repository.JobOutcome{PageCount: len(slips), Result: slips}
		for _, s := range slips {
			if s.NeedsManualEntry {
				outcome.FailedPages++
			}
		}
	default:
		var doc entity.DocumentResult
		doc, err = p.docs.ProcessFile(ctx, job.Path, job.ReferenceName)
		outcome = repository.JobOutcome{PageCount: len(doc.Pages), FailedPages: len(doc.Errors()), Result: doc}
	}

	if err != nil {
		// the job context may already be expired; record the failure regardless
		if ferr := p.jobs.FinishFailure(context.WithoutCancel(ctx), job.ID, err.Error()); ferr != nil {
			p.logger.Error("failed to record job failure", "job_id", job.ID, "error", ferr)
		}
		return err
	}
	return p.jobs.FinishSuccess(ctx, job.ID, outcome)
}
