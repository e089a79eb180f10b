// Package async runs document extraction jobs on a bounded worker pool.
package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/faktur-tracker/constants"
)

// Job is one document to extract.
type Job struct {
	ID            uuid.UUID
	Path          string
	ReferenceName string
	Kind          constants.DocumentKind
	SubmittedAt   time.Time
}

// JobProcessor does the work for a dequeued job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, job Job) error
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
