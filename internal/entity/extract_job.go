package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents an extract job for data transfer between layers.
type ExtractJob struct {
	ID           uuid.UUID       `json:"id"`
	SourcePath   string          `json:"source_path"`
	Kind         string          `json:"kind"`
	Format       string          `json:"format"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	PageCount    int             `json:"page_count"`
	FailedPages  int             `json:"failed_pages"`
	ResultJSON   json.RawMessage `json:"result_json,omitempty"`
}
