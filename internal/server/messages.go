package server

import (
	"encoding/json"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

type ProcessTextRequest struct {
	ReferenceName string   `json:"reference_name"`
	Kind          string   `json:"kind"`
	Pages         []string `json:"pages"`
}

type ProcessTextResponse struct {
	Document *entity.DocumentResult `json:"document,omitempty"`
	Deposits []entity.DepositSlip   `json:"deposits,omitempty"`
}

type SubmitFileRequest struct {
	Path          string `json:"path"`
	ReferenceName string `json:"reference_name"`
	Kind          string `json:"kind"`
}

type SubmitFileResponse struct {
	JobID string `json:"job_id"`
}

type GetJobRequest struct {
	JobID string `json:"job_id"`
}

type GetJobResponse struct {
	Job *entity.ExtractJob `json:"job"`
}

// SaveInvoicesRequest carries serialized entity.Invoice objects.
type SaveInvoicesRequest struct {
	Invoices []json.RawMessage `json:"invoices"`
}

// Per-item outcomes of SaveInvoices.
const (
	SaveStatusSaved     = "SAVED"
	SaveStatusDuplicate = "DUPLICATE"
	SaveStatusInvalid   = "INVALID"
	SaveStatusError     = "ERROR"
)

type SaveResult struct {
	Index   int    `json:"index"`
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Serial  string `json:"serial,omitempty"`
	Message string `json:"message,omitempty"`
}

type SaveInvoicesResponse struct {
	Results []SaveResult `json:"results"`
	Saved   int          `json:"saved"`
}

type ExportInvoicesRequest struct {
	Direction string `json:"direction"`
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
}

type ExportInvoicesResponse struct {
	Workbook []byte `json:"workbook"`
	Filename string `json:"filename"`
}
