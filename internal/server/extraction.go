// Package server exposes the extraction pipeline over gRPC.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/async"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/ocr"
	"github.com/joseph-ayodele/faktur-tracker/internal/repository"
)

// DocumentProcessor runs the page stages over already transcribed pages.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc ocr.Document, referenceName string) (entity.DocumentResult, error)
	ProcessDeposits(ctx context.Context, doc ocr.Document) ([]entity.DepositSlip, error)
}

// InvoiceExporter renders stored invoices as a workbook.
type InvoiceExporter interface {
	ExportInvoicesXLSX(ctx context.Context, filter entity.InvoiceFilter) ([]byte, error)
}

type ExtractionService struct {
	docs      DocumentProcessor
	queue     async.Queue
	jobs      repository.ExtractJobRepository
	invoices  repository.InvoiceRepository
	exporter  InvoiceExporter
	reference string
	logger    *slog.Logger
}

// NewExtractionService wires the service. defaultReference is used when a
// request does not name the reference company.
func NewExtractionService(
	docs DocumentProcessor,
	queue async.Queue,
	jobs repository.ExtractJobRepository,
	invoices repository.InvoiceRepository,
	exporter InvoiceExporter,
	defaultReference string,
	logger *slog.Logger,
) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{
		docs:      docs,
		queue:     queue,
		jobs:      jobs,
		invoices:  invoices,
		exporter:  exporter,
		reference: defaultReference,
		logger:    logger,
	}
}

func (s *ExtractionService) ProcessText(ctx context.Context, req *ProcessTextRequest) (*ProcessTextResponse, error) {
	if len(req.Pages) == 0 {
		return nil, status.Error(codes.InvalidArgument, "pages are required")
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	doc := ocr.Document{Format: constants.TXT, Pages: make([]entity.RawPage, len(req.Pages))}
	for i, text := range req.Pages {
		doc.Pages[i] = entity.NewRawPage(i+1, ocr.Normalize(text), nil)
	}

	if kind == constants.KindBuktiSetor {
		slips, err := s.docs.ProcessDeposits(ctx, doc)
		if err != nil {
			s.logger.Error("process text failed", "kind", kind, "error", err)
			return nil, common.ToStatus(err)
		}
		return &ProcessTextResponse{Deposits: slips}, nil
	}

	ref := s.referenceFor(req.ReferenceName)
	if ref == "" {
		return nil, status.Error(codes.InvalidArgument, "reference_name is required")
	}
	res, err := s.docs.ProcessDocument(ctx, doc, ref)
	if err != nil {
		s.logger.Error("process text failed", "kind", kind, "error", err)
		return nil, common.ToStatus(err)
	}
	s.logger.Info("text processed", "document_id", res.DocumentID, "pages", len(res.Pages), "records", len(res.Records()))
	return &ProcessTextResponse{Document: &res}, nil
}

func (s *ExtractionService) SubmitFile(ctx context.Context, req *SubmitFileRequest) (*SubmitFileResponse, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, status.Errorf(codes.InvalidArgument, "unsupported file extension %q", filepath.Ext(path))
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	ref := s.referenceFor(req.ReferenceName)
	if kind == constants.KindFaktur && ref == "" {
		return nil, status.Error(codes.InvalidArgument, "reference_name is required")
	}

	id := uuid.New()
	if _, err := s.jobs.Create(ctx, id, path, kind, format); err != nil {
		s.logger.Error("failed to create extract job", "path", path, "error", err)
		return nil, common.ToStatus(err)
	}
	job := async.Job{ID: id, Path: path, ReferenceName: ref, Kind: kind, SubmittedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("failed to enqueue extract job", "job_id", id, "error", err)
		if ferr := s.jobs.FinishFailure(context.WithoutCancel(ctx), id, err.Error()); ferr != nil {
			s.logger.Error("failed to record job failure", "job_id", id, "error", ferr)
		}
		return nil, common.ToStatus(err)
	}
	s.logger.Info("extract job submitted", "job_id", id, "path", path, "kind", kind, "request_id", common.RequestIDFromContext(ctx))
	return &SubmitFileResponse{JobID: id.String()}, nil
}

func (s *ExtractionService) GetJob(ctx context.Context, req *GetJobRequest) (*GetJobResponse, error) {
	jobID := strings.TrimSpace(req.JobID)
	v := common.NewValidator().Field("job_id", jobID, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	id := uuid.MustParse(jobID)
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return &GetJobResponse{Job: job}, nil
}

// SaveInvoices persists each invoice independently; one bad item never
// rejects the batch.
func (s *ExtractionService) SaveInvoices(ctx context.Context, req *SaveInvoicesRequest) (*SaveInvoicesResponse, error) {
	if len(req.Invoices) == 0 {
		return nil, status.Error(codes.InvalidArgument, "invoices are required")
	}
	out := &SaveInvoicesResponse{Results: make([]SaveResult, len(req.Invoices))}
	for i, raw := range req.Invoices {
		res := s.saveOne(ctx, raw)
		res.Index = i
		if res.Status == SaveStatusSaved {
			out.Saved++
		}
		out.Results[i] = res
	}
	s.logger.Info("invoices saved", "requested", len(req.Invoices), "saved", out.Saved, "request_id", common.RequestIDFromContext(ctx))
	return out, nil
}

func (s *ExtractionService) saveOne(ctx context.Context, raw json.RawMessage) SaveResult {
	if err := entity.ValidateInvoiceJSON(raw); err != nil {
		return SaveResult{Status: SaveStatusInvalid, Message: err.Error()}
	}
	var inv entity.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return SaveResult{Status: SaveStatusInvalid, Message: err.Error()}
	}
	saved, err := s.invoices.Save(ctx, &inv)
	switch {
	case err == nil:
		return SaveResult{Status: SaveStatusSaved, ID: saved.ID.String(), Serial: saved.Serial}
	case errors.Is(err, common.ErrDuplicate):
		return SaveResult{Status: SaveStatusDuplicate, Serial: inv.Serial, Message: err.Error()}
	case errors.Is(err, common.ErrValidation):
		return SaveResult{Status: SaveStatusInvalid, Serial: inv.Serial, Message: err.Error()}
	default:
		s.logger.Error("failed to save invoice", "serial", inv.Serial, "error", err)
		return SaveResult{Status: SaveStatusError, Serial: inv.Serial, Message: err.Error()}
	}
}

func (s *ExtractionService) ExportInvoices(ctx context.Context, req *ExportInvoicesRequest) (*ExportInvoicesResponse, error) {
	filter := entity.InvoiceFilter{}
	if d := strings.TrimSpace(req.Direction); d != "" {
		dir, ok := constants.Canonicalize(d)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown direction %q", d)
		}
		filter.Direction = dir
	}
	var err error
	if filter.From, err = parseDate("from_date", req.FromDate); err != nil {
		return nil, err
	}
	if filter.To, err = parseDate("to_date", req.ToDate); err != nil {
		return nil, err
	}

	b, err := s.exporter.ExportInvoicesXLSX(ctx, filter)
	if err != nil {
		s.logger.Error("failed to export invoices", "error", err)
		return nil, common.ToStatus(err)
	}
	return &ExportInvoicesResponse{
		Workbook: b,
		Filename: fmt.Sprintf("rekap_ppn_%s.xlsx", time.Now().Format("20060102")),
	}, nil
}

func (s *ExtractionService) referenceFor(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return s.reference
}

func parseKind(k string) (constants.DocumentKind, error) {
	switch strings.ToLower(strings.TrimSpace(k)) {
	case "", string(constants.KindFaktur):
		return constants.KindFaktur, nil
	case string(constants.KindBuktiSetor), "bukti":
		return constants.KindBuktiSetor, nil
	default:
		return "", status.Errorf(codes.InvalidArgument, "unknown kind %q", k)
	}
}

func parseDate(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s invalid (YYYY-MM-DD): %v", field, err)
	}
	return &t, nil
}
