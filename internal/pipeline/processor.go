package pipeline

import (
	"context"
	"image"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/faktur-tracker/internal/buktisetor"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/ocr"
)

// TextExtractor produces the raw pages of a file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.Document, error)
}

// PreviewSaver stores a page image and returns its key.
type PreviewSaver interface {
	Save(img image.Image, pageIndex int) (string, error)
}

// Processor runs OCR once per document, then the page stages on a bounded pool.
type Processor struct {
	logger   *slog.Logger
	pages    *PageProcessor
	ocr      TextExtractor
	previews PreviewSaver
	workers  int
}

// NewProcessor wires the stages. previews may be nil.
func NewProcessor(logger *slog.Logger, pages *PageProcessor, extractor TextExtractor, previews PreviewSaver, workers int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Processor{logger: logger, pages: pages, ocr: extractor, previews: previews, workers: workers}
}

// ProcessFile OCRs path and processes every page. An OCR failure fails the document.
func (p *Processor) ProcessFile(ctx context.Context, path, referenceName string) (entity.DocumentResult, error) {
	doc, err := p.ocr.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.ocr.failed", "path", path, "error", err)
		return entity.DocumentResult{SourcePath: path}, err
	}
	p.logger.Info("processor.ocr.ok", "path", path, "pages", len(doc.Pages), "duration_ms", doc.Duration.Milliseconds())
	return p.ProcessDocument(ctx, doc, referenceName)
}

// ProcessDocument processes pages concurrently and returns results in page order.
// Cancellation is observed between pages; a cancelled run returns ctx.Err().
func (p *Processor) ProcessDocument(ctx context.Context, doc ocr.Document, referenceName string) (entity.DocumentResult, error) {
	out := entity.DocumentResult{
		DocumentID: uuid.New(),
		SourcePath: doc.SourcePath,
		Pages:      make([]entity.PageResult, len(doc.Pages)),
	}

	g, gctx := errgroup.WithContext(common.WithDocumentID(ctx, out.DocumentID.String()))
	g.SetLimit(p.workers)
	for i, page := range doc.Pages {
		if gctx.Err() != nil {
			break
		}
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := p.pages.Process(gctx, referenceName, page)
			key := p.savePreview(page)
			if res.Record != nil {
				res.Record.PreviewKey = key
			} else if res.Error != nil {
				res.Error.PreviewKey = key
			}
			out.Pages[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	sort.SliceStable(out.Pages, func(a, b int) bool { return out.Pages[a].PageIndex < out.Pages[b].PageIndex })
	p.logger.Info("processor.document.done",
		"document_id", out.DocumentID,
		"pages", len(out.Pages),
		"records", len(out.Records()),
		"errors", len(out.Errors()),
	)
	return out, nil
}

// ProcessDepositFile OCRs a bukti setor file; every page yields a slip.
func (p *Processor) ProcessDepositFile(ctx context.Context, path string) ([]entity.DepositSlip, error) {
	doc, err := p.ocr.Extract(ctx, path)
	if err != nil {
		p.logger.Error("processor.ocr.failed", "path", path, "error", err)
		return nil, err
	}
	return p.ProcessDeposits(ctx, doc)
}

// ProcessDeposits reads a deposit slip from each page in order.
func (p *Processor) ProcessDeposits(ctx context.Context, doc ocr.Document) ([]entity.DepositSlip, error) {
	slips := make([]entity.DepositSlip, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return slips, err
		}
		slip := buktisetor.Extract(page.Index, page.Text())
		slip.PreviewKey = p.savePreview(page)
		if slip.NeedsManualEntry {
			p.logger.Warn("processor.deposit.incomplete", "path", doc.SourcePath, "page_index", page.Index)
		}
		slips = append(slips, slip)
	}
	return slips, nil
}

// savePreview is best effort; a failed preview never fails the page.
func (p *Processor) savePreview(page entity.RawPage) string {
	if p.previews == nil || page.Image == nil {
		return ""
	}
	key, err := p.previews.Save(page.Image, page.Index)
	if err != nil {
		p.logger.Warn("processor.preview.failed", "page_index", page.Index, "error", err)
		return ""
	}
	return key
}
