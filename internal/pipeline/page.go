// Package pipeline runs the faktur extraction stages over the pages of a document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/faktur-tracker/internal/amounts"
	"github.com/joseph-ayodele/faktur-tracker/internal/classify"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/counterparty"
	"github.com/joseph-ayodele/faktur-tracker/internal/description"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/identity"
)

// Advisory warnings attached to degraded pages.
const (
	WarnWholeDocument  = "classified without buyer section; counterparty searched in whole page"
	WarnNameMissing    = "counterparty name not found"
	WarnTaxIDMissing   = "counterparty NPWP not found"
	WarnTaxBaseMissing = "tax base (DPP) not found"
	WarnVATEstimated   = "VAT (PPN) estimated from statutory rate"
	WarnVATOverridden  = "tax base swapped; anchored DPP reused as VAT"
	WarnVATOffRate     = "VAT (PPN) far from statutory rate of tax base"
	WarnNoDescription  = "item description not found"
)

type Config struct {
	Workers  int
	Classify classify.Config
	Amounts  amounts.Config
}

// ConfigFrom maps application config onto the pipeline config.
func ConfigFrom(c common.PipelineConfig) Config {
	return Config{
		Workers: c.Workers,
		Classify: classify.Config{
			AnchoredThreshold: c.AnchoredThreshold,
			FallbackThreshold: c.FallbackThreshold,
		},
		Amounts: amounts.Config{
			OutlierRatio: c.OutlierRatio,
			SwapRatio:    c.SwapRatio,
			VATRate:      c.VATRate,
		},
	}
}

// PageProcessor turns one page of text into a record or a page error.
// It holds no per-document state.
type PageProcessor struct {
	classify classify.Config
	amounts  *amounts.Extractor
	logger   *slog.Logger
}

func NewPageProcessor(cfg Config, logger *slog.Logger) *PageProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageProcessor{classify: cfg.Classify, amounts: amounts.New(cfg.Amounts), logger: logger}
}

// Process never panics: a failure inside a stage becomes a page error.
func (p *PageProcessor) Process(ctx context.Context, referenceName string, page entity.RawPage) (res entity.PageResult) {
	text := page.Text()
	res.PageIndex = page.Index

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.page.panic", "document_id", common.DocumentIDFromContext(ctx), "page_index", page.Index, "panic", r)
			res = pageError(page.Index, text, fmt.Sprintf("internal error: %v", r))
		}
	}()

	cls := classify.New(referenceName, p.classify).Classify(text)
	if !cls.Resolved() {
		p.logger.Info("pipeline.page.unresolved", "document_id", common.DocumentIDFromContext(ctx), "page_index", page.Index)
		return pageError(page.Index, text, common.ErrReferenceNotFound.Error())
	}

	block := cls.CounterpartyBlock
	if cls.WholeDocument {
		block = text
	}
	party := counterparty.Extract(block)

	id, err := identity.Extract(text)
	if err != nil {
		p.logger.Info("pipeline.page.identity_missing", "document_id", common.DocumentIDFromContext(ctx), "page_index", page.Index, "error", err)
		return pageError(page.Index, text, err.Error())
	}

	money := p.amounts.Extract(text)
	desc := description.Extract(text)

	rec := &entity.PageRecord{
		PageIndex:    page.Index,
		Direction:    cls.Direction,
		Counterparty: party,
		Identity:     id,
		Amounts:      money,
		Description:  desc,
		Month:        identity.MonthName(id.IssuedOn.Month()),
		RawText:      text,
	}
	rec.Warnings = warnings(cls, party, money, desc)
	if p.amounts.OffRate(money) {
		rec.Warnings = append(rec.Warnings, WarnVATOffRate)
	}
	rec.NeedsReview = len(rec.Warnings) > 0

	p.logger.Debug("pipeline.page.ok",
		"page_index", page.Index,
		"direction", cls.Direction,
		"serial", id.Serial,
		"score", cls.Score,
		"warnings", len(rec.Warnings),
	)
	res.Record = rec
	return res
}

func warnings(cls classify.Result, party entity.Counterparty, money entity.MonetaryAmounts, desc string) []string {
	var w []string
	if cls.WholeDocument {
		w = append(w, WarnWholeDocument)
	}
	if !party.NameFound {
		w = append(w, WarnNameMissing)
	}
	if !party.TaxIDFound {
		w = append(w, WarnTaxIDMissing)
	}
	if !money.TaxBaseFound {
		w = append(w, WarnTaxBaseMissing)
	}
	if money.VATSource == amounts.SourceEstimate {
		w = append(w, WarnVATEstimated)
	}
	if money.VATWasOverridden {
		w = append(w, WarnVATOverridden)
	}
	if desc == entity.NotFound {
		w = append(w, WarnNoDescription)
	}
	return w
}

func pageError(index int, text, msg string) entity.PageResult {
	return entity.PageResult{
		PageIndex: index,
		Error:     &entity.PageError{PageIndex: index, Message: msg, RawText: text},
	}
}
