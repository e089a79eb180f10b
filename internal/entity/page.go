package entity

import (
	"image"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/faktur-tracker/constants"
)

// NotFound is the sentinel written into text fields the pipeline could not extract.
const NotFound = "not found"

// RawPage is one OCR-transcribed page. Lines keep OCR reading order.
// Image is owned by the caller and is only forwarded to the preview store.
type RawPage struct {
	Index      int         `json:"index"`
	Lines      []string    `json:"lines"`
	Image      image.Image `json:"-"`
	Confidence float32     `json:"confidence,omitempty"`
}

// NewRawPage splits OCR text into lines.
func NewRawPage(index int, text string, img image.Image) RawPage {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return RawPage{Index: index, Lines: strings.Split(text, "\n"), Image: img}
}

// Text joins the page lines back into a single string.
func (p RawPage) Text() string {
	return strings.Join(p.Lines, "\n")
}

// PageRecord is the structured result for one invoice page.
type PageRecord struct {
	PageIndex    int                 `json:"page_index"`
	Direction    constants.Direction `json:"direction"`
	Counterparty Counterparty        `json:"counterparty"`
	Identity     InvoiceIdentity     `json:"identity"`
	Amounts      MonetaryAmounts     `json:"amounts"`
	Description  string              `json:"description"`
	Month        string              `json:"month"`
	Warnings     []string            `json:"warnings,omitempty"`
	NeedsReview  bool                `json:"needs_review"`
	PreviewKey   string              `json:"preview_key,omitempty"`
	RawText      string              `json:"raw_text"`
}

// PageError reports a page that contributed no record.
type PageError struct {
	PageIndex  int    `json:"page_index"`
	Message    string `json:"message"`
	PreviewKey string `json:"preview_key,omitempty"`
	RawText    string `json:"raw_text"`
}

func (e PageError) Error() string {
	return e.Message
}

// PageResult holds exactly one of Record or Error.
type PageResult struct {
	PageIndex int         `json:"page_index"`
	Record    *PageRecord `json:"record,omitempty"`
	Error     *PageError  `json:"error,omitempty"`
}

// OK reports whether the page produced a record.
func (r PageResult) OK() bool {
	return r.Record != nil
}

// DocumentResult is the ordered outcome of processing one document.
type DocumentResult struct {
	DocumentID uuid.UUID    `json:"document_id"`
	SourcePath string       `json:"source_path,omitempty"`
	Pages      []PageResult `json:"pages"`
}

// Records returns the successful page records in page order.
func (d DocumentResult) Records() []PageRecord {
	out := make([]PageRecord, 0, len(d.Pages))
	for _, p := range d.Pages {
		if p.Record != nil {
			out = append(out, *p.Record)
		}
	}
	return out
}

// Errors returns the failed pages in page order.
func (d DocumentResult) Errors() []PageError {
	var out []PageError
	for _, p := range d.Pages {
		if p.Error != nil {
			out = append(out, *p.Error)
		}
	}
	return out
}
