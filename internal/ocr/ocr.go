// Package ocr turns scanned faktur and bukti setor files into raw page text.
// It shells out to pdftoppm and tesseract; any failure on any page fails the
// whole document with common.ErrOCR.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	// HeicConverter is one of magick | heif-convert | sips; phone photos
	// arrive as HEIC and tesseract cannot read them directly.
	HeicConverter string

	TesseractLang string // default "ind"
	TessdataDir   string
	PSM           int // default 6, a uniform block of text
	DPI           int // rasterization DPI for PDFs, default 300
	MaxPages      int // 0 = no limit
}

// Document is the OCR output of one source file, one RawPage per page.
type Document struct {
	SourcePath string
	Format     string
	Pages      []entity.RawPage
	Duration   time.Duration
}

// Text joins every page with a form feed.
func (d Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\f")
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.HeicConverter == "" {
		cfg.HeicConverter = "magick"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "ind"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// ConfigFrom maps application config onto the extractor config.
func ConfigFrom(c common.OCRConfig) Config {
	return Config{
		Pdftoppm:      c.Pdftoppm,
		Tesseract:     c.Tesseract,
		HeicConverter: c.HeicConverter,
		TesseractLang: c.TesseractLang,
		TessdataDir:   c.TessdataDir,
		PSM:           c.PSM,
		DPI:           c.DPI,
		MaxPages:      c.MaxPages,
	}
}

// WithRunner swaps the command runner, mainly for tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Init checks the tesseract binary once. Callers treat an error as fatal at start-up.
func (e *Extractor) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")
		if err != nil {
			e.initErr = fmt.Errorf("%w: tesseract unavailable: %v: %s", common.ErrOCR, err, strings.TrimSpace(string(errb)))
			return
		}
		version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
		e.logger.Info("ocr.init", "tesseract", version, "lang", e.cfg.TesseractLang, "psm", e.cfg.PSM)
	})
	return e.initErr
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("ocr.extract.start", "path", path, "format", format)

	doc := Document{SourcePath: path, Format: format}
	var err error
	switch format {
	case constants.PDF:
		doc.Pages, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		var page entity.RawPage
		if constants.IsHEIC(ext) {
			page, err = e.extractHEIC(ctx, path)
		} else {
			page, err = e.extractImage(ctx, path, 1)
		}
		doc.Pages = []entity.RawPage{page}
	case constants.TXT:
		doc.Pages, err = readTextPages(path)
	default:
		return doc, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidInput, ext)
	}
	doc.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.extract.failed", "path", path, "error", err)
		return Document{SourcePath: path, Format: format}, err
	}
	e.logger.Info("ocr.extract.ok", "path", path, "pages", len(doc.Pages), "duration_ms", doc.Duration.Milliseconds())
	return doc, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string, index int) (entity.RawPage, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return entity.RawPage{}, fmt.Errorf("%w: page %d: decode image: %v", common.ErrOCR, index, err)
	}
	txt, err := e.tesseract(ctx, path)
	if err != nil {
		return entity.RawPage{}, fmt.Errorf("%w: page %d: %v", common.ErrOCR, index, err)
	}
	page := entity.NewRawPage(index, txt, img)
	page.Confidence = heuristicConfidence(txt)
	return page, nil
}

// readTextPages loads pre-transcribed text; form feeds separate pages.
func readTextPages(path string) ([]entity.RawPage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOCR, err)
	}
	var pages []entity.RawPage
	for i, chunk := range strings.Split(string(b), "\f") {
		txt := Normalize(chunk)
		page := entity.NewRawPage(i+1, txt, nil)
		page.Confidence = heuristicConfidence(txt)
		pages = append(pages, page)
	}
	return pages, nil
}
