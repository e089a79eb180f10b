package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

// extractHEIC converts a HEIC/HEIF photo to PNG in a temp dir and OCRs that.
func (e *Extractor) extractHEIC(ctx context.Context, path string) (entity.RawPage, error) {
	tmpDir, err := os.MkdirTemp("", "faktur-heic-*")
	if err != nil {
		return entity.RawPage{}, fmt.Errorf("%w: temp dir: %v", common.ErrOCR, err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	out := filepath.Join(tmpDir, "page.png")
	var args []string
	switch e.cfg.HeicConverter {
	case "magick", "heif-convert":
		args = []string{path, out}
	case "sips":
		args = []string{"-s", "format", "png", path, "--out", out}
	default:
		return entity.RawPage{}, fmt.Errorf("%w: HEIC not supported: converter must be one of heif-convert | magick | sips, got %q",
			common.ErrOCR, e.cfg.HeicConverter)
	}
	if _, errb, err := e.runner.Run(ctx, e.cfg.HeicConverter, args...); err != nil {
		return entity.RawPage{}, fmt.Errorf("%w: %s convert failed: %v: %s", common.ErrOCR, e.cfg.HeicConverter, err, strings.TrimSpace(string(errb)))
	}
	if _, err := os.Stat(out); err != nil {
		return entity.RawPage{}, fmt.Errorf("%w: HEIC conversion produced no output: %v", common.ErrOCR, err)
	}
	e.logger.Debug("ocr.heic.converted", "path", path, "converter", e.cfg.HeicConverter)
	return e.extractImage(ctx, out, 1)
}
