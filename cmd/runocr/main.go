package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file.pdf|file.png|file.txt>")
		os.Exit(2)
	}
	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := common.LoadConfig()
	extractor := ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	if err := extractor.Init(ctx); err != nil {
		logger.Error("ocr engine unavailable", "error", err)
		os.Exit(1)
	}

	doc, err := extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"path", path,
		"format", doc.Format,
		"pages", len(doc.Pages),
		"duration_ms", doc.Duration.Milliseconds())

	for _, p := range doc.Pages {
		fmt.Printf("===== page %d (confidence %.2f) =====\n%s\n", p.Index, p.Confidence, p.Text())
	}
}
