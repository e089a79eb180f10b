package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/export"
	"github.com/joseph-ayodele/faktur-tracker/internal/ingest"
	"github.com/joseph-ayodele/faktur-tracker/internal/ocr"
	"github.com/joseph-ayodele/faktur-tracker/internal/pipeline"
	"github.com/joseph-ayodele/faktur-tracker/internal/preview"
	repo "github.com/joseph-ayodele/faktur-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type summary struct {
	files, failedFiles     int
	pages, records, errors int
	review                 int
	saved, duplicates      int
}

func main() {
	var (
		dir   = flag.String("dir", "", "directory of scanned documents")
		file  = flag.String("file", "", "single document to process")
		ref   = flag.String("ref", "", "reference company name (defaults to REFERENCE_COMPANY)")
		kind  = flag.String("kind", "faktur", "document kind: faktur | bukti")
		out   = flag.String("out", "", "output review XLSX path (defaults next to the input)")
		save  = flag.Bool("save", false, "persist records that need no review")
		inmem = flag.Bool("inmem", false, "use in-memory SQLite database")
	)
	flag.Parse()

	if (*dir == "") == (*file == "") {
		printError("Error: exactly one of --dir or --file is required\n")
		os.Exit(1)
	}
	var docKind constants.DocumentKind
	switch *kind {
	case "faktur":
		docKind = constants.KindFaktur
	case "bukti", string(constants.KindBuktiSetor):
		docKind = constants.KindBuktiSetor
	default:
		printError("Error: --kind must be faktur or bukti\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *ref == "" {
		*ref = cfg.Pipeline.ReferenceName
	}
	if docKind == constants.KindFaktur && *ref == "" {
		printError("Error: --ref or REFERENCE_COMPANY is required for faktur\n")
		os.Exit(1)
	}
	if *out == "" {
		base := *file
		if base == "" {
			base = filepath.Clean(*dir)
		}
		*out = filepath.Join(filepath.Dir(base), "review_"+string(docKind)+".xlsx")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	extractor := ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	if err := extractor.Init(ctx); err != nil {
		logger.Error("ocr engine unavailable", "error", err)
		os.Exit(1)
	}

	var previews pipeline.PreviewSaver
	if store, err := preview.NewFSStore(cfg.Preview.Dir); err != nil {
		logger.Warn("preview store disabled", "dir", cfg.Preview.Dir, "error", err)
	} else {
		previews = preview.NewWriter(store, logger, preview.WithMaxWidth(cfg.Preview.MaxWidth), preview.WithQuality(cfg.Preview.Quality))
	}

	pcfg := pipeline.ConfigFrom(cfg.Pipeline)
	processor := pipeline.NewProcessor(logger, pipeline.NewPageProcessor(pcfg, logger), extractor, previews, pcfg.Workers)

	paths, err := collect(ctx, *dir, *file, logger)
	if err != nil {
		logger.Error("failed to ingest", "error", err)
		os.Exit(1)
	}

	var (
		sum   summary
		docs  []entity.DocumentResult
		slips []*entity.DepositSlip
	)
	for _, path := range paths {
		sum.files++
		if docKind == constants.KindBuktiSetor {
			got, err := processor.ProcessDepositFile(ctx, path)
			if err != nil {
				logger.Error("failed to process file", "path", path, "error", err)
				sum.failedFiles++
				continue
			}
			for i := range got {
				sum.pages++
				if got[i].NeedsManualEntry {
					sum.review++
				} else {
					sum.records++
				}
				slips = append(slips, &got[i])
			}
			continue
		}

		doc, err := processor.ProcessFile(ctx, path, *ref)
		if err != nil {
			logger.Error("failed to process file", "path", path, "error", err)
			sum.failedFiles++
			if errors.Is(err, context.Canceled) {
				break
			}
			continue
		}
		sum.pages += len(doc.Pages)
		sum.errors += len(doc.Errors())
		for _, r := range doc.Records() {
			sum.records++
			if r.NeedsReview {
				sum.review++
			}
		}
		docs = append(docs, doc)
	}

	var book []byte
	if docKind == constants.KindBuktiSetor {
		book, err = export.DepositsWorkbook(slips)
	} else {
		book, err = export.ReviewWorkbook(docs)
	}
	if err != nil {
		logger.Error("failed to build workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, book, 0644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	if *save {
		if err := persist(ctx, cfg, *inmem, docs, slips, &sum, logger); err != nil {
			logger.Error("failed to save records", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete", "files", sum.files, "records", sum.records, "output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d (failed: %d)\n", sum.files, sum.failedFiles)
	fmt.Printf("- Pages: %d, records: %d, page errors: %d\n", sum.pages, sum.records, sum.errors)
	fmt.Printf("- Needs review: %d\n", sum.review)
	if *save {
		fmt.Printf("- Saved: %d, duplicates skipped: %d\n", sum.saved, sum.duplicates)
	}
	fmt.Printf("- Output: %s\n", *out)
}

// collect returns the files to process, with content duplicates removed.
func collect(ctx context.Context, dir, file string, logger *slog.Logger) ([]string, error) {
	ingestor := ingest.NewFSIngestor(logger)
	if file != "" {
		res, err := ingestor.IngestPath(ctx, file)
		if err != nil {
			return nil, err
		}
		return []string{res.SourcePath}, nil
	}

	results, stats, err := ingestor.IngestDirectory(ctx, dir, true)
	if err != nil {
		return nil, err
	}
	logger.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	var paths []string
	for _, r := range results {
		if r.Err != "" || r.Deduplicated {
			continue
		}
		paths = append(paths, r.SourcePath)
	}
	return paths, nil
}

// persist stores records that need no review. Duplicates are counted, not fatal.
func persist(ctx context.Context, cfg *common.Config, inmem bool, docs []entity.DocumentResult, slips []*entity.DepositSlip, sum *summary, logger *slog.Logger) error {
	dbCfg := repo.ConfigFrom(cfg.Database)
	if inmem {
		dbCfg = repo.Config{Driver: repo.DriverSQLite}
	}
	db, err := repo.Open(ctx, dbCfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	invoices := repo.NewInvoiceRepository(db, logger)
	for _, doc := range docs {
		for _, r := range doc.Records() {
			if r.NeedsReview {
				continue
			}
			inv := entity.InvoiceFromRecord(r)
			switch _, err := invoices.Save(ctx, &inv); {
			case err == nil:
				sum.saved++
			case errors.Is(err, common.ErrDuplicate):
				sum.duplicates++
			default:
				logger.Warn("invoice not saved", "serial", inv.Serial, "error", err)
			}
		}
	}

	deposits := repo.NewDepositRepository(db, logger)
	for _, s := range slips {
		if s.NeedsManualEntry {
			continue
		}
		if _, err := deposits.Save(ctx, s); err != nil {
			logger.Warn("deposit not saved", "page_index", s.PageIndex, "error", err)
			continue
		}
		sum.saved++
	}
	return nil
}
