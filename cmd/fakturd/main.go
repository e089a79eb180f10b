package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/async"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/export"
	"github.com/joseph-ayodele/faktur-tracker/internal/ingest"
	"github.com/joseph-ayodele/faktur-tracker/internal/ocr"
	"github.com/joseph-ayodele/faktur-tracker/internal/pipeline"
	"github.com/joseph-ayodele/faktur-tracker/internal/preview"
	repo "github.com/joseph-ayodele/faktur-tracker/internal/repository"
	"github.com/joseph-ayodele/faktur-tracker/internal/server"
)

func main() {
	// message and attributes only; the process supervisor stamps time
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor := ocr.NewExtractor(ocr.ConfigFrom(cfg.OCR), logger)
	if err := extractor.Init(ctx); err != nil {
		logger.Error("ocr engine unavailable", "error", err)
		os.Exit(1)
	}

	db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	invoices := repo.NewInvoiceRepository(db, logger)
	deposits := repo.NewDepositRepository(db, logger)
	jobs := repo.NewExtractJobRepository(db, logger)

	store, err := preview.NewFSStore(cfg.Preview.Dir)
	if err != nil {
		logger.Error("failed to open preview store", "dir", cfg.Preview.Dir, "error", err)
		os.Exit(1)
	}
	previews := preview.NewWriter(store, logger,
		preview.WithMaxWidth(cfg.Preview.MaxWidth),
		preview.WithQuality(cfg.Preview.Quality),
	)

	pcfg := pipeline.ConfigFrom(cfg.Pipeline)
	pages := pipeline.NewPageProcessor(pcfg, logger)
	processor := pipeline.NewProcessor(logger, pages, extractor, previews, pcfg.Workers)

	queue := async.NewProcessorQueue(async.NewExtractJobProcessor(processor, jobs, logger), logger,
		async.WithWorkers(cfg.Server.QueueWorkers),
		async.WithQueueSize(cfg.Server.QueueSize),
		async.WithProcessTimeout(cfg.Server.JobTimeout),
	)

	svc := server.NewExtractionService(processor, queue, jobs, invoices,
		export.NewService(invoices, deposits, logger), cfg.Pipeline.ReferenceName, logger)
	grpcServer, healthServer := server.NewGRPCServer(svc, logger)

	if cfg.Server.InboxDir != "" {
		if err := watchInbox(ctx, cfg.Server, svc, logger); err != nil {
			logger.Error("failed to watch inbox", "dir", cfg.Server.InboxDir, "error", err)
			os.Exit(1)
		}
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	logger.Info("fakturd listening", "addr", addr, "db_driver", db.Driver())
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.JobTimeout)
	defer cancel()
	queue.Shutdown(drainCtx)
}

// watchInbox submits every new document dropped under dir, throttled so a
// large drop does not flood the job queue.
func watchInbox(ctx context.Context, cfg common.ServerConfig, svc *server.ExtractionService, logger *slog.Logger) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.InboxDir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		SkipHidden:  true,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var limiter *rate.Limiter
	if cfg.InboxRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.InboxRate), max(cfg.InboxBurst, 1))
	}
	submit := func(ctx context.Context, path string, kind constants.DocumentKind) error {
		_, err := svc.SubmitFile(ctx, &server.SubmitFileRequest{Path: path, Kind: string(kind)})
		return err
	}

	go func() {
		for err := range errs {
			logger.Warn("inbox watcher error", "error", err)
		}
	}()
	go func() {
		n := ingest.Dispatch(ctx, paths, ingest.NewFSIngestor(logger), limiter, submit, logger)
		logger.Info("inbox watcher stopped", "submitted", n)
	}()
	return nil
}
