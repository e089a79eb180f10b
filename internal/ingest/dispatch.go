package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/faktur-tracker/constants"
)

// SubmitFunc hands one ingested file to the extraction queue.
type SubmitFunc func(ctx context.Context, path string, kind constants.DocumentKind) error

// KindForPath guesses the document kind from the file name. Names mentioning
// "bukti" or "setor" are deposit slips; everything else is a faktur.
func KindForPath(path string) constants.DocumentKind {
	name := strings.ToLower(filepath.Base(path))
	if strings.Contains(name, "bukti") || strings.Contains(name, "setor") {
		return constants.KindBuktiSetor
	}
	return constants.KindFaktur
}

// Dispatch drains paths until the channel closes or ctx is done. Each path is
// hashed through ing so content duplicates are dropped, then submitted no
// faster than limiter allows. A nil limiter means no throttling.
// It returns the number of files submitted.
func Dispatch(ctx context.Context, paths <-chan string, ing Ingestor, limiter *rate.Limiter, submit SubmitFunc, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	submitted := 0
	for {
		var path string
		select {
		case <-ctx.Done():
			return submitted
		case p, ok := <-paths:
			if !ok {
				return submitted
			}
			path = p
		}

		res, err := ing.IngestPath(ctx, path)
		if err != nil {
			logger.Warn("ingest.dispatch.skipped", "path", path, "error", err)
			continue
		}
		if res.Deduplicated {
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return submitted
			}
		}
		kind := KindForPath(res.SourcePath)
		if err := submit(ctx, res.SourcePath, kind); err != nil {
			logger.Error("ingest.dispatch.submit_failed", "path", res.SourcePath, "kind", kind, "error", err)
			continue
		}
		submitted++
		logger.Info("ingest.dispatch.submitted", "path", res.SourcePath, "kind", kind)
	}
}
