package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/docxmerge/internal/extract"
	"github.com/dgallion1/docxmerge/internal/merge"
	"github.com/dgallion1/docxmerge/internal/parser"
)

// Worker processes merge jobs.
type Worker struct {
	registry parser.Registry
	cache    *ResultCache
	log      *slog.Logger

	maxConcurrentExtract int
}

func NewWorker(registry parser.Registry, cache *ResultCache, log *slog.Logger, maxExtract int) *Worker {
	return &Worker{
		registry:             registry,
		cache:                cache,
		log:                  log,
		maxConcurrentExtract: maxExtract,
	}
}

// Process extracts every upload of the job and stores the merged text.
// Documents are extracted concurrently but joined in upload order; the
// first failing document (by position) fails the whole job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	uploads := job.Uploads()

	job.SetStatus(StatusExtracting, "extracting")
	start := time.Now()

	text, err := merge.MergeConcurrent(ctx, uploads, func(ctx context.Context, u Upload, strip bool) (string, error) {
		text, err := w.Extract(ctx, u, strip)
		if err != nil {
			return "", err
		}
		job.IncrDocumentsExtracted()
		return text, nil
	}, job.StripFieldInstructions, w.maxConcurrentExtract)
	if err != nil {
		log.Error("merge failed", "error", err, "kind", extract.KindOf(err).String())
		job.Fail("extracting", err)
		return
	}

	job.Complete(text)
	log.Info("merge complete",
		"documents", len(uploads),
		"result_bytes", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Extract returns the text of a single upload, consulting the cache first.
func (w *Worker) Extract(ctx context.Context, u Upload, strip bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := filepath.Ext(u.Filename)
	key := CacheKey(u.Data, ext, strip)
	if text, ok := w.cache.Get(key); ok {
		w.log.Debug("cache hit", "filename", u.Filename)
		return text, nil
	}

	p, err := w.registry.ForFile(u.Filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", u.Filename, err)
	}
	text, err := p.Parse(bytes.NewReader(u.Data), u.Filename, parser.Options{StripFieldInstructions: strip})
	if err != nil {
		return "", err
	}
	w.cache.Put(key, text)
	return text, nil
}
