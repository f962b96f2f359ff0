package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a11yscan/contrastscan/internal/model"
)

// BatchProcessor handles concurrent processing of multiple documents.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-document execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each document.
	// We use a factory to ensure each document gets a fresh pipeline
	// instance; per-document settings differ, so the factory receives
	// the document path.
	pipelineFactory func(documentPath string) *Pipeline

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.AuditReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each document to create a
// fresh pipeline instance. This ensures that pipeline state doesn't
// leak between scans and allows per-document customization.
func NewBatchProcessor(pipelineFactory func(documentPath string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.AuditReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans multiple documents concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each document gets its own goroutine, but only 'concurrency'
// goroutines run simultaneously.
//
// Returns reports in the same order as the input paths, even for
// documents that failed. The error return indicates if the batch was
// cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, documentPaths []string) ([]*model.AuditReport, error) {
	bp.logger.Info("starting batch processing",
		"total_documents", len(documentPaths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.AuditReport, len(documentPaths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range documentPaths {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning document",
				"document", path,
				"index", i+1,
				"total", len(documentPaths),
			)

			report := model.NewAuditReport(path)

			pipeline := bp.pipelineFactory(path)
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the scan failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("scan failed",
					"document", path,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// other scans. The error is recorded in the report.
				return nil
			}

			bp.logger.Info("scan completed",
				"document", path,
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_documents", len(documentPaths),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback scans multiple documents and calls a callback
// for each completed scan. This is useful for streaming results.
//
// The callback receives the report and the index of the document in the
// original slice. The callback is called from the goroutine that completed
// the scan, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	documentPaths []string,
	callback func(report *model.AuditReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_documents", len(documentPaths),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range documentPaths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewAuditReport(path)
			pipeline := bp.pipelineFactory(path)
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
