package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/crmscan/internal/config"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent analysis of multiple CSV inputs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-input execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each input.
	// We use a factory to ensure each analysis gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed analyses.
	// Access is synchronized via mutex.
	results []*Analysis
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

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is config.DefaultBatchSize if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each input to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// analyses and allows for per-input customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultBatchSize,
		results:         make([]*Analysis, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple CSV inputs concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each input gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all analyses collected, even for inputs that failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*Analysis, error) {
	bp.logger.Info("starting batch processing",
		"total_inputs", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*Analysis, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("analyzing input",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			// Create the analysis for this input
			a := NewAnalysis(source)

			// Create and execute pipeline
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, a)

			// Store result regardless of error
			// The analysis contains error information if the run failed
			bp.mu.Lock()
			bp.results[i] = a
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("analysis failed",
					"source", source,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue other inputs
				// The error is recorded in the analysis
				return nil
			}

			bp.logger.Info("analysis completed",
				"source", source,
			)

			return nil
		})
	}

	// Wait for all analyses to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_inputs", len(sources),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes multiple inputs and calls a callback
// for each completed analysis. This is useful for streaming results.
//
// The callback receives the analysis and the index of the input in the
// original slice. The callback is called from the goroutine that completed
// the analysis, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(a *Analysis, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_inputs", len(sources),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			a := NewAnalysis(source)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, a) //nolint:errcheck // Error is stored in the analysis

			// Call the callback with the result
			callback(a, i)

			return nil
		})
	}

	return g.Wait()
}
