// Package normalizer cleans catalog records and projects their dimensions,
// one record at a time or as a concurrent batch.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"catalogsize/internal/config"
	"catalogsize/internal/geometry"
	"catalogsize/internal/logger"
	"catalogsize/internal/models"
)

// ErrInvalidWorkers is returned when the worker count is not positive.
var ErrInvalidWorkers = errors.New("workers must be positive")

// Stats summarizes a batch run.
type Stats struct {
	Records   int
	Invalid   int
	Projected int
	Cancelled int
	Columns   map[geometry.Outcome]int
	Errors    []error
}

// Processor validates, cleans and projects records.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	projector   *geometry.Projector
	workers     int
	logger      *logger.Logger
}

// NewProcessor creates a processor from the full configuration.
func NewProcessor(cfg *config.Config, log *logger.Logger) (*Processor, error) {
	if cfg.Processing.Workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Processing.Workers)
	}

	projector, err := geometry.NewProjector(&cfg.Projection)
	if err != nil {
		return nil, fmt.Errorf("failed to create projector: %w", err)
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		validator:   NewValidator(cfg),
		transformer: NewTransformer(cfg),
		projector:   projector,
		workers:     cfg.Processing.Workers,
		logger:      log,
	}, nil
}

// Process validates rec, cleans it and projects its dimensions. The input
// record is never modified.
func (p *Processor) Process(rec models.Record) (models.Record, geometry.Report, error) {
	// 1. Validate the input record
	if err := p.validator.Validate(rec); err != nil {
		return nil, geometry.Report{}, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Clean the fields
	cleaned := p.transformer.Transform(rec)

	// 3. Project the dimensions
	projected, report, err := p.projector.Project(cleaned)
	if err != nil {
		return nil, report, fmt.Errorf("projection failed: %w", err)
	}

	return projected, report, nil
}

// ProcessBatch processes recs concurrently and returns the results in input
// order. Invalid records are passed through unchanged and counted. Once ctx
// is done no further records are scheduled; the remaining ones are passed
// through and counted as cancelled.
func (p *Processor) ProcessBatch(ctx context.Context, recs []models.Record) ([]models.Record, Stats) {
	out := make([]models.Record, len(recs))
	stats := Stats{
		Records: len(recs),
		Columns: make(map[geometry.Outcome]int),
	}

	p.logger.Info("Starting batch", "records", len(recs), "workers", p.workers)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, p.workers)
	)

	scheduled := 0

schedule:
	for i, rec := range recs {
		if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}

		scheduled++

		wg.Add(1)
		go func(index int, rec models.Record) {
			defer wg.Done()
			defer func() { <-sem }()

			result, report, err := p.Process(rec)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				p.logger.Warn("Record passed through", "index", index, "error", err)
				stats.Invalid++
				stats.Errors = append(stats.Errors, fmt.Errorf("record %d: %w", index, err))
				out[index] = rec

				return
			}

			out[index] = result

			for _, col := range report.Columns {
				stats.Columns[col.Outcome]++

				if col.Outcome != geometry.OutcomeProjected && col.Outcome != geometry.OutcomeEmpty {
					p.logger.Debug("Column skipped", "index", index, "column", col.Column, "text", col.Text, "outcome", col.Outcome)
				}
			}

			if report.Projected() > 0 {
				stats.Projected++
			}
		}(i, rec)
	}

	wg.Wait()

	for i := scheduled; i < len(recs); i++ {
		out[i] = recs[i]
		stats.Cancelled++
	}

	if stats.Cancelled > 0 {
		p.logger.Warn("Batch cancelled", "processed", scheduled, "cancelled", stats.Cancelled, "error", ctx.Err())
	}

	p.logger.Info("Batch finished",
		"records", stats.Records,
		"projected", stats.Projected,
		"invalid", stats.Invalid,
		"cancelled", stats.Cancelled)

	return out, stats
}
