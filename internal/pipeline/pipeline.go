// Package pipeline drives the CSV import: extract a batch of drafts,
// transform each into a persistable note, load the batch, pause, repeat.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/observability"
)

// BatchExtractor yields up to batchSize drafts per call. An empty batch
// means the source is drained.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.FieldNoteDraft, error)
}

// Transformer converts one draft into a persistable field note.
type Transformer interface {
	Transform(ctx context.Context, draft domain.FieldNoteDraft) (domain.FieldNote, error)
}

// BatchLoader persists a batch of notes.
type BatchLoader interface {
	LoadBatch(ctx context.Context, notes []domain.FieldNote) error
}

// Summary reports what an import run accomplished.
type Summary struct {
	Imported int
	Skipped  int
	Batches  int
}

// Pipeline orchestrates the extract-transform-load import loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	batchSize   int
	batchDelay  time.Duration
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, batchDelay time.Duration) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		batchSize:   batchSize,
		batchDelay:  batchDelay,
	}
}

// SetClock swaps the time source used for inter-batch pauses.
func (p *Pipeline) SetClock(c clockwork.Clock) {
	p.clock = c
}

// Run processes batches until the source is drained or the context is
// cancelled. A transform failure skips the row; a load failure aborts
// the run so rows are not silently lost.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.logger.Info("import started", "batch_size", p.batchSize)
	var summary Summary

	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		if err != nil {
			return summary, fmt.Errorf("extract batch: %w", err)
		}
		if len(batch) == 0 {
			p.logger.Info("import finished",
				"imported", summary.Imported, "skipped", summary.Skipped, "batches", summary.Batches)
			return summary, nil
		}

		start := time.Now()
		p.metrics.ImportBatchSize.Observe(float64(len(batch)))

		notes := make([]domain.FieldNote, 0, len(batch))
		for _, draft := range batch {
			note, err := p.transformer.Transform(ctx, draft)
			if err != nil {
				p.logger.Warn("transform failed, skipping row", "error", err, "title", draft.Title)
				p.metrics.ImportErrors.Inc()
				summary.Skipped++
				continue
			}
			notes = append(notes, note)
		}

		if len(notes) > 0 {
			if err := p.loader.LoadBatch(ctx, notes); err != nil {
				return summary, fmt.Errorf("load batch: %w", err)
			}
			p.metrics.NotesImported.Add(float64(len(notes)))
			summary.Imported += len(notes)
		}

		summary.Batches++
		p.metrics.ImportBatchDuration.Observe(time.Since(start).Seconds())

		// A short batch means the source is drained; only pause between full batches.
		if len(batch) == p.batchSize && p.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-p.clock.After(p.batchDelay):
			}
		}
	}
}
