package pipeline

import (
	"context"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
)

// SliceExtractor serves drafts from an in-memory slice, as produced by
// the platform's file-extraction integration.
type SliceExtractor struct {
	drafts []domain.FieldNoteDraft
	pos    int
}

// NewSliceExtractor creates an extractor over already-parsed drafts.
func NewSliceExtractor(drafts []domain.FieldNoteDraft) *SliceExtractor {
	return &SliceExtractor{drafts: drafts}
}

// ExtractBatch returns the next batchSize drafts, or fewer at the end.
func (e *SliceExtractor) ExtractBatch(_ context.Context, batchSize int) ([]domain.FieldNoteDraft, error) {
	if e.pos >= len(e.drafts) {
		return nil, nil
	}
	end := min(e.pos+batchSize, len(e.drafts))
	batch := e.drafts[e.pos:end]
	e.pos = end
	return batch, nil
}
