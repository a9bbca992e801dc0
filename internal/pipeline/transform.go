package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
)

// NoteTransformer turns extracted drafts into persistable notes,
// enriching location fields through the geocoder when one is configured.
type NoteTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewNoteTransformer creates a transformer. A nil geocoder disables
// location enrichment without failing rows.
func NewNoteTransformer(geocoder domain.Geocoder, logger *slog.Logger) *NoteTransformer {
	return &NoteTransformer{geocoder: geocoder, logger: logger}
}

// Transform validates and converts one draft. Rows with an unparseable
// date are rejected; geocoding failures degrade to the draft's own fields.
func (t *NoteTransformer) Transform(ctx context.Context, draft domain.FieldNoteDraft) (domain.FieldNote, error) {
	if draft.Date != "" {
		if _, err := time.Parse("2006-01-02", draft.Date); err != nil {
			return domain.FieldNote{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", draft.Date)
		}
	}

	note := draft.Note()
	note.LocationDraft = domain.ResolveLocation(ctx, note.LocationDraft, t.geocoder, t.logger)
	return note, nil
}
