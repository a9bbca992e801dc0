package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalCategory(t *testing.T) {
	cases := map[CategoryTag]CategoryTag{
		"wildlife":               CategoryBiodiversityImpacts,
		"habitat_loss":           CategoryBiodiversityImpacts,
		"conservation":           CategoryConservationRestoration,
		"restoration":            CategoryConservationRestoration,
		CategoryPlasticsAndTrash: CategoryPlasticsAndTrash,
		CategoryAirQuality:       CategoryAirQuality,
		"light_pollution":        "light_pollution", // unknown passes through
	}

	for in, want := range cases {
		assert.Equal(t, want, CanonicalCategory(in), "tag %q", in)
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := NormalizeCategories([]CategoryTag{"wildlife", CategoryAirQuality, "restoration"})
	assert.Equal(t, []CategoryTag{CategoryBiodiversityImpacts, CategoryAirQuality, CategoryConservationRestoration}, got)

	assert.Nil(t, NormalizeCategories(nil), "empty list stays empty on stored records")
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Air Quality", CategoryLabel(CategoryAirQuality))
	assert.Equal(t, "Fires Natural Or Human Caused", CategoryLabel(CategoryFires))
	assert.Equal(t, "Other", CategoryLabel(CategoryOther))
}

func TestFieldNoteDraft_Note_Defaults(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	note := FieldNoteDraft{}.Note()

	assert.Equal(t, "Untitled Entry", note.Title)
	assert.Equal(t, "2026-08-30", note.Date)
	assert.Equal(t, "public", note.Visibility)
	assert.Empty(t, note.Tags)
}

func TestFieldNoteDraft_Note_SplitsTags(t *testing.T) {
	note := FieldNoteDraft{
		Title:        "Creek survey",
		Date:         "2026-06-01",
		LocationName: "Muddy Creek",
		Tags:         "water, erosion , ",
	}.Note()

	assert.Equal(t, "Creek survey", note.Title)
	assert.Equal(t, "2026-06-01", note.Date)
	assert.Equal(t, "Muddy Creek", note.LocationName)
	assert.Equal(t, []string{"water", "erosion"}, note.Tags)
}

func TestFieldNote_ImpactRecordProjection(t *testing.T) {
	note := FieldNote{
		ID:               "fn-1",
		ImpactCategories: []CategoryTag{CategoryWaterQuality},
		LocationDraft:    LocationDraft{Country: "USA", City: "Boston", State: "MA"},
		CreatedAt:        time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	}

	rec := note.ImpactRecord()

	assert.Equal(t, "fn-1", rec.ID)
	assert.Equal(t, []CategoryTag{CategoryWaterQuality}, rec.Categories)
	assert.Equal(t, "USA", rec.Country)
	assert.Equal(t, "Boston", rec.City)
	assert.Equal(t, "MA", rec.State)
}
