package domain

import "strings"

// CategoryTag identifies an environmental impact category on a record.
type CategoryTag string

// Canonical impact categories. Records written by current clients use only
// these; older records may still carry the deprecated aliases folded by
// CanonicalCategory.
const (
	CategoryPollutantsAndWaste      CategoryTag = "pollutants_and_waste"
	CategoryAirQuality              CategoryTag = "air_quality"
	CategoryDeforestation           CategoryTag = "deforestation"
	CategoryBiodiversityImpacts     CategoryTag = "biodiversity_impacts"
	CategoryWaterQuality            CategoryTag = "water_quality"
	CategoryExtremeHeatAndDrought   CategoryTag = "extreme_heat_and_drought_impacts"
	CategoryFires                   CategoryTag = "fires_natural_or_human_caused"
	CategoryConservationRestoration CategoryTag = "conservation_restoration"
	CategoryHumanDisparities        CategoryTag = "human_disparities_and_inequity"
	CategorySoundscape              CategoryTag = "soundscape"
	CategoryPlasticsAndTrash        CategoryTag = "plastics_and_trash"
	CategoryOther                   CategoryTag = "other"
)

// categoryAliases folds deprecated tags into their canonical form. The old
// schema split biodiversity into wildlife/habitat_loss and kept conservation
// and restoration separate. plastics_and_trash is still its own category in
// the current schema and is deliberately absent here.
var categoryAliases = map[CategoryTag]CategoryTag{
	"wildlife":     CategoryBiodiversityImpacts,
	"habitat_loss": CategoryBiodiversityImpacts,
	"conservation": CategoryConservationRestoration,
	"restoration":  CategoryConservationRestoration,
}

// CanonicalCategory resolves a deprecated alias to its canonical tag.
// Unrecognized tags pass through unchanged so records written by newer
// schema versions are counted rather than dropped.
func CanonicalCategory(tag CategoryTag) CategoryTag {
	if canonical, ok := categoryAliases[tag]; ok {
		return canonical
	}
	return tag
}

// NormalizeCategories canonicalizes every tag in a category list. It does
// not substitute anything for an empty list; that is the aggregator's
// concern, not the stored record's.
func NormalizeCategories(tags []CategoryTag) []CategoryTag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]CategoryTag, len(tags))
	for i, tag := range tags {
		out[i] = CanonicalCategory(tag)
	}
	return out
}

// CategoryLabel renders a tag for display: underscores become spaces and
// each word is title-cased, e.g. "air_quality" -> "Air Quality".
func CategoryLabel(tag CategoryTag) string {
	words := strings.Split(string(tag), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
