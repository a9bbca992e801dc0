package domain

import "sort"

// CategoryBreakdown is the frequency distribution of canonical impact
// categories over a set of records.
type CategoryBreakdown struct {
	// Counts maps each canonical category to its number of occurrences.
	// One record contributes one occurrence per tag it carries, or a
	// single "other" occurrence when it carries none, so the counts sum
	// to Total.
	Counts map[CategoryTag]int

	// Mode is the most frequent category, empty when no records were
	// aggregated. Ties go to the category encountered first in input
	// order.
	Mode      CategoryTag
	ModeCount int

	// Total is the number of tag occurrences counted.
	Total int
}

// AggregateCategories computes the canonical category breakdown of records.
// Pure: same input, same breakdown, including the tie-broken mode.
func AggregateCategories(records []ImpactRecord) CategoryBreakdown {
	counts := make(map[CategoryTag]int)
	var order []CategoryTag

	for _, rec := range records {
		tags := rec.Categories
		if len(tags) == 0 {
			tags = []CategoryTag{CategoryOther}
		}
		for _, tag := range tags {
			tag = CanonicalCategory(tag)
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	breakdown := CategoryBreakdown{Counts: counts}
	for _, tag := range order {
		breakdown.Total += counts[tag]
		if counts[tag] > breakdown.ModeCount {
			breakdown.Mode = tag
			breakdown.ModeCount = counts[tag]
		}
	}
	return breakdown
}

// TimelinePoint is a per-day record count for the dashboard timeline.
type TimelinePoint struct {
	Day   string `json:"date"` // UTC day, YYYY-MM-DD
	Count int    `json:"count"`
}

// Timeline buckets records by UTC day, oldest day first. Records without a
// creation time are skipped.
func Timeline(records []ImpactRecord) []TimelinePoint {
	buckets := make(map[string]int)
	for _, rec := range records {
		if rec.CreatedAt.IsZero() {
			continue
		}
		buckets[rec.CreatedAt.UTC().Format("2006-01-02")]++
	}

	points := make([]TimelinePoint, 0, len(buckets))
	for day, n := range buckets {
		points = append(points, TimelinePoint{Day: day, Count: n})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Day < points[j].Day })
	return points
}

// LocationCount pairs a location label with its record count.
type LocationCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const topLocationLimit = 10

// TopLocations counts records by their best location label, country first,
// then city, then state, then "Unknown", and returns the ten most frequent,
// most frequent first. Equal counts keep input-encounter order.
func TopLocations(records []ImpactRecord) []LocationCount {
	counts := make(map[string]int)
	var order []string

	for _, rec := range records {
		name := rec.Country
		if name == "" {
			name = rec.City
		}
		if name == "" {
			name = rec.State
		}
		if name == "" {
			name = "Unknown"
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	out := make([]LocationCount, 0, len(order))
	for _, name := range order {
		out = append(out, LocationCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topLocationLimit {
		out = out[:topLocationLimit]
	}
	return out
}
