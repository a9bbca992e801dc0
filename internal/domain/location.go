package domain

import (
	"context"
	"log/slog"
	"strings"
)

// GeocodeResult is what a geocoding provider returns for one request.
// Every field is optional; a completely empty result means "not found".
type GeocodeResult struct {
	Latitude  *float64
	Longitude *float64
	Address   string
	City      string
	State     string
	Country   string
}

// HasCoordinates reports whether both coordinates are present.
func (r GeocodeResult) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Empty reports whether the result carries no usable field at all.
func (r GeocodeResult) Empty() bool {
	return !r.HasCoordinates() &&
		r.Address == "" && r.City == "" && r.State == "" && r.Country == ""
}

// Geocoder resolves between free-text locations and GPS coordinates. Both
// operations block until the provider responds; timeouts are the
// implementation's concern.
type Geocoder interface {
	// ForwardGeocode converts a free-text location description to
	// coordinates and a best-effort address breakdown.
	ForwardGeocode(ctx context.Context, query string) (GeocodeResult, error)

	// ReverseGeocode converts coordinates to an address breakdown.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodeResult, error)
}

// LocationDraft is the in-progress location of a record being edited.
// Coordinates are nil rather than zero so "absent" is distinguishable from
// a real value; they are always set or cleared as a pair.
type LocationDraft struct {
	LocationName string   `json:"location_name,omitempty"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Country      string   `json:"country,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both coordinates are set.
func (d LocationDraft) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// Query builds the forward-geocoding query string: the non-empty text
// fields joined by ", ". Empty when the draft has no text at all.
func (d LocationDraft) Query() string {
	parts := make([]string, 0, 5)
	for _, field := range []string{d.LocationName, d.Address, d.City, d.State, d.Country} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, ", ")
}

// ResolveLocation ensures a draft has coordinates and a best-effort address
// breakdown before persistence, using at most one geocoding call:
//
//   - coordinates and country already present: no call, draft unchanged
//   - coordinates missing and any text field set: one forward call
//   - coordinates present but country missing: one reverse call
//   - nothing usable: no call, draft unchanged
//
// The forward/reverse choice is a snapshot taken once and never
// re-evaluated after the call. Returned fields only fill gaps; values the
// user already supplied always win, and coordinates are set as a pair or
// not at all. A provider failure is logged and swallowed, returning the
// draft untouched: geocoding is an enrichment, never a requirement. A nil
// geocoder disables enrichment entirely.
func ResolveLocation(ctx context.Context, draft LocationDraft, geocoder Geocoder, logger *slog.Logger) LocationDraft {
	if geocoder == nil {
		return draft
	}
	if draft.HasCoordinates() && draft.Country != "" {
		return draft
	}

	if !draft.HasCoordinates() {
		query := draft.Query()
		if query == "" {
			return draft
		}
		result, err := geocoder.ForwardGeocode(ctx, query)
		if err != nil {
			logger.Warn("forward geocoding failed", "query", query, "error", err)
			return draft
		}
		return mergeGeocodeResult(draft, result)
	}

	result, err := geocoder.ReverseGeocode(ctx, *draft.Latitude, *draft.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", *draft.Latitude,
			"lon", *draft.Longitude,
			"error", err,
		)
		return draft
	}
	return mergeGeocodeResult(draft, result)
}

// mergeGeocodeResult fills the draft's empty fields from the result.
func mergeGeocodeResult(draft LocationDraft, result GeocodeResult) LocationDraft {
	if !draft.HasCoordinates() && result.HasCoordinates() {
		lat, lon := *result.Latitude, *result.Longitude
		draft.Latitude, draft.Longitude = &lat, &lon
	}
	if draft.Address == "" {
		draft.Address = result.Address
	}
	if draft.City == "" {
		draft.City = result.City
	}
	if draft.State == "" {
		draft.State = result.State
	}
	if draft.Country == "" {
		draft.Country = result.Country
	}
	return draft
}
