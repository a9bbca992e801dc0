package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	forwardResult GeocodeResult
	forwardErr    error
	reverseResult GeocodeResult
	reverseErr    error
	forwardCalls  int
	reverseCalls  int
	lastQuery     string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, query string) (GeocodeResult, error) {
	m.forwardCalls++
	m.lastQuery = query
	return m.forwardResult, m.forwardErr
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodeResult, error) {
	m.reverseCalls++
	return m.reverseResult, m.reverseErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

// --- tests ---

func TestResolveLocation_NilGeocoder(t *testing.T) {
	draft := LocationDraft{LocationName: "Central Park"}

	result := ResolveLocation(context.Background(), draft, nil, discardLogger())

	assert.Equal(t, draft, result)
}

func TestResolveLocation_NoOpWhenComplete(t *testing.T) {
	geo := &mockGeocoder{}
	draft := LocationDraft{
		Latitude:  ptr(40.0),
		Longitude: ptr(-75.0),
		Country:   "USA",
	}

	result := ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, draft, result)
	assert.Zero(t, geo.forwardCalls)
	assert.Zero(t, geo.reverseCalls)
}

func TestResolveLocation_ForwardPath(t *testing.T) {
	geo := &mockGeocoder{
		forwardResult: GeocodeResult{
			Latitude:  ptr(40.78),
			Longitude: ptr(-73.96),
			City:      "New York",
			Country:   "USA",
		},
	}
	draft := LocationDraft{LocationName: "Central Park"}

	result := ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, 1, geo.forwardCalls)
	assert.Zero(t, geo.reverseCalls)
	assert.Equal(t, "Central Park", geo.lastQuery)
	assert.Equal(t, 40.78, *result.Latitude)
	assert.Equal(t, -73.96, *result.Longitude)
	assert.Equal(t, "New York", result.City)
	assert.Equal(t, "USA", result.Country)
	assert.Equal(t, "Central Park", result.LocationName, "pre-existing field untouched")
}

func TestResolveLocation_QueryJoinsNonEmptyFields(t *testing.T) {
	geo := &mockGeocoder{}
	draft := LocationDraft{
		LocationName: "Jamaica Pond",
		City:         "Boston",
		Country:      "USA",
	}

	ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, "Jamaica Pond, Boston, USA", geo.lastQuery)
}

func TestResolveLocation_ReversePath_MergeNeverOverwrites(t *testing.T) {
	geo := &mockGeocoder{
		reverseResult: GeocodeResult{
			City:    "Cambridge",
			State:   "MA",
			Country: "USA",
		},
	}
	draft := LocationDraft{
		Latitude:  ptr(42.37),
		Longitude: ptr(-71.11),
		City:      "Boston",
	}

	result := ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, 1, geo.reverseCalls)
	assert.Zero(t, geo.forwardCalls)
	assert.Equal(t, "Boston", result.City, "pre-existing non-empty value wins")
	assert.Equal(t, "MA", result.State)
	assert.Equal(t, "USA", result.Country)
	assert.Equal(t, 42.37, *result.Latitude)
}

func TestResolveLocation_ForwardFailureLeavesDraftUnchanged(t *testing.T) {
	geo := &mockGeocoder{forwardErr: errors.New("provider timeout")}
	draft := LocationDraft{LocationName: "Central Park", City: "New York"}

	result := ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, draft, result)
	assert.Equal(t, 1, geo.forwardCalls)
}

func TestResolveLocation_ReverseFailureLeavesDraftUnchanged(t *testing.T) {
	geo := &mockGeocoder{reverseErr: errors.New("provider unavailable")}
	draft := LocationDraft{Latitude: ptr(40.0), Longitude: ptr(-75.0)}

	result := ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, draft, result)
	assert.Equal(t, 1, geo.reverseCalls)
}

func TestResolveLocation_NothingUsable(t *testing.T) {
	geo := &mockGeocoder{}

	result := ResolveLocation(context.Background(), LocationDraft{}, geo, discardLogger())

	assert.Equal(t, LocationDraft{}, result)
	assert.Zero(t, geo.forwardCalls)
	assert.Zero(t, geo.reverseCalls)
}

func TestResolveLocation_PartialCoordinatesNotApplied(t *testing.T) {
	// A result supplying only one coordinate must not set either.
	geo := &mockGeocoder{
		forwardResult: GeocodeResult{Latitude: ptr(40.78), Country: "USA"},
	}
	draft := LocationDraft{LocationName: "Central Park"}

	result := ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Nil(t, result.Latitude)
	assert.Nil(t, result.Longitude)
	assert.Equal(t, "USA", result.Country, "address fields still merge")
}

func TestResolveLocation_AtMostOneCall(t *testing.T) {
	// Forward result without coordinates: the resolver must not follow up
	// with a reverse call in the same invocation.
	geo := &mockGeocoder{forwardResult: GeocodeResult{Country: "USA"}}
	draft := LocationDraft{LocationName: "Atlantis"}

	ResolveLocation(context.Background(), draft, geo, discardLogger())

	assert.Equal(t, 1, geo.forwardCalls)
	assert.Zero(t, geo.reverseCalls)
}
