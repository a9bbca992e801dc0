// Package domain models EcoCast Tracker field data: impact categories,
// notebook entries, feed observations, and the pure logic that prepares
// them for the dashboard and for persistence.
//
// # Impact Categories
//
// Every record carries zero or more impact category tags from a closed
// canonical set (see the Category* constants). Two schema generations are
// in the wild:
//
//	Legacy tags:   wildlife, habitat_loss, conservation, restoration
//	Canonical:     biodiversity_impacts (absorbs wildlife + habitat_loss)
//	               conservation_restoration (absorbs conservation + restoration)
//
// plastics_and_trash survived the schema change as its own category and is
// NOT an alias. Tags outside the known set pass through normalization
// unchanged so that records written by newer clients still count.
// A record with no tags at all is treated as a single "other" occurrence
// by the aggregator.
//
// # Location Resolution
//
// Records may arrive with any mix of free-text location fields and GPS
// coordinates. [ResolveLocation] fills the gaps with at most one geocoding
// call per record: forward (text to coordinates) when coordinates are
// missing and any text field is set, reverse (coordinates to address) when
// coordinates are present but the country is not. Geocoding is an
// enrichment only; a provider failure leaves the record exactly as it was
// and never blocks submission.
package domain
