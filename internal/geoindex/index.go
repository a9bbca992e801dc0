// Package geoindex maintains an in-memory spatial index of observation
// markers so the map endpoint can answer bounding-box queries without a
// platform round trip.
package geoindex

import (
	"fmt"
	"sync"

	"github.com/dhconnelly/rtreego"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// Markers are points; the index stores them as tiny rectangles.
	tolerance = 0.0001
)

// Marker is one observation pin on the map.
type Marker struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	MediaType string  `json:"media_type,omitempty"`
	Category  string  `json:"category,omitempty"`
	Lat       float64 `json:"latitude"`
	Lon       float64 `json:"longitude"`
}

// spatialMarker adapts a Marker to the rtreego.Spatial interface.
type spatialMarker struct {
	marker Marker
	rect   rtreego.Rect
}

func (s *spatialMarker) Bounds() rtreego.Rect {
	return s.rect
}

func newSpatialMarker(m Marker) *spatialMarker {
	// rtreego points are (x, y), so longitude first.
	point := rtreego.Point{m.Lon, m.Lat}
	return &spatialMarker{marker: m, rect: point.ToRect(tolerance)}
}

// Index is a thread-safe R-tree over observation markers, keyed by
// observation ID so updates replace rather than duplicate.
type Index struct {
	mu    sync.RWMutex
	tree  *rtreego.Rtree
	items map[string]*spatialMarker
}

// New creates an empty marker index.
func New() *Index {
	return &Index{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		items: make(map[string]*spatialMarker),
	}
}

// Upsert inserts a marker, replacing any existing marker with the same ID.
func (i *Index) Upsert(m Marker) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if old, ok := i.items[m.ID]; ok {
		i.tree.Delete(old)
	}
	s := newSpatialMarker(m)
	i.items[m.ID] = s
	i.tree.Insert(s)
}

// Remove deletes a marker by ID. Unknown IDs are a no-op.
func (i *Index) Remove(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if s, ok := i.items[id]; ok {
		i.tree.Delete(s)
		delete(i.items, id)
	}
}

// Search returns all markers inside the bounding box, in no particular order.
func (i *Index) Search(minLat, minLon, maxLat, maxLon float64) ([]Marker, error) {
	if minLat > maxLat || minLon > maxLon {
		return nil, fmt.Errorf("invalid bounding box: min corner exceeds max corner")
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{minLon, minLat},
		[]float64{maxLon - minLon + tolerance, maxLat - minLat + tolerance},
	)
	if err != nil {
		return nil, fmt.Errorf("build query rect: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := i.tree.SearchIntersect(rect)
	markers := make([]Marker, 0, len(hits))
	for _, h := range hits {
		markers = append(markers, h.(*spatialMarker).marker)
	}
	return markers, nil
}

// Len reports the number of indexed markers.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.items)
}
