package llm

import (
	"context"
	"time"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/observability"
)

// InstrumentedGeocoder records request counts and latency around a Geocoder.
type InstrumentedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics
}

// NewInstrumentedGeocoder wraps a geocoder with Prometheus instrumentation.
func NewInstrumentedGeocoder(inner domain.Geocoder, metrics *observability.Metrics) *InstrumentedGeocoder {
	return &InstrumentedGeocoder{inner: inner, metrics: metrics}
}

func (g *InstrumentedGeocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodeResult, error) {
	start := time.Now()
	result, err := g.inner.ForwardGeocode(ctx, query)
	g.metrics.GeocodeDuration.WithLabelValues("forward").Observe(time.Since(start).Seconds())
	g.metrics.GeocodeRequests.WithLabelValues("forward", outcome(result, err)).Inc()
	return result, err
}

func (g *InstrumentedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodeResult, error) {
	start := time.Now()
	result, err := g.inner.ReverseGeocode(ctx, lat, lon)
	g.metrics.GeocodeDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	g.metrics.GeocodeRequests.WithLabelValues("reverse", outcome(result, err)).Inc()
	return result, err
}

func outcome(result domain.GeocodeResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result.Empty():
		return "empty"
	default:
		return "success"
	}
}
