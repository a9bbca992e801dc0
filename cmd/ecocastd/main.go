// Command ecocastd serves the EcoCast tracker API: category analytics,
// map queries over a spatial index, observation intake with LLM
// location enrichment, and a polled notification snapshot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/adapter/events"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/adapter/httpapi"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/adapter/llm"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/adapter/platform"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/config"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/geoindex"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/notify"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := platform.NewClient(cfg.PlatformBaseURL, cfg.PlatformAppID, cfg.PlatformAPIKey,
		cfg.PlatformTimeout, cfg.PlatformRetryMax, logger)

	// Geocoding is feature-flagged on the LLM credentials.
	var geocoder domain.Geocoder
	if cfg.GeocoderEnabled {
		base := llm.NewGeocoder(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.GeocodeTimeout, logger)
		geocoder = llm.NewCachedGeocoder(llm.NewInstrumentedGeocoder(base, metrics), cfg.GeocodeCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("llm geocoding enabled", "model", cfg.LLMModel, "cache_size", cfg.GeocodeCacheSize)
	} else {
		logger.Info("llm geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the map index from existing observations. A failure here is not
	// fatal: the index refills as observations arrive.
	index := geoindex.New()
	if obs, err := client.ListObservations(ctx, 0); err != nil {
		logger.Warn("map index warm start failed", "error", err)
	} else {
		for _, o := range obs {
			if !o.HasCoordinates() {
				continue
			}
			category := ""
			if len(o.ImpactCategories) > 0 {
				category = string(o.ImpactCategories[0])
			}
			index.Upsert(geoindex.Marker{
				ID:        o.ID,
				Title:     o.Title,
				MediaType: o.MediaType,
				Category:  category,
				Lat:       *o.Latitude,
				Lon:       *o.Longitude,
			})
		}
		logger.Info("map index warmed", "markers", index.Len())
	}

	var publisher *events.Publisher
	if cfg.EventsEnabled {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger, metrics)
		logger.Info("observation event stream enabled", "topic", cfg.KafkaTopic)
	}

	poller := notify.New(notify.PlatformSource{Client: client}, cfg.NotifyPollInterval, logger, metrics)

	deps := httpapi.Deps{
		Records:       client,
		Observations:  client,
		Notifications: poller,
		Geocoder:      geocoder,
		Index:         index,
		Ready:         poller,
		Logger:        logger,
		Metrics:       metrics,
	}
	// Assign separately so a disabled publisher stays a nil interface.
	if publisher != nil {
		deps.Publisher = publisher
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, deps)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := poller.Run(ctx); err != nil {
			logger.Error("notification poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("event publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
