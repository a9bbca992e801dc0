// Package httpapi exposes the service's HTTP surface: health and
// metrics endpoints plus analytics, map, observation, and notification
// routes.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/geoindex"
	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/observability"
)

// RecordSource supplies the analytics aggregator's input.
type RecordSource interface {
	ImpactRecords(ctx context.Context) ([]domain.ImpactRecord, error)
}

// ObservationCreator persists new observations.
type ObservationCreator interface {
	CreateObservation(ctx context.Context, obs domain.Observation) (domain.Observation, error)
}

// EventPublisher streams created observations to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, obs domain.Observation) error
}

// NotificationStore serves and clears the unread-notification snapshot.
type NotificationStore interface {
	Unread() []domain.Notification
	MarkAllRead(ctx context.Context) error
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Deps carries everything the server's handlers need. Publisher and
// Geocoder may be nil when those features are disabled.
type Deps struct {
	Records       RecordSource
	Observations  ObservationCreator
	Notifications NotificationStore
	Publisher     EventPublisher
	Geocoder      domain.Geocoder
	Index         *geoindex.Index
	Ready         ReadinessChecker
	Logger        *slog.Logger
	Metrics       *observability.Metrics
}

// Server exposes the HTTP API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: deps.Logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /analytics/categories", s.handleCategoryAnalytics)
	mux.HandleFunc("GET /map/observations", s.handleMapObservations)
	mux.HandleFunc("POST /observations", s.handleCreateObservation)
	mux.HandleFunc("GET /notifications", s.handleNotifications)
	mux.HandleFunc("POST /notifications/read", s.handleMarkNotificationsRead)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.deps.Ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// categoryAnalyticsResponse bundles the breakdown with the chart series
// the dashboard renders alongside it.
type categoryAnalyticsResponse struct {
	Counts    map[domain.CategoryTag]int `json:"counts"`
	Mode      domain.CategoryTag         `json:"mode,omitempty"`
	ModeLabel string                     `json:"mode_label,omitempty"`
	ModeCount int                        `json:"mode_count"`
	Total     int                        `json:"total"`
	Timeline  []domain.TimelinePoint     `json:"timeline"`
	Locations []domain.LocationCount     `json:"top_locations"`
}

func (s *Server) handleCategoryAnalytics(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Records.ImpactRecords(r.Context())
	if err != nil {
		s.logger.Error("fetch impact records failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}

	breakdown := domain.AggregateCategories(records)
	resp := categoryAnalyticsResponse{
		Counts:    breakdown.Counts,
		Mode:      breakdown.Mode,
		ModeCount: breakdown.ModeCount,
		Total:     breakdown.Total,
		Timeline:  domain.Timeline(records),
		Locations: domain.TopLocations(records),
	}
	if breakdown.Mode != "" {
		resp.ModeLabel = domain.CategoryLabel(breakdown.Mode)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMapObservations(w http.ResponseWriter, r *http.Request) {
	bounds := [4]float64{}
	for i, name := range []string{"min_lat", "min_lon", "max_lat", "max_lon"} {
		raw := r.URL.Query().Get(name)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
			return
		}
		bounds[i] = v
	}

	markers, err := s.deps.Index.Search(bounds[0], bounds[1], bounds[2], bounds[3])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": markers})
}

// createObservationRequest is the POST /observations payload.
type createObservationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaType   string `json:"media_type"`
	MediaURL    string `json:"media_url"`
	domain.LocationDraft
	ImpactCategories []domain.CategoryTag `json:"impact_categories"`
	Tags             []string             `json:"tags"`
}

func (s *Server) handleCreateObservation(w http.ResponseWriter, r *http.Request) {
	var req createObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || req.MediaURL == "" {
		writeError(w, http.StatusBadRequest, "title and media_url are required")
		return
	}
	switch req.MediaType {
	case domain.MediaImage, domain.MediaVideo, domain.MediaAudio:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown media_type %q", req.MediaType))
		return
	}

	obs := domain.Observation{
		Title:            req.Title,
		Description:      req.Description,
		MediaType:        req.MediaType,
		MediaURL:         req.MediaURL,
		LocationDraft:    domain.ResolveLocation(r.Context(), req.LocationDraft, s.deps.Geocoder, s.logger),
		ImpactCategories: domain.NormalizeCategories(req.ImpactCategories),
		Tags:             req.Tags,
		ProcessedAt:      domain.Now(),
	}

	created, err := s.deps.Observations.CreateObservation(r.Context(), obs)
	if err != nil {
		s.logger.Error("create observation failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream create failed")
		return
	}
	s.deps.Metrics.ObservationsCreated.Inc()

	if created.HasCoordinates() {
		category := ""
		if len(created.ImpactCategories) > 0 {
			category = string(created.ImpactCategories[0])
		}
		s.deps.Index.Upsert(geoindex.Marker{
			ID:        created.ID,
			Title:     created.Title,
			MediaType: created.MediaType,
			Category:  category,
			Lat:       *created.Latitude,
			Lon:       *created.Longitude,
		})
	}

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.Publish(r.Context(), created); err != nil {
			// The observation is already persisted; losing the event is tolerable.
			s.logger.Warn("publish observation event failed", "error", err, "id", created.ID)
		}
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	unread := s.deps.Notifications.Unread()
	writeJSON(w, http.StatusOK, map[string]any{
		"unread": unread,
		"count":  len(unread),
	})
}

func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Notifications.MarkAllRead(r.Context()); err != nil {
		s.logger.Error("mark notifications read failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
