package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riverwatch/catchment-service/internal/registry"
	"github.com/riverwatch/catchment-service/internal/store"
	"github.com/riverwatch/catchment-service/internal/timetable"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, and metrics endpoints plus the
// catchment and measurement query API.
type Server struct {
	httpServer *http.Server
	sites      *registry.SiteRegistry
	readings   *store.Readings
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health, metrics, catchment, and
// measurement routes.
func NewServer(addr string, ready ReadinessChecker, sites *registry.SiteRegistry, readings *store.Readings, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sites:    sites,
		readings: readings,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /catchment", s.handleCatchment)
	mux.HandleFunc("GET /catchment/sites", s.handleCatchmentSites)
	mux.HandleFunc("GET /measurements/{type}/daily/{stat}", s.handleDaily)
	mux.HandleFunc("GET /measurements/{type}/normalised", s.handleNormalised)

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

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleCatchment returns a summary of the configured catchment.
func (s *Server) handleCatchment(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"catchment":    s.sites.CatchmentName(),
		"bounded":      s.sites.Bounded(),
		"sites":        s.sites.Len(),
		"measurements": s.readings.Measurements(),
	})
}

// handleCatchmentSites returns the admitted sites as a GeoJSON
// FeatureCollection. Sites without a position have no point geometry to
// encode and are left out.
func (s *Server) handleCatchmentSites(w http.ResponseWriter, _ *http.Request) {
	fc := geojson.NewFeatureCollection()
	for _, site := range s.sites.Sites() {
		p, ok := site.Location()
		if !ok {
			continue
		}
		feat := &geojson.Feature{
			ID:       site.Name(),
			Type:     "Feature",
			Geometry: p,
			Properties: map[string]interface{}{
				"name": site.Name(),
			},
		}
		fc.Append(feat)
	}
	writeJSON(w, http.StatusOK, fc)
}

// handleDaily returns the per-date aggregation of one measurement type.
// The {stat} segment selects the reducer: mean, min, max, or total.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	var aggregate func(*timetable.Frame) (*timetable.Frame, error)
	switch stat := r.PathValue("stat"); stat {
	case "mean":
		aggregate = timetable.DailyMean
	case "min":
		aggregate = timetable.DailyMin
	case "max":
		aggregate = timetable.DailyMax
	case "total":
		aggregate = timetable.DailyTotal
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown statistic: " + stat,
		})
		return
	}

	measurement := r.PathValue("type")
	frame, err := s.readings.Frame(measurement)
	if err != nil {
		s.writeFrameError(w, measurement, err)
		return
	}

	daily, err := aggregate(frame)
	if err != nil {
		s.writeFrameError(w, measurement, err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse(measurement, daily, "2006-01-02"))
}

// handleNormalised returns one measurement type rescaled column-wise to the
// unit interval, keeping the original timestamp index.
func (s *Server) handleNormalised(w http.ResponseWriter, r *http.Request) {
	measurement := r.PathValue("type")
	frame, err := s.readings.Frame(measurement)
	if err != nil {
		s.writeFrameError(w, measurement, err)
		return
	}
	writeJSON(w, http.StatusOK, frameResponse(measurement, timetable.Normalise(frame), time.RFC3339))
}

func (s *Server) writeFrameError(w http.ResponseWriter, measurement string, err error) {
	if errors.Is(err, store.ErrUnknownMeasurement) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no readings for measurement: " + measurement,
		})
		return
	}
	s.logger.Error("frame query failed", "measurement", measurement, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// frameResponse converts a frame to its JSON shape. NaN values become null,
// which encoding/json cannot represent as a float64.
func frameResponse(measurement string, f *timetable.Frame, indexFormat string) map[string]any {
	index := make([]string, 0, f.Len())
	for _, ts := range f.Index() {
		index = append(index, ts.Format(indexFormat))
	}

	raw := f.Rows()
	rows := make([][]*float64, len(raw))
	for i, row := range raw {
		rows[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				v := row[j]
				rows[i][j] = &v
			}
		}
	}

	return map[string]any{
		"measurement": measurement,
		"columns":     f.Columns(),
		"index":       index,
		"rows":        rows,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
