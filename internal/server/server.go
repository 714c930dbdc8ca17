package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
	"github.com/oapi-codegen/runtime"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/kiesman99/planraster/internal/api"
	"github.com/kiesman99/planraster/internal/config"
	"github.com/kiesman99/planraster/internal/reduce"
	"github.com/kiesman99/planraster/internal/source"
	"github.com/kiesman99/planraster/pkg/raster"
)

var errForbiddenPath = errors.New("path escapes the data directory")

// Server serves aggregations and coordinate lookups over rasters below
// the configured data directory.
type Server struct {
	startTime time.Time
	version   string
	dataDir   string
	band      int
	driver    string
	cacheTTL  time.Duration
	log       logrus.FieldLogger

	results  *ccache.Cache[reduce.Result]
	inflight singleflight.Group

	registry     *prometheus.Registry
	aggregations *prometheus.CounterVec
	cacheHits    prometheus.Counter
	duration     prometheus.Histogram
}

// NewServer creates a new server instance
func NewServer(version string, cfg *config.Config, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	size := cfg.Server.CacheSize
	if size <= 0 {
		size = 1
	}

	return &Server{
		startTime: time.Now(),
		version:   version,
		dataDir:   cfg.Server.DataDir,
		band:      cfg.Raster.Band,
		driver:    cfg.Raster.Driver,
		cacheTTL:  cfg.Server.CacheTTL,
		log:       log,
		results:   ccache.New(ccache.Configure[reduce.Result]().MaxSize(size)),
		registry:  reg,
		aggregations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "planraster_aggregations_total",
			Help: "Number of band aggregations by outcome.",
		}, []string{"result"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "planraster_aggregation_cache_hits_total",
			Help: "Number of aggregations answered from the result cache.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "planraster_aggregation_duration_seconds",
			Help:    "Time spent reducing a band.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Router returns the HTTP handler with all routes and middleware mounted
func (s *Server) Router(timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	// CORS middleware for API access
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.GetHealth)
		r.Post("/aggregate", s.Aggregate)
		r.Post("/locate", s.Locate)
		r.Get("/bounds", s.GetBounds)
	})

	// Legacy health endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}).Debug("request served")
		}()
		next.ServeHTTP(ww, r)
	})
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	s.writeJSON(w, http.StatusOK, response)
}

// Aggregate reduces a band to its sum and max
func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID(w, r)

	var req api.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDJSON,
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	band := s.band
	if req.Band != nil {
		band = *req.Band
	}
	if band < 1 {
		s.writeErrorResponse(w, http.StatusBadRequest, api.VALIDATIONERROR,
			fmt.Sprintf("band must be 1 or greater, got %d", band), &requestID, nil)
		return
	}

	path, info, err := s.resolvePath(req.Path)
	if err != nil {
		s.handleRasterError(w, err, &requestID)
		return
	}

	res, err := s.aggregate(path, info, band, requestID)
	if err != nil {
		s.handleRasterError(w, err, &requestID)
		return
	}

	if !res.Finite() {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, api.NONFINITE,
			"Band holds NaN or infinite samples", &requestID,
			map[string]interface{}{"summary": res.String(), "count": res.Count})
		return
	}

	s.writeJSON(w, http.StatusOK, api.AggregateResponse{
		Sum:     res.Sum,
		Max:     res.Max,
		Count:   res.Count,
		Tiles:   res.Tiles,
		Summary: res.String(),
	})
}

// aggregate returns the cached result for the raster at its current
// modification time, or reduces it once for all concurrent callers.
func (s *Server) aggregate(path string, info os.FileInfo, band int, requestID string) (reduce.Result, error) {
	key := fmt.Sprintf("%s|%d|%d", path, band, info.ModTime().UnixNano())

	item := s.results.Get(key)
	if item != nil && !item.Expired() {
		s.cacheHits.Inc()
		return item.Value(), nil
	}

	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		h, err := source.Open(path, s.driver)
		if err != nil {
			return reduce.Result{}, err
		}
		defer h.Close()

		start := time.Now()
		res, err := reduce.New(band, s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"raster":     path,
		})).Reduce(h)
		s.duration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.aggregations.WithLabelValues("error").Inc()
			return reduce.Result{}, err
		}
		s.aggregations.WithLabelValues("ok").Inc()

		s.results.Set(key, res, s.cacheTTL)
		return res, nil
	})
	if err != nil {
		return reduce.Result{}, err
	}
	return v.(reduce.Result), nil
}

// Locate maps a geographic origin to pixel coordinates
func (s *Server) Locate(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID(w, r)

	var req api.LocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDJSON,
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	origin, err := raster.ParseCoords(req.Origin)
	if err != nil {
		s.handleRasterError(w, err, &requestID)
		return
	}

	extent, err := s.extent(req.Path)
	if err != nil {
		s.handleRasterError(w, err, &requestID)
		return
	}
	if !extent.IsNorthUp() {
		s.handleRasterError(w, raster.ErrNotNorthUp, &requestID)
		return
	}

	response := api.LocateResponse{
		NorthUp:  true,
		Contains: extent.Contains(origin),
	}
	if response.Contains {
		p := extent.PixelCoords(origin)
		response.Pixel = &api.PixelCoords{X: p.X, Y: p.Y}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// GetBounds returns the raster extent as a GeoJSON polygon feature
func (s *Server) GetBounds(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID(w, r)

	var path string
	if err := runtime.BindQueryParameter("form", true, true, "path", r.URL.Query(), &path); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDREQUEST,
			fmt.Sprintf("Invalid format for parameter path: %s", err), &requestID, nil)
		return
	}

	extent, err := s.extent(path)
	if err != nil {
		s.handleRasterError(w, err, &requestID)
		return
	}
	if !extent.IsNorthUp() {
		s.handleRasterError(w, raster.ErrNotNorthUp, &requestID)
		return
	}

	feature := geojson.NewFeature(extent.Bound().ToPolygon())
	feature.Properties["width"] = extent.Width
	feature.Properties["height"] = extent.Height
	feature.Properties["pixel_width"] = extent.Transform.PixelWidth()
	feature.Properties["pixel_height"] = extent.Transform.PixelHeight()

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(feature); err != nil {
		s.log.WithError(err).Error("error encoding bounds response")
	}
}

func (s *Server) extent(p string) (raster.Extent, error) {
	path, _, err := s.resolvePath(p)
	if err != nil {
		return raster.Extent{}, err
	}
	h, err := source.Open(path, s.driver)
	if err != nil {
		return raster.Extent{}, err
	}
	defer h.Close()
	return raster.NewExtent(h.Metadata()), nil
}

// resolvePath maps a request path into the data directory
func (s *Server) resolvePath(p string) (string, os.FileInfo, error) {
	if p == "" {
		return "", nil, &raster.PreconditionError{Check: "path", Message: "path is required"}
	}
	root, err := filepath.Abs(s.dataDir)
	if err != nil {
		return "", nil, err
	}
	if !within(root, filepath.Join(root, p)) {
		return "", nil, errForbiddenPath
	}

	// symlinks may point outside the data directory
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", nil, err
	}
	full, err := filepath.EvalSymlinks(filepath.Join(root, p))
	if err != nil {
		return "", nil, err
	}
	if !within(root, full) {
		return "", nil, errForbiddenPath
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s: %w", p, os.ErrNotExist)
	}
	return full, info, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// handleRasterError maps raster and reduction errors to responses
func (s *Server) handleRasterError(w http.ResponseWriter, err error, requestID *string) {
	var (
		precondition *raster.PreconditionError
		parseErr     *raster.ParseCoordsError
		readErr      *reduce.TileReadError
	)

	switch {
	case errors.As(err, &parseErr):
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDREQUEST, err.Error(), requestID, nil)
	case errors.Is(err, errForbiddenPath):
		s.writeErrorResponse(w, http.StatusForbidden, api.FORBIDDENPATH, err.Error(), requestID, nil)
	case errors.Is(err, os.ErrNotExist):
		s.writeErrorResponse(w, http.StatusNotFound, api.NOTFOUND, "Raster not found", requestID, nil)
	case errors.Is(err, raster.ErrNotNorthUp):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, api.NOTNORTHUP, err.Error(), requestID, nil)
	case errors.Is(err, raster.ErrOutOfBounds):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, api.OUTOFBOUNDS, err.Error(), requestID, nil)
	case errors.As(err, &precondition):
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, api.PRECONDITION, err.Error(), requestID,
			map[string]interface{}{"check": precondition.Check})
	case errors.As(err, &readErr):
		s.log.WithError(err).Error("aggregation aborted")
		s.writeErrorResponse(w, http.StatusInternalServerError, api.TILEREADERROR, err.Error(), requestID,
			map[string]interface{}{
				"band":    readErr.Band,
				"block_x": readErr.BlockX,
				"block_y": readErr.BlockY,
			})
	default:
		s.log.WithError(err).Error("request failed")
		s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
			"Internal server error", requestID, nil)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	s.writeJSON(w, statusCode, response)
}

// writeJSON encodes v before writing the header, so an encoding failure
// still produces a 500.
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Error("error encoding response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"INTERNAL_ERROR","message":"Internal server error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

// newRequestID returns the ID set by middleware.RequestID, or a fresh one
// when the handler runs outside the router, and echoes it on the response.
func newRequestID(w http.ResponseWriter, r *http.Request) string {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	return id
}
