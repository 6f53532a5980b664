// Package api exposes the diagram pipeline over HTTP.
//
// The service is deliberately small: one endpoint computes layouts, one
// renders diagrams, and stored layouts can be fetched by ID or looked up by
// snapshot hash. All request and response bodies are JSON except rendered
// artifacts, which are returned in their native content type.
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fluxlab/flowsheet/pkg/errors"
	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/pipeline"
	"github.com/fluxlab/flowsheet/pkg/store"
)

// requestTimeout bounds a single pipeline run.
const requestTimeout = 60 * time.Second

// Server handles HTTP requests for the flowsheet API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store // optional, may be nil
	logger *log.Logger
}

// NewServer creates a server around a pipeline runner.
// The store may be nil, which disables the layout retrieval endpoint.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Router assembles the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/diagram", s.handleDiagram)
		r.Get("/layouts", s.handleFindLayout)
		r.Get("/layouts/{id}", s.handleGetLayout)
	})
	return r
}

// logRequests logs each request with its duration and status.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// =============================================================================
// Request / Response Types
// =============================================================================

// LayoutRequest asks for positions without rendering.
type LayoutRequest struct {
	Snapshot json.RawMessage `json:"snapshot"`
	XSpacing float64         `json:"x_spacing,omitempty"`
	YSpacing float64         `json:"y_spacing,omitempty"`
	Refresh  bool            `json:"refresh,omitempty"`
}

// LayoutResponse carries the computed positions.
type LayoutResponse struct {
	SnapshotHash string                `json:"snapshot_hash"`
	Positions    map[string]flow.Point `json:"positions"`
	VertexCount  int                   `json:"vertex_count"`
	EdgeCount    int                   `json:"edge_count"`
	LayoutCached bool                  `json:"layout_cached"`
}

// DiagramRequest asks for a rendered diagram in a single format.
type DiagramRequest struct {
	Snapshot json.RawMessage   `json:"snapshot"`
	Format   string            `json:"format,omitempty"`
	XSpacing float64           `json:"x_spacing,omitempty"`
	YSpacing float64           `json:"y_spacing,omitempty"`
	PageName string            `json:"page_name,omitempty"`
	Animate  bool              `json:"animate,omitempty"`
	Carriers map[string]string `json:"carriers,omitempty"`
	Refresh  bool              `json:"refresh,omitempty"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// contentTypes maps formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatDrawio: "application/xml",
	pipeline.FormatDOT:    "text/vnd.graphviz",
	pipeline.FormatSVG:    "image/svg+xml",
	pipeline.FormatPNG:    "image/png",
	pipeline.FormatJSON:   "application/json",
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if len(req.Snapshot) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "snapshot is required"))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Snapshot: req.Snapshot,
		XSpacing: req.XSpacing,
		YSpacing: req.YSpacing,
		Formats:  []string{pipeline.FormatJSON},
		Refresh:  req.Refresh,
		Logger:   s.logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, LayoutResponse{
		SnapshotHash: result.SnapshotHash,
		Positions:    result.Positions,
		VertexCount:  result.Stats.VertexCount,
		EdgeCount:    result.Stats.EdgeCount,
		LayoutCached: result.CacheInfo.LayoutHit,
	})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	var req DiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if len(req.Snapshot) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "snapshot is required"))
		return
	}

	format := req.Format
	if format == "" {
		format = pipeline.FormatDrawio
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "%v", err))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Snapshot: req.Snapshot,
		XSpacing: req.XSpacing,
		YSpacing: req.YSpacing,
		Formats:  []string{format},
		PageName: req.PageName,
		Animate:  req.Animate,
		Carriers: req.Carriers,
		Refresh:  req.Refresh,
		Logger:   s.logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "layout store is not configured"))
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, errors.New(errors.ErrCodeLayoutNotFound, "layout %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load layout %s", id))
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// handleFindLayout looks up the most recent archived layout for a snapshot
// hash, passed as the hash query parameter.
func (s *Server) handleFindLayout(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "layout store is not configured"))
		return
	}

	hash := r.URL.Query().Get("hash")
	if hash == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "hash query parameter is required"))
		return
	}

	rec, err := s.store.FindByHash(r.Context(), hash)
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, errors.New(errors.ErrCodeLayoutNotFound, "no layout for snapshot %s", hash))
		return
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "find layout for snapshot %s", hash))
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// =============================================================================
// Response Helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

// writeError maps error codes to HTTP statuses and writes the JSON envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	// Graph construction failures surface as sentinel errors, not coded ones.
	if code == "" {
		switch {
		case stderrors.Is(err, flow.ErrDuplicateVertex):
			code = errors.ErrCodeDuplicateComponent
		case stderrors.Is(err, flow.ErrUnknownVertex):
			code = errors.ErrCodeUnknownComponent
		case stderrors.Is(err, flow.ErrInvalidVertexID):
			code = errors.ErrCodeInvalidComponent
		}
	}

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSnapshot, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidComponent, errors.ErrCodeInvalidCarrier,
		errors.ErrCodeDuplicateComponent, errors.ErrCodeUnknownComponent:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeLayoutNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case "":
		code = errors.ErrCodeInternal
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}

	s.writeJSON(w, status, errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}
