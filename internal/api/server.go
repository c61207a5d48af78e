// Package api exposes the geometry pipeline and diagram store over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canopyhq/canopy/pkg/cache"
	apperrors "github.com/canopyhq/canopy/pkg/errors"
	"github.com/canopyhq/canopy/pkg/observability"
	"github.com/canopyhq/canopy/pkg/pipeline"
	"github.com/canopyhq/canopy/pkg/render"
	"github.com/canopyhq/canopy/pkg/scene"
	"github.com/canopyhq/canopy/pkg/stacking"
	"github.com/canopyhq/canopy/pkg/store"
)

// Server wires the geometry runner and diagram store into an HTTP API.
// Touch state is kept in memory per diagram: it is interaction state, not
// document content, so it does not round-trip through the store.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	mu      sync.Mutex
	touched map[string]*stacking.TouchList
}

// NewServer creates a server over a runner and store.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		Runner:  runner,
		Store:   st,
		Logger:  logger,
		touched: make(map[string]*stacking.TouchList),
	}
}

// Handler returns the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/geometry", s.handleGeometry)

		r.Route("/diagrams", func(r chi.Router) {
			r.Get("/", s.handleListDiagrams)
			r.Post("/", s.handleCreateDiagram)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDiagram)
				r.Put("/", s.handlePutDiagram)
				r.Delete("/", s.handleDeleteDiagram)
				r.Post("/touch", s.handleTouch)
				r.Get("/geometry", s.handleDiagramGeometry)
				r.Get("/export", s.handleExport)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGeometry runs one stateless recomputation pass over the snapshot in
// the request body.
func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	var snap pipeline.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidSnapshot, err, "invalid snapshot body"))
		return
	}

	geo, err := s.Runner.Resolve(r.Context(), snap)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "snapshot document rejected"))
		return
	}
	writeJSON(w, http.StatusOK, geo)
}

type createDiagramRequest struct {
	Name     string          `json:"name"`
	Document scene.Document  `json:"document"`
	Chrome   scene.ChromeMap `json:"chrome,omitempty"`
}

func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req createDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if _, err := scene.ToScene(req.Document); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "document rejected"))
		return
	}

	d := store.New(req.Name, req.Document, req.Chrome)
	if err := s.Store.Put(r.Context(), d); err != nil {
		observability.Store().OnStoreWrite(r.Context(), "api", d.ID, err)
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store write failed"))
		return
	}
	observability.Store().OnStoreWrite(r.Context(), "api", d.ID, nil)
	s.Logger.Info("diagram created", "id", d.ID, "name", d.Name)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store list failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"diagrams": ids})
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePutDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req createDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if _, err := scene.ToScene(req.Document); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "document rejected"))
		return
	}

	d, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			d = store.New(req.Name, req.Document, req.Chrome)
			d.ID = id
		} else {
			s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store read failed"))
			return
		}
	} else {
		if req.Name != "" {
			d.Name = req.Name
		}
		d.Document = req.Document
		d.Chrome = req.Chrome
	}

	if err := s.Store.Put(r.Context(), d); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store write failed"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, apperrors.New(apperrors.ErrCodeDiagramNotFound, "diagram not found"))
			return
		}
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store delete failed"))
		return
	}
	s.mu.Lock()
	delete(s.touched, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type touchRequest struct {
	Scene string `json:"scene"`
}

// handleTouch records a container scene interaction, promoting the scene to
// the front of the diagram's recency list.
func (s *Server) handleTouch(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}

	var req touchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if req.Scene == "" {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "scene id required"))
		return
	}

	s.mu.Lock()
	t := s.touched[d.ID]
	if t == nil {
		t = stacking.NewTouchList()
		s.touched[d.ID] = t
	}
	t.Touch(req.Scene)
	ids := t.IDs()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string][]string{"touched": ids})
}

// handleDiagramGeometry resolves geometry for a stored diagram using its
// server-side touch state.
func (s *Server) handleDiagramGeometry(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	var touched []string
	if t := s.touched[d.ID]; t != nil {
		touched = t.IDs()
	}
	s.mu.Unlock()

	geo, err := s.Runner.Resolve(r.Context(), pipeline.Snapshot{
		Document: d.Document,
		Chrome:   d.Chrome,
		Touched:  touched,
	})
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "stored document rejected"))
		return
	}
	writeJSON(w, http.StatusOK, geo)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagram(w, r)
	if !ok {
		return
	}

	sc, err := scene.ToScene(d.Document)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "stored document rejected"))
		return
	}

	detailed := r.URL.Query().Get("detailed") == "true"
	dot := render.ToDOT(sc, render.Options{Detailed: detailed})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(dot))
	case "svg":
		// Rendering goes through Graphviz and dominates export latency, so
		// generated SVG is cached by scene content.
		key := s.Runner.Keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{
			Format:   "svg",
			Detailed: detailed,
		})
		svg, hit, err := s.Runner.Cache.Get(r.Context(), key)
		if err != nil || !hit {
			svg, err = render.RenderSVG(r.Context(), dot)
			if err != nil {
				s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "svg rendering failed"))
				return
			}
			_ = s.Runner.Cache.Set(r.Context(), key, svg, s.Runner.CacheTTL)
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
	default:
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format: %s", format))
	}
}

func (s *Server) loadDiagram(w http.ResponseWriter, r *http.Request) (*store.Diagram, bool) {
	id := chi.URLParam(r, "id")
	d, err := s.Store.Get(r.Context(), id)
	if err != nil {
		observability.Store().OnStoreRead(r.Context(), "api", id, err)
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, apperrors.New(apperrors.ErrCodeDiagramNotFound, "diagram not found"))
		} else {
			s.writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store read failed"))
		}
		return nil, false
	}
	observability.Store().OnStoreRead(r.Context(), "api", id, nil)
	return d, true
}

type errorResponse struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	s.Logger.Warn("request failed", "code", code, "err", err)
	writeJSON(w, statusFor(code), errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  code,
	})
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidDocument,
		apperrors.ErrCodeInvalidSnapshot, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeDiagramNotFound,
		apperrors.ErrCodeNodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
