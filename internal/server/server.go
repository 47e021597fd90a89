// Package server serves a read-only HTTP preview of a project's exports.
//
// Every request loads the project file afresh, so the server always reflects
// the last save and never shares editor state between goroutines.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glint-tools/carbon/internal/editor"
	"github.com/glint-tools/carbon/internal/export"
	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/ui"
)

// Loader returns the current state of the served project.
type Loader func(ctx context.Context) (*project.Project, error)

// Config holds server configuration.
type Config struct {
	Addr   string
	Load   Loader
	Logger *slog.Logger
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Load == nil {
		return errors.New("server: no project loader")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg.Load, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting preview server", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewRouter registers the preview routes.
func NewRouter(load Loader, logger *slog.Logger) http.Handler {
	h := &handler{load: load, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/project", h.getProject)
		r.Get("/collections", h.listCollections)
		r.Get("/collections/{collection}", h.getCollection)
		r.Get("/collections/{collection}/objects/*", h.getObject)
		r.Get("/collections/{collection}/describe/*", h.describeObject)
	})
	return r
}

type handler struct {
	load   Loader
	logger *slog.Logger
}

type collectionSummary struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Objects int    `json:"objects"`
	Types   int    `json:"types"`
}

func (h *handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	h.writeRecord(w, r, export.Project(p))
}

func (h *handler) listCollections(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	out := make([]collectionSummary, 0, p.Len())
	for _, c := range p.Collections() {
		s := collectionSummary{Name: c.Name().String(), ID: c.ID().String()}
		for _, o := range c.Objects() {
			if o == c.Root() {
				continue
			}
			s.Objects++
			if o.IsType() {
				s.Types++
			}
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getCollection(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.locate(w, r, "")
	if !ok {
		return
	}
	h.writeRecord(w, r, export.Collection(c))
}

func (h *handler) getObject(w http.ResponseWriter, r *http.Request) {
	c, obj, ok := h.locate(w, r, chi.URLParam(r, "*"))
	if !ok {
		return
	}
	h.writeRecord(w, r, export.Any(c, obj))
}

func (h *handler) describeObject(w http.ResponseWriter, r *http.Request) {
	c, obj, ok := h.locate(w, r, chi.URLParam(r, "*"))
	if !ok {
		return
	}
	doc := export.Markdown(c, obj)
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, doc)
		return
	}
	html, err := ui.RenderHTML(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func (h *handler) project(w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	p, err := h.load(r.Context())
	if err != nil {
		h.logger.Error("failed to load project", "error", err)
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "LOAD_FAILED", err.Error())
		}
		return nil, false
	}
	return p, true
}

func (h *handler) locate(w http.ResponseWriter, r *http.Request, path string) (*project.Collection, *project.Object, bool) {
	p, ok := h.project(w, r)
	if !ok {
		return nil, nil, false
	}
	c, err := editor.FindCollection(p, chi.URLParam(r, "collection"))
	if err != nil {
		writeError(w, http.StatusNotFound, "COLLECTION_NOT_FOUND", err.Error())
		return nil, nil, false
	}
	obj, err := editor.FindObject(c, path)
	if err != nil {
		writeError(w, http.StatusNotFound, "OBJECT_NOT_FOUND", err.Error())
		return nil, nil, false
	}
	return c, obj, true
}

// writeRecord encodes rec as JSON, or as YAML with ?format=yaml.
func (h *handler) writeRecord(w http.ResponseWriter, r *http.Request, rec *export.Record) {
	format := export.JSON
	if q := r.URL.Query().Get("format"); q != "" {
		if err := format.Set(q); err != nil || !format.Streamable() {
			writeError(w, http.StatusBadRequest, "INVALID_FORMAT", fmt.Sprintf("unsupported format %q", q))
			return
		}
	}

	if format == export.YAML {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := export.WriteYAML(w, rec); err != nil {
			h.logger.Error("writeYAML encode error", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON encode error", "error", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
