// Package server serves rendered documents over HTTP for previewing.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apib-renderer/renderer/internal/logger"
	"github.com/apib-renderer/renderer/internal/pdf"
	"github.com/apib-renderer/renderer/internal/pipeline"
	"github.com/apib-renderer/renderer/internal/result"
)

// Options configures a Server.
type Options struct {
	// Backend enables GET /docs/{name}.pdf when set.
	Backend pdf.Backend
	Timeout time.Duration
	// Gatherer enables GET /metrics when set.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server re-renders a document from its source on every request.
type Server struct {
	pipe *pipeline.Pipeline
	src  Source
	opts Options
	log  *slog.Logger
}

func New(p *pipeline.Pipeline, src Source, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Default
	}
	if opts.Timeout <= 0 {
		opts.Timeout = pipeline.DefaultPDFTimeout
	}
	return &Server{pipe: p, src: src, opts: opts, log: log}
}

const namePattern = "{name:[A-Za-z0-9_-]+}"

// RegisterRoutes registers the server routes.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.HandleFunc("/docs/"+namePattern+".pdf", s.handlePDF).Methods("GET")
	router.HandleFunc("/docs/"+namePattern, s.handleHTML).Methods("GET")
	if s.opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	s.RegisterRoutes(router)
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	res, ok := s.render(w, r, name)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(res.Files[name+".html"])
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if s.opts.Backend == nil {
		writeError(w, http.StatusNotFound, "PDF export is not configured", nil)
		return
	}
	res, ok := s.render(w, r, name)
	if !ok {
		return
	}
	err := s.pipe.ExportPDF(r.Context(), res, s.opts.Backend, s.opts.Timeout)
	if err != nil {
		var timeout *pdf.RenderBackendTimeoutError
		switch {
		case errors.Is(err, pdf.ErrCancelled):
			s.log.Debug("pdf export cancelled", "document", name)
			return
		case errors.As(err, &timeout):
			writeError(w, http.StatusGatewayTimeout, "PDF export timed out", err)
		default:
			writeError(w, http.StatusBadGateway, "PDF export failed", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(res.Files[name+".pdf"])
}

// render loads and renders name, writing an error response when it cannot.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string) (*result.RenderResult, bool) {
	text, err := s.src.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "Document not found", nil)
		} else {
			s.log.Error("reading document failed", "document", name, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to read document", err)
		}
		return nil, false
	}
	res, err := s.pipe.RenderSource(r.Context(), pipeline.Source{Name: name, Text: text})
	if err != nil {
		s.log.Debug("render cancelled", "document", name, "error", err)
		return nil, false
	}
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, res)
		return nil, false
	}
	return res, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
		var be *pdf.RenderBackendError
		if errors.As(err, &be) && be.Diagnostic != "" {
			response["diagnostic"] = be.Diagnostic
		}
	}
	writeJSON(w, status, response)
}
