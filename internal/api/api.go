// Package api exposes the checker over HTTP for the serve command.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pkgscout/pkgscout/internal/config"
	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/deps"
	"github.com/pkgscout/pkgscout/pkg/deps/languages"
	"github.com/pkgscout/pkgscout/pkg/distro"
	"github.com/pkgscout/pkgscout/pkg/report"
)

// Server handles the JSON API. One server shares a cache store and checker
// across requests, so repeated checks of popular packages stay cheap.
type Server struct {
	cfg     config.Config
	store   cache.Cache
	checker deps.AvailabilityChecker
	log     *log.Logger

	// newProvider is swappable for tests.
	newProvider func(lang deps.Language) deps.Provider
}

// NewServer creates an API server. A nil checker gets the configured dnf
// checker.
func NewServer(cfg config.Config, store cache.Cache, checker deps.AvailabilityChecker, logger *log.Logger) *Server {
	if checker == nil {
		c := distro.NewChecker(store, time.Duration(cfg.Cache.DistroTTL))
		c.Release = cfg.Distro.Release
		c.Repos = cfg.Distro.Repos
		if cfg.Distro.DNF != "" {
			c.Binary = cfg.Distro.DNF
		}
		checker = c
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cfg: cfg, store: store, checker: checker, log: logger}
	s.newProvider = func(lang deps.Language) deps.Provider {
		return lang.NewProvider(store, time.Duration(cfg.Cache.RegistryTTL))
	}
	return s
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/v1/languages", s.handleLanguages)
	r.Post("/v1/check", s.handleCheck)
	return r
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", ww.Header().Get("X-Request-ID"),
		)
	})
}

type languageEntry struct {
	Name     string   `json:"name"`
	Display  string   `json:"display_name"`
	Registry string   `json:"registry"`
	Aliases  []string `json:"aliases,omitempty"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	var out []languageEntry
	for _, lang := range languages.All() {
		out = append(out, languageEntry{
			Name:     lang.Name,
			Display:  lang.DisplayName,
			Registry: lang.Registry,
			Aliases:  lang.Aliases,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": out})
}

type checkRequest struct {
	Package         string `json:"package"`
	Lang            string `json:"lang"`
	Version         string `json:"version,omitempty"`
	MaxDepth        int    `json:"max_depth,omitempty"`
	IncludeOptional bool   `json:"include_optional,omitempty"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Package == "" {
		writeError(w, http.StatusBadRequest, "package is required")
		return
	}
	if req.Lang == "" {
		writeError(w, http.StatusBadRequest, "lang is required")
		return
	}

	lang, err := languages.Get(req.Lang)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.cfg.Check.MaxDepth
	}

	provider := s.newProvider(lang)
	start := time.Now()
	root, err := deps.Build(r.Context(), provider, s.checker, req.Package, req.Version, deps.Config{
		MaxDepth:        maxDepth,
		IncludeOptional: req.IncludeOptional,
	})
	if err != nil {
		switch {
		case errors.Is(err, distro.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, deps.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			s.log.Error("check failed", "package", req.Package, "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, report.Data{
		Language:        lang.Name,
		Registry:        lang.Registry,
		Root:            root,
		Summary:         deps.Summarize(root),
		GeneratedAt:     time.Now().UTC(),
		Duration:        time.Since(start),
		MaxDepth:        maxDepth,
		IncludeOptional: req.IncludeOptional,
		Release:         s.cfg.Distro.Release,
		Repos:           s.cfg.Distro.Repos,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg, "code": status})
}
