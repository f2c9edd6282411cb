// Package api serves match queries over HTTP from a catalog snapshot.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/match"
)

// maxTopN bounds the top parameter of a single request.
const maxTopN = 100

// Server answers /match and /status requests.
type Server struct {
	Router *chi.Mux

	matcher     *match.Matcher
	origin      string
	fingerprint string
	loadedAt    time.Time
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewServer creates a server answering from matcher. Swatch links in
// responses point at origin.
func NewServer(matcher *match.Matcher, origin string, opts ...Option) (*Server, error) {
	if matcher == nil {
		return nil, errors.New("matcher required")
	}
	s := &Server{
		Router:      chi.NewRouter(),
		matcher:     matcher,
		origin:      strings.TrimRight(origin, "/"),
		fingerprint: core.Fingerprint(matcher.Swatches()),
		loadedAt:    time.Now().UTC(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mountHandlers()
	return s, nil
}

func (s *Server) mountHandlers() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(s.requestLogger)
	s.Router.Use(middleware.Recoverer)
	s.Router.Get("/match", s.getMatch)
	s.Router.Get("/status", s.getStatus)
}

// ServeHTTP lets a Server be used as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type matchJSON struct {
	ID       core.ID `json:"id"`
	HexColor string  `json:"hex_color"`
	URL      string  `json:"url"`
	Distance float64 `json:"distance"`
}

type matchResponse struct {
	Query   string      `json:"query"`
	Metric  string      `json:"metric"`
	TopN    int         `json:"top_n"`
	Matches []matchJSON `json:"matches"`
	Notice  string      `json:"notice,omitempty"`
}

type statusResponse struct {
	Swatches    int      `json:"swatches"`
	Fingerprint string   `json:"fingerprint"`
	LoadedAt    string   `json:"loaded_at"`
	Metrics     []string `json:"metrics"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// getMatch handles GET /match?color=&top=&exclude=&method=.
func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	color := q.Get("color")

	topN := 1
	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTopN {
			s.sendError(w, http.StatusBadRequest, "top must be an integer between 1 and "+strconv.Itoa(maxTopN))
			return
		}
		topN = n
	}

	excluded, err := match.ParseIDs(q["exclude"]...)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	metric, err := colorspace.ParseMetric(q.Get("method"))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	rsp := matchResponse{
		Query:   strings.TrimPrefix(color, "#"),
		Metric:  metric.String(),
		TopN:    topN,
		Matches: []matchJSON{},
	}

	matches, err := s.matcher.Find(color,
		match.WithTopN(topN), match.WithExcluded(excluded...), match.WithMetric(metric))
	switch {
	case errors.Is(err, match.ErrEmptyCatalog), errors.Is(err, match.ErrNoMatches):
		rsp.Notice = err.Error()
	case errors.Is(err, match.ErrInvalidInput):
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("match failed", "color", color, "err", err)
		s.sendError(w, http.StatusInternalServerError, "internal error")
		return
	}

	for _, m := range matches {
		rsp.Matches = append(rsp.Matches, matchJSON{
			ID:       m.Swatch.Id,
			HexColor: m.Swatch.HexColor,
			URL:      m.Swatch.URL(s.origin),
			Distance: m.Distance,
		})
	}
	s.sendJSON(w, http.StatusOK, rsp)
}

// getStatus handles GET /status.
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	metrics := make([]string, 0, len(colorspace.Metrics()))
	for _, m := range colorspace.Metrics() {
		metrics = append(metrics, m.String())
	}
	s.sendJSON(w, http.StatusOK, statusResponse{
		Swatches:    s.matcher.Size(),
		Fingerprint: s.fingerprint,
		LoadedAt:    s.loadedAt.Format(time.RFC3339),
		Metrics:     metrics,
	})
}

func (s *Server) sendError(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response", "err", err)
	}
}
