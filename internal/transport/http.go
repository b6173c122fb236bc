package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/scope"
	"github.com/rs/cors"
)

const maxBodyBytes = 1 << 20

// ActivityService lists audit entries.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Config wires the HTTP server.
type Config struct {
	Modules  *record.Registry
	Activity ActivityService
	Scopes   *auth.Scopes
	// Auth authenticates /api requests; nil trusts RoleHeader.
	Auth        func(http.Handler) http.Handler
	RoleHeader  string
	CORSOrigins []string
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server serves the REST API.
type Server struct {
	modules  *record.Registry
	activity ActivityService
	scopes   *auth.Scopes
	logger   *slog.Logger
}

// NewServer creates the HTTP handler with middleware.
func NewServer(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	roleHeader := cfg.RoleHeader
	if roleHeader == "" {
		roleHeader = "X-Jobsite-Role"
	}
	authMiddleware := cfg.Auth
	if authMiddleware == nil {
		authMiddleware = RoleHeaderMiddleware(roleHeader)
	}

	srv := &Server{
		modules:  cfg.Modules,
		activity: cfg.Activity,
		scopes:   cfg.Scopes,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(srv.accessLog)

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(gziphandler.GzipHandler)

		r.Get("/scope", srv.handleScope)
		r.Get("/modules", srv.handleModules)
		r.Get("/activity", srv.handleActivity)

		r.Route("/{module}", func(r chi.Router) {
			r.Get("/records", srv.handleQuery)
			r.Post("/records", srv.handleCreate)
			r.Put("/records/{id}", srv.handleUpdate)
			r.Post("/records/{id}/approve", srv.handleApprove)
			r.Get("/stats", srv.handleStats)
			r.Post("/sync", srv.handleSync)
			r.Get("/export", srv.handleExport)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", roleHeader, RequestIDHeader, "Mcp-Session-Id"},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition", "X-Export-Rows", "Mcp-Session-Id"},
	})
	return c.Handler(r)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		requestID, _ := RequestIDFromContext(r.Context())
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration", time.Since(started),
			"request_id", requestID,
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ScopeResponse is returned by GET /api/scope.
type ScopeResponse struct {
	Principal auth.Principal `json:"principal"`
	Scope     scope.Scope    `json:"scope"`
}

func (s *Server) handleScope(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopes.FromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	principal, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, ScopeResponse{Principal: principal, Scope: sc})
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.modules.Describe())
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopes.FromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var opts activity.ListActivityOptions
	if err := decoder.Decode(&opts, r.URL.Query()); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", record.ErrInvalidInput, err))
		return
	}
	if opts.ProjectID != "" && !sc.Allows(opts.ProjectID) {
		writeError(w, r, record.ErrOutOfScope)
		return
	}

	entries, err := s.activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity.Visible(entries, sc, activity.ActorFromContext(r.Context())))
}

// moduleScope resolves the addressed module and the caller's scope, writing
// the error response itself when either fails.
func (s *Server) moduleScope(w http.ResponseWriter, r *http.Request) (record.Module, scope.Scope, bool) {
	sc, err := s.scopes.FromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return nil, scope.Scope{}, false
	}
	mod, err := s.modules.Get(chi.URLParam(r, "module"))
	if err != nil {
		writeError(w, r, err)
		return nil, scope.Scope{}, false
	}
	return mod, sc, true
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	res, err := mod.Query(r.Context(), sc, DecodeFilters(r.URL.Query(), mod.Describe()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	stats, err := mod.Stats(r.Context(), sc, DecodeFilters(r.URL.Query(), mod.Describe()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := mod.Create(r.Context(), sc, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := mod.Update(r.Context(), sc, chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	rec, err := mod.Approve(r.Context(), sc, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	res, err := mod.Sync(r.Context(), sc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	mod, sc, ok := s.moduleScope(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	format := export.LookupFormat(query.Get("format"))

	sink := &export.MemorySink{}
	opts := export.Options{Format: format, FileName: query.Get("file_name")}
	res, err := mod.Export(r.Context(), sc, DecodeFilters(query, mod.Describe()), opts, sink)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.Header().Set("X-Export-Rows", strconv.Itoa(res.Rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(sink.Bytes())
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", record.ErrInvalidInput, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body too large", record.ErrInvalidInput)
	}
	return body, nil
}
