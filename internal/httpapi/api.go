// Package httpapi is the HTTP layer of the Storycat backend.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"storycat.app/internal/assets"
	"storycat.app/internal/auth"
	"storycat.app/internal/content"
	"storycat.app/internal/obs"
	"storycat.app/internal/project"
	"storycat.app/internal/reports"
	"storycat.app/internal/stream"
	"storycat.app/internal/timelog"
)

// ReadyProbe reports backend readiness (database ping when present).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the domain services into the HTTP layer.
type Config struct {
	Auth     *auth.Service
	Content  *content.Service
	Projects *project.Service
	Timelogs *timelog.Service
	Reports  *reports.Service
	Bucket   *assets.Bucket
	Stream   *stream.Stream
	Probe    ReadyProbe
	Version  string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth     *auth.Service
	content  *content.Service
	projects *project.Service
	timelogs *timelog.Service
	reports  *reports.Service
	bucket   *assets.Bucket
	stream   *stream.Stream
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: cfg.Probe,
		version:    cfg.Version,
		auth:       cfg.Auth,
		content:    cfg.Content,
		projects:   cfg.Projects,
		timelogs:   cfg.Timelogs,
		reports:    cfg.Reports,
		bucket:     cfg.Bucket,
		stream:     cfg.Stream,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth + employees; login is rate limited per client IP to slow
	// credential stuffing
	a.mux.Handle("/v1/auth/login", RateLimit(http.HandlerFunc(a.handleLogin), 10, 5))
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)
	a.mux.HandleFunc("/v1/employees", a.handleEmployeesCollection)
	a.mux.HandleFunc("/v1/employees/", a.handleEmployeeResource)

	// projects
	a.mux.HandleFunc("/v1/projects", a.handleProjectsCollection)
	a.mux.HandleFunc("/v1/projects/", a.handleProjectResource)

	// content items
	a.mux.HandleFunc("/v1/items", a.handleItemsCollection)
	a.mux.HandleFunc("/v1/items/", a.handleItemResource)

	// time tracking
	a.mux.HandleFunc("/v1/timelogs/start", a.handleTimelogStart)
	a.mux.HandleFunc("/v1/timelogs/stop", a.handleTimelogStop)
	a.mux.HandleFunc("/v1/timelogs/active", a.handleTimelogActive)

	// reports
	a.mux.HandleFunc("/v1/reports/", a.handleReports)

	// assets: multipart upload plus public serving
	if a.bucket != nil {
		a.mux.HandleFunc("/v1/assets", a.handleAssetUpload)
		a.mux.Handle("/assets/", a.bucket.Handler())
	}

	// live pipeline feed
	a.mux.HandleFunc("/v1/stream/pipeline", a.StreamPipeline)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 10<<20)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "storycat-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "storycat-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleDomainError maps domain sentinels onto HTTP status codes.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, timelog.ErrInvalidInput),
		errors.Is(err, reports.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, content.ErrForbidden),
		errors.Is(err, project.ErrForbidden),
		errors.Is(err, auth.ErrUnauthorized):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, content.ErrNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, timelog.ErrNotFound),
		errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, content.ErrLocked):
		writeError(w, r, http.StatusLocked, err.Error())
	case errors.Is(err, content.ErrConflict),
		errors.Is(err, project.ErrConflict),
		errors.Is(err, auth.ErrAlreadyExists),
		errors.Is(err, timelog.ErrActiveExists),
		errors.Is(err, timelog.ErrNoActive):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
