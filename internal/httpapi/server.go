// Package httpapi exposes the decision service over HTTP and provides the
// client the door agent uses to call it.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	"github.com/hzouari/janus/internal/janus/service"
	"github.com/hzouari/janus/internal/janus/types"
)

type ServerConfig struct {
	Addr string

	// RequestTimeout bounds each request end to end.  Defaults to 10s.
	RequestTimeout time.Duration

	// RateLimit is requests per IP per minute.  Defaults to 120.
	RateLimit int
}

// Server serves the decision API.  Every check_access call produces exactly
// one attendance row, granted or not.
type Server struct {
	cfg      ServerConfig
	engine   *service.DecisionEngine
	recorder *service.AttendanceLogger
	logger   *log.Logger

	http *http.Server
	now  func() time.Time // test hook
}

func NewServer(cfg ServerConfig, engine *service.DecisionEngine, recorder *service.AttendanceLogger, logger *log.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 120
	}
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}
	return s
}

// Routes builds the router; exported so tests can mount it on httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))

	r.Get("/v1/healthz", s.handleHealthz)
	r.Post("/v1/check_access", s.handleCheckAccess)
	return r
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.cfg.Addr).Info("decision api listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCheckAccess evaluates one access request.  Any outcome — including
// a malformed request or an engine failure — is answered with a decision
// document; the endpoint never leaks a 5xx for a deniable condition, and it
// records an attendance row whenever a decision was actually made.
func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	var req types.CheckAccessRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.logger.WithError(err).Warn("rejecting malformed check_access request")
		s.writeJSON(w, http.StatusBadRequest, types.CheckAccessResponse{
			Status: types.StatusDenied,
			Reason: string(types.ReasonUnknownIdentity),
		})
		return
	}

	now := s.now()
	d, err := s.engine.Decide(r.Context(), req.IdentityID, now)
	if err != nil {
		s.logger.WithError(err).Error("decision engine degraded, failing closed")
	}

	// The audit row is written regardless of outcome; Record logs its own
	// failures and the response does not wait on durability guarantees
	// beyond the call itself.
	_ = s.recorder.Record(r.Context(), d, now)

	resp := types.CheckAccessResponse{Status: types.StatusDenied}
	if d.Granted {
		resp.Status = types.StatusGranted
	} else {
		resp.Reason = string(d.Reason)
	}
	if d.IdentityName != "" {
		name := d.IdentityName
		resp.IdentityName = &name
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to write response")
	}
}
