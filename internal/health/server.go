// Package health exposes a lightweight HTTP health endpoint for container probes.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"nexus_bot/internal/logging"
)

const (
	dbPingTimeout      = 2 * time.Second
	readHeaderTimeout  = 2 * time.Second
	healthListenPrefix = ":"
)

// Checker defines the subset of database behavior required for health.
type Checker interface {
	Ping(ctx context.Context) error
}

// Counter yields the size of one stored collection for the health report.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Server hosts the health endpoint and owns the underlying HTTP server.
type Server struct {
	server    *http.Server
	logger    *logrus.Entry
	dbChecker Checker
	profiles  Counter
	groups    Counter
	started   time.Time

	// now is overridable for tests.
	now func() time.Time
}

type response struct {
	Status        string `json:"status"`
	Database      string `json:"database,omitempty"`
	Profiles      *int64 `json:"profiles,omitempty"`
	Groups        *int64 `json:"groups,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// NewServer constructs a health server that exposes GET /healthz on the
// provided port.
func NewServer(port int, dbChecker Checker, profiles, groups Counter, logger *logrus.Entry) *Server {
	if logger == nil {
		logger = logging.Logger()
	}

	srv := &Server{
		logger:    logger,
		dbChecker: dbChecker,
		profiles:  profiles,
		groups:    groups,
		started:   time.Now(),
		now:       time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf("%s%d", healthListenPrefix, port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return srv
}

// ListenAndServe starts the health server and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.WithFields(logging.Fields{
		"event": "health_listen",
		"addr":  s.server.Addr,
	}).Info("starting health server")

	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.WithField("event", "health_stopped").Info("health server stopped")
			return nil
		}

		return fmt.Errorf("health server listen: %w", err)
	}

	s.logger.WithField("event", "health_stopped").Info("health server stopped")
	return nil
}

// Shutdown gracefully stops the health server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := response{
		Status:        "ok",
		UptimeSeconds: int64(s.now().Sub(s.started).Seconds()),
	}
	dbStatus := "ok"

	ctx := r.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if s.dbChecker == nil {
		dbStatus = "error"
		s.logger.WithField("event", "health_db_missing").Warn("database checker is not configured for health endpoint")
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		err := s.dbChecker.Ping(pingCtx)
		cancel()

		if err != nil {
			dbStatus = "error"
			s.logger.WithFields(logging.Fields{
				"event": "health_db_error",
			}).WithError(err).Warn("database ping failed during health check")
		}
	}

	if dbStatus != "ok" {
		resp.Status = "degraded"
		resp.Database = "error"
	} else {
		resp.Profiles = s.count(ctx, s.profiles, "profiles")
		resp.Groups = s.count(ctx, s.groups, "groups")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithField("event", "health_write_error").WithError(err).Error("failed to encode health response")
	}
}

func (s *Server) count(ctx context.Context, counter Counter, name string) *int64 {
	if counter == nil {
		return nil
	}

	n, err := counter.Count(ctx)
	if err != nil {
		s.logger.WithFields(logging.Fields{
			"event":      "health_count_error",
			"collection": name,
		}).WithError(err).Warn("failed to count collection during health check")
		return nil
	}

	return &n
}
