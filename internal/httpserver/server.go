// Package httpserver implements the thin HTTP intake adapter: descriptor
// submission, health checks, and metrics. It carries no authentication or
// multi-tenant layer.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cz-vaporeon/basin/internal/config"
	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/pkg/controller"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

// Server holds the HTTP intake adapter's dependencies.
type Server struct {
	Router  *chi.Mux
	Logger  *slog.Logger
	Redis   *redis.Client
	Metrics *prometheus.Registry

	descriptors *store.DescriptorStore
	deployState *store.DeploymentStateStore

	databaseController *controller.DatabaseController
	tableController    *controller.TableController
	flowController     *controller.FlowController

	startedAt time.Time
}

// NewServer creates the intake HTTP server with middleware, health/metrics
// endpoints, and the per-kind reconcile submission routes.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	rdb *redis.Client,
	metricsReg *prometheus.Registry,
	descriptors *store.DescriptorStore,
	deployState *store.DeploymentStateStore,
	databaseController *controller.DatabaseController,
	tableController *controller.TableController,
	flowController *controller.FlowController,
) *Server {
	s := &Server{
		Router:             chi.NewRouter(),
		Logger:             logger,
		Redis:              rdb,
		Metrics:            metricsReg,
		descriptors:        descriptors,
		deployState:        deployState,
		databaseController: databaseController,
		tableController:    tableController,
		flowController:     flowController,
		startedAt:          time.Now(),
	}

	s.Router.Use(RequestID)
	s.Router.Use(Logger(logger))
	s.Router.Use(Metrics)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.Router.Get("/healthcheck", s.handleHealthcheck)
	s.Router.Get("/readyz", s.handleReadyz)
	s.Router.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Post("/database/reconcile", s.handleDatabaseReconcile)
		r.Post("/table/reconcile", s.handleTableReconcile)
		r.Post("/flow/reconcile", s.handleFlowReconcile)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("1"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.Redis.Ping(ctx).Err(); err != nil {
		s.Logger.Error("readiness check: redis ping failed", "error", err)
		RespondError(w, http.StatusServiceUnavailable, "unavailable", "redis not ready")
		return
	}
	Respond(w, http.StatusOK, map[string]string{
		"status": "ready",
		"uptime": time.Since(s.startedAt).Truncate(time.Second).String(),
	})
}

// handleDatabaseReconcile implements POST /api/v1/database/reconcile:
// validate, persist to the Descriptor Store, mark Pending, 202 Accepted.
func (s *Server) handleDatabaseReconcile(w http.ResponseWriter, r *http.Request) {
	var d descriptor.Database
	if !DecodeAndValidate(w, r, &d) {
		return
	}
	if err := s.databaseController.Validate(&d); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	s.acceptDescriptor(w, r.Context(), func(ctx context.Context) error {
		return s.descriptors.PutDatabase(ctx, &d)
	}, d.ID())
}

// handleTableReconcile implements POST /api/v1/table/reconcile.
func (s *Server) handleTableReconcile(w http.ResponseWriter, r *http.Request) {
	var t descriptor.Table
	if !DecodeAndValidate(w, r, &t) {
		return
	}
	if err := s.tableController.Validate(&t); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	s.acceptDescriptor(w, r.Context(), func(ctx context.Context) error {
		return s.descriptors.PutTable(ctx, &t)
	}, t.ID())
}

// handleFlowReconcile implements POST /api/v1/flow/reconcile.
func (s *Server) handleFlowReconcile(w http.ResponseWriter, r *http.Request) {
	var f descriptor.Flow
	if !DecodeAndValidate(w, r, &f) {
		return
	}
	if err := s.flowController.Validate(&f); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	s.acceptDescriptor(w, r.Context(), func(ctx context.Context) error {
		return s.descriptors.PutFlow(ctx, &f)
	}, f.ID())
}

// acceptDescriptor persists a validated descriptor via put, marks its
// deployment state Pending, and responds 202. A store failure is a 500;
// the client must resubmit.
func (s *Server) acceptDescriptor(w http.ResponseWriter, ctx context.Context, put func(context.Context) error, id string) {
	if err := put(ctx); err != nil {
		s.Logger.Error("storing descriptor", "id", id, "error", err)
		RespondError(w, http.StatusInternalServerError, "store_error", "failed to persist descriptor")
		return
	}
	s.deployState.Set(ctx, id, descriptor.DeploymentInfo{State: descriptor.StatePending})
	Respond(w, http.StatusAccepted, map[string]string{"id": id, "state": string(descriptor.StatePending)})
}

