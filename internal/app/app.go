// Package app wires the configured components together and runs them
// according to the process's mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/cz-vaporeon/basin/internal/audit"
	"github.com/cz-vaporeon/basin/internal/config"
	"github.com/cz-vaporeon/basin/internal/httpserver"
	"github.com/cz-vaporeon/basin/internal/platform"
	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/internal/telemetry"
	"github.com/cz-vaporeon/basin/pkg/controller"
	"github.com/cz-vaporeon/basin/pkg/provisioner/catalog"
	"github.com/cz-vaporeon/basin/pkg/provisioner/objectstore"
	"github.com/cz-vaporeon/basin/pkg/provisioner/workflow"
	"github.com/cz-vaporeon/basin/pkg/reflector"
)

// Run builds every component the configured mode needs and blocks until
// ctx is cancelled or a component returns a fatal error.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	logger.Info("starting", "mode", cfg.Mode)

	awsClients, err := platform.NewAWSClients(ctx, cfg.AWSRegion)
	if err != nil {
		return fmt.Errorf("building aws clients: %w", err)
	}

	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()

	if err := platform.RunMigrations(cfg.AuditDatabaseURL, cfg.AuditMigrationsDir); err != nil {
		return fmt.Errorf("running audit migrations: %w", err)
	}

	auditPool, err := platform.NewPostgresPool(ctx, cfg.AuditDatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to audit database: %w", err)
	}
	defer auditPool.Close()

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(collectors.NewGoCollector())
	metricsReg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, c := range telemetry.All() {
		metricsReg.MustRegister(c)
	}

	descriptors := store.NewDescriptorStore(rdb)
	deployState := store.NewDeploymentStateStore(rdb, logger)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	objectStoreProvisioner := objectstore.New(awsClients.S3)
	catalogProvisioner := catalog.New(awsClients.Glue)
	workflowProvisioner := workflow.New(cfg.WaterwheelURL, httpClient)

	databaseController := controller.NewDatabaseController(descriptors, objectStoreProvisioner, catalogProvisioner)
	tableController := controller.NewTableController(descriptors, catalogProvisioner)
	flowController := controller.NewFlowController(descriptors, workflowProvisioner, cfg.WaterwheelProject)

	auditWriter := audit.NewWriter(auditPool, logger)
	auditWriter.Start(ctx)
	defer auditWriter.Close()
	auditLogger := auditLoggerAdapter{auditWriter}

	eventReflector := reflector.New(
		awsClients.SQS,
		cfg.EventSQSURL,
		httpClient,
		descriptors,
		deployState,
		cfg.ReflectorInterval,
		logger,
	)

	runners := []runnable{
		controller.NewRunner(databaseController, cfg.ReconcileInterval, logger, auditLogger),
		controller.NewRunner(tableController, cfg.ReconcileInterval, logger, auditLogger),
		controller.NewRunner(flowController, cfg.ReconcileInterval, logger, auditLogger),
	}

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, rdb, metricsReg, descriptors, deployState, databaseController, tableController, flowController)
	case "controller":
		return runControllers(ctx, runners)
	case "reflector":
		return eventReflector.Run(ctx)
	case "all":
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return runAPI(gctx, cfg, logger, rdb, metricsReg, descriptors, deployState, databaseController, tableController, flowController)
		})
		g.Go(func() error {
			return runControllers(gctx, runners)
		})
		g.Go(func() error {
			return eventReflector.Run(gctx)
		})
		return g.Wait()
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// runnable is satisfied by *controller.Runner[D] for any descriptor kind.
type runnable interface {
	Run(ctx context.Context) error
}

// auditLoggerAdapter satisfies controller.AuditLogger by translating its
// locally-defined AuditEntry into an audit.Entry, so pkg/controller
// doesn't need to import internal/audit directly.
type auditLoggerAdapter struct {
	writer *audit.Writer
}

func (a auditLoggerAdapter) Log(entry controller.AuditEntry) {
	a.writer.Log(audit.Entry{
		DescriptorID: entry.DescriptorID,
		Kind:         entry.Kind,
		State:        entry.State,
		Description:  entry.Description,
	})
}

func runControllers(ctx context.Context, runners []runnable) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error {
			return r.Run(gctx)
		})
	}
	return g.Wait()
}

func runAPI(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	rdb *redis.Client,
	metricsReg *prometheus.Registry,
	descriptors *store.DescriptorStore,
	deployState *store.DeploymentStateStore,
	databaseController *controller.DatabaseController,
	tableController *controller.TableController,
	flowController *controller.FlowController,
) error {
	srv := httpserver.NewServer(cfg, logger, rdb, metricsReg, descriptors, deployState, databaseController, tableController, flowController)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("http server shutting down")
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
