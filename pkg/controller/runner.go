// Package controller implements the per-kind reconciliation controllers
// and the shared control-loop runner that drives them.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cz-vaporeon/basin/internal/telemetry"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

// Reconciler is the capability set a per-kind controller must implement.
// The runner drives one Reconciler per loop; there is no inheritance, only
// this interface.
type Reconciler[D descriptor.Descriptor] interface {
	// List returns every descriptor of this controller's kind currently
	// known to the Descriptor Store.
	List(ctx context.Context) ([]D, error)
	// Reconcile converges remote state to match d. It must be safe to
	// call repeatedly and must not panic.
	Reconcile(ctx context.Context, d D) error
	// Kind names the controller for logging and metrics labels.
	Kind() string
}

// AuditLogger records one per-item reconcile outcome. It is defined in
// this package so Runner doesn't need to import the audit package;
// internal/app satisfies it with an adapter over *audit.Writer. A nil
// AuditLogger is valid and simply means outcomes aren't recorded.
type AuditLogger interface {
	Log(entry AuditEntry)
}

// AuditEntry mirrors audit.Entry so this package doesn't depend on
// internal/audit's package path (pkg code must not import internal
// packages).
type AuditEntry struct {
	DescriptorID string
	Kind         string
	State        descriptor.DeploymentState
	Description  string
}

// Runner drives a Reconciler on a fixed-interval ticker: each tick lists
// the controller's descriptors and reconciles each in turn, continuing
// past any single descriptor's error so that one failure never stalls the
// rest of the tick or the loop itself.
type Runner[D descriptor.Descriptor] struct {
	reconciler Reconciler[D]
	interval   time.Duration
	logger     *slog.Logger
	audit      AuditLogger
}

// NewRunner builds a Runner for reconciler, ticking every interval. audit
// may be nil, in which case reconcile outcomes are logged and counted but
// not recorded to the audit trail.
func NewRunner[D descriptor.Descriptor](reconciler Reconciler[D], interval time.Duration, logger *slog.Logger, audit AuditLogger) *Runner[D] {
	return &Runner[D]{reconciler: reconciler, interval: interval, logger: logger, audit: audit}
}

// Run blocks, ticking until ctx is cancelled. A tick that takes longer
// than interval delays the next tick rather than queuing one up — the
// same behavior time.Ticker already gives us, so no extra bookkeeping is
// needed to honor "at most one pending tick".
func (r *Runner[D]) Run(ctx context.Context) error {
	kind := r.reconciler.Kind()
	r.logger.Info("control loop started", "kind", kind, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Reconcile once immediately so a freshly-started process doesn't
	// wait a full interval before its first pass.
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("control loop stopped", "kind", kind)
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick lists and reconciles every descriptor of this controller's kind.
// No exception escapes a tick — every reconcile error is classified,
// logged, and counted, and the loop moves on to the next descriptor.
func (r *Runner[D]) tick(ctx context.Context) {
	kind := r.reconciler.Kind()
	start := time.Now()

	items, err := r.reconciler.List(ctx)
	if err != nil {
		r.logger.Error("listing descriptors", "kind", kind, "error", err)
		telemetry.ReconcileTotal.WithLabelValues(kind, "list_error").Inc()
		return
	}

	for _, item := range items {
		itemStart := time.Now()
		err := r.reconciler.Reconcile(ctx, item)
		telemetry.ReconcileDuration.WithLabelValues(kind).Observe(time.Since(itemStart).Seconds())

		outcome := classify(err)
		var state descriptor.DeploymentState
		var description string
		switch outcome {
		case outcomeOK:
			telemetry.ReconcileTotal.WithLabelValues(kind, "ok").Inc()
			state = descriptor.StateSucceeded
		case outcomeDependencyMissing:
			r.logger.Info("reconcile: dependency missing", "kind", kind, "id", item.ID(), "error", err)
			telemetry.ReconcileTotal.WithLabelValues(kind, "dependency_missing").Inc()
			state, description = descriptor.StatePending, err.Error()
		case outcomeProvisionerError:
			r.logger.Error("reconcile: provisioner error", "kind", kind, "id", item.ID(), "error", err)
			telemetry.ReconcileTotal.WithLabelValues(kind, "provisioner_error").Inc()
			state, description = descriptor.StateFailed, err.Error()
		case outcomeControllerError:
			r.logger.Error("reconcile: controller error", "kind", kind, "id", item.ID(), "error", err)
			telemetry.ReconcileTotal.WithLabelValues(kind, "controller_error").Inc()
			state, description = descriptor.StateFailed, err.Error()
		default:
			r.logger.Error("reconcile: unclassified error", "kind", kind, "id", item.ID(), "error", err)
			telemetry.ReconcileTotal.WithLabelValues(kind, "unclassified_error").Inc()
			state, description = descriptor.StateFailed, err.Error()
		}

		if r.audit != nil {
			r.audit.Log(AuditEntry{DescriptorID: item.ID(), Kind: kind, State: state, Description: description})
		}
	}

	r.logger.Debug("tick complete", "kind", kind, "count", len(items), "duration", time.Since(start))
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeDependencyMissing
	outcomeProvisionerError
	outcomeControllerError
	outcomeUnclassified
)

func classify(err error) outcome {
	if err == nil {
		return outcomeOK
	}
	var depMissing *DependencyMissingError
	if errors.As(err, &depMissing) {
		return outcomeDependencyMissing
	}
	var provErr *ProvisionerError
	if errors.As(err, &provErr) {
		return outcomeProvisionerError
	}
	var ctrlErr *ControllerError
	if errors.As(err, &ctrlErr) {
		return outcomeControllerError
	}
	return outcomeUnclassified
}
