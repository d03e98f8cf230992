package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/lmburns/lwm/internal/platform"
)

// Reconcilable compares its model with the display server and corrects
// drift. It is called on the event loop.
type Reconcilable interface {
	Reconcile() (adopted, dropped int)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval time.Duration
	loop     platform.Loop
	target   Reconcilable
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, loop platform.Loop, target Reconcilable) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		loop:     loop,
		target:   target,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.loop.Post(r.reconcile)
		}
	}
}

// reconcile performs a single reconciliation pass on the loop.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	adopted, dropped := r.target.Reconcile()
	if adopted > 0 || dropped > 0 {
		r.logger.Info("reconciler: corrected drift", "adopted", adopted, "dropped", dropped)
	}
}

// ReconcileNow posts an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.loop.Post(r.reconcile)
}
