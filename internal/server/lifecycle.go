// Package server runs the simulation's long-lived components and shuts them
// down in order on a signal or when any of them finishes.
package server

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultStopTimeout bounds each service's Stop call.
const DefaultStopTimeout = 10 * time.Second

// Service is a long-running component.
type Service interface {
	// Start blocks until ctx is cancelled or the service finishes on its own.
	Start(ctx context.Context) error
	// Stop releases the service's resources. ctx carries the stop deadline.
	Stop(ctx context.Context) error
}

// FuncService adapts a start/stop function pair into the Service interface.
// A nil StopFn is a no-op.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func(ctx context.Context) error
}

// Start calls the underlying start function.
func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

// Stop calls the underlying stop function.
func (f *FuncService) Stop(ctx context.Context) error {
	if f.StopFn == nil {
		return nil
	}
	return f.StopFn(ctx)
}

// Lifecycle starts services together and stops them in reverse order.
type Lifecycle struct {
	logger      *zap.Logger
	stopTimeout time.Duration
	services    []namedService
	mu          sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a Lifecycle using DefaultStopTimeout.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger, stopTimeout: DefaultStopTimeout}
}

// SetStopTimeout changes the per-service stop deadline.
//
// Precondition: d must be > 0.
func (l *Lifecycle) SetStopTimeout(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimeout = d
}

// Add registers a named service. Services stop in the reverse of the order
// they were added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until SIGINT, SIGTERM, cancellation of
// ctx, or the first service returning from Start.
//
// On shutdown the shared context is cancelled and Run waits up to the stop
// timeout for every Start to return before calling Stop in reverse order.
// A service whose Start ignores cancellation is stopped anyway, and Run waits
// at most one more stop timeout for it to return.
//
// Postcondition: Every service has been stopped. Returns the first error a
// service returned from Start, joined with any Stop errors.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	stopTimeout := l.stopTimeout
	l.mu.Unlock()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	done := make(chan result, len(services))
	running := newRunningSet(services)
	for _, ns := range services {
		go func() {
			defer running.remove(ns.name)
			l.logger.Info("starting service", zap.String("service", ns.name))
			done <- result{name: ns.name, err: ns.service.Start(runCtx)}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var firstErr error
	select {
	case r := <-done:
		if r.err != nil && !errors.Is(r.err, context.Canceled) {
			l.logger.Error("service failed, shutting down",
				zap.String("service", r.name),
				zap.Error(r.err),
			)
			firstErr = fmt.Errorf("service %s: %w", r.name, r.err)
		} else {
			l.logger.Info("service finished, shutting down", zap.String("service", r.name))
		}
	case <-ctx.Done():
		l.logger.Info("shutdown requested", zap.NamedError("cause", context.Cause(ctx)))
	}

	cancel()
	if !running.wait(stopTimeout) {
		l.logger.Warn("services still running after cancellation, stopping anyway",
			zap.Strings("services", running.list()),
			zap.Duration("waited", stopTimeout),
		)
	}
	stopErr := l.shutdown(services, stopTimeout)
	if !running.wait(stopTimeout) {
		l.logger.Warn("services did not return after stop",
			zap.Strings("services", running.list()),
		)
	}

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return errors.Join(firstErr, stopErr)
}

func (l *Lifecycle) shutdown(services []namedService, timeout time.Duration) error {
	shutdownStart := time.Now()
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", ns.name))

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := ns.service.Stop(ctx)
		cancel()
		if err != nil {
			l.logger.Error("stopping service",
				zap.String("service", ns.name),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("stopping %s: %w", ns.name, err))
			continue
		}
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
	return errors.Join(errs...)
}

// runningSet counts the services whose Start has not yet returned.
type runningSet struct {
	mu    sync.Mutex
	names map[string]int
	left  int
	empty chan struct{}
}

func newRunningSet(services []namedService) *runningSet {
	r := &runningSet{names: make(map[string]int), left: len(services), empty: make(chan struct{})}
	for _, ns := range services {
		r.names[ns.name]++
	}
	if r.left == 0 {
		close(r.empty)
	}
	return r
}

func (r *runningSet) remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[name]--; r.names[name] == 0 {
		delete(r.names, name)
	}
	if r.left--; r.left == 0 {
		close(r.empty)
	}
}

func (r *runningSet) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.names))
}

// wait reports whether every Start returned within timeout.
func (r *runningSet) wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-r.empty:
		return true
	case <-t.C:
		return false
	}
}
