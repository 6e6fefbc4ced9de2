// Package server runs the long-lived services of one server generation:
// start, wait for a signal or a shutdown/restart request, stop in reverse
// order.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is a long-running component. Start blocks until Stop is called
// or the service fails.
type Service interface {
	Start() error
	Stop()
}

// Drainer is implemented by services that must change state before any
// service is stopped, such as a health endpoint reporting NOT_SERVING.
type Drainer interface {
	Drain()
}

// FuncService adapts a start/stop function pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start implements Service.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop implements Service.
func (f *FuncService) Stop() { f.StopFn() }

// Outcome tells the caller of Run what to do once every service stopped.
type Outcome int

const (
	// Shutdown ends the process.
	Shutdown Outcome = iota
	// Restart builds a new generation of services.
	Restart
)

func (o Outcome) String() string {
	if o == Restart {
		return "restart"
	}
	return "shutdown"
}

// slowStop is how long a service may take to stop before it is logged.
const slowStop = 5 * time.Second

// Lifecycle starts services in the order added and stops them in reverse.
type Lifecycle struct {
	logger   *zap.Logger
	requests chan Outcome

	mu       sync.Mutex
	names    []string
	services []Service
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger, requests: make(chan Outcome, 1)}
}

// Add registers svc under name.
//
// Precondition: Run has not been called.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
	l.services = append(l.services, svc)
}

// Request asks Run to stop every service and return o. Only the first
// request of a generation counts.
func (l *Lifecycle) Request(o Outcome) {
	select {
	case l.requests <- o:
	default:
	}
}

// Run starts every service and blocks until SIGINT or SIGTERM, a Request,
// a service failure or ctx cancellation. Services are then drained and
// stopped in reverse order.
//
// Postcondition: every Start has returned. The error is the first failure
// of any service; the outcome is Restart only when one was requested.
func (l *Lifecycle) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()
	l.mu.Lock()
	names := append([]string(nil), l.names...)
	services := append([]Service(nil), l.services...)
	l.mu.Unlock()

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	g, gctx := errgroup.WithContext(sigCtx)
	for i, svc := range services {
		g.Go(func() error {
			l.logger.Info("starting service", zap.String("service", names[i]))
			if err := svc.Start(); err != nil {
				return fmt.Errorf("service %s: %w", names[i], err)
			}
			return nil
		})
	}

	outcome := Shutdown
	select {
	case outcome = <-l.requests:
		l.logger.Info("stop requested", zap.Stringer("outcome", outcome))
	case <-gctx.Done():
		switch {
		case ctx.Err() != nil:
			l.logger.Info("context cancelled, shutting down")
		case sigCtx.Err() != nil:
			l.logger.Info("signal received, shutting down")
		default:
			l.logger.Warn("service failed, shutting down")
		}
	}

	l.stop(names, services)
	err := g.Wait()
	if err != nil {
		l.logger.Error("service error", zap.Error(err))
	}
	l.logger.Info("services stopped",
		zap.Stringer("outcome", outcome),
		zap.Duration("uptime", time.Since(start)),
	)
	return outcome, err
}

func (l *Lifecycle) stop(names []string, services []Service) {
	for _, svc := range services {
		if d, ok := svc.(Drainer); ok {
			d.Drain()
		}
	}
	for i := len(services) - 1; i >= 0; i-- {
		began := time.Now()
		slow := time.AfterFunc(slowStop, func() {
			l.logger.Warn("service slow to stop", zap.String("service", names[i]))
		})
		services[i].Stop()
		slow.Stop()
		l.logger.Debug("service stopped",
			zap.String("service", names[i]),
			zap.Duration("elapsed", time.Since(began)),
		)
	}
}
