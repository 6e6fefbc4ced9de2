// Package gameserver runs the game: the engine goroutine that owns the
// world, the telnet session protocol and the action, wizard and admin
// command handlers.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// ErrStopped is returned by Do once the engine has stopped.
var ErrStopped = errors.New("engine stopped")

// idleWait bounds how long the loop sleeps when nothing is scheduled.
const idleWait = time.Minute

// Engine owns a world and runs every access to it on one goroutine. Jobs
// submitted with Do interleave with the scheduler's due tasks; virtual time
// follows wall-clock time multiplied by the time scale.
type Engine struct {
	world  *world.World
	scale  float64
	logger *zap.Logger
	now    func() time.Time

	jobs     chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewEngine returns an engine for w.
//
// Precondition: w and logger must be non-nil; timeScale must be > 0.
func NewEngine(w *world.World, timeScale float64, logger *zap.Logger) *Engine {
	if timeScale <= 0 {
		panic("gameserver.NewEngine: timeScale must be > 0")
	}
	return &Engine{
		world:  w,
		scale:  timeScale,
		logger: logger,
		now:    time.Now,
		jobs:   make(chan func()),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start prepares the world and runs the loop until Stop.
//
// Postcondition: ticks are stopped and every accepted job has run when
// Start returns.
func (e *Engine) Start() error {
	defer close(e.done)
	if err := e.prepare(); err != nil {
		return err
	}
	defer e.world.StopTicks()

	started := e.now()
	base := e.world.Now()
	sched := e.world.Scheduler()
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	e.logger.Info("engine started",
		zap.Int("players", e.world.Count(world.KindPlayer)),
		zap.Int("rooms", e.world.Count(world.KindRoom)),
		zap.Float64("time_scale", e.scale),
	)
	for {
		target := base + time.Duration(float64(e.now().Sub(started))*e.scale)
		sched.RunUntil(target)
		timer.Reset(e.wait(target))

		select {
		case <-e.quit:
			e.logger.Info("engine stopped", zap.Int("pending", sched.Pending()))
			return nil
		case job := <-e.jobs:
			e.run(job)
		case <-timer.C:
		}
	}
}

// prepare clears presence left over from a previous run and arms ticks.
func (e *Engine) prepare() error {
	err := e.world.RunTx(func() error {
		for _, p := range e.world.Players() {
			if p.LoggedIn {
				p.SetLoggedIn(false)
			}
			if _, ok := p.Room(); ok {
				p.MoveTo(nil)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clearing logins: %w", err)
	}
	e.world.StartTicks()
	return nil
}

// wait converts the virtual time until the next due task into wall time.
func (e *Engine) wait(target time.Duration) time.Duration {
	next, ok := e.world.Scheduler().NextDue()
	if !ok {
		return idleWait
	}
	d := next - target
	if d <= 0 {
		return 0
	}
	return time.Duration(float64(d) / e.scale)
}

func (e *Engine) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine job panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			e.world.Abort()
		}
	}()
	job()
}

// Stop ends the loop and waits for it to exit.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.quit) })
	<-e.done
}

// Do runs fn on the engine goroutine and waits for it to finish.
//
// Postcondition: fn has run, or returned by panicking, when Do returns nil.
func (e *Engine) Do(ctx context.Context, fn func(w *world.World)) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn(e.world)
	}
	select {
	case e.jobs <- job:
	case <-e.done:
		return ErrStopped
	case <-e.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
