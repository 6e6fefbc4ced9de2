package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/config"
)

// Accept retry bounds after a temporary error such as running out of file
// descriptors.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// SessionHandler runs the session on one connection. ctx is cancelled when
// the acceptor stops; the connection is closed then as well.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor listens for telnet clients and runs a session for each.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	stopping bool
}

// NewAcceptor returns an acceptor for cfg.
//
// Precondition: handler and logger are non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		ready:   make(chan struct{}),
		conns:   make(map[*Conn]struct{}),
	}
}

// ListenAndServe accepts connections until Stop. It returns nil after Stop
// and an error if the listener cannot be opened or fails for good.
func (a *Acceptor) ListenAndServe() error {
	lis, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	a.mu.Lock()
	if a.stopping {
		a.mu.Unlock()
		_ = lis.Close()
		return nil
	}
	a.listener = lis
	a.mu.Unlock()
	close(a.ready)
	a.logger.Info("telnet listening", zap.String("addr", lis.Addr().String()))

	backoff := time.Duration(0)
	for {
		raw, err := lis.Accept()
		if err != nil {
			if a.ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = min(max(2*backoff, minAcceptBackoff), maxAcceptBackoff)
				a.logger.Warn("accept failed; retrying", zap.Duration("backoff", backoff), zap.Error(err))
				time.Sleep(backoff)
				continue
			}
			return fmt.Errorf("accepting: %w", err)
		}
		backoff = 0

		conn := NewConn(raw, a.readTimeout(), a.cfg.WriteTimeout)
		if !a.track(conn) {
			_ = conn.Close()
			continue
		}
		go a.serve(conn)
	}
}

// track records conn for serve, or reports false once the acceptor is
// stopping.
func (a *Acceptor) track(c *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopping {
		return false
	}
	a.conns[c] = struct{}{}
	a.wg.Add(1)
	return true
}

func (a *Acceptor) serve(conn *Conn) {
	defer a.wg.Done()
	defer func() {
		a.mu.Lock()
		delete(a.conns, conn)
		a.mu.Unlock()
		_ = conn.Close()
	}()
	start := time.Now()
	log := a.logger.With(zap.String("remote_addr", conn.RemoteAddr().String()))

	if err := conn.Negotiate(); err != nil {
		log.Warn("telnet negotiation failed", zap.Error(err))
		return
	}
	err := a.handler.HandleSession(a.ctx, conn)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Debug("connection done", zap.Duration("duration", time.Since(start)))
	default:
		log.Info("connection ended", zap.Duration("duration", time.Since(start)), zap.Error(err))
	}
}

// readTimeout is the idle limit when one is set, else the read timeout.
func (a *Acceptor) readTimeout() time.Duration {
	if a.cfg.IdleTimeout > 0 {
		return a.cfg.IdleTimeout
	}
	return a.cfg.ReadTimeout
}

// Stop closes the listener and every open connection, then waits for the
// sessions to return. It is safe to call more than once, and before
// ListenAndServe.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopping {
		a.mu.Unlock()
		return
	}
	a.stopping = true
	a.cancel()
	if a.listener != nil {
		_ = a.listener.Close()
	}
	for c := range a.conns {
		_ = c.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("telnet stopped")
}

// Ready is closed once the listener is open.
func (a *Acceptor) Ready() <-chan struct{} { return a.ready }

// Addr is the bound address, or "" before the listener is open.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Open counts the connections being served.
func (a *Acceptor) Open() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}
