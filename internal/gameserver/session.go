package gameserver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/frontend/telnet"
	"github.com/cory-johannsen/tzmud/internal/game/session"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/observability"
)

const (
	loginHint = `Must log in with "login <name> <password>"`
	purgeHint = `Use "purge <name> <password>" to disconnect the other session.`
)

// SessionConfig holds the per-connection settings of a Handler.
type SessionConfig struct {
	// Output formats everything sent to the client.
	Output Output
	// Admins are player names granted admin when their account is created.
	Admins []string
	// OutboxSize is the number of messages buffered per connection.
	OutboxSize int
}

// Handler implements telnet.SessionHandler: it runs the login protocol and
// then feeds each input line through the dispatcher on the engine.
type Handler struct {
	engine     *Engine
	sessions   *session.Manager
	dispatcher *Dispatcher
	cfg        SessionConfig
	motd       []string
	logger     *zap.Logger
}

// NewHandler creates a Handler.
//
// Precondition: engine, sessions, dispatcher and logger must be non-nil.
// Postcondition: Returns a Handler ready to serve connections.
func NewHandler(
	engine *Engine,
	sessions *session.Manager,
	dispatcher *Dispatcher,
	cfg SessionConfig,
	motd []string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:     engine,
		sessions:   sessions,
		dispatcher: dispatcher,
		cfg:        cfg,
		motd:       motd,
		logger:     logger,
	}
}

// HandleSession implements telnet.SessionHandler. It returns when the client
// quits, disconnects, idles out or the server stops.
//
// Postcondition: the session is closed and its player, if any, is logged
// out when HandleSession returns.
func (h *Handler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()
	sess := h.sessions.Open(addr, func() { _ = conn.Close() }, h.cfg.OutboxSize)
	log := h.logger.With(observability.Conn(sess.ID), observability.Remote(addr))

	written := make(chan struct{})
	go h.write(conn, sess, log, written)
	defer func() {
		// The session context may already be cancelled; logging out must
		// still reach the engine.
		h.detach(context.Background(), sess, false, log)
		_, _ = h.sessions.Close(sess.ID)
		<-written
		log.Info("session closed", zap.Duration("duration", time.Since(start)))
	}()

	log.Info("session opened", zap.Int("sessions", h.sessions.Count()))
	h.send(sess, h.motd...)

	for {
		line, err := conn.ReadLine()
		if err != nil {
			switch {
			case telnet.IsTimeout(err):
				h.send(sess, "Idle too long. Goodbye.")
				log.Info("idle disconnect")
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var quit bool
		if _, _, ok := sess.Player(); ok {
			quit, err = h.command(ctx, sess, line, log)
		} else {
			quit, err = h.anonymous(ctx, sess, line, log)
		}
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// write drains the session outbox onto the connection until it is closed.
func (h *Handler) write(conn *telnet.Conn, sess *session.Session, log *zap.Logger, done chan<- struct{}) {
	defer close(done)
	failed := false
	for lines := range sess.Outbox.Events() {
		if failed {
			continue
		}
		if err := conn.WriteLines(lines); err != nil {
			log.Debug("write failed", zap.Error(err))
			failed = true
		}
	}
}

func (h *Handler) send(sess *session.Session, lines ...string) {
	if len(lines) == 0 {
		return
	}
	if err := sess.Outbox.Push(lines...); err != nil {
		h.logger.Warn("dropping output", observability.Conn(sess.ID), zap.Error(err))
	}
}

// command runs one line for a logged in player.
func (h *Handler) command(ctx context.Context, sess *session.Session, line string, log *zap.Logger) (bool, error) {
	pid, _, _ := sess.Player()
	quit := false
	err := h.engine.Do(ctx, func(w *world.World) {
		p, ok := w.Player(world.ID(pid))
		if !ok {
			return
		}
		quit = h.dispatcher.Dispatch(w, p, line)
	})
	if err != nil {
		return false, err
	}
	if quit {
		h.detach(ctx, sess, true, log)
	}
	return quit, nil
}

// anonymous handles the commands accepted before login.
func (h *Handler) anonymous(ctx context.Context, sess *session.Session, line string, log *zap.Logger) (bool, error) {
	words := strings.Fields(line)
	verb := strings.ToLower(words[0])
	if verb == "quit" {
		h.send(sess, "Goodbye.")
		return true, nil
	}
	if len(words) != 3 {
		h.send(sess, loginHint)
		return false, nil
	}
	name, password := words[1], words[2]
	switch verb {
	case "login":
		return false, h.login(ctx, sess, name, password, log)
	case "create":
		return false, h.create(ctx, sess, name, password, log)
	case "purge":
		return false, h.purge(ctx, sess, name, password, log)
	}
	h.send(sess, loginHint)
	return false, nil
}

// credentials resolves a player by name and password.
func credentials(w *world.World, name, password string) (*world.Player, bool) {
	p, ok := w.PlayerNamed(name)
	if !ok || !p.CheckPassword(password) {
		return nil, false
	}
	return p, true
}

func (h *Handler) login(ctx context.Context, sess *session.Session, name, password string, log *zap.Logger) error {
	return h.engine.Do(ctx, func(w *world.World) {
		p, ok := credentials(w, name, password)
		if !ok {
			h.send(sess, "Incorrect user name or password.")
			log.Info("login refused", zap.String("name", name))
			return
		}
		if _, bound := h.sessions.ByPlayer(int64(p.ID)); bound {
			h.send(sess, "Player already logged in.", purgeHint)
			return
		}
		if err := h.sessions.Bind(sess.ID, int64(p.ID), p.Name); err != nil {
			if errors.Is(err, session.ErrPlayerBound) {
				h.send(sess, "Player already logged in.", purgeHint)
				return
			}
			log.Error("binding session", observability.Player(p.Name), zap.Error(err))
			h.send(sess, "Sorry. Could not log you in.")
			return
		}
		w.Connect(p, &client{world: w, player: p.ID, sess: sess, out: h.cfg.Output, logger: h.logger})

		err := w.RunTx(func() error {
			p.SetLoggedIn(true)
			p.Follow(nil)
			if home, ok := homeOf(w, p); ok {
				relocate(p, home, p.ID)
			}
			return nil
		})
		if err != nil {
			log.Error("logging in", observability.Player(p.Name), zap.Error(err))
			w.Disconnect(p)
			h.sessions.Unbind(sess.ID)
			h.send(sess, "Sorry. Could not log you in.")
			return
		}
		log.Info("player logged in", observability.Player(p.Name))
		h.dispatcher.Dispatch(w, p, "look")
	})
}

// homeOf is the player's home, or the world's home room.
func homeOf(w *world.World, p *world.Player) (world.RoomObject, bool) {
	if home, ok := p.HomeRoom(); ok {
		return home, true
	}
	return w.Room(w.HomeID())
}

func (h *Handler) create(ctx context.Context, sess *session.Session, name, password string, log *zap.Logger) error {
	admin := slices.ContainsFunc(h.cfg.Admins, func(a string) bool { return strings.EqualFold(a, name) })
	return h.engine.Do(ctx, func(w *world.World) {
		err := w.RunTx(func() error {
			p, err := w.NewPlayer(name, password)
			if err != nil {
				return err
			}
			if admin {
				w.SetAdmin(p, true)
			}
			return nil
		})
		switch {
		case errors.Is(err, world.ErrNameTaken):
			h.send(sess, "Player name already taken.")
		case err != nil:
			log.Error("creating player", zap.String("name", name), zap.Error(err))
			h.send(sess, "Sorry. Could not create that player.")
		default:
			log.Info("player created", zap.String("name", name), zap.Bool("admin", admin))
			h.send(sess, "Account created.", `Log in with "login `+name+` <password>".`)
		}
	})
}

func (h *Handler) purge(ctx context.Context, sess *session.Session, name, password string, log *zap.Logger) error {
	var other *session.Session
	err := h.engine.Do(ctx, func(w *world.World) {
		p, ok := credentials(w, name, password)
		if !ok {
			h.send(sess, "Incorrect user name or password.")
			return
		}
		s, bound := h.sessions.ByPlayer(int64(p.ID))
		if !bound {
			h.send(sess, "Player is not logged in.")
			return
		}
		h.logout(w, p, false, log)
		h.sessions.Unbind(s.ID)
		other = s
		h.send(sess, "Connection purged.")
	})
	if err != nil {
		return err
	}
	if other != nil {
		log.Info("connection purged", zap.String("name", name), observability.Conn(other.ID))
		other.Kick()
	}
	return nil
}

// detach logs the session's player out, raising the quit event first when
// the player asked to leave.
func (h *Handler) detach(ctx context.Context, sess *session.Session, quitting bool, log *zap.Logger) {
	pid, name, ok := sess.Player()
	if !ok {
		return
	}
	err := h.engine.Do(ctx, func(w *world.World) {
		if p, ok := w.Player(world.ID(pid)); ok {
			h.logout(w, p, quitting, log)
		}
	})
	if err != nil {
		log.Warn("logging out", observability.Player(name), zap.Error(err))
	}
	h.sessions.Unbind(sess.ID)
}

// logout takes p out of the world and detaches its client.
func (h *Handler) logout(w *world.World, p *world.Player, quitting bool, log *zap.Logger) {
	err := w.RunTx(func() error {
		if room, ok := p.Room(); ok {
			if quitting {
				room.AsRoom().Action(world.Event{Act: world.ActQuit, Actor: p.ID})
			}
			p.MoveTo(nil)
		}
		p.SetLoggedIn(false)
		return nil
	})
	if err != nil {
		log.Error("logging out", observability.Player(p.Name), zap.Error(err))
	}
	w.Disconnect(p)
	log.Info("player logged out", observability.Player(p.Name))
}
