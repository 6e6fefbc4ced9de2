package gameserver

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/command"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/observability"
)

// ErrUsage is wrapped by every UsageError.
var ErrUsage = errors.New("command used incorrectly")

// ErrRefused is returned by a handler that has already told the player why
// the command failed. Its changes are discarded without further messages.
var ErrRefused = errors.New("command refused")

// UsageError reports a command missing a required part.
type UsageError struct {
	Verb    string
	Missing string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: missing %s", e.Verb, e.Missing)
}

// Unwrap returns ErrUsage.
func (e *UsageError) Unwrap() error { return ErrUsage }

func usage(c *Context, missing string) error {
	return &UsageError{Verb: c.Cmd.Verb, Missing: missing}
}

// Context is what a command handler works with. It is only valid on the
// engine goroutine for the duration of the handler.
type Context struct {
	World  *world.World
	Player *world.Player
	Cmd    command.Result

	quit bool
}

// Room returns the player's room.
func (c *Context) Room() (world.RoomObject, bool) {
	return c.Player.Room()
}

// Reply sends a composed line to the player.
func (c *Context) Reply(parts ...any) {
	c.Player.Message(parts...)
}

// Lines sends several lines to the player.
func (c *Context) Lines(lines []string, indent int) {
	c.Player.Lines(lines, indent)
}

// Quit asks the session to disconnect once the command commits.
func (c *Context) Quit() { c.quit = true }

// HandlerFunc runs one parsed command. Problems with the player's input are
// reported to the player and nil returned; a returned error aborts every
// change the command made.
type HandlerFunc func(c *Context) error

type handlerKey struct {
	section command.Section
	verb    string
}

// Dispatcher turns input lines into handler calls, one transaction each.
type Dispatcher struct {
	registry *command.Registry
	handlers map[handlerKey]HandlerFunc
	debug    bool
	logger   *zap.Logger
}

// NewDispatcher wires the command handlers of every section.
//
// Precondition: registry, control and logger must be non-nil.
// Postcondition: every command in registry has a handler.
func NewDispatcher(registry *command.Registry, control *Control, debug bool, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		handlers: make(map[handlerKey]HandlerFunc),
		debug:    debug,
		logger:   logger,
	}
	d.mount(command.Actions, NewActionHandler(registry).Handlers())
	d.mount(command.Wizard, NewWizardHandler(registry).Handlers())
	d.mount(command.Admin, NewAdminHandler(registry, control, logger).Handlers())
	return d
}

func (d *Dispatcher) mount(section command.Section, handlers map[string]HandlerFunc) {
	for verb, h := range handlers {
		d.handlers[handlerKey{section, verb}] = h
	}
}

// Handler returns the handler of a section's verb.
func (d *Dispatcher) Handler(section command.Section, verb string) (HandlerFunc, bool) {
	h, ok := d.handlers[handlerKey{section, verb}]
	return h, ok
}

// Dispatch parses and runs one line typed by p and reports whether the
// player asked to quit.
//
// Postcondition: no transaction is open when Dispatch returns.
func (d *Dispatcher) Dispatch(w *world.World, p *world.Player, line string) bool {
	start := time.Now()
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	section := sectionOf(line)
	if !allowed(p, section) {
		denied(p, section)
		return false
	}

	cmd, err := command.Parse(line)
	if err != nil {
		d.fallback(w, p, section, line)
		return false
	}
	h, ok := d.Handler(cmd.Section, cmd.Verb)
	if !ok {
		p.Message("Command not understood.")
		return false
	}

	c := &Context{World: w, Player: p, Cmd: cmd}
	err = d.run(w, h, c)
	d.logger.Debug("command",
		observability.Player(p.Name),
		zap.String("line", line),
		zap.String("section", cmd.Section.String()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return c.quit && err == nil
}

// run brackets h in a transaction and turns failures into player messages.
func (d *Dispatcher) run(w *world.World, h HandlerFunc, c *Context) error {
	if w.InTx() {
		d.logger.Warn("aborting stale transaction", observability.Player(c.Player.Name))
		w.Abort()
	}
	if err := w.Begin(); err != nil {
		return d.trouble(w, c, err)
	}

	err := guard(h, c)
	switch {
	case err == nil:
		if cerr := w.Commit(); cerr != nil {
			return d.trouble(w, c, cerr)
		}
		return nil
	case errors.Is(err, ErrUsage):
		w.Abort()
		c.Reply("Command used incorrectly.")
		return err
	case errors.Is(err, ErrRefused):
		w.Abort()
		return nil
	default:
		w.Abort()
		return d.trouble(w, c, err)
	}
}

// trouble reports an unexpected failure. The player's room membership may
// have been restored to a state the player no longer matches, so one
// reconciliation pass runs before the failure is reported.
func (d *Dispatcher) trouble(w *world.World, c *Context, err error) error {
	w.Abort()
	// Abort rebuilds touched objects, so the player is looked up again.
	if p, ok := w.Player(c.Player.ID); ok {
		reconcile(w, p)
	}

	fields := []zap.Field{
		observability.Player(c.Player.Name),
		zap.String("verb", c.Cmd.Verb),
		zap.Error(err),
	}
	var pe *world.PanicError
	if errors.As(err, &pe) {
		fields = append(fields, zap.ByteString("stack", pe.Stack))
	}
	d.logger.Error("command failed", fields...)

	c.Reply(fmt.Sprintf("Sorry. Having trouble with that command. Try: %shelp %s",
		c.Cmd.Section.Sigil(), c.Cmd.Verb))
	if d.debug {
		c.Reply(err.Error())
	}
	return err
}

// reconcile makes the player's room list it exactly when the player says it
// is there.
func reconcile(w *world.World, p *world.Player) {
	room, inRoom := p.Room()
	for _, r := range w.Rooms() {
		if r.AsRoom().Present(p) && (!inRoom || r.Core().ID != room.Core().ID) {
			p.MoveTo(r)
		}
	}
	if inRoom {
		p.MoveTo(room)
	} else {
		p.MoveTo(nil)
	}
	if err := w.Commit(); err != nil {
		w.Logger().Error("reconciling room membership", observability.Player(p.Name), zap.Error(err))
	}
}

func guard(h HandlerFunc, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &world.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return h(c)
}

// fallback handles lines the grammar rejected: a known verb used wrongly,
// an exit named on its own, or nothing recognisable.
func (d *Dispatcher) fallback(w *world.World, p *world.Player, section command.Section, line string) {
	verb := command.FirstWord(line)
	if _, ok := d.registry.Resolve(section, verb); ok {
		p.Message("Command used incorrectly.")
		return
	}
	if section == command.Actions {
		if room, ok := p.Room(); ok {
			if x, ok := room.AsRoom().ExitNamed(line); ok && p.CanSee(x) {
				c := &Context{World: w, Player: p, Cmd: command.Result{Section: section, Verb: "go"}}
				_ = d.run(w, func(c *Context) error { return travel(c, x) }, c)
				return
			}
		}
	}
	p.Message("Command not understood.")
}

func sectionOf(line string) command.Section {
	switch line[0] {
	case '@':
		return command.Wizard
	case '!':
		return command.Admin
	}
	return command.Actions
}

func allowed(p *world.Player, section command.Section) bool {
	switch section {
	case command.Wizard:
		return p.IsWizard()
	case command.Admin:
		return p.IsAdmin()
	}
	return true
}

func denied(p *world.Player, section command.Section) {
	if section == command.Admin {
		p.Message("Admin only.")
		return
	}
	p.Message("Wizards only.")
}
