package gameserver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/command"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/server"
	"github.com/cory-johannsen/tzmud/internal/storage"
)

// adminTimeout bounds the storage calls of an admin command.
const adminTimeout = 30 * time.Second

// Control carries restart requests from admin commands to the process. The
// work a restart needs done while nothing is running, such as restoring a
// backup, is queued until Between.
type Control struct {
	// Store is the backend backups are taken from and restored into.
	Store storage.Backend
	// Delay is the default delay of restart and shutdown.
	Delay time.Duration

	mu      sync.Mutex
	request func(server.Outcome)
	pending []func(ctx context.Context) error
	timer   *time.Timer
}

// Bind connects the control to the lifecycle of the current generation.
func (c *Control) Bind(request func(server.Outcome)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request = request
}

// Schedule requests outcome after delay. then, when non-nil, runs in the
// following Between.
func (c *Control) Schedule(delay time.Duration, outcome server.Outcome, then func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if then != nil {
		c.pending = append(c.pending, then)
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	request := c.request
	c.timer = time.AfterFunc(delay, func() {
		if request != nil {
			request(outcome)
		}
	})
}

// Between runs the queued work. It is called after every service stopped
// and before the next generation starts.
//
// Postcondition: nothing is queued and no request is pending.
func (c *Control) Between(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	var errs []error
	for _, fn := range pending {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AdminHandler handles the ! commands that operate the server.
type AdminHandler struct {
	registry *command.Registry
	control  *Control
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
//
// Precondition: registry, control and logger must be non-nil.
func NewAdminHandler(registry *command.Registry, control *Control, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{registry: registry, control: control, logger: logger}
}

// Handlers maps each admin verb to its handler.
func (h *AdminHandler) Handlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"admin":    func(c *Context) error { return h.grant(c, "an admin", c.World.SetAdmin) },
		"wizard":   func(c *Context) error { return h.grant(c, "a wizard", c.World.SetWizard) },
		"db":       h.db,
		"backup":   h.backup,
		"backups":  h.backups,
		"restart":  func(c *Context) error { return h.stop(c, server.Restart) },
		"shutdown": func(c *Context) error { return h.stop(c, server.Shutdown) },
		"fresh":    h.fresh,
		"rollback": h.rollback,
		"nudge":    h.nudge,
		"help":     func(c *Context) error { return help(h.registry, c, command.Admin) },
	}
}

func (h *AdminHandler) grant(c *Context, role string, set func(*world.Player, bool)) error {
	if len(c.Cmd.Args) == 0 {
		return usage(c, "player")
	}
	p, ok := c.World.PlayerNamed(c.Cmd.Text)
	if !ok {
		c.Reply("No such player.")
		return nil
	}
	set(p, true)
	c.Reply(p, "is now", role, ".")
	h.logger.Info("privilege granted",
		zap.String("player", p.Name),
		zap.String("role", role),
		zap.String("by", c.Player.Name),
	)
	return nil
}

func (h *AdminHandler) db(c *Context) error {
	w := c.World
	if len(c.Cmd.Args) == 0 {
		lines := make([]string, 0, len(world.Kinds))
		for _, k := range world.Kinds {
			lines = append(lines, fmt.Sprintf("%-8s %d", k.Catalog(), w.Count(k)))
		}
		c.Reply("Database sections:")
		c.Lines(lines, 4)
		return nil
	}

	section := strings.ToLower(c.Cmd.Args[0])
	if section == "root" {
		root := w.Root()
		c.Lines([]string{
			"next id: " + strconv.FormatInt(int64(root.NextID), 10),
			"wizards: " + strings.Join(root.Wizards, ", "),
			"admins: " + strings.Join(root.Admins, ", "),
		}, 0)
		return nil
	}
	k, ok := world.ParseKind(section)
	if !ok {
		c.Reply("Section not found.")
		return nil
	}
	objs := w.Objects(k)
	lines := make([]string, len(objs))
	for i, o := range objs {
		lines[i] = fmt.Sprintf("%s %s (%s)", o.Core().ID, o, world.ClassName(o))
	}
	c.Reply(k.Catalog()+":")
	c.Lines(lines, 4)
	return nil
}

func (h *AdminHandler) backup(c *Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	name, err := h.control.Store.Backup(ctx)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	h.logger.Info("backup saved", zap.String("name", name), zap.String("by", c.Player.Name))
	c.Reply("Backup saved.")
	c.Lines([]string{name}, 4)
	return nil
}

func (h *AdminHandler) backups(c *Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	names, err := h.control.Store.Backups(ctx)
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}
	if len(names) == 0 {
		c.Reply("No backups yet.")
		return nil
	}
	c.Reply("Available backups:")
	c.Lines(names, 4)
	return nil
}

// delay reads the optional delay argument in seconds.
func (h *AdminHandler) delay(c *Context) (time.Duration, bool) {
	if len(c.Cmd.Args) == 0 {
		return h.control.Delay, true
	}
	secs, err := strconv.ParseFloat(c.Cmd.Args[0], 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// warn tells every connected player what is about to happen.
func warn(w *world.World, what string, delay time.Duration) {
	secs := strconv.FormatFloat(delay.Seconds(), 'f', -1, 64)
	for _, p := range w.Connected() {
		p.Message("WARNING!")
		p.Message("TZMud will", what, "in", secs, "seconds!")
	}
}

func (h *AdminHandler) stop(c *Context, outcome server.Outcome) error {
	delay, ok := h.delay(c)
	if !ok {
		return usage(c, "delay in seconds")
	}
	what := "restart"
	if outcome == server.Shutdown {
		what = "shut down"
	}
	warn(c.World, what, delay)
	h.logger.Info("stop requested",
		zap.Stringer("outcome", outcome),
		zap.Duration("delay", delay),
		zap.String("by", c.Player.Name),
	)
	h.control.Schedule(delay, outcome, nil)
	return nil
}

func (h *AdminHandler) fresh(c *Context) error {
	store := h.control.Store
	warn(c.World, "restart with a fresh world", h.control.Delay)
	h.logger.Warn("fresh world requested", zap.String("by", c.Player.Name))
	h.control.Schedule(h.control.Delay, server.Restart, func(ctx context.Context) error {
		if err := store.Reset(ctx); err != nil {
			return fmt.Errorf("resetting store: %w", err)
		}
		return nil
	})
	return nil
}

func (h *AdminHandler) rollback(c *Context) error {
	store := h.control.Store
	name := ""
	if len(c.Cmd.Args) > 0 {
		name = c.Cmd.Args[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	names, err := store.Backups(ctx)
	if err != nil {
		return fmt.Errorf("listing backups: %w", err)
	}
	if len(names) == 0 || (name != "" && !slices.Contains(names, name)) {
		c.Reply("No such backup.")
		return nil
	}
	if name == "" {
		name = names[len(names)-1]
	}

	c.Reply("Rolling back to", name, ".")
	warn(c.World, "roll back and restart", h.control.Delay)
	h.logger.Warn("rollback requested", zap.String("backup", name), zap.String("by", c.Player.Name))
	h.control.Schedule(h.control.Delay, server.Restart, func(ctx context.Context) error {
		if err := store.Restore(ctx, name); err != nil {
			return fmt.Errorf("restoring %s: %w", name, err)
		}
		return nil
	})
	return nil
}

func (h *AdminHandler) nudge(c *Context) error {
	c.Reply("Nudged", strconv.Itoa(c.World.Nudge()), "objects.")
	return nil
}
