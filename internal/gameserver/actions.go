package gameserver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cory-johannsen/tzmud/internal/game/command"
	"github.com/cory-johannsen/tzmud/internal/game/items"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/text"
)

// shoutSpread is how many rooms beyond the shouter's a shout carries.
const shoutSpread = 2

// ActionHandler handles the commands every player may use.
type ActionHandler struct {
	registry *command.Registry
}

// NewActionHandler creates an ActionHandler.
//
// Precondition: registry must be non-nil.
func NewActionHandler(registry *command.Registry) *ActionHandler {
	return &ActionHandler{registry: registry}
}

// Handlers maps each action verb to its handler.
func (h *ActionHandler) Handlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"look":      h.look,
		"info":      h.info,
		"time":      h.clock,
		"get":       h.get,
		"drop":      h.drop,
		"put":       h.put,
		"take":      h.take,
		"use":       h.use,
		"inventory": h.inventory,
		"wear":      h.wear,
		"remove":    h.remove,
		"go":        h.goTo,
		"lock":      func(c *Context) error { return h.lock(c, true) },
		"unlock":    func(c *Context) error { return h.lock(c, false) },
		"follow":    h.follow,
		"exits":     h.exits,
		"say":       h.say,
		"shout":     h.shout,
		"emote":     h.emote,
		"listen":    h.listen,
		"quit":      h.quit,
		"who":       h.who,
		"set":       h.set,
		"unset":     h.unset,
		"stats":     h.stats,
		"password":  h.password,
		"help":      func(c *Context) error { return help(h.registry, c, command.Actions) },
	}
}

func (h *ActionHandler) look(c *Context) error {
	room, inRoom := c.Room()
	if c.Cmd.Obj.IsZero() {
		if !inRoom {
			c.Reply("You are nowhere.")
			return nil
		}
		c.Reply(room)
		c.Lines(room.Look(c.Player), 0)
		return nil
	}
	o, ok := findVisible(c, c.Cmd.Obj)
	if !ok {
		c.Reply("You do not see that here.")
		return nil
	}
	c.Reply("You look at", o, ".")
	lines := o.Look(c.Player)
	if len(lines) == 0 {
		lines = []string{"Nothing special."}
	}
	c.Lines(lines, 0)
	if inRoom {
		room.AsRoom().Action(world.Event{Act: world.ActLook, Actor: c.Player.ID, Target: o.Core().ID})
	}
	return nil
}

func (h *ActionHandler) info(c *Context) error {
	if c.Cmd.Obj.IsZero() {
		c.Lines(c.Player.Info(), 0)
		return nil
	}
	found := visible(c, c.Cmd.Obj)
	if len(found) == 0 {
		c.Reply("You do not see that here.")
		return nil
	}
	for _, o := range found {
		c.Lines(o.Info(), 0)
	}
	return nil
}

func (h *ActionHandler) clock(c *Context) error {
	c.Reply("The time is", c.World.Clock().Format(time.RFC1123), ".")
	return nil
}

func isAll(ref world.Reference) bool {
	return ref.ID == world.NoID && strings.EqualFold(ref.Name, "all")
}

// splitPile takes n units off a stackable item, reporting failures with the
// given message for a pile that is too small.
func splitPile(c *Context, it world.ItemObject, n int, tooFew string) (world.ItemObject, bool, error) {
	s, ok := it.(world.Splitter)
	if !ok {
		c.Reply("You cannot split that item.")
		return nil, false, nil
	}
	part, err := s.Split(n)
	if errors.Is(err, items.ErrNotEnough) {
		c.Reply(tooFew)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return part, true, nil
}

func (h *ActionHandler) get(c *Context) error {
	room, ok := c.Room()
	if !ok {
		c.Reply("You do not see that here.")
		return nil
	}
	if isAll(c.Cmd.Obj) {
		found := visibleItems(c, room)
		if len(found) == 0 {
			c.Reply("There is nothing here to get.")
			return nil
		}
		for _, it := range found {
			if c.Player.GetItem(it) {
				c.Reply("You get the", it, ".")
			} else if !it.Core().Gettable {
				c.Reply("You cannot get the", it, ".")
			}
		}
		return nil
	}

	it, ok := itemIn(c, room, c.Cmd.Obj)
	if !ok {
		if _, held := itemIn(c, c.Player, c.Cmd.Obj); held {
			c.Reply("You already have that.")
		} else {
			c.Reply("You do not see that here.")
		}
		return nil
	}
	if !it.Core().Gettable {
		c.Reply("You cannot get that.")
		return nil
	}
	split := false
	if n := c.Cmd.Count; n > 0 {
		part, ok, err := splitPile(c, it, n, "There are not that many.")
		if !ok {
			return err
		}
		it, split = part, part != it
	}
	if !c.Player.GetItem(it) {
		if split {
			return ErrRefused
		}
		return nil
	}
	c.Reply("You get the", it, ".")
	return nil
}

func (h *ActionHandler) drop(c *Context) error {
	if _, ok := c.Room(); !ok {
		c.Reply("You have nowhere to drop anything.")
		return nil
	}
	if isAll(c.Cmd.Obj) {
		held := visibleItems(c, c.Player)
		if len(held) == 0 {
			c.Reply("You have nothing.")
			return nil
		}
		for _, it := range held {
			if c.Player.DropItem(it) {
				c.Reply("You drop the", it, ".")
			}
		}
		return nil
	}

	it, ok := itemIn(c, c.Player, c.Cmd.Obj)
	if !ok {
		c.Reply("You do not have that.")
		return nil
	}
	if n := c.Cmd.Count; n > 0 {
		part, ok, err := splitPile(c, it, n, "You do not have that many.")
		if !ok {
			return err
		}
		it = part
	}
	if !c.Player.DropItem(it) {
		c.Reply("You cannot drop that.")
		return ErrRefused
	}
	c.Reply("You drop the", it, ".")
	return nil
}

// containerFor resolves the container of put and take: held first, then in
// the room.
func containerFor(c *Context, ref world.Reference) (world.ItemObject, world.Container, bool) {
	it, ok := heldOrNear(c, ref)
	if !ok {
		return nil, nil, false
	}
	box, _ := it.(world.Container)
	return it, box, true
}

func (h *ActionHandler) put(c *Context) error {
	ref := c.Cmd.Obj2
	target, box, ok := containerFor(c, ref)
	switch {
	case !ok && ref.ID != world.NoID:
		c.Reply("You do not have such a container.")
		return nil
	case !ok:
		c.Reply("You do not have a container called", ref.Name, ".")
		return nil
	case box == nil:
		c.Reply("You can't put anything in there.")
		return nil
	}

	it, ok := itemIn(c, c.Player, c.Cmd.Obj)
	if !ok {
		c.Reply("You do not have that.")
		return nil
	}
	if it.Core().ID == target.Core().ID {
		c.Reply("You can't put something inside itself.")
		return nil
	}
	if inner, ok := it.(world.Container); ok && world.ContentsOf(inner).HasInside(target) {
		c.Reply("You can't put something inside itself.")
		return nil
	}
	if !it.OnPut(c.Player, box) {
		c.Reply("You can't put that in there.")
		return nil
	}
	inside := world.Place(it, box)
	c.Reply("You put the", it, "in the", target, ".")
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(world.Event{
			Act: world.ActPut, Actor: c.Player.ID, Item: inside.Core().ID, Container: target.Core().ID,
		})
	}
	return nil
}

func (h *ActionHandler) take(c *Context) error {
	ref := c.Cmd.Obj2
	target, box, ok := containerFor(c, ref)
	switch {
	case !ok && ref.ID != world.NoID:
		c.Reply("You do not have object", ref.ID.String(), ".")
		return nil
	case !ok:
		c.Reply("You do not have", ref.Name, ".")
		return nil
	case box == nil:
		c.Reply("That is not a container.")
		return nil
	}

	it, ok := itemIn(c, box, c.Cmd.Obj)
	if !ok {
		c.Reply("There is no", c.Cmd.Obj.String(), "in", target, ".")
		return nil
	}
	if !it.OnTake(c.Player, box) {
		c.Reply("You cannot take that.")
		return nil
	}
	if n := c.Cmd.Count; n > 0 {
		part, ok, err := splitPile(c, it, n, "There are not that many.")
		if !ok {
			return err
		}
		it = part
	}
	held := world.Place(it, c.Player)
	c.Reply("You take the", it, "from the", target, ".")
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(world.Event{
			Act: world.ActTake, Actor: c.Player.ID, Item: held.Core().ID, Container: target.Core().ID,
		})
	}
	return nil
}

func (h *ActionHandler) use(c *Context) error {
	it, ok := itemIn(c, c.Player, c.Cmd.Obj)
	if !ok {
		c.Reply("You do not have that.")
		return nil
	}
	u, ok := it.(world.Usable)
	if !ok {
		c.Reply("You cannot use that.")
		return nil
	}
	var target world.Object
	if !c.Cmd.Obj2.IsZero() {
		if target, ok = findVisible(c, c.Cmd.Obj2); !ok {
			c.Reply("You cannot use it on that. It's not here.")
			return nil
		}
	}
	if !u.Use(c.Player, target) {
		c.Reply("You cannot use that.")
	}
	return nil
}

func (h *ActionHandler) inventory(c *Context) error {
	lines := c.Player.InventoryLines(c.Player)
	if len(lines) == 0 {
		c.Reply("You have nothing.")
		return nil
	}
	c.Reply("You are holding:")
	c.Lines(lines, 4)
	return nil
}

func (h *ActionHandler) wear(c *Context) error {
	it, ok := itemIn(c, c.Player, c.Cmd.Obj)
	switch {
	case !ok:
		c.Reply("You do not have that.")
	case c.Player.Wears(it):
		c.Reply("You are already wearing that.")
	case !it.Core().Wearable || !c.Player.Wear(it):
		c.Reply("You can't wear that.")
	default:
		c.Reply("You wear", it, ".")
	}
	return nil
}

func (h *ActionHandler) remove(c *Context) error {
	it, ok := itemIn(c, c.Player, c.Cmd.Obj)
	switch {
	case !ok || !c.Player.Wears(it):
		c.Reply("You are not wearing that.")
	case !c.Player.Unwear(it):
		c.Reply("You can't remove that.")
	default:
		c.Reply("You remove", it, ".")
	}
	return nil
}

var leaveWords = []string{"out", "exit", "leave"}

func (h *ActionHandler) goTo(c *Context) error {
	room, ok := c.Room()
	if !ok {
		c.Reply("You can't go that way.")
		return nil
	}
	ref := c.Cmd.Obj
	if !ref.IsZero() {
		if x, ok := exitIn(c, room, ref); ok {
			return travel(c, x)
		}
	}
	if ref.IsZero() || (ref.ID == world.NoID && slices.Contains(leaveWords, strings.ToLower(ref.Name))) {
		exits := room.AsRoom().VisibleExits(c.Player)
		if len(exits) == 1 {
			return travel(c, exits[0])
		}
		verb := "Go"
		if !ref.IsZero() {
			verb = capitalize(ref.Name)
		}
		c.Reply(verb, "through which exit?")
		return nil
	}
	if ref.ID == world.NoID {
		name, _ := world.StripArticle(ref.Name)
		for _, x := range room.AsRoom().VisibleExits(c.Player) {
			if dest, ok := x.AsExit().Dest(); ok && (dest.Core().Named(ref.Name) || dest.Core().Named(name)) {
				return travel(c, x)
			}
		}
	}
	c.Reply("You can't go that way.")
	return nil
}

// travel sends the player through x and shows where they ended up.
func travel(c *Context, x world.ExitObject) error {
	moved, reason := c.Player.Go(x)
	if !moved {
		c.Reply(reason)
		return nil
	}
	c.Player.ShowArrival()
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fittingKey searches everything holder carries, containers included, for
// an item known as "key" that fits x.
func fittingKey(holder world.Container, x *world.Exit) (world.ItemObject, bool) {
	for _, it := range world.ContentsOf(holder).Items() {
		b := it.Core()
		if key, ok := it.(world.KeyObject); ok && (b.Named("key") || b.Aliased("key")) && key.Fits(x) {
			return it, true
		}
		if nested, ok := it.(world.Container); ok {
			if key, ok := fittingKey(nested, x); ok {
				return key, true
			}
		}
	}
	return nil, false
}

func (h *ActionHandler) lock(c *Context, lock bool) error {
	verb, outcome := "lock", world.OutcomeLock
	if !lock {
		verb, outcome = "unlock", world.OutcomeUnlock
	}
	if c.Cmd.Obj.IsZero() {
		c.Reply(capitalize(verb), "which door?")
		return nil
	}
	room, ok := c.Room()
	if !ok {
		c.Reply("No such exit.")
		return nil
	}
	x, ok := exitIn(c, room, c.Cmd.Obj)
	if !ok {
		c.Reply("No such exit.")
		return nil
	}
	var it world.ItemObject
	if c.Cmd.Obj2.IsZero() {
		if it, ok = fittingKey(c.Player, x.AsExit()); !ok {
			c.Reply(capitalize(verb), "it with which key?")
			return nil
		}
	} else if it, ok = itemIn(c, c.Player, c.Cmd.Obj2); !ok {
		c.Reply("You do not have such a key.")
		return nil
	}
	key, ok := it.(world.KeyObject)
	if !ok || !key.Fits(x.AsExit()) {
		c.Reply("That key does not fit.")
		room.AsRoom().Action(world.Event{
			Act: world.ActLock, Actor: c.Player.ID, Exit: x.Core().ID, Key: it.Core().ID, Outcome: world.OutcomeFail,
		})
		return nil
	}
	x.AsExit().SetLocked(lock)
	c.Reply("You", verb, "the door", x, "with key", it, ".")
	room.AsRoom().Action(world.Event{
		Act: world.ActLock, Actor: c.Player.ID, Exit: x.Core().ID, Key: it.Core().ID, Outcome: outcome,
	})
	return nil
}

func (h *ActionHandler) follow(c *Context) error {
	p := c.Player
	ref := c.Cmd.Obj
	if ref.IsZero() {
		if leader, ok := p.Leader(); ok {
			c.Reply("Following", leader, ".")
		} else {
			c.Reply("Not following anyone.")
		}
		return nil
	}
	if ref.ID == p.ID || (ref.ID == world.NoID && (p.Named(ref.Name) || strings.EqualFold(ref.Name, "me"))) {
		p.Follow(nil)
		c.Reply("You stop following.")
		return nil
	}
	var leader world.CharacterObject
	for _, o := range visible(c, ref) {
		if ch, ok := o.(world.CharacterObject); ok {
			leader = ch
			break
		}
	}
	if leader == nil {
		c.Reply("Cannot follow", ref.String(), ".")
		return nil
	}
	p.Follow(leader)
	c.Reply("You start following", leader, ".")
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(world.Event{Act: world.ActFollow, Actor: p.ID, Target: leader.Core().ID})
	}
	return nil
}

func (h *ActionHandler) exits(c *Context) error {
	room, ok := c.Room()
	var names []string
	if ok {
		for _, x := range room.AsRoom().VisibleExits(c.Player) {
			names = append(names, x.String())
		}
	}
	if len(names) == 0 {
		c.Reply("You see no obvious exits.")
		return nil
	}
	c.Reply("Exits:")
	c.Lines([]string{strings.Join(names, ", ")}, 4)
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}

func (h *ActionHandler) say(c *Context) error {
	text := c.Cmd.Text
	c.Reply("You", world.SpeechVerb(text)+",", quote(text))
	c.Player.Say(text)
	return nil
}

func (h *ActionHandler) shout(c *Context) error {
	text := c.Cmd.Text
	c.Reply("You shout,", quote(text))
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(world.Event{Act: world.ActShout, Actor: c.Player.ID, Text: text, Spread: shoutSpread})
	}
	return nil
}

func (h *ActionHandler) emote(c *Context) error {
	c.Reply("(" + c.Player.Name + " " + c.Cmd.Text + ")")
	c.Player.Emote(c.Cmd.Text)
	return nil
}

func (h *ActionHandler) listen(c *Context) error {
	o, ok := findVisible(c, c.Cmd.Obj)
	if !ok {
		c.Reply("That is not here.")
		return nil
	}
	c.Reply("You listen to", o, ".")
	x, ok := o.(world.ExitObject)
	if !ok {
		return nil
	}
	if dest, ok := x.AsExit().Dest(); ok && len(dest.AsRoom().Characters()) > 0 {
		c.Reply("You hear someone there.")
	} else {
		c.Reply("It sounds quiet there.")
	}
	return nil
}

func (h *ActionHandler) quit(c *Context) error {
	c.Reply("Goodbye.")
	c.Quit()
	return nil
}

func (h *ActionHandler) who(c *Context) error {
	var names []string
	for _, p := range c.World.Connected() {
		if c.Player.CanSee(p) {
			names = append(names, p.String())
		}
	}
	c.Reply("Players connected:")
	c.Lines(names, 4)
	return nil
}

// prefValue normalizes boolean spellings so the preference reads back the
// way it is interpreted.
func prefValue(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "true", "t", "yes", "y", "on", "1":
		return "true"
	case "false", "f", "no", "n", "off", "0":
		return "false"
	}
	return v
}

func (h *ActionHandler) set(c *Context) error {
	p := c.Player
	name := c.Cmd.Var
	if name == "" {
		prefs := p.PrefNames()
		if len(prefs) == 0 {
			c.Reply("You have not set anything yet.")
			return nil
		}
		c.Reply("Settings:")
		lines := make([]string, len(prefs))
		for i, k := range prefs {
			v, _ := p.Pref(k)
			lines[i] = k + " = " + v
		}
		c.Lines(lines, 4)
		return nil
	}
	v := "true"
	if c.Cmd.HasVal {
		v = prefValue(c.Cmd.Val)
	}
	p.SetPref(name, v)
	c.Reply(name, "=", v)
	return nil
}

func (h *ActionHandler) unset(c *Context) error {
	if c.Player.UnsetPref(c.Cmd.Var) {
		c.Reply(c.Cmd.Var, "unset.")
	} else {
		c.Reply(c.Cmd.Var, "is not set.")
	}
	return nil
}

func (h *ActionHandler) stats(c *Context) error {
	p := c.Player
	names := make([]string, 0, len(p.Stats))
	width := 0
	for k := range p.Stats {
		names = append(names, k)
		width = max(width, len(k))
	}
	slices.Sort(names)
	c.Reply("Character stats for", p.String()+":")
	lines := make([]string, len(names))
	for i, k := range names {
		lines[i] = fmt.Sprintf("%-*s : %4d", width, k, p.Stat(k))
	}
	c.Lines(lines, 4)
	return nil
}

func (h *ActionHandler) password(c *Context) error {
	if !c.Player.CheckPassword(c.Cmd.Old) {
		c.Reply("Incorrect password.")
		return nil
	}
	if err := c.Player.SetPassword(c.Cmd.New); err != nil {
		return err
	}
	c.Reply("Password changed.")
	return nil
}

// help lists a section's commands or explains one of them.
func help(registry *command.Registry, c *Context, section command.Section) error {
	topic := c.Cmd.Topic
	if topic == "" {
		// Admin commands carry their words as plain text.
		topic = c.Cmd.Text
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		c.Reply("Available commands:")
		c.Lines(text.Columns(registry.Names(section), text.DefaultWidth-4), 4)
		if section == command.Actions {
			if c.Player.IsWizard() {
				c.Reply("Use @help for wizard commands")
			}
			if c.Player.IsAdmin() {
				c.Reply("Use !help for admin commands")
			}
		}
		return nil
	}
	cmd, ok := registry.Resolve(section, strings.TrimLeft(topic, "@!"))
	if !ok {
		switch section {
		case command.Wizard:
			c.Reply("Sorry. No wizard help available on that subject.")
		case command.Admin:
			c.Reply("Sorry. No admin help available on that subject.")
		default:
			c.Reply("Sorry. No help available on that subject.")
		}
		return nil
	}
	c.Lines([]string{
		"Help on " + section.Sigil() + cmd.Name + ":",
		"",
		"Syntax:",
		"        " + section.Sigil() + cmd.Usage,
		"",
	}, 0)
	c.Lines([]string{cmd.Help}, 4)
	return nil
}
