package gameserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/tzmud/internal/game/command"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// Delays of a player teleport: the player vanishes first, then lands.
const (
	teleportAwayDelay = 200 * time.Millisecond
	teleportInDelay   = 400 * time.Millisecond
)

// WizardHandler handles the @ commands that rearrange the world.
type WizardHandler struct {
	registry *command.Registry
}

// NewWizardHandler creates a WizardHandler.
//
// Precondition: registry must be non-nil.
func NewWizardHandler(registry *command.Registry) *WizardHandler {
	return &WizardHandler{registry: registry}
}

// Handlers maps each wizard verb to its handler.
func (h *WizardHandler) Handlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"teleport": h.teleport,
		"dig":      h.dig,
		"lock":     h.lock,
		"list":     h.list,
		"clone":    h.clone,
		"study":    h.study,
		"rename":   h.rename,
		"short":    func(c *Context) error { return h.describe(c, false) },
		"long":     func(c *Context) error { return h.describe(c, true) },
		"destroy":  h.destroy,
		"set":      h.set,
		"unset":    h.unset,
		"help":     func(c *Context) error { return help(h.registry, c, command.Wizard) },
	}
}

// teleportCharacter moves ch to dest and shows a player where they landed.
func teleportCharacter(ch world.CharacterObject, dest world.RoomObject, actor world.ID) {
	relocate(ch, dest, actor)
	if p, ok := ch.(*world.Player); ok {
		p.ShowArrival()
	}
}

// relocate moves ch to dest, announcing the departure and the arrival in
// the rooms involved. actor is the one doing the teleporting.
func relocate(ch world.CharacterObject, dest world.RoomObject, actor world.ID) {
	id := ch.Core().ID
	if origin, ok := ch.Room(); ok {
		origin.AsRoom().Action(world.Event{Act: world.ActTeleportCharacterAway, Actor: actor, Character: id})
	}
	ch.AsCharacter().MoveTo(dest)
	dest.AsRoom().Action(world.Event{Act: world.ActTeleportCharacterIn, Actor: actor, Character: id})
}

func (h *WizardHandler) teleport(c *Context) error {
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(world.Event{Act: world.ActTeleport, Actor: c.Player.ID})
	}
	if c.Cmd.Obj2.IsZero() {
		return h.teleportSelf(c)
	}

	dest, ok := placeOf(c, c.Cmd.Obj2)
	if !ok {
		c.Reply("No such place.")
		return nil
	}
	o, ok := locate(c, c.Cmd.Obj)
	if !ok {
		c.Reply("No such object.")
		return nil
	}

	switch t := o.(type) {
	case *world.Player:
		if t.ID == c.Player.ID {
			teleportCharacter(t, dest, c.Player.ID)
			return nil
		}
		h.teleportPlayer(c, t, dest)
		c.Reply("You send", t, "to", dest, ".")
	case world.MobObject:
		teleportCharacter(t, dest, c.Player.ID)
		c.Reply("You send", t, "to", dest, ".")
	case world.ItemObject:
		teleportItem(c, t, dest)
		c.Reply("You send the", t, "to", dest, ".")
	case world.ExitObject:
		if !t.AsExit().Relocate(dest) {
			c.Reply(dest, "does not accept exits.")
			return nil
		}
		c.Reply("Exit", t, "moved.")
	default:
		c.Reply("Cannot teleport the", o, ".")
	}
	return nil
}

// teleportSelf sends the wizard home, to a room or to a player.
func (h *WizardHandler) teleportSelf(c *Context) error {
	ref := c.Cmd.Obj
	var dest world.RoomObject
	if ref.IsZero() {
		home, ok := c.Player.HomeRoom()
		if !ok {
			c.Reply("You have no home.")
			return nil
		}
		dest = home
	} else if r, ok := roomRef(c.World, ref); ok {
		dest = r
	} else if p, ok := playerRef(c.World, ref); ok {
		r, ok := p.Room()
		if !ok || !p.LoggedIn {
			c.Reply("Player is not logged in.")
			return nil
		}
		dest = r
	} else {
		c.Reply("No such room or player.")
		return nil
	}
	teleportCharacter(c.Player, dest, c.Player.ID)
	return nil
}

// teleportPlayer moves another player after a pause, so their own
// connection sees the departure before the arrival.
func (h *WizardHandler) teleportPlayer(c *Context, p *world.Player, dest world.RoomObject) {
	w, actor, pid, did := c.World, c.Player.ID, p.ID, dest.Core().ID
	if origin, ok := p.Room(); ok {
		origin.AsRoom().Action(world.Event{
			Act: world.ActTeleportCharacterAway, Actor: actor, Character: pid, Delay: teleportAwayDelay,
		})
	}
	w.Later(teleportInDelay, "teleport player", func() error {
		p, ok := w.Player(pid)
		if !ok {
			return nil
		}
		dest, ok := w.Room(did)
		if !ok {
			return nil
		}
		p.MoveTo(dest)
		p.ShowArrival()
		dest.AsRoom().Action(world.Event{Act: world.ActTeleportCharacterIn, Actor: actor, Character: pid})
		return nil
	}, pid, did)
}

// teleportItem places it in dest. Only an item lying in a room is seen
// leaving.
func teleportItem(c *Context, it world.ItemObject, dest world.RoomObject) {
	id := it.Core().ID
	if holder, ok := it.Core().Container(); ok {
		if origin, ok := holder.(world.RoomObject); ok {
			origin.AsRoom().Action(world.Event{Act: world.ActTeleportItemAway, Actor: c.Player.ID, Item: id})
		}
	}
	world.Place(it, dest)
	dest.AsRoom().Action(world.Event{Act: world.ActTeleportItemIn, Actor: c.Player.ID, Item: id})
}

// placeOf resolves a teleport destination: a room, or the room a character
// is in.
func placeOf(c *Context, ref world.Reference) (world.RoomObject, bool) {
	if r, ok := roomRef(c.World, ref); ok {
		return r, true
	}
	o, ok := locate(c, ref)
	if !ok {
		return nil, false
	}
	if ch, ok := o.(world.CharacterObject); ok {
		return ch.Room()
	}
	return nil, false
}

func playerRef(w *world.World, ref world.Reference) (*world.Player, bool) {
	if ref.ID != world.NoID {
		return w.Player(ref.ID)
	}
	return w.PlayerNamed(ref.Name)
}

func (h *WizardHandler) dig(c *Context) error {
	w := c.World
	room, ok := c.Room()
	if !ok {
		c.Reply("You are nowhere.")
		return nil
	}

	var dest world.RoomObject
	if ref := c.Cmd.Obj2; ref.ID != world.NoID {
		if dest, ok = w.Room(ref.ID); !ok {
			c.Reply(ref.ID.String(), "is not a room.")
			return nil
		}
	} else if dest, ok = roomRef(w, ref); !ok {
		dest = w.NewRoom(ref.Name)
		c.Reply("Created", dest, ".")
	}

	var x world.ExitObject
	if ref := c.Cmd.Obj; ref.ID != world.NoID {
		for _, e := range room.AsRoom().Exits() {
			if e.Core().ID == ref.ID {
				x = e
			}
		}
		if x == nil {
			c.Reply(ref.ID.String(), "is not an exit in this room.")
			return nil
		}
		x.AsExit().SetDestination(dest)
	} else if existing, ok := room.AsRoom().ExitNamed(ref.Name); ok {
		x = existing
		x.AsExit().SetDestination(dest)
	} else {
		nx, err := w.NewExit(ref.Name, room, dest)
		if errors.Is(err, world.ErrNoExits) {
			c.Reply("This room does not accept exits.")
			return nil
		}
		if err != nil {
			return err
		}
		x = nx
	}
	c.Reply("You dig", x, "to", dest, ".")

	if ref := c.Cmd.Back; !ref.IsZero() {
		back, err := h.digBack(c, x, room, dest, ref)
		if err != nil {
			return err
		}
		if back != nil {
			c.Reply("The way back is", back, ".")
		}
	}
	room.AsRoom().Action(world.Event{Act: world.ActDig, Actor: c.Player.ID, Exit: x.Core().ID})
	return nil
}

// digBack links x to an exit leading from dest back to room.
func (h *WizardHandler) digBack(c *Context, x world.ExitObject, room, dest world.RoomObject, ref world.Reference) (world.ExitObject, error) {
	if ref.ID != world.NoID {
		for _, e := range dest.AsRoom().Exits() {
			if e.Core().ID == ref.ID {
				x.AsExit().LinkTo(e)
				e.AsExit().SetDestination(room)
				return e, nil
			}
		}
		c.Reply(ref.ID.String(), "is not an exit in", dest, ".")
		return nil, nil
	}
	back, err := x.AsExit().Return(ref.Name)
	if errors.Is(err, world.ErrNoExits) {
		c.Reply(dest, "does not accept exits.")
		return nil, nil
	}
	return back, err
}

// cutter is a key whose code can be added to an exit.
type cutter interface {
	Cut() int64
}

func (h *WizardHandler) lock(c *Context) error {
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
	it, ok := heldOrNear(c, c.Cmd.Obj2)
	if !ok {
		c.Reply("You do not have such a key.")
		return nil
	}
	key, ok := it.(cutter)
	if !ok {
		c.Reply("That is not a key.")
		return nil
	}
	x.AsExit().AddKey(key.Cut())
	c.Reply(x, "now accepts", it, ".")
	return nil
}

func (h *WizardHandler) list(c *Context) error {
	k, ok := world.ParseKind(c.Cmd.Topic)
	if !ok {
		return usage(c, "type")
	}
	objs := c.World.Objects(k)
	if len(objs) == 0 {
		c.Reply("No", k.Catalog(), "yet.")
		return nil
	}
	lines := make([]string, len(objs))
	for i, o := range objs {
		lines[i] = fmt.Sprintf("(%s) %s", o.Core().ID, o)
	}
	c.Lines(lines, 0)
	return nil
}

func (h *WizardHandler) clone(c *Context) error {
	ref := c.Cmd.Obj
	if it, fresh, ok := h.cloneSource(c, ref); ok {
		return h.cloneItem(c, it, fresh)
	}
	if m, ok := cloneSourceOf[world.MobObject](c, ref, world.KindMob); ok {
		return h.cloneMob(c, m)
	}
	if r, ok := cloneSourceOf[world.RoomObject](c, ref, world.KindRoom); ok {
		n, err := c.World.Clone(r)
		if err != nil {
			return err
		}
		h.nameClone(c, n)
		c.Reply(n, "created.")
		return nil
	}
	c.Reply("No", ref.String(), "to clone.")
	return nil
}

// cloneSource finds an item to copy: held, in the room, anywhere, or else
// a fresh instance of the named class, which is used as it is.
func (h *WizardHandler) cloneSource(c *Context, ref world.Reference) (it world.ItemObject, fresh, ok bool) {
	if it, ok := heldOrNear(c, ref); ok {
		return it, false, true
	}
	if it, ok := cloneSourceOf[world.ItemObject](c, ref, world.KindItem); ok {
		return it, false, true
	}
	if ref.ID != world.NoID {
		return nil, false, false
	}
	cls, ok := world.LookupClass(strings.ToLower(ref.Name))
	if !ok || cls.Kind != world.KindItem {
		return nil, false, false
	}
	o, err := c.World.Create(cls.Name)
	if err != nil {
		return nil, false, false
	}
	if it, ok = o.(world.ItemObject); !ok {
		o.Destroy()
		return nil, false, false
	}
	return it, true, true
}

// cloneSourceOf finds an object of kind k anywhere in the world.
func cloneSourceOf[T world.Object](c *Context, ref world.Reference, k world.Kind) (T, bool) {
	var zero T
	if ref.ID != world.NoID {
		o, ok := c.World.Object(ref.ID)
		if !ok {
			return zero, false
		}
		t, ok := o.(T)
		return t, ok
	}
	for _, o := range c.World.Named(k, ref.Name) {
		if t, ok := o.(T); ok {
			return t, true
		}
	}
	return zero, false
}

func (h *WizardHandler) cloneItem(c *Context, src world.ItemObject, fresh bool) error {
	it := src
	if !fresh {
		o, err := c.World.Clone(src)
		if err != nil {
			return err
		}
		it = o.(world.ItemObject)
	}
	h.nameClone(c, it)
	world.Place(it, c.Player)
	c.Reply(it, "created.")
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(world.Event{Act: world.ActCloneItem, Actor: c.Player.ID, Item: it.Core().ID})
	}
	return nil
}

func (h *WizardHandler) cloneMob(c *Context, src world.MobObject) error {
	room, ok := c.Room()
	if !ok {
		c.Reply("You are nowhere.")
		return nil
	}
	o, err := c.World.Clone(src)
	if err != nil {
		return err
	}
	m := o.(world.MobObject)
	h.nameClone(c, m)
	m.AsCharacter().SetHome(room)
	m.AsCharacter().MoveTo(room)
	c.Reply(m, "created.")
	room.AsRoom().Action(world.Event{Act: world.ActCloneMob, Actor: c.Player.ID, Target: m.Core().ID})
	return nil
}

// nameClone applies the "as <name>" part of a clone.
func (h *WizardHandler) nameClone(c *Context, o world.Object) {
	if name := strings.TrimSpace(c.Cmd.Text); name != "" {
		o.Core().SetName(name)
	}
}

func (h *WizardHandler) study(c *Context) error {
	cls, ok := world.LookupClass(strings.ToLower(c.Cmd.Topic))
	if !ok {
		c.Reply("No such class.")
		return nil
	}
	c.Reply(cls.Name, "("+cls.Kind.String()+")")
	if cls.Doc != "" {
		c.Lines([]string{cls.Doc}, 4)
	}
	settings := cls.Make().Settings()
	if len(settings) == 0 {
		return nil
	}
	c.Reply("Settings:")
	lines := make([]string, len(settings))
	for i, s := range settings {
		lines[i] = s.Name + " (default " + s.Default + ")"
	}
	c.Lines(lines, 4)
	return nil
}

// target resolves the object a naming command edits: the one given, or the
// wizard's room.
func target(c *Context) (world.Object, bool) {
	if c.Cmd.Obj.IsZero() {
		room, ok := c.Room()
		return room, ok
	}
	return locate(c, c.Cmd.Obj)
}

func (h *WizardHandler) rename(c *Context) error {
	o, ok := target(c)
	if !ok {
		c.Reply("Object not found.")
		return nil
	}
	old := o.String()
	o.Core().SetName(strings.TrimSpace(c.Cmd.Text))
	c.Reply(old, "renamed to", o, ".")
	return nil
}

func (h *WizardHandler) describe(c *Context, long bool) error {
	o, ok := target(c)
	if !ok {
		c.Reply("Object not found.")
		return nil
	}
	if long {
		o.Core().SetLong(c.Cmd.Text)
		c.Reply("Long description of", o, "set.")
	} else {
		o.Core().SetShort(c.Cmd.Text)
		c.Reply("Short description of", o, "set.")
	}
	return nil
}

func (h *WizardHandler) destroy(c *Context) error {
	o, ok := locate(c, c.Cmd.Obj)
	if !ok {
		c.Reply("Object not found.")
		return nil
	}
	if o.Core().ID == c.Player.ID {
		c.Reply("You cannot destroy yourself.")
		return nil
	}
	if p, ok := o.(*world.Player); ok && p.LoggedIn {
		c.Reply("Cannot destroy", p, "while they are logged in.")
		return nil
	}
	room, inRoom := o.Room()
	desc := world.ClassName(o) + " " + o.Core().Name
	if inRoom {
		ev := world.Event{Actor: c.Player.ID, Text: o.String()}
		switch o.(type) {
		case world.ItemObject:
			ev.Act = world.ActDestroyItem
		case world.MobObject:
			ev.Act = world.ActDestroyMob
		}
		if ev.Act != "" {
			room.AsRoom().Action(ev)
		}
	}
	o.Destroy()
	c.Reply(desc, "destroyed.")
	return nil
}

func (h *WizardHandler) set(c *Context) error {
	o, ok := locate(c, c.Cmd.Obj)
	if !ok {
		c.Reply("Object not found.")
		return nil
	}
	name := strings.ToLower(c.Cmd.Var)
	if !c.Cmd.HasVal {
		v, err := world.GetSetting(o, name)
		if errors.Is(err, world.ErrNoSetting) {
			c.Reply("No such setting:", name, ".")
			return nil
		}
		if err != nil {
			return err
		}
		c.Reply(name, "=", v)
		return nil
	}
	err := world.SetSetting(o, name, c.Cmd.Val)
	switch {
	case errors.Is(err, world.ErrNoSetting):
		c.Reply("No such setting:", name, ".")
	case errors.Is(err, world.ErrInvalidSetting):
		c.Reply("Invalid value for", name, ".")
	case err != nil:
		return err
	default:
		v, _ := world.GetSetting(o, name)
		c.Reply(o, ":", name, "=", v)
	}
	return nil
}

func (h *WizardHandler) unset(c *Context) error {
	o, ok := locate(c, c.Cmd.Obj)
	if !ok {
		c.Reply("Object not found.")
		return nil
	}
	name := strings.ToLower(c.Cmd.Var)
	err := world.UnsetSetting(o, name)
	switch {
	case errors.Is(err, world.ErrNoSetting):
		c.Reply("No such setting:", name, ".")
	case err != nil:
		return err
	default:
		v, _ := world.GetSetting(o, name)
		c.Reply(o, ":", name, "reset to", v, ".")
	}
	return nil
}
