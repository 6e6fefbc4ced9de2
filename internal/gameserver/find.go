package gameserver

import (
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// visible returns every match of ref around the player that the player can
// perceive, in resolution order.
func visible(c *Context, ref world.Reference) []world.Object {
	room, _ := c.Room()
	var out []world.Object
	for _, o := range world.FindAll(ref, room, c.Player) {
		if c.Player.CanSee(o) {
			out = append(out, o)
		}
	}
	if len(out) == 0 && ref.ID == world.NoID {
		if bare, ok := world.StripArticle(ref.Name); ok {
			return visible(c, world.Reference{Name: bare})
		}
	}
	return out
}

// findVisible returns the first perceivable match of ref.
func findVisible(c *Context, ref world.Reference) (world.Object, bool) {
	found := visible(c, ref)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// itemIn resolves ref among the direct items of holder that the player can
// see.
func itemIn(c *Context, holder world.Container, ref world.Reference) (world.ItemObject, bool) {
	if holder == nil || ref.IsZero() {
		return nil, false
	}
	contents := world.ContentsOf(holder)
	if ref.ID != world.NoID {
		if !contents.HoldsID(ref.ID) {
			return nil, false
		}
		it, ok := c.World.Item(ref.ID)
		if !ok || !c.Player.CanSee(it) {
			return nil, false
		}
		return it, true
	}
	for _, it := range contents.ItemsNamed(ref.Name) {
		if c.Player.CanSee(it) {
			return it, true
		}
	}
	return nil, false
}

// heldOrNear resolves an item the player holds, then one lying in the room.
func heldOrNear(c *Context, ref world.Reference) (world.ItemObject, bool) {
	if it, ok := itemIn(c, c.Player, ref); ok {
		return it, true
	}
	if room, ok := c.Room(); ok {
		return itemIn(c, room, ref)
	}
	return nil, false
}

// visibleItems lists the direct items of holder the player can see.
func visibleItems(c *Context, holder world.Container) []world.ItemObject {
	var out []world.ItemObject
	for _, it := range world.ContentsOf(holder).Items() {
		if c.Player.CanSee(it) {
			out = append(out, it)
		}
	}
	return out
}

// exitIn resolves ref among the room's exits the player can see.
func exitIn(c *Context, room world.RoomObject, ref world.Reference) (world.ExitObject, bool) {
	r := room.AsRoom()
	if ref.ID != world.NoID {
		for _, x := range r.VisibleExits(c.Player) {
			if x.Core().ID == ref.ID {
				return x, true
			}
		}
		return nil, false
	}
	for _, x := range r.ExitsNamed(ref.Name) {
		if c.Player.CanSee(x) {
			return x, true
		}
	}
	return nil, false
}

// locate resolves ref for a wizard: first around the wizard, then anywhere
// in the world by id or by name.
func locate(c *Context, ref world.Reference) (world.Object, bool) {
	if ref.IsZero() {
		return nil, false
	}
	if o, ok := findVisible(c, ref); ok {
		return o, true
	}
	w := c.World
	if ref.ID != world.NoID {
		return w.Object(ref.ID)
	}
	if p, ok := w.PlayerNamed(ref.Name); ok {
		return p, true
	}
	for _, k := range []world.Kind{world.KindRoom, world.KindItem, world.KindMob, world.KindExit} {
		if found := w.Named(k, ref.Name); len(found) > 0 {
			return found[0], true
		}
	}
	return nil, false
}

// roomRef resolves a room by id or by name.
func roomRef(w *world.World, ref world.Reference) (world.RoomObject, bool) {
	if ref.ID != world.NoID {
		return w.Room(ref.ID)
	}
	if r, ok := w.RoomNamed(ref.Name); ok {
		return r, true
	}
	if bare, ok := world.StripArticle(ref.Name); ok {
		return w.RoomNamed(bare)
	}
	return nil, false
}
