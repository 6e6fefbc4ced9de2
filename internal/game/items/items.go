// Package items provides the concrete item classes: flowers, containers,
// rings, keys, coins, a camera and a few curiosities.
//
// Every class registers itself with the world class registry at init time,
// so importing the package is enough to make the classes constructible by
// name and decodable from storage.
package items

import (
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// simple describes a class that needs no behaviour of its own.
type simple struct {
	class    string
	name     string
	short    string
	long     string
	aka      []string
	wearable bool
	holds    bool
	doc      string
}

var simples = []simple{
	{class: "rose", name: "rose", short: "A red rose.", aka: []string{"flower"}, doc: "A simple flower."},
	{class: "cup", name: "cup", short: "A small red plastic cup.", holds: true, doc: "A cup that holds small items."},
	{class: "bag", name: "bag", short: "A surprisingly spacious sack.", holds: true, doc: "A bag that holds other items."},
	{class: "hat", name: "hat", short: "An old top hat.", wearable: true, doc: "Headgear."},
	{class: "boots", name: "boots", short: "A pair of scuffed leather boots.", aka: []string{"boot"}, wearable: true, doc: "Footwear."},
	{class: "photograph", name: "photo", short: "A glossy piece of paper with a realistic picture on it.",
		long: "It's blank.", aka: []string{"photo", "photograph", "picture"}, doc: "A snapshot of something."},
}

func (s simple) make() world.Object {
	b := world.MakeItem(s.name)
	b.Short, b.Long, b.Wearable = s.short, s.long, s.wearable
	b.Aka = append([]string(nil), s.aka...)
	if s.holds {
		return &world.ContainerItem{Item: b}
	}
	return &b
}

// GetTrap refuses to be picked up.
type GetTrap struct {
	world.Item
}

// OnGet springs the trap.
func (g *GetTrap) OnGet(c world.CharacterObject) bool {
	c.Message("Gotcha!")
	return false
}

// Mirror shows whoever looks at it their own reflection.
type Mirror struct {
	world.Item
}

// Reactions shows the looker what they look like.
func (m *Mirror) Reactions() world.Reactions {
	return world.Reactions{world.ActLook: m.nearLook}
}

func (m *Mirror) nearLook(ev *world.Event) {
	if ev.Target != m.ID {
		return
	}
	looker, ok := m.World().Character(ev.Actor)
	if !ok {
		return
	}
	looker.Message("In the mirror you see ...")
	looker.Lines(looker.Look(looker), 0)
}

func init() {
	for _, s := range simples {
		world.RegisterClass(world.Class{Name: s.class, Kind: world.KindItem, Doc: s.doc, Make: s.make})
	}
	world.RegisterClass(world.Class{Name: "gettrap", Kind: world.KindItem, Doc: "Getting this item springs the trap.",
		Make: func() world.Object {
			g := &GetTrap{Item: world.MakeItem("gettrap")}
			g.Short = "Hey! That is an interesting looking thing...."
			return g
		}})
	world.RegisterClass(world.Class{Name: "mirror", Kind: world.KindItem, Doc: "Looking at it shows yourself.",
		Make: func() world.Object {
			m := &Mirror{Item: world.MakeItem("mirror")}
			m.Short = "A round silver mirror."
			return m
		}})
	world.RegisterClass(world.Class{Name: "gold ring", Kind: world.KindItem, Doc: "Makes the wearer a wizard.",
		Make: func() world.Object { return newWizRing() }})
	world.RegisterClass(world.Class{Name: "silver ring", Kind: world.KindItem, Doc: "Makes the wearer invisible.",
		Make: func() world.Object { return newInvisibilityRing() }})
	world.RegisterClass(world.Class{Name: "key", Kind: world.KindItem, Doc: "Locks and unlocks the doors it was made for.",
		Make: func() world.Object { return newKey() }})
	world.RegisterClass(world.Class{Name: "skeleton key", Kind: world.KindItem, Doc: "Locks and unlocks any door.",
		Make: func() world.Object { return newSkeletonKey() }})
	world.RegisterClass(world.Class{Name: "coins", Kind: world.KindItem, Doc: "One or more coins. They stack.",
		Make: func() world.Object { return newCoins(1) }})
	world.RegisterClass(world.Class{Name: "camera", Kind: world.KindItem, Doc: "Takes photographs.",
		Make: func() world.Object {
			c := &Camera{Item: world.MakeItem("camera")}
			c.Short = "A small black box with a silver button on top."
			return c
		}})
}
