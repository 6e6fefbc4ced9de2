package world_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// holders builds a small world with every kind of item holder.
func holders(t *rapid.T) (*world.World, []world.Container, []world.ItemObject) {
	w := world.New(world.Options{PasswordCost: bcrypt.MinCost, Rand: rand.New(rand.NewPCG(3, 4))})
	room := w.NewRoom("lobby")
	lee, err := w.NewPlayer("lee", "pw")
	if err != nil {
		t.Fatal(err)
	}
	lee.MoveTo(room)
	cat := w.NewMob("cat", room)
	bag := w.NewContainer("bag")
	box := w.NewContainer("box")
	world.Place(bag, room)
	world.Place(box, room)

	items := []world.ItemObject{bag, box}
	for _, name := range []string{"rose", "hat", "coin", "cup"} {
		it := w.NewItem(name)
		it.Wearable = true
		world.Place(it, room)
		items = append(items, it)
	}
	return w, []world.Container{room, lee, cat, bag, box}, items
}

func checkContainment(t *rapid.T, w *world.World, cs []world.Container, items []world.ItemObject) {
	for _, it := range items {
		var holdersOf []world.ID
		for _, c := range cs {
			if c.(interface{ Holds(world.Object) bool }).Holds(it) {
				holdersOf = append(holdersOf, c.Core().ID)
			}
		}
		if len(holdersOf) != 1 {
			t.Fatalf("%s held by %v", it.Core().Name, holdersOf)
		}
		if it.Core().Holder.ID != holdersOf[0] {
			t.Fatalf("%s holder is %d, listed in %d", it.Core().Name, it.Core().Holder.ID, holdersOf[0])
		}
	}
}

func TestProperty_ItemsHaveExactlyOneHolder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w, cs, items := holders(t)
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			it := rapid.SampledFrom(items).Draw(t, "item")
			dest := rapid.SampledFrom(cs).Draw(t, "dest")
			if nested, ok := it.(*world.ContainerItem); ok && (nested.ID == dest.Core().ID || nested.HasInside(dest)) {
				continue
			}
			world.Place(it, dest)
			checkContainment(t, w, cs, items)
		}
	})
}

func TestProperty_WornItemsAreHeld(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w, cs, items := holders(t)
		lee, _ := w.PlayerNamed("lee")
		ops := rapid.SliceOfN(rapid.IntRange(0, 3), 1, 40).Draw(t, "ops")
		for _, op := range ops {
			it := rapid.SampledFrom(items).Draw(t, "item")
			switch op {
			case 0:
				lee.GetItem(it)
			case 1:
				lee.DropItem(it)
			case 2:
				lee.Wear(it)
			case 3:
				dest := rapid.SampledFrom(cs).Draw(t, "dest")
				if nested, ok := it.(*world.ContainerItem); ok && (nested.ID == dest.Core().ID || nested.HasInside(dest)) {
					continue
				}
				world.Place(it, dest)
			}
			for _, id := range lee.Worn {
				if !lee.HoldsID(id) {
					t.Fatalf("wearing %d without holding it", id)
				}
			}
			if slices.ContainsFunc(lee.Worn, func(id world.ID) bool { return !w.Exists(id) }) {
				t.Fatal("wearing a destroyed item")
			}
		}
	})
}

func TestProperty_IDsAreMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := world.New(world.Options{})
		var last world.ID
		n := rapid.IntRange(1, 30).Draw(t, "n")
		for range n {
			var id world.ID
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				id = w.NewItem("thing").ID
			case 1:
				id = w.NewRoom("place").ID
			case 2:
				if err := w.Begin(); err != nil {
					t.Fatal(err)
				}
				id = w.NewItem("ghost").ID
				w.Abort()
			}
			if id <= last {
				t.Fatalf("id %d after %d", id, last)
			}
			last = id
		}
	})
}
