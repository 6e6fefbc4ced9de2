// Package rooms provides the concrete room classes and the players-only
// exit.
package rooms

import (
	"fmt"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// SmallRoom only holds so many characters. Whoever arrives when it is full
// is sent back where they came from.
type SmallRoom struct {
	world.BaseRoom

	Max int
}

func newSmallRoom() *SmallRoom {
	r := &SmallRoom{BaseRoom: world.MakeBaseRoom("small room"), Max: 1}
	r.Short = "Seems kind of crowded in here."
	return r
}

// Reactions add bouncing arrivals.
func (r *SmallRoom) Reactions() world.Reactions {
	return world.Reactions{world.ActArrive: r.nearArrive}
}

func (r *SmallRoom) nearArrive(ev *world.Event) {
	if len(r.Characters()) <= r.Max {
		return
	}
	c, ok := r.World().Character(ev.Actor)
	if !ok || !r.Present(c) {
		return
	}
	c.Message("The room is too full to enter.")
	x, ok := r.World().Exit(ev.Exit)
	if !ok {
		exits := r.Exits()
		if len(exits) == 0 {
			return
		}
		x = exits[r.World().Rand().IntN(len(exits))]
	}
	moved, reason := c.AsCharacter().Go(x)
	if p, ok := c.(*world.Player); ok {
		if moved {
			p.ShowArrival()
		} else {
			p.Message(reason)
		}
	}
}

// SetMax changes how many characters fit.
func (r *SmallRoom) SetMax(n int) {
	r.Touch()
	r.Max = n
}

// Info adds the capacity.
func (r *SmallRoom) Info() []string {
	return append(r.BaseRoom.Info(), fmt.Sprintf("Max: %d", r.Max))
}

// Settings add the capacity.
func (r *SmallRoom) Settings() []world.Setting {
	return append(r.BaseRoom.Settings(),
		world.IntSetting("max", 1, func() int { return r.Max }, func(n int) error {
			if n < 1 {
				return fmt.Errorf("%w: max must be at least 1", world.ErrInvalidSetting)
			}
			r.SetMax(n)
			return nil
		}),
	)
}

// CopyFrom gives a clone the same capacity.
func (r *SmallRoom) CopyFrom(src world.Object) {
	r.BaseRoom.CopyFrom(src)
	if s, ok := src.(*SmallRoom); ok {
		r.SetMax(s.Max)
	}
}

// Trap is a room with no way out. Exits cannot be added to it.
type Trap struct {
	world.BaseRoom
}

func newTrap() *Trap {
	r := &Trap{BaseRoom: world.MakeBaseRoom("a trap")}
	r.Short = "There's no way out...."
	return r
}

// AddExit refuses every exit.
func (r *Trap) AddExit(x world.ExitObject) bool { return false }

// Library silences speech.
type Library struct {
	world.BaseRoom
}

func newLibrary() *Library {
	r := &Library{BaseRoom: world.MakeBaseRoom("library")}
	r.Short = "Shh... no talking"
	return r
}

// AllowAction suppresses say and shout. A speaker inside is shushed; shouts
// from elsewhere simply do not carry in.
func (r *Library) AllowAction(ev *world.Event) bool {
	if ev.Act != world.ActSay && ev.Act != world.ActShout {
		return true
	}
	if ev.FromRoom == world.NoID {
		if c, ok := r.World().Character(ev.Actor); ok {
			c.Message("Shh! No talking!")
		}
	}
	return false
}

// PlayersOnly is an exit mobs cannot use.
type PlayersOnly struct {
	world.Exit
}

// Traverse turns away everything but players.
func (x *PlayersOnly) Traverse(c world.CharacterObject) (bool, string) {
	if _, ok := c.(*world.Player); !ok {
		return false, "Exit is for players only."
	}
	return x.Exit.Traverse(c)
}

func init() {
	world.RegisterClass(world.Class{Name: "small room", Kind: world.KindRoom,
		Doc:  "A room that can only hold max characters.",
		Make: func() world.Object { return newSmallRoom() }})
	world.RegisterClass(world.Class{Name: "trap", Kind: world.KindRoom,
		Doc:  "A room that has no exits.",
		Make: func() world.Object { return newTrap() }})
	world.RegisterClass(world.Class{Name: "library", Kind: world.KindRoom,
		Doc:  "Please, no talking in the library.",
		Make: func() world.Object { return newLibrary() }})
	world.RegisterClass(world.Class{Name: "zoo", Kind: world.KindRoom,
		Doc:  "Builds a locked cage for every mob class and keeps each one inhabited.",
		Make: func() world.Object { return newZoo() }})
	world.RegisterClass(world.Class{Name: "players only", Kind: world.KindExit,
		Doc: "An exit that only players can pass through. No mobs allowed!",
		Make: func() world.Object {
			return &PlayersOnly{Exit: world.MakeExit("exit")}
		}})
	registerTraps()
}
