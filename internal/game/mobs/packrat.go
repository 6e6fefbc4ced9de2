package mobs

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// PackRat searches for items, digs a nest the first time it finds one and
// carries everything it finds back home.
//
// Path is the route from home to where the rat is now, home first. While
// Searching the rat wanders at random; otherwise it retraces Path.
type PackRat struct {
	world.Mob

	Path      []world.ID
	Searching bool
	Dug       bool
}

func newPackRat() *PackRat {
	r := &PackRat{Mob: world.MakeMob("packrat"), Searching: true}
	r.Short = "A large scruffy rat. Is it carrying something?"
	r.Aka = []string{"rat"}
	r.Period = 5 * time.Second
	return r
}

// Behaviors makes the rat move on most ticks.
func (r *PackRat) Behaviors() []world.Behavior {
	bs := withWeight(r.Mob.Behaviors(), "move", 100)
	for i := range bs {
		if bs[i].Name == "move" {
			bs[i].Run = r.ActMove
		}
	}
	return bs
}

// Reactions add grabbing dropped items.
func (r *PackRat) Reactions() world.Reactions {
	return r.Mob.Reactions().With(world.Reactions{world.ActDrop: r.nearDrop})
}

func (r *PackRat) atHome(room world.RoomObject) bool {
	home, ok := r.HomeRoom()
	return ok && room != nil && home.Core().ID == room.Core().ID
}

func (r *PackRat) nearDrop(ev *world.Event) {
	if !r.Awake || !r.Searching || len(r.Items()) > 0 {
		return
	}
	room, ok := r.Room()
	if !ok || r.atHome(room) {
		return
	}
	item, ok := r.World().Item(ev.Item)
	if !ok || !room.AsRoom().Holds(item) {
		return
	}
	if r.GetItem(item) {
		r.found(room)
	}
}

// ActMove searches at random or heads home along the remembered path.
func (r *PackRat) ActMove() error {
	room, ok := r.Room()
	if !ok {
		return nil
	}
	if len(r.Path) == 0 {
		r.Touch()
		r.Path = []world.ID{room.Core().ID}
	}
	x := r.chooseExit(room)
	if x == nil {
		return nil
	}
	if moved, _ := r.Go(x); !moved {
		return nil
	}
	dest, ok := r.Room()
	if !ok {
		return nil
	}
	r.record(dest)

	switch {
	case r.Searching && !r.atHome(dest) && len(r.Items()) == 0:
		r.search(dest)
	case !r.Searching && r.atHome(dest):
		r.stash()
	}
	return nil
}

func (r *PackRat) chooseExit(room world.RoomObject) world.ExitObject {
	var open []world.ExitObject
	for _, x := range room.AsRoom().Exits() {
		if !x.AsExit().Locked {
			open = append(open, x)
		}
	}
	if len(open) == 0 {
		return nil
	}
	if !r.Searching && len(r.Path) >= 2 {
		back := r.Path[len(r.Path)-2]
		for _, x := range open {
			if x.AsExit().Destination.ID == back {
				return x
			}
		}
	}
	return open[r.World().Rand().IntN(len(open))]
}

// record extends the path, or cuts it back when the rat returns to a room
// already on it.
func (r *PackRat) record(room world.RoomObject) {
	r.Touch()
	id := room.Core().ID
	if i := slices.Index(r.Path, id); i >= 0 {
		r.Path = r.Path[:i+1]
		return
	}
	r.Path = append(r.Path, id)
}

func (r *PackRat) search(room world.RoomObject) {
	for _, it := range room.AsRoom().Items() {
		if !r.CanSee(it) || !it.Core().Gettable {
			continue
		}
		if r.GetItem(it) {
			r.found(room)
			return
		}
	}
}

func (r *PackRat) found(room world.RoomObject) {
	r.Touch()
	r.Searching = false
	if !r.Dug {
		r.digHome(room)
	}
}

func (r *PackRat) stash() {
	for _, it := range r.Items() {
		r.DropItem(it)
	}
	r.Touch()
	r.Searching = true
}

// digHome makes a nest next to room and moves the rat's home there.
func (r *PackRat) digHome(room world.RoomObject) {
	w := r.World()
	nest := w.NewRoom("rat nest")
	nest.SetShort("The rat's nest.")
	hole, err := w.NewExit("hole", room, nest)
	if err != nil {
		w.Logger().Debug("rat cannot dig here", zap.Int64("room", int64(room.Core().ID)), zap.Error(err))
		nest.Destroy()
		return
	}
	hole.SetShort("A roughly dug hole.")
	if _, err := hole.Return("exit"); err != nil {
		w.Logger().Warn("digging rat nest exit", zap.Error(err))
	}
	r.SetHome(nest)
	r.Touch()
	r.Path = []world.ID{nest.ID, room.Core().ID}
	r.Dug = true
	room.AsRoom().Action(world.Event{Act: world.ActDig, Actor: r.ID, Exit: hole.ID})
}
