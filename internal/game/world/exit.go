package world

import (
	"fmt"
	"slices"

	"github.com/cory-johannsen/tzmud/internal/text"
)

// ExitObject is an exit or a specialized exit.
type ExitObject interface {
	Object
	AsExit() *Exit
	// Traverse decides whether c may pass. When it may not, the reason is
	// returned for the character.
	Traverse(c CharacterObject) (bool, string)
}

// Exit is a directed edge from its room to a destination room. A linked
// exit shares lock state, weight and keys with its twin.
type Exit struct {
	Base

	Origin      Ref[RoomObject]
	Destination Ref[RoomObject]
	Locked      bool
	Weight      int
	Keys        []int64
	Link        Ref[ExitObject]
}

// MakeExit returns an unregistered exit for embedding.
func MakeExit(name string) Exit {
	return Exit{Base: newBase(name)}
}

// AsExit implements ExitObject.
func (x *Exit) AsExit() *Exit { return x }

// Kind implements Object.
func (x *Exit) Kind() Kind { return KindExit }

func (x *Exit) String() string { return text.ExitName(x.Name) }

func (x *Exit) self() ExitObject {
	eo, _ := x.Self().(ExitObject)
	return eo
}

// Room returns the room the exit leads out of.
func (x *Exit) Room() (RoomObject, bool) {
	return x.Origin.Resolve(x.w)
}

// Dest returns the destination room.
func (x *Exit) Dest() (RoomObject, bool) {
	return x.Destination.Resolve(x.w)
}

// SetDestination repoints the exit. A nil room makes it broken.
func (x *Exit) SetDestination(r RoomObject) {
	x.touch()
	x.Destination = RefTo(r)
}

// Linked returns the twin exit.
func (x *Exit) Linked() (ExitObject, bool) {
	return x.Link.Resolve(x.w)
}

// LinkTo pairs x with other. The twin takes this exit's weight, lock state
// and keys.
func (x *Exit) LinkTo(other ExitObject) {
	o := other.AsExit()
	x.touch()
	o.touch()
	x.Link = RefTo(other)
	o.Link = RefTo(x.self())
	o.Weight = x.Weight
	o.Locked = x.Locked
	for _, k := range x.Keys {
		if !slices.Contains(o.Keys, k) {
			o.Keys = append(o.Keys, k)
		}
	}
	for _, k := range o.Keys {
		if !slices.Contains(x.Keys, k) {
			x.Keys = append(x.Keys, k)
		}
	}
}

// Unlink dissolves the pairing on both sides.
func (x *Exit) Unlink() {
	if twin, ok := x.Linked(); ok {
		t := twin.AsExit()
		if t.Link.ID == x.ID {
			t.touch()
			t.Link = Ref[ExitObject]{}
		}
	}
	x.touch()
	x.Link = Ref[ExitObject]{}
}

// SetLocked locks or unlocks the exit and its twin.
func (x *Exit) SetLocked(v bool) {
	x.touch()
	x.Locked = v
	if twin, ok := x.Linked(); ok && twin.AsExit().Locked != v {
		twin.AsExit().SetLocked(v)
	}
}

// SetWeight changes the strength needed to pass, on both sides.
func (x *Exit) SetWeight(v int) {
	x.touch()
	x.Weight = v
	if twin, ok := x.Linked(); ok && twin.AsExit().Weight != v {
		twin.AsExit().SetWeight(v)
	}
}

// AddKey lets keys with code lock and unlock this exit and its twin.
func (x *Exit) AddKey(code int64) {
	if !slices.Contains(x.Keys, code) {
		x.touch()
		x.Keys = append(x.Keys, code)
	}
	if twin, ok := x.Linked(); ok && !slices.Contains(twin.AsExit().Keys, code) {
		twin.AsExit().AddKey(code)
	}
}

// Accepts reports whether code is one of the exit's keys.
func (x *Exit) Accepts(code int64) bool {
	return slices.Contains(x.Keys, code)
}

// Return names the exit leading back from the destination, linking an
// existing one or creating it.
func (x *Exit) Return(name string) (ExitObject, error) {
	origin, ok := x.Room()
	if !ok {
		return nil, fmt.Errorf("exit %d: %w", x.ID, ErrNotFound)
	}
	dest, ok := x.Dest()
	if !ok {
		return nil, fmt.Errorf("exit %d: %w", x.ID, ErrBrokenExit)
	}
	var back ExitObject
	for _, candidate := range dest.AsRoom().ExitsNamed(name) {
		if candidate.AsExit().Destination.ID == origin.Core().ID {
			back = candidate
			break
		}
	}
	if back == nil {
		var err error
		back, err = x.w.NewExit(name, dest, origin)
		if err != nil {
			return nil, err
		}
	}
	x.LinkTo(back)
	return back, nil
}

// Traverse refuses broken, locked and too heavy exits.
func (x *Exit) Traverse(c CharacterObject) (bool, string) {
	if _, ok := x.Dest(); !ok {
		return false, fmt.Sprintf("Exit %s is broken....", x.self())
	}
	if x.Locked {
		return false, "The door is locked."
	}
	if x.Weight > c.AsCharacter().Stat("strength") {
		return false, "The door is too heavy."
	}
	return true, ""
}

// Look describes the exit, or where it leads when it has no descriptions.
func (x *Exit) Look(looker CharacterObject) []string {
	lines := x.Base.Look(looker)
	if len(lines) == 0 {
		if dest, ok := x.Dest(); ok {
			lines = append(lines, text.Compose("Exit", x.self(), "to", dest, "."))
		} else {
			lines = append(lines, "Broken exit.")
		}
	}
	if x.Locked {
		lines = append(lines, text.Compose("The exit", x.self(), "is locked", "."))
	}
	return lines
}

// Info adds origin, destination, lock state and the link.
func (x *Exit) Info() []string {
	lines := x.Base.Info()
	if dest, ok := x.Dest(); ok {
		lines = append(lines, fmt.Sprintf("To: %s (%d)", dest, dest.Core().ID))
	} else {
		lines = append(lines, "To: nowhere")
	}
	if twin, ok := x.Linked(); ok {
		lines = append(lines, fmt.Sprintf("Linked: %s (%d)", twin, twin.Core().ID))
	}
	if x.Locked {
		lines = append(lines, "Locked")
	}
	if x.Weight > 0 {
		lines = append(lines, fmt.Sprintf("Weight: %d", x.Weight))
	}
	return lines
}

// Settings adds the lock state and weight.
func (x *Exit) Settings() []Setting {
	return append(x.Base.Settings(),
		BoolSetting("locked", false, func() bool { return x.Locked }, func(v bool) error {
			x.SetLocked(v)
			return nil
		}),
		IntSetting("weight", 0, func() int { return x.Weight }, nonNegative("weight", x.SetWeight)),
	)
}

// Relocate moves the exit into another room.
func (x *Exit) Relocate(r RoomObject) bool {
	return r.AddExit(x.self())
}

// Destroy unlinks the twin and leaves the room.
func (x *Exit) Destroy() {
	x.Unlink()
	if origin, ok := x.Room(); ok {
		origin.AsRoom().removeExit(x.self())
	}
	x.unregister()
}
