package world

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/text"
)

// RoomObject is a room or a specialized room.
type RoomObject interface {
	Container
	AsRoom() *BaseRoom
	// AddExit attaches x as an outgoing exit. Rooms that refuse exits
	// return false.
	AddExit(x ExitObject) bool
}

// BaseRoom is a node of the world graph. It holds items, the characters present
// and its outgoing exits.
type BaseRoom struct {
	Base
	Contents

	ExitIDs   []ID
	PlayerIDs []ID
	MobIDs    []ID
	// Period is the interval of the room's maintenance tick. Zero disables
	// it.
	Period time.Duration
}

// MakeBaseRoom returns an unregistered room for embedding.
func MakeBaseRoom(name string) BaseRoom {
	return BaseRoom{Base: newBase(name)}
}

// AsRoom implements RoomObject.
func (r *BaseRoom) AsRoom() *BaseRoom { return r }

// Kind implements Object.
func (r *BaseRoom) Kind() Kind { return KindRoom }

func (r *BaseRoom) String() string { return text.RoomName(r.Name) }

func (r *BaseRoom) self() RoomObject {
	ro, _ := r.Self().(RoomObject)
	return ro
}

// Action raises ev in the room. Propagation is deferred; see World.Action.
func (r *BaseRoom) Action(ev Event) {
	r.w.Action(r.self(), ev)
}

// Exits returns the outgoing exits.
func (r *BaseRoom) Exits() []ExitObject {
	out := make([]ExitObject, 0, len(r.ExitIDs))
	for _, id := range r.ExitIDs {
		if x, ok := r.w.Exit(id); ok {
			out = append(out, x)
		}
	}
	return out
}

// Players returns the players present.
func (r *BaseRoom) Players() []*Player {
	out := make([]*Player, 0, len(r.PlayerIDs))
	for _, id := range r.PlayerIDs {
		if p, ok := r.w.Player(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Mobs returns the mobs present.
func (r *BaseRoom) Mobs() []MobObject {
	out := make([]MobObject, 0, len(r.MobIDs))
	for _, id := range r.MobIDs {
		if m, ok := r.w.Mob(id); ok {
			out = append(out, m)
		}
	}
	return out
}

// Characters returns the players then the mobs present.
func (r *BaseRoom) Characters() []CharacterObject {
	var out []CharacterObject
	for _, p := range r.Players() {
		out = append(out, p)
	}
	for _, m := range r.Mobs() {
		out = append(out, m)
	}
	return out
}

// Present reports whether c is in the room.
func (r *BaseRoom) Present(c CharacterObject) bool {
	if c == nil {
		return false
	}
	id := c.Core().ID
	return slices.Contains(r.PlayerIDs, id) || slices.Contains(r.MobIDs, id)
}

func (r *BaseRoom) addCharacter(c CharacterObject) {
	id := c.Core().ID
	r.touch()
	switch c.Kind() {
	case KindPlayer:
		if !slices.Contains(r.PlayerIDs, id) {
			r.PlayerIDs = append(r.PlayerIDs, id)
		}
	default:
		if !slices.Contains(r.MobIDs, id) {
			r.MobIDs = append(r.MobIDs, id)
		}
	}
}

func (r *BaseRoom) removeCharacter(c CharacterObject) {
	r.removeCharacterID(c.Core().ID)
}

func (r *BaseRoom) removeCharacterID(id ID) {
	if !slices.Contains(r.PlayerIDs, id) && !slices.Contains(r.MobIDs, id) {
		return
	}
	r.touch()
	r.PlayerIDs = slices.DeleteFunc(r.PlayerIDs, func(x ID) bool { return x == id })
	r.MobIDs = slices.DeleteFunc(r.MobIDs, func(x ID) bool { return x == id })
}

// AddExit attaches x, detaching it from any previous room.
func (r *BaseRoom) AddExit(x ExitObject) bool {
	e := x.AsExit()
	if old, ok := e.Room(); ok && old.Core().ID != r.ID {
		old.AsRoom().removeExit(x)
	}
	if !slices.Contains(r.ExitIDs, e.ID) {
		r.touch()
		r.ExitIDs = append(r.ExitIDs, e.ID)
	}
	e.touch()
	e.Origin = RefTo(r.self())
	return true
}

func (r *BaseRoom) removeExit(x ExitObject) {
	id := x.Core().ID
	if !slices.Contains(r.ExitIDs, id) {
		return
	}
	r.touch()
	r.ExitIDs = slices.DeleteFunc(r.ExitIDs, func(x ID) bool { return x == id })
}

// ExitsNamed returns exits whose primary name matches, else those with a
// matching alias.
func (r *BaseRoom) ExitsNamed(name string) []ExitObject {
	exits := r.Exits()
	var out []ExitObject
	for _, x := range exits {
		if x.Core().Named(name) {
			out = append(out, x)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, x := range exits {
		if x.Core().Aliased(name) {
			out = append(out, x)
		}
	}
	return out
}

// ExitNamed returns the first exit matching name.
func (r *BaseRoom) ExitNamed(name string) (ExitObject, bool) {
	xs := r.ExitsNamed(name)
	if len(xs) == 0 {
		return nil, false
	}
	return xs[0], true
}

// ExitTo returns the first exit leading to dest.
func (r *BaseRoom) ExitTo(dest RoomObject) (ExitObject, bool) {
	if dest == nil {
		return nil, false
	}
	for _, x := range r.Exits() {
		if x.AsExit().Destination.ID == dest.Core().ID {
			return x, true
		}
	}
	return nil, false
}

// PlayerNamed returns the present player with the given name or alias.
func (r *BaseRoom) PlayerNamed(name string) (*Player, bool) {
	players := r.Players()
	for _, p := range players {
		if p.Named(name) {
			return p, true
		}
	}
	for _, p := range players {
		if p.Aliased(name) {
			return p, true
		}
	}
	return nil, false
}

// MobNamed returns the present mob with the given name or alias.
func (r *BaseRoom) MobNamed(name string) (MobObject, bool) {
	mobs := r.Mobs()
	for _, m := range mobs {
		if m.Core().Named(name) {
			return m, true
		}
	}
	for _, m := range mobs {
		if m.Core().Aliased(name) {
			return m, true
		}
	}
	return nil, false
}

// VisibleExits returns the exits looker can see.
func (r *BaseRoom) VisibleExits(looker CharacterObject) []ExitObject {
	var out []ExitObject
	for _, x := range r.Exits() {
		if looker == nil || looker.AsCharacter().CanSee(x) {
			out = append(out, x)
		}
	}
	return out
}

// Look lists descriptions, exits, items and the other characters present.
func (r *BaseRoom) Look(looker CharacterObject) []string {
	lines := r.Base.Look(looker)

	if exits := r.VisibleExits(looker); len(exits) > 0 {
		names := make([]string, len(exits))
		for i, x := range exits {
			names[i] = x.String()
		}
		lines = append(lines, "", "Exits:", "    "+strings.Join(names, ", "))
	}

	if items := r.visibleItems(looker); len(items) > 0 {
		header := "You see something here:"
		if len(items) > 1 {
			header = "You see some items here:"
		}
		lines = append(lines, "", header)
		for _, it := range items {
			lines = append(lines, "    "+it.String())
		}
	}

	var present []string
	for _, c := range r.Characters() {
		if looker != nil && (c.Core().ID == looker.Core().ID || !looker.AsCharacter().CanSee(c)) {
			continue
		}
		present = append(present, text.Compose(c, "is here", "."))
	}
	if len(present) > 0 {
		lines = append(lines, "")
		lines = append(lines, present...)
	}
	return lines
}

// Info adds exits, items and occupants.
func (r *BaseRoom) Info() []string {
	lines := r.Base.Info()
	for _, x := range r.Exits() {
		dest := "nowhere"
		if d, ok := x.AsExit().Destination.Resolve(r.w); ok {
			dest = fmt.Sprintf("%s (%d)", d, d.Core().ID)
		}
		lines = append(lines, fmt.Sprintf("Exit: %s (%d) to %s", x, x.Core().ID, dest))
	}
	for _, it := range r.Items() {
		lines = append(lines, fmt.Sprintf("Item: %s (%d)", it, it.Core().ID))
	}
	for _, c := range r.Characters() {
		lines = append(lines, fmt.Sprintf("%s: %s (%d)", capitalize(c.Kind().String()), c, c.Core().ID))
	}
	if r.Period > 0 {
		lines = append(lines, fmt.Sprintf("Period: %s", r.Period))
	}
	return lines
}

// Settings adds the maintenance period.
func (r *BaseRoom) Settings() []Setting {
	return append(r.Base.Settings(),
		DurationSetting("period", 0, func() time.Duration { return r.Period }, func(d time.Duration) error {
			if d < 0 {
				return fmt.Errorf("%w: period must not be negative", ErrInvalidSetting)
			}
			r.SetPeriod(d)
			return nil
		}),
	)
}

// SetPeriod changes the maintenance interval.
func (r *BaseRoom) SetPeriod(d time.Duration) {
	r.touch()
	r.Period = d
}

// TickPeriod implements Ticker.
func (r *BaseRoom) TickPeriod() time.Duration { return r.Period }

// Tick runs the room's maintenance. Plain rooms have none.
func (r *BaseRoom) Tick() error { return nil }

// CopyFrom gives a cloned room exits to the same destinations.
func (r *BaseRoom) CopyFrom(src Object) {
	s, ok := src.(RoomObject)
	if !ok {
		return
	}
	r.SetPeriod(s.AsRoom().Period)
	for _, x := range s.AsRoom().Exits() {
		dest, _ := x.AsExit().Destination.Resolve(r.w)
		if _, err := r.w.NewExit(x.Core().Name, r.self(), dest); err != nil {
			r.w.log.Warn("copying exit", zap.Int64("exit", int64(x.Core().ID)), zap.Error(err))
		}
	}
}

// Destroy destroys the exits and items and sends everyone present home.
// Characters whose home is this room go to the world home, or nowhere if
// that is this room too.
func (r *BaseRoom) Destroy() {
	for _, x := range r.Exits() {
		x.Destroy()
	}
	for _, c := range r.Characters() {
		var dest RoomObject
		if h, ok := c.AsCharacter().HomeRoom(); ok && h.Core().ID != r.ID {
			dest = h
		} else if h, ok := r.w.Room(r.w.HomeID()); ok && h.Core().ID != r.ID {
			dest = h
		}
		c.AsCharacter().MoveTo(dest)
	}
	r.destroyItems()
	r.unregister()
}
