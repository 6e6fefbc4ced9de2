package rooms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// DefaultTimer is how long a timed trap waits before springing.
const DefaultTimer = 5 * time.Second

// Activation says when a spring trap goes off. Each set field enables one
// policy and setting several combines them: the trap springs when any
// enabled policy fires.
type Activation struct {
	// Immediate springs as soon as someone arrives.
	Immediate bool
	// Timer springs that long after the first arrival. Arrivals while it
	// counts down do not restart it.
	Timer time.Duration
	// Trigger springs when the word is said or shouted inside.
	Trigger string
}

// trigger is one activation policy.
type trigger interface {
	arrived(t *SpringTrap)
	heard(t *SpringTrap, said string)
}

type immediate struct{}

func (immediate) arrived(t *SpringTrap)            { t.Spring() }
func (immediate) heard(t *SpringTrap, said string) {}

type timed time.Duration

func (d timed) arrived(t *SpringTrap)            { t.Arm(time.Duration(d)) }
func (d timed) heard(t *SpringTrap, said string) {}

type voice string

func (v voice) arrived(t *SpringTrap) {}

func (v voice) heard(t *SpringTrap, said string) {
	for _, w := range strings.Fields(strings.ToLower(said)) {
		if strings.Trim(w, `.,!?;:"'`) == string(v) {
			t.Spring()
			return
		}
	}
}

func (a Activation) triggers() []trigger {
	var out []trigger
	if a.Immediate {
		out = append(out, immediate{})
	}
	if a.Timer > 0 {
		out = append(out, timed(a.Timer))
	}
	if a.Trigger != "" {
		out = append(out, voice(a.Trigger))
	}
	return out
}

func (a Activation) String() string {
	var parts []string
	if a.Immediate {
		parts = append(parts, "immediate")
	}
	if a.Timer > 0 {
		parts = append(parts, "timed "+a.Timer.String())
	}
	if a.Trigger != "" {
		parts = append(parts, fmt.Sprintf("voice %q", a.Trigger))
	}
	if len(parts) == 0 {
		return "never"
	}
	return strings.Join(parts, " or ")
}

// Effect is what a spring trap does to everyone inside.
type Effect struct {
	// Message startles every victim.
	Message string
	// Teleport sends each victim to a random room among Targets, or among
	// all other rooms when there are none.
	Teleport bool
	Targets  []world.ID
}

func (e Effect) String() string {
	if !e.Teleport {
		return fmt.Sprintf("message %q", e.Message)
	}
	return fmt.Sprintf("message %q, teleport to %d target(s)", e.Message, len(e.Targets))
}

func (e Effect) apply(t *SpringTrap, victims []world.CharacterObject) {
	for _, c := range victims {
		if e.Message != "" {
			c.Message(e.Message)
		}
	}
	if !e.Teleport {
		return
	}
	w := t.World()
	var rooms []world.RoomObject
	for _, id := range e.Targets {
		if r, ok := w.Room(id); ok {
			rooms = append(rooms, r)
		}
	}
	if len(e.Targets) == 0 {
		for _, r := range w.Rooms() {
			if r.Core().ID != t.ID {
				rooms = append(rooms, r)
			}
		}
	}
	if len(rooms) == 0 {
		return
	}
	for _, c := range victims {
		c.Message("Click.")
		dest := rooms[w.Rand().IntN(len(rooms))]
		c.AsCharacter().MoveTo(dest)
		dest.AsRoom().Action(world.Event{Act: world.ActTeleportCharacterIn, Actor: t.ID, Character: c.Core().ID})
		if p, ok := c.(*world.Player); ok {
			p.ShowArrival()
		}
	}
}

// SpringTrap is a room that applies its Effect to everyone inside when its
// Activation fires.
type SpringTrap struct {
	world.BaseRoom

	Activation Activation
	Effect     Effect
	// Springing is set while a timer counts down.
	Springing bool
}

// NewSpringTrap returns an unregistered trap.
func NewSpringTrap(name string, a Activation, e Effect) *SpringTrap {
	return &SpringTrap{BaseRoom: world.MakeBaseRoom(name), Activation: a, Effect: e}
}

// Reactions hand arrivals and speech to the activation policies.
func (t *SpringTrap) Reactions() world.Reactions {
	heard := func(ev *world.Event) {
		if ev.FromRoom != world.NoID {
			return
		}
		for _, tr := range t.Activation.triggers() {
			tr.heard(t, ev.Text)
		}
	}
	return world.Reactions{
		world.ActArrive: func(ev *world.Event) {
			c, ok := t.World().Character(ev.Actor)
			if !ok || !t.Present(c) {
				return
			}
			for _, tr := range t.Activation.triggers() {
				tr.arrived(t)
			}
		},
		world.ActSay:   heard,
		world.ActShout: heard,
	}
}

// Arm springs the trap after d unless it is already counting down.
func (t *SpringTrap) Arm(d time.Duration) {
	if t.Springing {
		return
	}
	t.Touch()
	t.Springing = true
	w, id := t.World(), t.ID
	w.Later(d, "spring trap", func() error {
		if r, ok := w.Room(id); ok {
			if st, ok := r.(*SpringTrap); ok {
				st.Spring()
			}
		}
		return nil
	}, id)
}

// Spring applies the effect to every character inside.
func (t *SpringTrap) Spring() {
	if t.Springing {
		t.Touch()
		t.Springing = false
	}
	if victims := t.Characters(); len(victims) > 0 {
		t.Effect.apply(t, victims)
	}
}

// AddTarget adds a teleport destination.
func (t *SpringTrap) AddTarget(r world.RoomObject) {
	t.Touch()
	t.Effect.Targets = append(t.Effect.Targets, r.Core().ID)
}

// Info adds the policies.
func (t *SpringTrap) Info() []string {
	return append(t.BaseRoom.Info(),
		"Activation: "+t.Activation.String(),
		"Effect: "+t.Effect.String(),
	)
}

// defaults returns the trap's class prototype.
func (t *SpringTrap) defaults() *SpringTrap {
	if c, ok := world.ClassOf(t); ok {
		if proto, ok := c.Make().(*SpringTrap); ok {
			return proto
		}
	}
	return NewSpringTrap("", Activation{}, Effect{})
}

// Settings add the policy parameters: immediate, timer (0 disables),
// trigger (empty disables), message, teleport and targets.
func (t *SpringTrap) Settings() []world.Setting {
	def := t.defaults()
	return append(t.BaseRoom.Settings(),
		world.BoolSetting("immediate", def.Activation.Immediate, func() bool { return t.Activation.Immediate }, func(v bool) error {
			t.Touch()
			t.Activation.Immediate = v
			return nil
		}),
		world.DurationSetting("timer", def.Activation.Timer, func() time.Duration { return t.Activation.Timer }, func(d time.Duration) error {
			if d < 0 {
				return fmt.Errorf("%w: timer must not be negative", world.ErrInvalidSetting)
			}
			t.Touch()
			t.Activation.Timer = d
			return nil
		}),
		world.StringSetting("trigger", def.Activation.Trigger, func() string { return t.Activation.Trigger }, func(v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if strings.ContainsAny(v, " \t") {
				return fmt.Errorf("%w: trigger must be one word", world.ErrInvalidSetting)
			}
			t.Touch()
			t.Activation.Trigger = v
			return nil
		}),
		world.StringSetting("message", def.Effect.Message, func() string { return t.Effect.Message }, func(v string) error {
			t.Touch()
			t.Effect.Message = v
			return nil
		}),
		world.BoolSetting("teleport", def.Effect.Teleport, func() bool { return t.Effect.Teleport }, func(v bool) error {
			t.Touch()
			t.Effect.Teleport = v
			return nil
		}),
		world.StringSetting("targets", "", t.targetList, t.setTargets),
	)
}

func (t *SpringTrap) targetList() string {
	ids := make([]string, len(t.Effect.Targets))
	for i, id := range t.Effect.Targets {
		ids[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(ids, ",")
}

// setTargets accepts room ids (with or without "#") or room names,
// separated by commas.
func (t *SpringTrap) setTargets(v string) error {
	var ids []world.ID
	for _, ref := range strings.Split(v, ",") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		r, ok := targetRoom(t.World(), ref)
		if !ok {
			return fmt.Errorf("%w: no room %q", world.ErrInvalidSetting, ref)
		}
		ids = append(ids, r.Core().ID)
	}
	t.Touch()
	t.Effect.Targets = ids
	return nil
}

func targetRoom(w *world.World, ref string) (world.RoomObject, bool) {
	if n, err := strconv.ParseInt(strings.TrimPrefix(ref, "#"), 10, 64); err == nil {
		return w.Room(world.ID(n))
	}
	return w.RoomNamed(ref)
}

// CopyFrom copies the policies.
func (t *SpringTrap) CopyFrom(src world.Object) {
	t.BaseRoom.CopyFrom(src)
	if s, ok := src.(*SpringTrap); ok {
		t.Touch()
		t.Activation = s.Activation
		t.Effect = s.Effect
		t.Effect.Targets = append([]world.ID(nil), s.Effect.Targets...)
	}
}

var trapClasses = []struct {
	class, name, short, doc string
	activation              Activation
	effect                  Effect
}{
	{"timed trap", "timed trap", "Is that a ticking sound you hear?",
		"Waits timer seconds after someone arrives, then springs.",
		Activation{Timer: DefaultTimer}, Effect{Message: "Gotcha!"}},
	{"tele trap", "room", "",
		"A timed trap that teleports everyone inside to one of its targets, or anywhere when it has none.",
		Activation{Timer: DefaultTimer}, Effect{Message: "Gotcha!", Teleport: true}},
	{"voice trap", "quiet room", "Best keep your voice down.",
		"Springs when someone says its trigger word.",
		Activation{Trigger: "xyzzy"}, Effect{Message: "Gotcha!"}},
}

func registerTraps() {
	for _, tc := range trapClasses {
		world.RegisterClass(world.Class{Name: tc.class, Kind: world.KindRoom, Doc: tc.doc,
			Make: func() world.Object {
				t := NewSpringTrap(tc.name, tc.activation, tc.effect)
				t.Short = tc.short
				return t
			}})
	}
}
