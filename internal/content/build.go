package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/tzmud/internal/game/world"

	// Seeds name classes from every gameplay package.
	_ "github.com/cory-johannsen/tzmud/internal/game/items"
	_ "github.com/cory-johannsen/tzmud/internal/game/mobs"
	_ "github.com/cory-johannsen/tzmud/internal/game/rooms"
)

// Default classes per kind.
const (
	defaultRoom = "room"
	defaultExit = "exit"
	defaultItem = "item"
	defaultMob  = "mob"
)

type cutter interface {
	Cut() int64
}

type builder struct {
	w     *world.World
	rooms map[string]world.RoomObject
	keys  map[string]cutter
	errs  []error
}

func (b *builder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

// Build creates the seed's objects in w and returns the home room. Objects
// are left uncommitted. Every problem found is reported; an error means the
// world holds a partial seed and the caller should abort.
//
// Precondition: w is empty, so the first seeded room takes w's home id.
// Postcondition: the home room exists at w.HomeID() when err is nil.
func Build(w *world.World, s Seed) (world.RoomObject, error) {
	b := &builder{w: w, rooms: map[string]world.RoomObject{}, keys: map[string]cutter{}}

	var home world.RoomObject
	for i, rs := range s.Rooms {
		r, ok := b.room(rs)
		if ok && i == 0 {
			home = r
		}
	}
	for _, rs := range s.Rooms {
		r, ok := b.rooms[strings.ToLower(rs.Name)]
		if !ok {
			continue
		}
		for _, is := range rs.Items {
			b.item(is, r)
		}
		for _, ms := range rs.Mobs {
			b.mob(ms, r)
		}
	}
	for _, rs := range s.Rooms {
		r, ok := b.rooms[strings.ToLower(rs.Name)]
		if !ok {
			continue
		}
		for _, xs := range rs.Exits {
			b.exit(xs, r)
		}
	}

	if home == nil {
		b.fail("seed has no home room")
	} else if home.Core().ID != w.HomeID() {
		b.fail("home room %s is %s, configured home is %s", home.Core().Name, home.Core().ID, w.HomeID())
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	return home, nil
}

// create makes an instance of class, or def, and checks its kind.
func (b *builder) create(d Describe, def string, kind world.Kind) (world.Object, bool) {
	class := d.Class
	if class == "" {
		class = def
	}
	c, ok := world.LookupClass(class)
	if !ok {
		b.fail("%s %q: no such class %q", kind, d.Name, class)
		return nil, false
	}
	if c.Kind != kind {
		b.fail("%s %q: class %q makes a %s", kind, d.Name, class, c.Kind)
		return nil, false
	}
	o, err := b.w.Create(class)
	if err != nil {
		b.fail("%s %q: %w", kind, d.Name, err)
		return nil, false
	}
	return o, true
}

// describe applies names, descriptions and settings.
func (b *builder) describe(o world.Object, d Describe) {
	core := o.Core()
	if d.Name != "" {
		core.SetName(d.Name)
	}
	if d.Short != "" {
		core.SetShort(d.Short)
	}
	if d.Long != "" {
		core.SetLong(d.Long)
	}
	core.AddAka(d.Aka...)
	for name, value := range d.Settings {
		if err := world.SetSetting(o, name, value); err != nil {
			b.fail("%s %q: setting %s: %w", o.Kind(), core.Name, name, err)
		}
	}
}

func (b *builder) room(rs RoomSpec) (world.RoomObject, bool) {
	if rs.Name == "" {
		b.fail("room with no name")
		return nil, false
	}
	key := strings.ToLower(rs.Name)
	if _, dup := b.rooms[key]; dup {
		b.fail("room %q: seeded twice", rs.Name)
		return nil, false
	}
	o, ok := b.create(rs.Describe, defaultRoom, world.KindRoom)
	if !ok {
		return nil, false
	}
	r := o.(world.RoomObject)
	b.describe(r, rs.Describe)
	b.rooms[key] = r
	return r, true
}

func (b *builder) item(is ItemSpec, dest world.Container) {
	o, ok := b.create(is.Describe, defaultItem, world.KindItem)
	if !ok {
		return
	}
	it := o.(world.ItemObject)
	b.describe(it, is.Describe)
	world.Place(it, dest)
	if k, ok := it.(cutter); ok {
		b.keys[strings.ToLower(it.Core().Name)] = k
	}
	if len(is.Contents) == 0 {
		return
	}
	holder, ok := it.(world.Container)
	if !ok {
		b.fail("item %q: %s holds nothing", it.Core().Name, world.ClassName(it))
		return
	}
	for _, cs := range is.Contents {
		b.item(cs, holder)
	}
}

func (b *builder) mob(ms MobSpec, room world.RoomObject) {
	o, ok := b.create(ms.Describe, defaultMob, world.KindMob)
	if !ok {
		return
	}
	m := o.(world.MobObject)
	b.describe(m, ms.Describe)
	if ms.Script != "" {
		if err := world.SetSetting(m, "script", ms.Script); err != nil {
			b.fail("mob %q: script: %w", m.Core().Name, err)
		}
	}
	m.AsCharacter().SetHome(room)
	m.AsCharacter().MoveTo(room)
	for _, is := range ms.Items {
		b.item(is, m)
	}
}

func (b *builder) exit(xs ExitSpec, origin world.RoomObject) {
	dest, ok := b.rooms[strings.ToLower(xs.To)]
	if !ok {
		b.fail("exit %q in %s: no such room %q", xs.Name, origin.Core().Name, xs.To)
		return
	}
	if xs.Name == "" {
		b.fail("exit in %s with no name", origin.Core().Name)
		return
	}
	o, ok := b.create(xs.Describe, defaultExit, world.KindExit)
	if !ok {
		return
	}
	x := o.(world.ExitObject)
	b.describe(x, xs.Describe)
	if err := b.w.InstallExit(x, origin, dest); err != nil {
		b.fail("exit %q in %s: %w", xs.Name, origin.Core().Name, err)
		return
	}
	if xs.Return != "" {
		if _, err := x.AsExit().Return(xs.Return); err != nil {
			b.fail("exit %q in %s: return %q: %w", xs.Name, origin.Core().Name, xs.Return, err)
		}
	}
	for _, name := range xs.Keys {
		k, ok := b.keys[strings.ToLower(name)]
		if !ok {
			b.fail("exit %q in %s: no seeded key %q", xs.Name, origin.Core().Name, name)
			continue
		}
		x.AsExit().AddKey(k.Cut())
	}
	if xs.Locked {
		x.AsExit().SetLocked(true)
	}
}
