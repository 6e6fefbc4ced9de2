package world

import (
	"encoding/gob"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Class describes a constructible kind of object.
type Class struct {
	Name string
	Kind Kind
	Doc  string
	// Make returns a new, unregistered instance.
	Make func() Object
}

// Initializer objects finish construction once they have an id.
type Initializer interface {
	Init()
}

// Copier objects copy class-specific state when cloned.
type Copier interface {
	CopyFrom(src Object)
}

var registry = struct {
	sync.RWMutex
	byName map[string]*Class
	byType map[reflect.Type]*Class
}{
	byName: map[string]*Class{},
	byType: map[reflect.Type]*Class{},
}

// RegisterClass makes a class constructible by name and encodable. Several
// classes may share a Go type, in which case the first registered is the
// type's default class.
//
// Precondition: c.Name is unique and c.Make returns a pointer.
func RegisterClass(c Class) {
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.byName[c.Name]; dup {
		panic(fmt.Sprintf("world: class %q registered twice", c.Name))
	}
	cls := &c
	registry.byName[c.Name] = cls
	t := reflect.TypeOf(c.Make())
	if _, seen := registry.byType[t]; !seen {
		registry.byType[t] = cls
		gob.RegisterName(c.Name, c.Make())
	}
}

// LookupClass returns the named class.
func LookupClass(name string) (*Class, bool) {
	registry.RLock()
	defer registry.RUnlock()
	c, ok := registry.byName[name]
	return c, ok
}

// Classes returns every class of kind k sorted by name. A zero k returns all
// classes.
func Classes(k Kind) []*Class {
	registry.RLock()
	defer registry.RUnlock()
	var out []*Class
	for _, c := range registry.byName {
		if k == 0 || c.Kind == k {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClassName returns the class an object was created from.
func ClassName(o Object) string {
	if o == nil {
		return ""
	}
	if name := o.Core().Class; name != "" {
		return name
	}
	registry.RLock()
	defer registry.RUnlock()
	if c, ok := registry.byType[reflect.TypeOf(o)]; ok {
		return c.Name
	}
	return reflect.TypeOf(o).String()
}

// ClassOf returns the class an object was created from.
func ClassOf(o Object) (*Class, bool) {
	return LookupClass(ClassName(o))
}

// Create constructs and registers an instance of the named class.
func (w *World) Create(class string) (Object, error) {
	c, ok := LookupClass(class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoClass, class)
	}
	o := c.Make()
	o.Core().Class = c.Name
	w.Register(o)
	if in, ok := o.(Initializer); ok {
		in.Init()
	}
	return o, nil
}

// Clone creates a new object of o's class with o's names, descriptions and
// flags, then lets the class copy its own state.
func (w *World) Clone(o Object) (Object, error) {
	n, err := w.Create(ClassName(o))
	if err != nil {
		return nil, err
	}
	src, dst := o.Core(), n.Core()
	dst.SetName(src.Name)
	dst.SetShort(src.Short)
	dst.SetLong(src.Long)
	dst.SetVisible(src.Visible)
	dst.SetGettable(src.Gettable)
	dst.SetWearable(src.Wearable)
	dst.Aka = nil
	dst.AddAka(src.Aka...)
	if c, ok := n.(Copier); ok {
		c.CopyFrom(o)
	}
	return n, nil
}

// NewRoom creates a plain room.
func (w *World) NewRoom(name string) *BaseRoom {
	r := &BaseRoom{Base: newBase(name)}
	w.Register(r)
	return r
}

// NewExit creates a plain exit from origin to dest. A nil dest makes a
// broken exit.
func (w *World) NewExit(name string, origin, dest RoomObject) (*Exit, error) {
	x := &Exit{Base: newBase(name)}
	w.Register(x)
	if err := w.InstallExit(x, origin, dest); err != nil {
		x.Destroy()
		return nil, err
	}
	return x, nil
}

// InstallExit attaches a registered exit to origin and points it at dest.
func (w *World) InstallExit(x ExitObject, origin, dest RoomObject) error {
	if !origin.AddExit(x) {
		return fmt.Errorf("%s %d: %w", ClassName(origin), origin.Core().ID, ErrNoExits)
	}
	x.AsExit().SetDestination(dest)
	return nil
}

// NewItem creates a plain item.
func (w *World) NewItem(name string) *Item {
	it := &Item{Base: newBase(name)}
	it.Gettable = true
	w.Register(it)
	return it
}

// NewContainer creates a plain container item.
func (w *World) NewContainer(name string) *ContainerItem {
	c := &ContainerItem{Item: MakeItem(name)}
	w.Register(c)
	return c
}

// NewMob creates a plain mob at home in room.
func (w *World) NewMob(name string, room RoomObject) *Mob {
	m := &Mob{Character: MakeCharacter(name), Period: DefaultMobPeriod}
	w.Register(m)
	if room != nil {
		m.SetHome(room)
		m.MoveTo(room)
	}
	return m
}

// NewPlayer creates a player account. The player is not placed anywhere
// until it logs in.
func (w *World) NewPlayer(name, password string) (*Player, error) {
	if _, taken := w.PlayerNamed(name); taken {
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	p := &Player{Character: MakeCharacter(name), Prefs: map[string]string{}}
	w.Register(p)
	if err := p.SetPassword(password); err != nil {
		p.Destroy()
		return nil, err
	}
	p.Created = w.clock()
	if home, ok := w.Room(w.homeID); ok {
		p.SetHome(home)
	}
	return p, nil
}

func init() {
	RegisterClass(Class{Name: "room", Kind: KindRoom, Doc: "A plain room.",
		Make: func() Object { r := MakeBaseRoom("room"); return &r }})
	RegisterClass(Class{Name: "exit", Kind: KindExit, Doc: "A plain exit.",
		Make: func() Object { x := MakeExit("exit"); return &x }})
	RegisterClass(Class{Name: "item", Kind: KindItem, Doc: "A plain item.",
		Make: func() Object { it := MakeItem("item"); return &it }})
	RegisterClass(Class{Name: "container", Kind: KindItem, Doc: "An item that holds other items.",
		Make: func() Object { c := MakeContainerItem("container"); return &c }})
	RegisterClass(Class{Name: "mob", Kind: KindMob, Doc: "A plain mob that sleeps and wakes.",
		Make: func() Object { m := MakeMob("mob"); return &m }})
	RegisterClass(Class{Name: "player", Kind: KindPlayer, Doc: "A player character.",
		Make: func() Object {
			return &Player{Character: MakeCharacter("player"), Prefs: map[string]string{}}
		}})
}
