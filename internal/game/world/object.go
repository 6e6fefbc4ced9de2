package world

import (
	"fmt"
	"slices"
	"strings"
)

// Object is implemented by every simulation object.
type Object interface {
	fmt.Stringer

	// Core returns the shared attributes of the object.
	Core() *Base
	// Kind returns the catalog the object belongs to.
	Kind() Kind
	// Room returns the room at the end of the object's container chain.
	Room() (RoomObject, bool)
	// Look returns the description shown to looker.
	Look(looker CharacterObject) []string
	// Info returns the wizard-facing detail lines.
	Info() []string
	// Settings returns the declared, generically editable attributes.
	Settings() []Setting
	// Reactions returns the handlers the object runs for nearby events.
	Reactions() Reactions
	// Destroy removes the object, its contents and every index entry.
	Destroy()
}

// Base holds the attributes shared by every object. Concrete kinds embed it.
// Fields are exported for encoding only; all mutation goes through methods so
// the enclosing transaction can journal the change.
type Base struct {
	ID       ID
	Name     string
	Short    string
	Long     string
	Visible  bool
	Gettable bool
	Wearable bool
	Aka      []string
	Owner    Ref[CharacterObject]
	Holder   Ref[Object]
	// Class names the class the object was created from when several
	// classes share one Go type.
	Class string

	w *World
}

func newBase(name string) Base {
	return Base{Name: name, Visible: true}
}

// Core implements Object.
func (b *Base) Core() *Base { return b }

// World returns the world the object is registered in.
func (b *Base) World() *World { return b.w }

// Self returns the registered object that embeds b, so behaviour implemented
// on an embedded type can reach overrides of the outer type.
func (b *Base) Self() Object {
	if b.w == nil {
		return nil
	}
	return b.w.objects[b.ID]
}

// Exists reports whether the object is still registered.
func (b *Base) Exists() bool {
	return b.w != nil && b.w.Exists(b.ID)
}

func (b *Base) touch() {
	if b.w != nil {
		b.w.touch(b.ID)
	}
}

// Touch journals the object ahead of a change to a field declared outside
// this package. Every setter here already does it.
func (b *Base) Touch() { b.touch() }

// String renders the plain name. Concrete kinds override it with the colour
// of their kind.
func (b *Base) String() string { return b.Name }

// SetName renames the object. Player names are also re-indexed.
func (b *Base) SetName(name string) {
	b.touch()
	old := b.Name
	b.Name = name
	if b.w != nil {
		b.w.renamed(b.Self(), old)
	}
}

// SetShort replaces the short description.
func (b *Base) SetShort(s string) {
	b.touch()
	b.Short = s
}

// SetLong replaces the long description.
func (b *Base) SetLong(s string) {
	b.touch()
	b.Long = s
}

// SetVisible changes the visibility flag.
func (b *Base) SetVisible(v bool) {
	b.touch()
	b.Visible = v
}

// SetGettable changes whether characters may pick the object up.
func (b *Base) SetGettable(v bool) {
	b.touch()
	b.Gettable = v
}

// SetWearable changes whether characters may wear the object.
func (b *Base) SetWearable(v bool) {
	b.touch()
	b.Wearable = v
}

// AddAka registers an alternate name.
func (b *Base) AddAka(names ...string) {
	b.touch()
	for _, n := range names {
		if !slices.Contains(b.Aka, n) {
			b.Aka = append(b.Aka, n)
		}
	}
}

// RemoveAka drops an alternate name.
func (b *Base) RemoveAka(name string) {
	b.touch()
	b.Aka = slices.DeleteFunc(b.Aka, func(s string) bool { return s == name })
}

// SetOwner records the character responsible for the object.
func (b *Base) SetOwner(c CharacterObject) {
	b.touch()
	b.Owner = RefTo(c)
}

func (b *Base) setHolder(o Object) {
	b.touch()
	b.Holder = RefTo(o)
}

// Container returns the object that directly holds this one.
func (b *Base) Container() (Object, bool) {
	return b.Holder.Resolve(b.w)
}

// Room follows the container chain up to a room.
func (b *Base) Room() (RoomObject, bool) {
	if r, ok := b.Self().(RoomObject); ok {
		return r, true
	}
	c, ok := b.Container()
	if !ok {
		return nil, false
	}
	return c.Room()
}

// Named reports whether name is the object's primary name.
func (b *Base) Named(name string) bool {
	return strings.EqualFold(b.Name, name)
}

// Aliased reports whether name is one of the object's alternate names.
func (b *Base) Aliased(name string) bool {
	for _, a := range b.Aka {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// Look returns the short and long descriptions, each preceded by a blank
// line.
func (b *Base) Look(looker CharacterObject) []string {
	var lines []string
	if b.Short != "" {
		lines = append(lines, "", b.Short)
	}
	if b.Long != "" {
		lines = append(lines, "", b.Long)
	}
	return lines
}

// Info returns the id, class and containment lines shown to wizards.
func (b *Base) Info() []string {
	lines := []string{
		fmt.Sprintf("%s (%d) %s", b.Name, b.ID, ClassName(b.Self())),
	}
	if c, ok := b.Container(); ok {
		lines = append(lines, fmt.Sprintf("In: %s (%d)", c, c.Core().ID))
	}
	if o, ok := b.Owner.Resolve(b.w); ok {
		lines = append(lines, fmt.Sprintf("Owner: %s (%d)", o, o.Core().ID))
	}
	if len(b.Aka) > 0 {
		lines = append(lines, "Aka: "+strings.Join(b.Aka, ", "))
	}
	if !b.Visible {
		lines = append(lines, "Invisible")
	}
	return lines
}

// Settings declares the visibility flag, shared by every object.
func (b *Base) Settings() []Setting {
	return []Setting{
		BoolSetting("visible", true, func() bool { return b.Visible }, func(v bool) error {
			b.SetVisible(v)
			return nil
		}),
	}
}

// Reactions returns no handlers.
func (b *Base) Reactions() Reactions { return nil }

// unregister removes the object from every index.
func (b *Base) unregister() {
	b.touch()
	if b.w != nil {
		b.w.unregister(b.ID)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
