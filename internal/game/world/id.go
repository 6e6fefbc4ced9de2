package world

import "strconv"

// ID identifies a simulation object. IDs are allocated from a monotonic
// counter, are unique across every kind, and are never reused.
type ID int64

// NoID is the zero ID. No object ever carries it.
const NoID ID = 0

// String renders the id the way players type it, e.g. "#12".
func (id ID) String() string {
	return "#" + strconv.FormatInt(int64(id), 10)
}

// Ref is a weak reference to another object. It stores only the target's id
// and resolves through the world on every access, so a reference never keeps
// a destroyed object reachable and never forms an ownership cycle.
type Ref[T Object] struct {
	ID ID
}

// RefTo returns a weak reference to o. A nil o yields the zero Ref.
func RefTo[T Object](o T) Ref[T] {
	if any(o) == nil {
		return Ref[T]{}
	}
	return Ref[T]{ID: o.Core().ID}
}

// IsZero reports whether r refers to nothing.
func (r Ref[T]) IsZero() bool {
	return r.ID == NoID
}

// Resolve returns the referenced object if it still exists and has the
// expected kind.
func (r Ref[T]) Resolve(w *World) (T, bool) {
	var zero T
	if r.ID == NoID || w == nil {
		return zero, false
	}
	o, ok := w.objects[r.ID]
	if !ok {
		return zero, false
	}
	t, ok := o.(T)
	return t, ok
}

// Kind is the catalog an object belongs to.
type Kind int

const (
	KindRoom Kind = iota + 1
	KindExit
	KindItem
	KindMob
	KindPlayer
)

// Kinds lists every kind in catalog order.
var Kinds = []Kind{KindRoom, KindExit, KindItem, KindMob, KindPlayer}

// String returns the singular kind name.
func (k Kind) String() string {
	switch k {
	case KindRoom:
		return "room"
	case KindExit:
		return "exit"
	case KindItem:
		return "item"
	case KindMob:
		return "mob"
	case KindPlayer:
		return "player"
	}
	return "unknown"
}

// Catalog returns the plural catalog name used for storage and listings.
func (k Kind) Catalog() string {
	return k.String() + "s"
}

// ParseKind maps a singular or plural kind name to its Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if s == k.String() || s == k.Catalog() {
			return k, true
		}
	}
	return 0, false
}
