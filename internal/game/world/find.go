package world

// Reference is a parsed object reference: a free-text name or a "#id".
type Reference struct {
	Name string
	ID   ID
}

// IsZero reports whether the reference names nothing.
func (r Reference) IsZero() bool {
	return r.Name == "" && r.ID == NoID
}

func (r Reference) String() string {
	if r.ID != NoID {
		return r.ID.String()
	}
	return r.Name
}

// Find resolves ref against the actor's surroundings, trying in order the
// room itself, the room's items, the actor's items, the players present,
// the mobs present and the room's exits. The first match wins. An id
// reference tests membership instead of names and never falls back to name
// lookup.
func Find(ref Reference, room RoomObject, actor CharacterObject) (Object, bool) {
	found := find(ref, room, actor, false)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// FindAll returns every match in the same priority order as Find.
func FindAll(ref Reference, room RoomObject, actor CharacterObject) []Object {
	return find(ref, room, actor, true)
}

func find(ref Reference, room RoomObject, actor CharacterObject, all bool) []Object {
	if ref.IsZero() {
		return nil
	}
	var out []Object
	seen := map[ID]bool{}
	add := func(objs ...Object) bool {
		for _, o := range objs {
			if o == nil || seen[o.Core().ID] {
				continue
			}
			seen[o.Core().ID] = true
			out = append(out, o)
		}
		return !all && len(out) > 0
	}

	if ref.ID != NoID {
		return findID(ref.ID, room, actor)
	}

	name := ref.Name
	if room != nil {
		r := room.AsRoom()
		if r.Named(name) && add(room) {
			return out
		}
		if add(itemObjects(r.ItemsNamed(name))...) {
			return out
		}
	}
	if actor != nil {
		if add(itemObjects(actor.AsCharacter().ItemsNamed(name))...) {
			return out
		}
	}
	if room == nil {
		return out
	}
	r := room.AsRoom()
	for _, p := range r.Players() {
		if p.Named(name) || p.Aliased(name) {
			if add(p) {
				return out
			}
		}
	}
	for _, m := range r.Mobs() {
		if m.Core().Named(name) || m.Core().Aliased(name) {
			if add(m) {
				return out
			}
		}
	}
	for _, x := range r.ExitsNamed(name) {
		if add(x) {
			return out
		}
	}
	return out
}

func findID(id ID, room RoomObject, actor CharacterObject) []Object {
	if room != nil {
		r := room.AsRoom()
		if r.ID == id {
			return []Object{room}
		}
		if r.HoldsID(id) {
			if it, ok := r.w.Item(id); ok {
				return []Object{it}
			}
		}
	}
	if actor != nil && actor.AsCharacter().HoldsID(id) {
		if it, ok := actor.Core().w.Item(id); ok {
			return []Object{it}
		}
	}
	if room == nil {
		return nil
	}
	r := room.AsRoom()
	for _, c := range r.Characters() {
		if c.Core().ID == id {
			return []Object{c}
		}
	}
	for _, x := range r.Exits() {
		if x.Core().ID == id {
			return []Object{x}
		}
	}
	return nil
}

func itemObjects(items []ItemObject) []Object {
	out := make([]Object, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
