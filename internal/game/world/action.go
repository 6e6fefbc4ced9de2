package world

// Action raises ev in room. Propagation runs after ev.Delay, or the world's
// action delay when that is not positive, in its own transaction, so the
// command that raised the event replies first and observers can never see a
// half-applied command.
//
// When the task runs, players in the room react first, then mobs other than
// the actor, then items (recursing into containers and inventories), then
// exits, and finally the room itself. An event with a positive Spread then
// travels on to each neighbouring room except the one it came from.
func (w *World) Action(room RoomObject, ev Event) {
	if room == nil {
		return
	}
	delay := ev.Delay
	if delay <= 0 {
		delay = w.actionDelay
	}
	id := room.Core().ID
	w.Later(delay, "action "+string(ev.Act), func() error {
		r, ok := w.Room(id)
		if !ok {
			return nil
		}
		w.propagate(r, &ev)
		return nil
	}, id)
}

func (w *World) propagate(r RoomObject, ev *Event) {
	if f, ok := r.(ActionFilter); ok && !f.AllowAction(ev) {
		return
	}
	room := r.AsRoom()
	for _, p := range room.Players() {
		w.actNear(p, ev)
	}
	for _, m := range room.Mobs() {
		if m.Core().ID != ev.Actor {
			w.actNear(m, ev)
		}
	}
	for _, it := range room.Items() {
		w.actNear(it, ev)
	}
	for _, x := range room.Exits() {
		w.react(x, ev)
	}
	w.react(r, ev)

	if ev.Spread > 0 {
		w.spread(r, ev)
	}
}

func (w *World) spread(r RoomObject, ev *Event) {
	room := r.AsRoom()
	seen := map[ID]bool{room.ID: true, ev.FromRoom: true}
	for _, x := range room.Exits() {
		dest, ok := x.AsExit().Dest()
		if !ok || seen[dest.Core().ID] {
			continue
		}
		seen[dest.Core().ID] = true
		next := *ev
		next.Spread--
		next.FromRoom = room.ID
		next.FromExit = NoID
		next.Delay = 0
		if back, ok := dest.AsRoom().ExitTo(r); ok {
			next.FromExit = back.Core().ID
		}
		w.Action(dest, next)
	}
}

// actNear runs o's reaction and forwards the event to everything o holds.
func (w *World) actNear(o Object, ev *Event) {
	if !w.react(o, ev) {
		return
	}
	if c, ok := o.(Container); ok {
		for _, it := range c.contents().Items() {
			w.actNear(it, ev)
		}
	}
}

// react runs o's own handler for ev. It reports false when o no longer
// exists.
func (w *World) react(o Object, ev *Event) bool {
	if !w.Exists(o.Core().ID) {
		return false
	}
	if h := o.Reactions()[ev.Act]; h != nil {
		h(ev)
	}
	return true
}
