package world

import (
	"strings"
)

// Reactions of every character: followers go after their leader.
func (c *Character) Reactions() Reactions {
	return Reactions{ActLeave: c.followLeader}
}

// followLeader schedules a follow through the exit the leader took.
func (c *Character) followLeader(ev *Event) {
	if c.Following.ID == NoID || c.Following.ID != ev.Actor || !c.Awake || ev.Exit == NoID {
		return
	}
	if p, ok := c.Self().(*Player); ok {
		if leader, ok := c.Leader(); ok {
			p.Message("You follow", leader, ".")
		}
	}
	id, exitID := c.ID, ev.Exit
	c.w.Later(0, "follow", func() error {
		ch, ok := c.w.Character(id)
		if !ok {
			return nil
		}
		x, ok := c.w.Exit(exitID)
		if !ok {
			return nil
		}
		here, ok := ch.Room()
		if origin, ok2 := x.Room(); !ok || !ok2 || here.Core().ID != origin.Core().ID {
			return nil
		}
		moved, reason := ch.AsCharacter().Go(x)
		if p, ok := ch.(*Player); ok {
			if moved {
				p.ShowArrival()
			} else {
				p.Message(reason)
			}
		}
		return nil
	}, id, exitID)
}

// ShowArrival tells the player where they are and who is there.
func (p *Player) ShowArrival() {
	room, ok := p.Room()
	if !ok {
		return
	}
	p.Message(room)
	for _, c := range room.AsRoom().Characters() {
		if c.Core().ID != p.ID && p.CanSee(c) {
			p.Message(c, "is here", ".")
		}
	}
}

// Reactions of a player describe nearby events, degraded to what the player
// can perceive.
func (p *Player) Reactions() Reactions {
	return Reactions{
		ActLook:                  p.nearLook,
		ActGet:                   p.nearGet,
		ActDrop:                  p.nearDrop,
		ActPut:                   p.nearPut,
		ActTake:                  p.nearTake,
		ActWear:                  p.nearWear,
		ActUnwear:                p.nearUnwear,
		ActUse:                   p.nearUse,
		ActLeave:                 p.nearLeave,
		ActArrive:                p.nearArrive,
		ActSay:                   p.nearSay,
		ActShout:                 p.nearShout,
		ActEmote:                 p.nearEmote,
		ActQuit:                  p.nearQuit,
		ActFollow:                p.nearFollow,
		ActLock:                  p.nearLock,
		ActDig:                   p.nearDig,
		ActTeleport:              p.nearTeleport,
		ActTeleportCharacterAway: p.nearTeleportCharacterAway,
		ActTeleportCharacterIn:   p.nearTeleportCharacterIn,
		ActTeleportItemAway:      p.nearTeleportItem("disappears"),
		ActTeleportItemIn:        p.nearTeleportItem("appears"),
		ActSleep:                 p.nearActorOnly("goes to sleep"),
		ActAwake:                 p.nearActorOnly("wakes up"),
		ActCloneItem:             p.nearCloneItem,
		ActCloneMob:              p.nearCloneMob,
		ActDestroyItem:           p.nearDestroyed,
		ActDestroyMob:            p.nearDestroyed,
		ActAppear:                p.nearVisibility("appears"),
		ActDisappear:             p.nearVisibility("disappears"),
	}
}

// seen resolves id when it exists and the player can see it.
func (p *Player) seen(id ID) (Object, bool) {
	o, ok := p.w.Object(id)
	if !ok || !p.CanSee(o) {
		return nil, false
	}
	return o, true
}

// actor resolves the event's actor unless it is the player.
func (p *Player) actor(ev *Event) (Object, bool, bool) {
	if ev.Actor == p.ID {
		return nil, false, false
	}
	a, ok := p.w.Object(ev.Actor)
	if !ok {
		return nil, false, false
	}
	return a, p.CanSee(a), true
}

func (p *Player) nearLook(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok || !visible {
		return
	}
	if ev.Target == p.ID {
		p.Message(a, "looks at you", ".")
		return
	}
	if t, ok := p.seen(ev.Target); ok && ev.Target != ev.Actor {
		p.Message(a, "looks at", t, ".")
	}
}

// nearHandled covers get and drop: a hidden actor makes the item appear or
// disappear on its own, a hidden item becomes "something".
func (p *Player) nearHandled(ev *Event, verb, vanish string) {
	a, actorVisible, ok := p.actor(ev)
	if !ok {
		return
	}
	item, itemVisible := p.seen(ev.Item)
	switch {
	case actorVisible && itemVisible:
		p.Message(a, verb, "the", item, ".")
	case actorVisible:
		p.Message(a, verb, "something", ".")
	case itemVisible:
		p.Message("The", item, vanish, ".")
	}
}

func (p *Player) nearGet(ev *Event) { p.nearHandled(ev, "gets", "disappears") }
func (p *Player) nearDrop(ev *Event) { p.nearHandled(ev, "drops", "appears") }

// nearTransfer covers put and take, naming the container.
func (p *Player) nearTransfer(ev *Event, verb, prep string) {
	a, actorVisible, ok := p.actor(ev)
	if !ok {
		return
	}
	item, itemVisible := p.seen(ev.Item)
	if !actorVisible && !itemVisible {
		return
	}
	var who, what any = "Someone", "something"
	if actorVisible {
		who = a
	}
	if itemVisible {
		what = item
	}
	parts := []any{who, verb}
	if itemVisible {
		parts = append(parts, "the")
	}
	parts = append(parts, what)
	if c, ok := p.seen(ev.Container); ok {
		parts = append(parts, prep, "the", c)
	}
	p.Message(append(parts, ".")...)
}

func (p *Player) nearPut(ev *Event) { p.nearTransfer(ev, "puts", "in") }
func (p *Player) nearTake(ev *Event) { p.nearTransfer(ev, "takes", "from") }

func (p *Player) nearWorn(ev *Event, verb string) {
	a, actorVisible, ok := p.actor(ev)
	if !ok || !actorVisible {
		return
	}
	if item, ok := p.seen(ev.Item); ok {
		p.Message(a, verb, "the", item, ".")
	} else {
		p.Message(a, verb, "something", ".")
	}
}

func (p *Player) nearWear(ev *Event) { p.nearWorn(ev, "wears") }
func (p *Player) nearUnwear(ev *Event) { p.nearWorn(ev, "removes") }

func (p *Player) nearUse(ev *Event) {
	a, actorVisible, ok := p.actor(ev)
	if !ok || !actorVisible {
		return
	}
	target, targetVisible := p.seen(ev.Target)
	if ev.Custom != "" {
		tname := "something"
		if targetVisible {
			tname = target.String()
		}
		p.Message(strings.NewReplacer("{actor}", a.String(), "{target}", tname).Replace(ev.Custom))
		return
	}
	item, itemVisible := p.seen(ev.Item)
	if !itemVisible {
		p.Message(a, "uses something", ".")
		return
	}
	if targetVisible && ev.Target != ev.Item {
		p.Message(a, "uses the", item, "on", target, ".")
		return
	}
	p.Message(a, "uses the", item, ".")
}

func (p *Player) nearLeave(ev *Event) {
	if a, visible, ok := p.actor(ev); ok && visible {
		if x, ok := p.w.Exit(ev.Exit); ok && p.CanSee(x) {
			p.Message(a, "leaves to", x, ".")
		} else {
			p.Message(a, "leaves", ".")
		}
	}
	p.followLeader(ev)
}

func (p *Player) nearFollow(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok || !visible {
		return
	}
	if ev.Target == p.ID {
		p.Message(a, "starts following you", ".")
		return
	}
	if t, ok := p.seen(ev.Target); ok {
		p.Message(a, "starts following", t, ".")
	}
}

func (p *Player) nearArrive(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok || !visible {
		return
	}
	if x, ok := p.seen(ev.Exit); ok {
		p.Message(a, "arrives from", x, ".")
		return
	}
	p.Message(a, "arrives as if from nowhere", ".")
}

func speechVerb(verb string) string {
	switch verb {
	case "ask":
		return "asks,"
	case "exclaim":
		return "exclaims,"
	}
	return "says,"
}

func quoted(s string) string {
	return `"` + s + `"`
}

func (p *Player) nearSay(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok {
		return
	}
	var who any = "Someone"
	if visible {
		who = a
	}
	p.Message(who, speechVerb(ev.Verb), quoted(ev.Text))
}

func (p *Player) nearShout(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok {
		return
	}
	if ev.FromRoom != NoID {
		if x, ok := p.seen(ev.FromExit); ok {
			p.Message("You hear a shout from", x, ".")
		} else {
			p.Message("You hear a distant shout", ".")
		}
		return
	}
	var who any = "Someone"
	if visible {
		who = a
	}
	p.Message(who, "shouts,", quoted(ev.Text))
}

func (p *Player) nearEmote(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok {
		return
	}
	var who any = "Someone"
	if visible {
		who = a
	}
	p.Message(who, ev.Text)
}

func (p *Player) nearQuit(ev *Event) {
	if a, visible, ok := p.actor(ev); ok && visible {
		p.Message(a, "quits", ".")
	}
}

func (p *Player) nearLock(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok || !visible {
		return
	}
	x, ok := p.seen(ev.Exit)
	if !ok {
		return
	}
	switch ev.Outcome {
	case OutcomeLock:
		p.Message(a, "locks the door", x, ".")
	case OutcomeUnlock:
		p.Message(a, "unlocks the door", x, ".")
	default:
		p.Message(a, "tries a key in the door", x, ".")
	}
}

func (p *Player) nearDig(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok || !visible {
		return
	}
	if x, ok := p.seen(ev.Exit); ok {
		p.Message(a, "digs a new exit", x, ".")
	}
}

func (p *Player) nearTeleport(ev *Event) {
	if a, visible, ok := p.actor(ev); ok && visible {
		p.Message(a, "waves their hands around mysteriously", ".")
	}
}

func (p *Player) nearTeleportCharacterAway(ev *Event) {
	if ev.Character == p.ID {
		p.Message("You feel yourself being ripped away from where you are...")
		return
	}
	if c, ok := p.seen(ev.Character); ok {
		p.Message(c, "disappears", ".")
	}
}

func (p *Player) nearTeleportCharacterIn(ev *Event) {
	if ev.Character == p.ID {
		p.Message("You have been teleported", ".")
		return
	}
	if c, ok := p.seen(ev.Character); ok {
		p.Message(c, "appears", ".")
	}
}

func (p *Player) nearTeleportItem(verb string) func(*Event) {
	return func(ev *Event) {
		if item, ok := p.seen(ev.Item); ok {
			p.Message(item, verb, ".")
		}
	}
}

func (p *Player) nearActorOnly(phrase string) func(*Event) {
	return func(ev *Event) {
		if a, visible, ok := p.actor(ev); ok && visible {
			p.Message(a, phrase, ".")
		}
	}
}

func (p *Player) nearCloneItem(ev *Event) {
	a, visible, ok := p.actor(ev)
	if !ok || !visible {
		return
	}
	p.Message(a, "mumbles something you can't quite make out and ...")
	if item, ok := p.seen(ev.Item); ok {
		p.Message(a, "now has", item, ".")
	}
}

func (p *Player) nearCloneMob(ev *Event) {
	if ev.Actor == p.ID {
		return
	}
	if m, ok := p.seen(ev.Target); ok {
		p.Message(m, "has appeared", ".")
	}
}

// nearDestroyed reports a destroyed object by the name captured in Text.
func (p *Player) nearDestroyed(ev *Event) {
	if ev.Actor == p.ID || ev.Text == "" {
		return
	}
	p.Message(ev.Text, "disappears", ".")
}

// nearVisibility tells players who could not see the actor before that it
// appeared, or who can no longer see it that it vanished. Wizards see
// everything all along.
func (p *Player) nearVisibility(verb string) func(*Event) {
	return func(ev *Event) {
		if ev.Actor == p.ID || p.IsWizard() {
			return
		}
		if a, ok := p.w.Object(ev.Actor); ok {
			p.Message(a, verb, ".")
		}
	}
}
