package world

import (
	"fmt"
	"slices"
	"strings"
)

// CharacterObject is a player or a mob.
type CharacterObject interface {
	Container
	AsCharacter() *Character
	// Message delivers a composed line to whoever controls the character.
	Message(parts ...any)
	// Lines delivers several lines, indented by indent spaces.
	Lines(lines []string, indent int)
}

// Character is the shared state of players and mobs: inventory, worn items,
// room membership, home, following and stats.
type Character struct {
	Base
	Contents

	Location  Ref[RoomObject]
	Home      Ref[RoomObject]
	Following Ref[CharacterObject]
	Worn      []ID
	Awake     bool
	Stats     map[string]int
}

// Default stats given to every new character.
var defaultStats = map[string]int{"health": 100, "strength": 50}

// MakeCharacter returns an unregistered character for embedding.
func MakeCharacter(name string) Character {
	c := Character{Base: newBase(name), Awake: true, Stats: map[string]int{}}
	for k, v := range defaultStats {
		c.Stats[k] = v
	}
	return c
}

// AsCharacter implements CharacterObject.
func (c *Character) AsCharacter() *Character { return c }

func (c *Character) self() CharacterObject {
	ch, _ := c.Self().(CharacterObject)
	return ch
}

// Message does nothing for characters without a client.
func (c *Character) Message(parts ...any) {}

// Lines does nothing for characters without a client.
func (c *Character) Lines(lines []string, indent int) {}

// Room returns the room the character stands in.
func (c *Character) Room() (RoomObject, bool) {
	return c.Location.Resolve(c.w)
}

// HomeRoom returns the character's home, falling back to the world home.
func (c *Character) HomeRoom() (RoomObject, bool) {
	if r, ok := c.Home.Resolve(c.w); ok {
		return r, true
	}
	return c.w.Room(c.w.HomeID())
}

// SetHome records the character's home room.
func (c *Character) SetHome(r RoomObject) {
	c.touch()
	c.Home = RefTo(r)
}

// Follow starts following leader. Following oneself, or nil, stops.
func (c *Character) Follow(leader CharacterObject) {
	c.touch()
	if leader == nil || leader.Core().ID == c.ID {
		c.Following = Ref[CharacterObject]{}
		return
	}
	c.Following = RefTo(leader)
}

// Leader returns the character being followed.
func (c *Character) Leader() (CharacterObject, bool) {
	return c.Following.Resolve(c.w)
}

// Stat returns a numeric stat, zero when unset.
func (c *Character) Stat(name string) int {
	return c.Stats[name]
}

// SetStat assigns a numeric stat.
func (c *Character) SetStat(name string, v int) {
	c.touch()
	if c.Stats == nil {
		c.Stats = map[string]int{}
	}
	c.Stats[name] = v
}

// CanSee reports whether the character perceives o: o is visible, o is the
// character itself, or the character is a wizard.
func (c *Character) CanSee(o Object) bool {
	if o == nil {
		return false
	}
	b := o.Core()
	if b.Visible || b.ID == c.ID {
		return true
	}
	if p, ok := c.Self().(*Player); ok {
		return c.w.IsWizard(p)
	}
	return false
}

// MoveTo removes the character from its current room and places it in dest.
// This is the only path that changes Location. A nil dest leaves the
// character nowhere.
func (c *Character) MoveTo(dest RoomObject) {
	self := c.self()
	if old, ok := c.Room(); ok {
		old.AsRoom().removeCharacter(self)
	}
	c.touch()
	c.Location = RefTo(dest)
	if dest != nil {
		dest.AsRoom().addCharacter(self)
	}
}

// Go sends the character through x. A leave event is raised in the room
// left and an arrive event, naming the exit back, in the room entered.
func (c *Character) Go(x ExitObject) (bool, string) {
	self := c.self()
	origin, _ := c.Room()
	if ok, reason := x.Traverse(self); !ok {
		return false, reason
	}
	dest, ok := x.AsExit().Dest()
	if !ok {
		return false, fmt.Sprintf("Exit %s is broken....", x)
	}

	if origin != nil {
		origin.AsRoom().Action(Event{Act: ActLeave, Actor: c.ID, Exit: x.Core().ID})
	}
	c.MoveTo(dest)
	var back ID
	if origin != nil {
		if bx, ok := dest.AsRoom().ExitTo(origin); ok {
			back = bx.Core().ID
		}
	}
	dest.AsRoom().Action(Event{Act: ActArrive, Actor: c.ID, Exit: back})
	return true, ""
}

// GetItem takes item from wherever it is. The item's get hook may refuse.
func (c *Character) GetItem(item ItemObject) bool {
	self := c.self()
	if !item.OnGet(self) {
		return false
	}
	room, _ := c.Room()
	held := Place(item, self)
	if room != nil {
		room.AsRoom().Action(Event{Act: ActGet, Actor: c.ID, Item: held.Core().ID})
	}
	return true
}

// DropItem puts a held item down in the character's room. A worn item comes
// off first. Nothing changes when the drop or unwear hook refuses.
func (c *Character) DropItem(item ItemObject) bool {
	self := c.self()
	room, ok := c.Room()
	if !ok || !c.Holds(item) {
		return false
	}
	if !item.OnDrop(self) {
		return false
	}
	if c.Wears(item) && !c.Unwear(item) {
		return false
	}
	left := Place(item, room)
	room.AsRoom().Action(Event{Act: ActDrop, Actor: c.ID, Item: left.Core().ID})
	return true
}

// Wears reports whether item is worn.
func (c *Character) Wears(item Object) bool {
	return item != nil && slices.Contains(c.Worn, item.Core().ID)
}

// WornItems returns the worn items.
func (c *Character) WornItems() []ItemObject {
	var out []ItemObject
	for _, id := range c.Worn {
		if it, ok := c.w.Item(id); ok {
			out = append(out, it)
		}
	}
	return out
}

// Wear puts on a held, wearable item.
func (c *Character) Wear(item ItemObject) bool {
	if !c.Holds(item) || c.Wears(item) || !item.Core().Wearable {
		return false
	}
	if !item.OnWear(c.self()) {
		return false
	}
	c.touch()
	c.Worn = append(c.Worn, item.Core().ID)
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(Event{Act: ActWear, Actor: c.ID, Item: item.Core().ID})
	}
	return true
}

// Unwear takes off a worn item. The item stays held.
func (c *Character) Unwear(item ItemObject) bool {
	if !c.Wears(item) {
		return false
	}
	if !item.OnUnwear(c.self()) {
		return false
	}
	c.unwearID(item.Core().ID)
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(Event{Act: ActUnwear, Actor: c.ID, Item: item.Core().ID})
	}
	return true
}

func (c *Character) unwearID(id ID) {
	i := slices.Index(c.Worn, id)
	if i < 0 {
		return
	}
	c.touch()
	c.Worn = slices.Delete(c.Worn, i, i+1)
}

// Sleep puts the character to sleep.
func (c *Character) Sleep() {
	if !c.Awake {
		return
	}
	c.touch()
	c.Awake = false
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(Event{Act: ActSleep, Actor: c.ID})
	}
}

// Wake wakes the character.
func (c *Character) Wake() {
	if c.Awake {
		return
	}
	c.touch()
	c.Awake = true
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(Event{Act: ActAwake, Actor: c.ID})
	}
}

// InventoryLines lists held items, worn ones marked with "*".
func (c *Character) InventoryLines(looker CharacterObject) []string {
	var lines []string
	for _, it := range c.visibleItems(looker) {
		mark := ""
		if c.Wears(it) {
			mark = "*"
		}
		lines = append(lines, mark+it.String())
	}
	return lines
}

// Look adds the visible inventory to the descriptions.
func (c *Character) Look(looker CharacterObject) []string {
	lines := c.Base.Look(looker)
	if held := c.InventoryLines(looker); len(held) > 0 {
		lines = append(lines, "", "Holding:")
		for _, l := range held {
			lines = append(lines, "    "+l)
		}
	}
	return lines
}

// Info adds location, home and following to the base lines.
func (c *Character) Info() []string {
	lines := c.Base.Info()
	if r, ok := c.Room(); ok {
		lines = append(lines, fmt.Sprintf("Room: %s (%d)", r, r.Core().ID))
	}
	if r, ok := c.HomeRoom(); ok {
		lines = append(lines, fmt.Sprintf("Home: %s (%d)", r, r.Core().ID))
	}
	if l, ok := c.Leader(); ok {
		lines = append(lines, fmt.Sprintf("Following: %s (%d)", l, l.Core().ID))
	}
	if !c.Awake {
		lines = append(lines, "Asleep")
	}
	if names := c.InventoryLines(nil); len(names) > 0 {
		lines = append(lines, "Holding: "+strings.Join(names, ", "))
	}
	return lines
}

// Settings adds the awake flag and the numeric stats.
func (c *Character) Settings() []Setting {
	return append(c.Base.Settings(),
		BoolSetting("awake", true, func() bool { return c.Awake }, func(v bool) error {
			if v {
				c.Wake()
			} else {
				c.Sleep()
			}
			return nil
		}),
		IntSetting("health", defaultStats["health"], func() int { return c.Stat("health") },
			func(v int) error { c.SetStat("health", v); return nil }),
		IntSetting("strength", defaultStats["strength"], func() int { return c.Stat("strength") },
			nonNegative("strength", func(v int) { c.SetStat("strength", v) })),
	)
}

// Destroy destroys the inventory, leaves the room and unregisters.
func (c *Character) Destroy() {
	c.destroyItems()
	if room, ok := c.Room(); ok {
		room.AsRoom().removeCharacter(c.self())
	}
	c.unregister()
}

// Say speaks text to the character's room.
func (c *Character) Say(text string) {
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(Event{Act: ActSay, Actor: c.ID, Verb: SpeechVerb(text), Text: text})
	}
}

// Emote shows the character doing text to its room.
func (c *Character) Emote(text string) {
	if room, ok := c.Room(); ok {
		room.AsRoom().Action(Event{Act: ActEmote, Actor: c.ID, Text: text})
	}
}
