package items

import (
	"time"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// InvisibilityDelay is how long a silver ring takes to change its wearer's
// visibility after being put on or taken off.
const InvisibilityDelay = 400 * time.Millisecond

// WizRing grants wizard privilege to the player wearing it.
type WizRing struct {
	world.Item
}

func newWizRing() *WizRing {
	r := &WizRing{Item: world.MakeItem("gold ring")}
	r.Short = "A plain band of gold."
	r.Wearable = true
	r.Aka = []string{"ring", "precious"}
	return r
}

// OnWear makes a player wearer a wizard.
func (r *WizRing) OnWear(c world.CharacterObject) bool {
	if p, ok := c.(*world.Player); ok {
		r.World().SetWizard(p, true)
	}
	return true
}

// OnUnwear revokes the privilege again.
func (r *WizRing) OnUnwear(c world.CharacterObject) bool {
	if p, ok := c.(*world.Player); ok {
		r.World().SetWizard(p, false)
	}
	return true
}

// InvisibilityRing hides its wearer. The change, and the event telling the
// room about it, happen InvisibilityDelay after the ring goes on or comes
// off.
type InvisibilityRing struct {
	world.Item
}

func newInvisibilityRing() *InvisibilityRing {
	r := &InvisibilityRing{Item: world.MakeItem("silver ring")}
	r.Short = "A thin band of silver."
	r.Wearable = true
	r.Aka = []string{"ring"}
	return r
}

// OnWear schedules the wearer's disappearance.
func (r *InvisibilityRing) OnWear(c world.CharacterObject) bool {
	r.later(c, false)
	return true
}

// OnUnwear schedules the wearer's reappearance.
func (r *InvisibilityRing) OnUnwear(c world.CharacterObject) bool {
	r.later(c, true)
	return true
}

// later applies the visibility change unless the ring was put on or taken
// off again in the meantime.
func (r *InvisibilityRing) later(c world.CharacterObject, visible bool) {
	w := r.World()
	ringID, charID := r.ID, c.Core().ID
	act := world.ActDisappear
	if visible {
		act = world.ActAppear
	}
	w.Later(InvisibilityDelay, "silver ring", func() error {
		ch, ok := w.Character(charID)
		if !ok {
			return nil
		}
		worn := false
		if ring, ok := w.Item(ringID); ok {
			worn = ch.AsCharacter().Wears(ring)
		}
		if worn == visible || ch.Core().Visible == visible {
			return nil
		}
		ch.Core().SetVisible(visible)
		if room, ok := ch.Room(); ok {
			room.AsRoom().Action(world.Event{Act: act, Actor: charID})
		}
		return nil
	}, charID)
}
