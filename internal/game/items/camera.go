package items

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// Camera takes photographs of whatever it is pointed at.
type Camera struct {
	world.Item
}

// Use photographs target, or the actor's room when target is nil. The
// photograph goes into the actor's inventory and its long description is
// what the actor would see looking at the target.
func (c *Camera) Use(actor world.CharacterObject, target world.Object) bool {
	room, ok := actor.Room()
	if !ok {
		return false
	}
	if target == nil {
		target = room
	}
	w := c.World()
	o, err := w.Create("photograph")
	if err != nil {
		w.Logger().Warn("creating photograph", zap.Error(err))
		return false
	}
	photo := o.(world.ItemObject)
	name := target.Core().Name

	lines := []string{"The picture is of " + name + "."}
	for _, l := range target.Look(actor) {
		lines = append(lines, "    "+l)
	}
	photo.Core().SetName("photo of " + name)
	photo.Core().SetLong(strings.Join(lines, "\n"))
	world.Place(photo, actor)

	actor.Message("That looks like a good one...")
	actor.Message("You have a photo of", name, ".")
	room.AsRoom().Action(world.Event{
		Act:    world.ActUse,
		Actor:  actor.Core().ID,
		Item:   c.ID,
		Target: target.Core().ID,
		Custom: "{actor} snaps a picture of {target}.",
	})
	return true
}
