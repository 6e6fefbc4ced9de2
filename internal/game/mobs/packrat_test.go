package mobs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/mobs"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func TestPackRat_GrabsDroppedItemAndDigsNest(t *testing.T) {
	w, room := newWorld(t, nil)
	den := w.NewRoom("den")
	lee, out := join(t, w, "lee", room)
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)
	rat.SetHome(den)
	rose := w.NewItem("rose")
	world.Place(rose, lee)

	require.True(t, lee.DropItem(rose))
	advance(w)

	assert.True(t, rat.Holds(rose))
	assert.False(t, rat.Searching)
	assert.True(t, rat.Dug)
	assert.Equal(t, []string{"packrat gets the rose.", "packrat digs a new exit hole."}, out.take())

	hole, ok := room.ExitNamed("hole")
	require.True(t, ok)
	nest, ok := hole.AsExit().Dest()
	require.True(t, ok)
	assert.Equal(t, "rat nest", nest.Core().Name)
	assert.Equal(t, "The rat's nest.", nest.Core().Short)
	assert.Equal(t, "A roughly dug hole.", hole.Core().Short)
	back, ok := nest.AsRoom().ExitNamed("exit")
	require.True(t, ok)
	assert.Equal(t, room.ID, back.AsExit().Destination.ID)

	home, ok := rat.HomeRoom()
	require.True(t, ok)
	assert.Equal(t, nest.Core().ID, home.Core().ID)
	assert.Equal(t, []world.ID{nest.Core().ID, room.ID}, rat.Path)
}

func TestPackRat_CarriesItemHome(t *testing.T) {
	w, room := newWorld(t, nil)
	den := w.NewRoom("den")
	lee, _ := join(t, w, "lee", room)
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)
	rat.SetHome(den)
	rose := w.NewItem("rose")
	world.Place(rose, lee)
	require.True(t, lee.DropItem(rose))
	advance(w)
	nest, ok := rat.HomeRoom()
	require.True(t, ok)

	require.NoError(t, rat.ActMove())
	here, ok := rat.Room()
	require.True(t, ok)
	assert.Equal(t, nest.Core().ID, here.Core().ID)
	assert.True(t, nest.AsRoom().Holds(rose), "the rose is stashed in the nest")
	assert.Empty(t, rat.Items())
	assert.True(t, rat.Searching)
	assert.Equal(t, []world.ID{nest.Core().ID}, rat.Path)
}

func TestPackRat_IgnoresDropsAtHome(t *testing.T) {
	w, room := newWorld(t, nil)
	lee, _ := join(t, w, "lee", room)
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)
	rose := w.NewItem("rose")
	world.Place(rose, lee)

	require.True(t, lee.DropItem(rose))
	advance(w)
	assert.True(t, room.Holds(rose))
	assert.Empty(t, rat.Items())
	assert.False(t, rat.Dug)
}

func TestPackRat_SearchesWhereItWanders(t *testing.T) {
	w, room := newWorld(t, nil)
	hall := w.NewRoom("hall")
	link(t, w, room, "north", hall, "")
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)
	key := w.NewItem("key")
	world.Place(key, hall)

	require.NoError(t, rat.ActMove())
	here, ok := rat.Room()
	require.True(t, ok)
	assert.Equal(t, hall.ID, here.Core().ID)
	assert.True(t, rat.Holds(key))
	assert.True(t, rat.Dug)
	_, ok = hall.ExitNamed("hole")
	assert.True(t, ok, "the nest is dug next to where the rat found the key")
}

func TestPackRat_StaysPutBehindLockedDoors(t *testing.T) {
	w, room := newWorld(t, nil)
	hall := w.NewRoom("hall")
	north := link(t, w, room, "north", hall, "")
	north.SetLocked(true)
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)

	require.NoError(t, rat.ActMove())
	here, ok := rat.Room()
	require.True(t, ok)
	assert.Equal(t, room.ID, here.Core().ID)
}

func TestPackRat_StateSurvivesAbort(t *testing.T) {
	w, room := newWorld(t, nil)
	hall := w.NewRoom("hall")
	link(t, w, room, "north", hall, "")
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)
	require.NoError(t, w.Commit())
	id := rat.ID

	require.NoError(t, w.Begin())
	require.NoError(t, rat.ActMove())
	w.Abort()

	o, ok := w.Mob(id)
	require.True(t, ok)
	restored := o.(*mobs.PackRat)
	assert.Empty(t, restored.Path)
	here, ok := restored.Room()
	require.True(t, ok)
	assert.Equal(t, room.ID, here.Core().ID)
}
