package rooms_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/rooms"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func TestTimedTrap_SpringsAfterTimer(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "timed trap")
	in := link(t, w, lobby, "north", trap, "south")
	lee, out := join(t, w, "lee", lobby)

	moved, _ := lee.Go(in)
	require.True(t, moved)
	advance(w, time.Second)
	assert.True(t, trap.Springing)
	assert.Empty(t, out.take())

	advance(w, rooms.DefaultTimer)
	assert.Equal(t, []string{"Gotcha!"}, out.take())
	assert.False(t, trap.Springing)
}

func TestTimedTrap_LaterArrivalsDoNotRestart(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "timed trap")
	in := link(t, w, lobby, "north", trap, "south")
	lee, leeOut := join(t, w, "lee", lobby)
	bo, boOut := join(t, w, "bo", lobby)

	lee.Go(in)
	advance(w, 3*time.Second)
	bo.Go(in)
	advance(w, 3*time.Second)

	assert.Contains(t, leeOut.take(), "Gotcha!")
	assert.Contains(t, boOut.take(), "Gotcha!")
}

func TestTimedTrap_EmptyWhenSprung(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "timed trap")
	in := link(t, w, lobby, "north", trap, "south")
	lee, out := join(t, w, "lee", lobby)

	lee.Go(in)
	advance(w, time.Second)
	back, ok := trap.ExitNamed("south")
	require.True(t, ok)
	lee.Go(back)
	advance(w, rooms.DefaultTimer)

	assert.NotContains(t, out.take(), "Gotcha!")
	assert.False(t, trap.Springing)
}

func TestVoiceTrap_SpringsOnTrigger(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "voice trap")
	assert.Equal(t, "quiet room", trap.Name)
	lee, leeOut := join(t, w, "lee", trap)
	_, boOut := join(t, w, "bo", trap)
	_, kimOut := join(t, w, "kim", lobby)

	lee.Say("hello there")
	advance(w, time.Second)
	assert.NotContains(t, leeOut.take(), "Gotcha!")
	boOut.take()

	lee.Say("XYZZY!")
	advance(w, time.Second)
	assert.Equal(t, []string{"Gotcha!"}, leeOut.take())
	assert.Contains(t, boOut.take(), "Gotcha!")
	assert.Empty(t, kimOut.take())
}

func TestVoiceTrap_IgnoresShoutsFromElsewhere(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "voice trap")
	link(t, w, lobby, "north", trap, "south")
	kim, _ := join(t, w, "kim", lobby)
	_, boOut := join(t, w, "bo", trap)

	lobby.Action(world.Event{Act: world.ActShout, Actor: kim.ID, Text: "xyzzy", Spread: 1})
	advance(w, time.Second)
	assert.NotContains(t, boOut.take(), "Gotcha!")
}

func TestSpringTrap_CombinedActivation(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "timed trap")
	require.NoError(t, world.SetSetting(trap, "immediate", "true"))
	require.NoError(t, world.SetSetting(trap, "timer", "0"))
	require.NoError(t, world.SetSetting(trap, "trigger", "Boo"))
	require.NoError(t, world.SetSetting(trap, "message", "Boo!"))
	in := link(t, w, lobby, "north", trap, "south")
	lee, out := join(t, w, "lee", lobby)

	lee.Go(in)
	advance(w, time.Second)
	assert.Equal(t, []string{"Boo!"}, out.take())
	assert.False(t, trap.Springing)

	lee.Say("boo")
	advance(w, time.Second)
	assert.Equal(t, []string{"Boo!"}, out.take())
	assert.Equal(t, "immediate or voice \"boo\"", trap.Activation.String())
}

func TestTeleTrap_SendsVictimsToTarget(t *testing.T) {
	w, lobby := newWorld(t)
	hall := w.NewRoom("hall")
	trap := create[*rooms.SpringTrap](t, w, "tele trap")
	require.NoError(t, world.SetSetting(trap, "targets", "hall"))
	in := link(t, w, lobby, "north", trap, "south")
	lee, out := join(t, w, "lee", lobby)

	lee.Go(in)
	advance(w, time.Second)
	advance(w, rooms.DefaultTimer)

	room, ok := lee.Room()
	require.True(t, ok)
	assert.Equal(t, hall.ID, room.Core().ID)
	assert.Equal(t, []string{"Gotcha!", "Click.", "hall"}, out.take())

	advance(w, time.Second)
	assert.Equal(t, []string{"You have been teleported."}, out.take())
}

func TestTeleTrap_AnywhereWithoutTargets(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "tele trap")
	lee, _ := join(t, w, "lee", trap)

	trap.Spring()
	room, ok := lee.Room()
	require.True(t, ok)
	assert.Equal(t, lobby.ID, room.Core().ID)
}

func TestSpringTrap_Settings(t *testing.T) {
	w, _ := newWorld(t)
	hall := w.NewRoom("hall")
	attic := w.NewRoom("attic")
	trap := create[*rooms.SpringTrap](t, w, "tele trap")

	assert.ErrorIs(t, world.SetSetting(trap, "timer", "-1"), world.ErrInvalidSetting)
	assert.ErrorIs(t, world.SetSetting(trap, "trigger", "two words"), world.ErrInvalidSetting)
	assert.ErrorIs(t, world.SetSetting(trap, "targets", "nowhere"), world.ErrInvalidSetting)

	require.NoError(t, world.SetSetting(trap, "timer", "2.5"))
	assert.Equal(t, 2500*time.Millisecond, trap.Activation.Timer)
	require.NoError(t, world.UnsetSetting(trap, "timer"))
	assert.Equal(t, rooms.DefaultTimer, trap.Activation.Timer)

	require.NoError(t, world.SetSetting(trap, "targets", "hall, "+attic.ID.String()))
	assert.Equal(t, []world.ID{hall.ID, attic.ID}, trap.Effect.Targets)
	v, err := world.GetSetting(trap, "targets")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d,%d", hall.ID, attic.ID), v)

	assert.Contains(t, trap.Info(), "Activation: timed 5s")
	assert.Contains(t, trap.Info(), `Effect: message "Gotcha!", teleport to 2 target(s)`)
}

func TestSpringTrap_CloneCopiesPolicies(t *testing.T) {
	w, _ := newWorld(t)
	hall := w.NewRoom("hall")
	trap := create[*rooms.SpringTrap](t, w, "tele trap")
	trap.AddTarget(hall)

	o, err := w.Clone(trap)
	require.NoError(t, err)
	clone := o.(*rooms.SpringTrap)
	assert.Equal(t, trap.Activation, clone.Activation)
	assert.Equal(t, trap.Effect, clone.Effect)

	clone.Effect.Targets[0] = 0
	assert.Equal(t, hall.ID, trap.Effect.Targets[0])
}

func TestSpringTrap_SurvivesAbort(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.SpringTrap](t, w, "timed trap")
	_, out := join(t, w, "lee", trap)
	link(t, w, lobby, "north", trap, "south")

	require.NoError(t, w.Begin())
	trap.Arm(time.Second)
	w.Abort()

	r, ok := w.Room(trap.ID)
	require.True(t, ok)
	restored := r.(*rooms.SpringTrap)
	assert.False(t, restored.Springing)
	advance(w, 2*time.Second)
	assert.Empty(t, out.take())
}
