package rooms_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/cory-johannsen/tzmud/internal/game/mobs"
	"github.com/cory-johannsen/tzmud/internal/game/rooms"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func TestClasses_AllConstructible(t *testing.T) {
	w, _ := newWorld(t)
	for _, name := range []string{"small room", "trap", "library", "timed trap", "tele trap", "voice trap", "zoo"} {
		o, err := w.Create(name)
		require.NoError(t, err, name)
		assert.Equal(t, world.KindRoom, o.Kind(), name)
		assert.Equal(t, name, world.ClassName(o))
	}
	o, err := w.Create("players only")
	require.NoError(t, err)
	assert.Equal(t, world.KindExit, o.Kind())
}

var (
	_ world.RoomObject = (*rooms.SmallRoom)(nil)
	_ world.RoomObject = (*rooms.Trap)(nil)
	_ world.RoomObject = (*rooms.Library)(nil)
	_ world.RoomObject = (*rooms.SpringTrap)(nil)
	_ world.RoomObject = (*rooms.Zoo)(nil)
)

func TestClasses_AreTheirOwnRoom(t *testing.T) {
	w, _ := newWorld(t)
	for _, name := range []string{"small room", "trap", "library", "timed trap", "zoo"} {
		o, err := w.Create(name)
		require.NoError(t, err, name)
		r, ok := o.Room()
		require.True(t, ok, name)
		assert.Equal(t, o.Core().ID, r.Core().ID, name)
	}
}

func TestSmallRoom_BouncesWhenFull(t *testing.T) {
	w, lobby := newWorld(t)
	small := create[*rooms.SmallRoom](t, w, "small room")
	in := link(t, w, lobby, "north", small, "south")
	bo, boOut := join(t, w, "bo", small)
	lee, leeOut := join(t, w, "lee", lobby)

	moved, _ := lee.Go(in)
	require.True(t, moved)
	advance(w, time.Second)

	room, ok := lee.Room()
	require.True(t, ok)
	assert.Equal(t, lobby.ID, room.Core().ID)
	assert.Equal(t, []string{"The room is too full to enter.", "lobby"}, leeOut.take())
	assert.Contains(t, boOut.take(), "lee arrives from south.")
	assert.True(t, small.Present(bo))
}

func TestSmallRoom_RoomForMore(t *testing.T) {
	w, lobby := newWorld(t)
	small := create[*rooms.SmallRoom](t, w, "small room")
	in := link(t, w, lobby, "north", small, "south")
	join(t, w, "bo", small)
	lee, leeOut := join(t, w, "lee", lobby)
	require.NoError(t, world.SetSetting(small, "max", "2"))

	lee.Go(in)
	advance(w, time.Second)
	assert.True(t, small.Present(lee))
	assert.Empty(t, leeOut.take())
	assert.Contains(t, small.Info(), "Max: 2")
}

func TestSmallRoom_MaxSetting(t *testing.T) {
	w, _ := newWorld(t)
	small := create[*rooms.SmallRoom](t, w, "small room")
	assert.ErrorIs(t, world.SetSetting(small, "max", "0"), world.ErrInvalidSetting)
	require.NoError(t, world.SetSetting(small, "max", "3"))
	require.NoError(t, world.UnsetSetting(small, "max"))
	assert.Equal(t, 1, small.Max)
}

func TestSmallRoom_CloneKeepsCapacity(t *testing.T) {
	w, _ := newWorld(t)
	small := create[*rooms.SmallRoom](t, w, "small room")
	small.SetMax(4)
	o, err := w.Clone(small)
	require.NoError(t, err)
	assert.Equal(t, 4, o.(*rooms.SmallRoom).Max)
}

func TestTrap_RefusesExits(t *testing.T) {
	w, lobby := newWorld(t)
	trap := create[*rooms.Trap](t, w, "trap")
	assert.Equal(t, "There's no way out....", trap.Short)

	_, err := w.NewExit("out", trap, lobby)
	assert.ErrorIs(t, err, world.ErrNoExits)
	assert.Empty(t, trap.Exits())

	in := link(t, w, lobby, "down", trap, "")
	_, err = in.Return("up")
	assert.ErrorIs(t, err, world.ErrNoExits)
	assert.Equal(t, 1, len(lobby.Exits()))
}

func TestLibrary_ShushesSpeakers(t *testing.T) {
	w, lobby := newWorld(t)
	lib := create[*rooms.Library](t, w, "library")
	link(t, w, lobby, "east", lib, "west")
	lee, leeOut := join(t, w, "lee", lib)
	_, boOut := join(t, w, "bo", lib)
	_, kimOut := join(t, w, "kim", lobby)

	lee.Say("hello")
	advance(w, time.Second)
	assert.Equal(t, []string{"Shh! No talking!"}, leeOut.take())
	assert.Empty(t, boOut.take())
	assert.Empty(t, kimOut.take())

	lee.Emote("waves")
	advance(w, time.Second)
	assert.Equal(t, []string{"lee waves"}, boOut.take())
}

func TestLibrary_ShoutsDoNotCarryIn(t *testing.T) {
	w, lobby := newWorld(t)
	lib := create[*rooms.Library](t, w, "library")
	link(t, w, lobby, "east", lib, "west")
	kim, kimOut := join(t, w, "kim", lobby)
	_, boOut := join(t, w, "bo", lib)

	lobby.Action(world.Event{Act: world.ActShout, Actor: kim.ID, Text: "anyone there", Spread: 1})
	advance(w, time.Second)
	assert.Empty(t, boOut.take())
	assert.Empty(t, kimOut.take())
}

func TestPlayersOnly(t *testing.T) {
	w, lobby := newWorld(t)
	hall := w.NewRoom("hall")
	x := create[*rooms.PlayersOnly](t, w, "players only")
	require.NoError(t, w.InstallExit(x, lobby, hall))

	cat, err := w.Create("cat")
	require.NoError(t, err)
	c := cat.(world.MobObject).AsCharacter()
	c.MoveTo(lobby)
	moved, reason := c.Go(x)
	assert.False(t, moved)
	assert.Equal(t, "Exit is for players only.", reason)

	lee, _ := join(t, w, "lee", lobby)
	moved, _ = lee.Go(x)
	assert.True(t, moved)
	assert.True(t, hall.Present(lee))
}

func TestPlayersOnly_StillLocks(t *testing.T) {
	w, lobby := newWorld(t)
	hall := w.NewRoom("hall")
	x := create[*rooms.PlayersOnly](t, w, "players only")
	require.NoError(t, w.InstallExit(x, lobby, hall))
	x.SetLocked(true)

	lee, _ := join(t, w, "lee", lobby)
	moved, reason := lee.Go(x)
	assert.False(t, moved)
	assert.Equal(t, "The door is locked.", reason)
}
