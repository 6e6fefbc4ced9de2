package rooms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/items"
	"github.com/cory-johannsen/tzmud/internal/game/rooms"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// exhibit follows the zoo exits to the cage of class.
func exhibit(t *testing.T, z *rooms.Zoo, class string) (outside, cage world.RoomObject, door *world.Exit) {
	t.Helper()
	see, ok := z.ExitNamed("see the " + class)
	require.True(t, ok, "no exhibit for %s", class)
	outside, ok = see.AsExit().Dest()
	require.True(t, ok)
	x, ok := outside.AsRoom().ExitNamed("door")
	require.True(t, ok)
	cage, ok = x.AsExit().Dest()
	require.True(t, ok)
	return outside, cage, x.AsExit()
}

func zooKey(t *testing.T, z *rooms.Zoo) *items.Key {
	t.Helper()
	for _, it := range z.Items() {
		if k, ok := it.(*items.Key); ok {
			return k
		}
	}
	require.FailNow(t, "zoo has no key")
	return nil
}

func inhabitants(cage world.RoomObject, class string) []world.MobObject {
	var out []world.MobObject
	for _, m := range cage.AsRoom().Mobs() {
		if world.ClassName(m) == class {
			out = append(out, m)
		}
	}
	return out
}

func TestZoo_BuildsACagePerMobClass(t *testing.T) {
	w, _ := newWorld(t)
	z := create[*rooms.Zoo](t, w, "zoo")
	classes := world.Classes(world.KindMob)
	require.NotEmpty(t, classes)
	assert.Len(t, z.Exits(), len(classes))

	key := zooKey(t, z)
	assert.Equal(t, key.Code, z.KeyCode)
	for _, c := range classes {
		outside, cage, door := exhibit(t, z, c.Name)
		assert.Equal(t, "outside the "+c.Name+" cage", outside.Core().Name)
		assert.Equal(t, c.Name+" cage", cage.Core().Name)
		assert.True(t, door.Locked, c.Name)
		assert.True(t, key.Fits(door), c.Name)

		mobs := inhabitants(cage, c.Name)
		require.Len(t, mobs, 1, c.Name)
		home, ok := mobs[0].AsCharacter().HomeRoom()
		require.True(t, ok)
		assert.Equal(t, cage.Core().ID, home.Core().ID)

		back, ok := outside.AsRoom().ExitNamed("zoo")
		require.True(t, ok)
		assert.Equal(t, z.ID, back.AsExit().Destination.ID)
	}
}

func TestZoo_Respawns(t *testing.T) {
	w, _ := newWorld(t)
	z := create[*rooms.Zoo](t, w, "zoo")
	_, cage, door := exhibit(t, z, "cat")
	cat := inhabitants(cage, "cat")[0]
	before := w.Count(world.KindRoom)

	cat.Destroy()
	door.SetLocked(false)
	require.NoError(t, z.Tick())

	again := inhabitants(cage, "cat")
	require.Len(t, again, 1)
	assert.NotEqual(t, cat.Core().ID, again[0].Core().ID)
	assert.True(t, door.Locked)
	assert.Equal(t, before, w.Count(world.KindRoom))
}

func TestZoo_ReplacesLostKey(t *testing.T) {
	w, _ := newWorld(t)
	z := create[*rooms.Zoo](t, w, "zoo")
	zooKey(t, z).Destroy()

	z.Populate()
	key := zooKey(t, z)
	assert.Equal(t, key.Code, z.KeyCode)
	_, _, door := exhibit(t, z, "bear")
	assert.True(t, key.Fits(door))
}

func TestZoo_DestroyTakesDownExhibits(t *testing.T) {
	w, lobby := newWorld(t)
	z := create[*rooms.Zoo](t, w, "zoo")
	_, cage, _ := exhibit(t, z, "cat")
	sloth, err := w.Create("sloth")
	require.NoError(t, err)
	visitor := sloth.(world.MobObject).AsCharacter()
	visitor.SetHome(lobby)
	visitor.MoveTo(cage)

	z.Destroy()

	assert.Equal(t, 1, w.Count(world.KindRoom))
	assert.Equal(t, 1, w.Count(world.KindMob))
	assert.Zero(t, w.Count(world.KindItem))
	assert.True(t, lobby.Present(sloth.(world.CharacterObject)))
}

func TestZoo_Info(t *testing.T) {
	w, _ := newWorld(t)
	z := create[*rooms.Zoo](t, w, "zoo")
	assert.Equal(t, rooms.ZooPeriod, z.TickPeriod())
	assert.Equal(t, "All sorts of strange creatures.", z.Short)
}
