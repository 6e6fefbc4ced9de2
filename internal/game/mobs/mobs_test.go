package mobs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/mobs"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func TestClasses_AllConstructible(t *testing.T) {
	w, _ := newWorld(t, nil)
	for _, name := range []string{"mob", "cat", "sloth", "snake", "packrat", "bear", "scripted"} {
		o, err := w.Create(name)
		require.NoError(t, err, name)
		assert.Equal(t, world.KindMob, o.Kind(), name)
		assert.Equal(t, name, world.ClassName(o))
	}
}

func TestDescriptions(t *testing.T) {
	w, room := newWorld(t, nil)
	sloth := spawn[*world.Mob](t, w, "sloth", room)
	bear := spawn[*world.Mob](t, w, "bear", room)
	snake := spawn[*mobs.Snake](t, w, "snake", room)
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)

	assert.Equal(t, "A furry gray sloth.", sloth.Short)
	assert.Equal(t, "A large brown bear.", bear.Short)
	assert.Equal(t, "A green garter snake.", snake.Short)
	assert.True(t, rat.Aliased("rat"))

	found, ok := room.MobNamed("rat")
	require.True(t, ok)
	assert.Equal(t, rat.ID, found.Core().ID)
}

func TestBehaviorWeights(t *testing.T) {
	w, room := newWorld(t, nil)
	cat := spawn[*mobs.Cat](t, w, "cat", room)
	snake := spawn[*mobs.Snake](t, w, "snake", room)
	sloth := spawn[*world.Mob](t, w, "sloth", room)
	rat := spawn[*mobs.PackRat](t, w, "packrat", room)

	assert.Equal(t, 50, weight(cat.Behaviors(), "move"))
	assert.Equal(t, 100, weight(snake.Behaviors(), "move"))
	assert.Equal(t, 0, weight(sloth.Behaviors(), "move"))
	assert.Equal(t, 100, weight(rat.Behaviors(), "move"))
	for _, m := range []world.MobObject{cat, snake, sloth, rat} {
		assert.Equal(t, 5, weight(m.Behaviors(), "sleep"))
		assert.Equal(t, 25, weight(m.Behaviors(), "awake"))
	}

	assert.Equal(t, time.Second, snake.TickPeriod())
	assert.Equal(t, 5*time.Second, rat.TickPeriod())
	assert.Equal(t, world.DefaultMobPeriod, cat.TickPeriod())
}

func TestCat_HereKittyAndGoAway(t *testing.T) {
	w, room := newWorld(t, nil)
	lee, out := join(t, w, "lee", room)
	cat := spawn[*mobs.Cat](t, w, "cat", room)

	lee.Say("Here kitty kitty!")
	advance(w)
	leader, ok := cat.Leader()
	require.True(t, ok)
	assert.Equal(t, lee.ID, leader.Core().ID)
	assert.Equal(t, []string{"cat starts following you."}, out.take())

	lee.Say("go away")
	advance(w)
	_, ok = cat.Leader()
	assert.False(t, ok)
	assert.Equal(t, []string{"cat stops following you."}, out.take())
}

func TestCat_GoAwayFromStranger(t *testing.T) {
	w, room := newWorld(t, nil)
	lee, _ := join(t, w, "lee", room)
	bo, boOut := join(t, w, "bo", room)
	cat := spawn[*mobs.Cat](t, w, "cat", room)
	cat.Follow(lee)

	bo.Say("go away")
	advance(w)
	leader, ok := cat.Leader()
	require.True(t, ok)
	assert.Equal(t, lee.ID, leader.Core().ID)
	assert.NotContains(t, boOut.take(), "cat stops following you.")
}

func TestCat_Sleeping(t *testing.T) {
	w, room := newWorld(t, nil)
	lee, out := join(t, w, "lee", room)
	cat := spawn[*mobs.Cat](t, w, "cat", room)
	cat.Sleep()
	advance(w)
	out.take()

	assert.Contains(t, stripAll(cat.Look(lee)), "    cat is sleeping... shhhh.")
	lee.Say("here kitty")
	advance(w)
	_, ok := cat.Leader()
	assert.False(t, ok, "a sleeping cat does not answer")
	assert.Empty(t, out.take())
}

func TestCat_FollowsThroughExits(t *testing.T) {
	w, room := newWorld(t, nil)
	hall := w.NewRoom("hall")
	north := link(t, w, room, "north", hall, "south")
	lee, _ := join(t, w, "lee", room)
	cat := spawn[*mobs.Cat](t, w, "cat", room)
	cat.Follow(lee)

	moved, _ := lee.Go(north)
	require.True(t, moved)
	advance(w)
	here, ok := cat.Room()
	require.True(t, ok)
	assert.Equal(t, hall.ID, here.Core().ID)
}

func TestSnake_TicksWhileWorldTicks(t *testing.T) {
	w, room := newWorld(t, nil)
	hall := w.NewRoom("hall")
	link(t, w, room, "north", hall, "south")
	snake := spawn[*mobs.Snake](t, w, "snake", room)

	w.StartTicks()
	visited := map[world.ID]bool{}
	for i := 0; i < 60; i++ {
		w.Scheduler().Advance(time.Second)
		if r, ok := snake.Room(); ok {
			visited[r.Core().ID] = true
		}
	}
	w.StopTicks()
	assert.True(t, visited[hall.ID], "the snake should reach the hall within a minute")
}
