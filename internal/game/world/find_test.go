package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func TestFind(t *testing.T) {
	f := newFixture(t)
	hall := f.w.NewRoom("hall")
	north, err := f.w.NewExit("north", f.room, hall)
	require.NoError(t, err)
	north.AddAka("n")
	lee, _ := f.player(t, "lee", f.room)
	bo, _ := f.player(t, "bo", f.room)
	bo.AddAka("bobo")
	cat := f.w.NewMob("cat", f.room)

	floorRose := f.w.NewItem("rose")
	world.Place(floorRose, f.room)
	heldRose := f.w.NewItem("rose")
	world.Place(heldRose, lee)
	cup := f.w.NewItem("cup")
	cup.AddAka("mug")
	world.Place(cup, lee)

	tests := []struct {
		name string
		ref  world.Reference
		want world.ID
	}{
		{name: "room items before held items", ref: world.Reference{Name: "rose"}, want: floorRose.ID},
		{name: "held item", ref: world.Reference{Name: "cup"}, want: cup.ID},
		{name: "alias", ref: world.Reference{Name: "mug"}, want: cup.ID},
		{name: "article", ref: world.Reference{Name: "the cup"}, want: cup.ID},
		{name: "room", ref: world.Reference{Name: "lobby"}, want: f.room.ID},
		{name: "player", ref: world.Reference{Name: "BO"}, want: bo.ID},
		{name: "player alias", ref: world.Reference{Name: "bobo"}, want: bo.ID},
		{name: "mob", ref: world.Reference{Name: "cat"}, want: cat.ID},
		{name: "exit", ref: world.Reference{Name: "north"}, want: north.ID},
		{name: "exit alias", ref: world.Reference{Name: "n"}, want: north.ID},
		{name: "held id", ref: world.Reference{ID: heldRose.ID}, want: heldRose.ID},
		{name: "exit id", ref: world.Reference{ID: north.ID}, want: north.ID},
		{name: "self id", ref: world.Reference{ID: lee.ID}, want: lee.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := world.Find(tt.ref, f.room, lee)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Core().ID)
		})
	}
}

func TestFind_Misses(t *testing.T) {
	f := newFixture(t)
	hall := f.w.NewRoom("hall")
	lee, _ := f.player(t, "lee", f.room)
	elsewhere := f.w.NewItem("rose")
	world.Place(elsewhere, hall)

	for _, ref := range []world.Reference{
		{},
		{Name: "rose"},
		{ID: elsewhere.ID},
		{ID: hall.ID},
		{ID: 999},
	} {
		_, ok := world.Find(ref, f.room, lee)
		assert.False(t, ok, "ref %s", ref)
	}
}

func TestFind_NestedItemsAreNotDirect(t *testing.T) {
	f := newFixture(t)
	lee, _ := f.player(t, "lee", f.room)
	cup := f.w.NewContainer("cup")
	world.Place(cup, lee)
	rose := f.w.NewItem("rose")
	world.Place(rose, cup)

	assert.False(t, lee.Holds(rose))
	assert.True(t, lee.HasInside(rose))
	_, ok := lee.ItemNamed("rose")
	assert.False(t, ok)
	_, ok = world.Find(world.Reference{Name: "rose"}, f.room, lee)
	assert.False(t, ok)
}

func TestFindAll_PriorityOrder(t *testing.T) {
	f := newFixture(t)
	lee, _ := f.player(t, "lee", f.room)
	floor := f.w.NewItem("bell")
	world.Place(floor, f.room)
	held := f.w.NewItem("bell")
	world.Place(held, lee)
	mob := f.w.NewMob("bell", f.room)

	got := world.FindAll(world.Reference{Name: "bell"}, f.room, lee)
	require.Len(t, got, 3)
	assert.Equal(t, []world.ID{floor.ID, held.ID, mob.ID},
		[]world.ID{got[0].Core().ID, got[1].Core().ID, got[2].Core().ID})
}
