package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/items"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func TestDig_CreatesRoomAndWayBack(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)
	h.player("bob", h.lobby)

	out := h.do("merlin", "@dig north to attic return by south")
	assert.Equal(t, []string{"Created attic.", "You dig north to attic.", "The way back is south."}, out)

	attic, ok := h.w.RoomNamed("attic")
	require.True(t, ok)
	north, ok := h.lobby.ExitNamed("north")
	require.True(t, ok)
	dest, ok := north.AsExit().Dest()
	require.True(t, ok)
	assert.Equal(t, attic.Core().ID, dest.Core().ID)

	south, ok := attic.AsRoom().ExitNamed("south")
	require.True(t, ok)
	back, ok := south.AsExit().Dest()
	require.True(t, ok)
	assert.Equal(t, h.lobby.ID, back.Core().ID)
	linked, ok := north.AsExit().Linked()
	require.True(t, ok)
	assert.Equal(t, south.Core().ID, linked.Core().ID)

	assert.Equal(t, []string{"merlin digs a new exit north."}, h.heard("bob"))
}

func TestDig_ToExistingRoomRedirectsExit(t *testing.T) {
	h := newHarness(t)
	h.room("garden", "north", "south")
	cellar := h.w.NewRoom("cellar")
	require.NoError(t, h.w.Commit())
	h.wizard("merlin", h.lobby)

	assert.Equal(t, []string{"You dig north to cellar."}, h.do("merlin", "@dig north to cellar"))
	north, ok := h.lobby.ExitNamed("north")
	require.True(t, ok)
	dest, ok := north.AsExit().Dest()
	require.True(t, ok)
	assert.Equal(t, cellar.ID, dest.Core().ID)
	assert.Len(t, h.lobby.Exits(), 1)

	assert.Equal(t, []string{"#999 is not a room."}, h.do("merlin", "@dig up to #999"))
}

func TestTeleport_Self(t *testing.T) {
	h := newHarness(t)
	garden := h.room("garden", "north", "south")
	h.wizard("merlin", h.lobby)
	h.player("bob", garden)

	out := h.do("merlin", "@teleport bob")
	assert.Equal(t, []string{"garden", "bob is here."}, out)
	room, ok := h.get("merlin").Room()
	require.True(t, ok)
	assert.Equal(t, garden.ID, room.Core().ID)
	assert.Equal(t, []string{"merlin appears."}, h.heard("bob"))

	assert.Equal(t, []string{"lobby"}, h.do("merlin", "@teleport"), "no argument goes home")
	room, ok = h.get("merlin").Room()
	require.True(t, ok)
	assert.Equal(t, h.lobby.ID, room.Core().ID)

	assert.Equal(t, []string{"garden", "bob is here."}, h.do("merlin", "@teleport garden"))
	assert.Equal(t, []string{"No such room or player."}, h.do("merlin", "@teleport narnia"))
}

func TestTeleport_OtherPlayerLandsLater(t *testing.T) {
	h := newHarness(t)
	garden := h.room("garden", "north", "south")
	h.wizard("merlin", h.lobby)
	h.player("bob", h.lobby)

	assert.Equal(t, []string{"You send bob to garden."}, h.do("merlin", "@teleport bob to garden"))
	room, ok := h.get("bob").Room()
	require.True(t, ok)
	assert.Equal(t, h.lobby.ID, room.Core().ID, "bob leaves only after the delay")

	assert.Equal(t, []string{
		"merlin waves their hands around mysteriously.",
		"You feel yourself being ripped away from where you are...",
		"garden",
		"You have been teleported.",
	}, h.heard("bob"))
	room, ok = h.get("bob").Room()
	require.True(t, ok)
	assert.Equal(t, garden.ID, room.Core().ID)
}

func TestTeleport_Item(t *testing.T) {
	h := newHarness(t)
	garden := h.room("garden", "north", "south")
	h.wizard("merlin", h.lobby)
	h.player("bob", h.lobby)
	h.player("carol", garden)
	rose := h.item("rose", h.lobby)

	assert.Equal(t, []string{"You send the rose to garden."}, h.do("merlin", "@teleport rose to garden"))
	assert.True(t, garden.Holds(rose))
	assert.Equal(t, []string{"merlin waves their hands around mysteriously.", "rose disappears."}, h.heard("bob"))
	assert.Equal(t, []string{"rose appears."}, h.clients["carol"].take())

	assert.Equal(t, []string{"No such place."}, h.do("merlin", "@teleport rose to narnia"))
	assert.Equal(t, []string{"No such object."}, h.do("merlin", "@teleport tulip to lobby"))
}

func TestWizardLock_AddsKey(t *testing.T) {
	h := newHarness(t)
	h.room("garden", "north", "south")
	h.wizard("merlin", h.lobby)
	key := h.item("key", h.get("merlin")).(*items.Key)
	h.item("rose", h.get("merlin"))

	assert.Equal(t, []string{"That is not a key."}, h.do("merlin", "@lock north with rose"))
	assert.Equal(t, []string{"north now accepts key."}, h.do("merlin", "@lock north with key"))
	north, ok := h.lobby.ExitNamed("north")
	require.True(t, ok)
	assert.True(t, north.AsExit().Accepts(key.Cut()))

	assert.Equal(t, []string{"You lock the door north with key key."}, h.do("merlin", "lock north with key"))
}

func TestList(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)

	assert.Equal(t, []string{"No items yet."}, h.do("merlin", "@list items"))
	rose := h.item("rose", h.lobby)
	assert.Equal(t, []string{"(" + rose.Core().ID.String() + ") rose"}, h.do("merlin", "@list items"))
	assert.Equal(t, []string{"(" + h.get("merlin").ID.String() + ") merlin"}, h.do("merlin", "@list players"))
}

func TestClone(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)
	h.player("bob", h.lobby)

	assert.Equal(t, []string{"rose created."}, h.do("merlin", "@clone rose"))
	assert.Equal(t, 1, h.w.Count(world.KindItem), "a class instance is used as it is")
	held := world.ContentsOf(h.get("merlin")).Items()
	require.Len(t, held, 1)
	assert.Equal(t, "rose", held[0].Core().Name)
	heard := h.heard("bob")
	assert.Contains(t, heard, "merlin now has rose.")

	assert.Equal(t, []string{"tulip created."}, h.do("merlin", "@clone rose as tulip"))
	assert.Equal(t, 2, h.w.Count(world.KindItem))
	tulip, ok := world.ContentsOf(h.get("merlin")).ItemNamed("tulip")
	require.True(t, ok)
	assert.Equal(t, "A red rose.", tulip.Core().Short)

	h.w.NewMob("cat", h.lobby)
	require.NoError(t, h.w.Commit())
	h.heard("bob")
	assert.Equal(t, []string{"cat created."}, h.do("merlin", "@clone cat"))
	assert.Len(t, h.lobby.Mobs(), 2)
	assert.Equal(t, []string{"cat has appeared."}, h.heard("bob"))

	assert.Equal(t, []string{"No unicorn to clone."}, h.do("merlin", "@clone unicorn"))
}

func TestStudy(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)

	assert.Equal(t, []string{
		"rose (item)",
		"    A simple flower.",
		"Settings:",
		"    visible (default true)",
		"    gettable (default true)",
		"    wearable (default false)",
	}, h.do("merlin", "@study rose"))
	assert.Equal(t, []string{"No such class."}, h.do("merlin", "@study unicorn"))
}

func TestRenameAndDescribe(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)
	rose := h.item("rose", h.lobby)

	assert.Equal(t, []string{"rose renamed to tulip."}, h.do("merlin", "@rename rose to tulip"))
	assert.Equal(t, "tulip", rose.Core().Name)

	assert.Equal(t, []string{"lobby renamed to great hall."}, h.do("merlin", "@rename to great hall"))
	_, ok := h.w.RoomNamed("great hall")
	assert.True(t, ok)

	assert.Equal(t, []string{"Short description of tulip set."}, h.do("merlin", "@short for tulip is Smells nice."))
	assert.Equal(t, "Smells nice.", rose.Core().Short)
	assert.Equal(t, []string{"Long description of great hall set."}, h.do("merlin", "@long is Vast and echoing."))
	assert.Equal(t, "Vast and echoing.", h.lobby.Long)

	assert.Equal(t, []string{"Object not found."}, h.do("merlin", "@short for unicorn is Shiny."))
}

func TestDestroy(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)
	h.player("bob", h.lobby)
	rose := h.item("rose", h.lobby)

	assert.Equal(t, []string{"rose rose destroyed."}, h.do("merlin", "@destroy rose"))
	assert.False(t, h.w.Exists(rose.Core().ID))
	assert.Equal(t, []string{"rose disappears."}, h.heard("bob"))

	assert.Equal(t, []string{"You cannot destroy yourself."}, h.do("merlin", "@destroy merlin"))
	assert.Equal(t, []string{"Cannot destroy bob while they are logged in."}, h.do("merlin", "@destroy bob"))
	assert.Equal(t, []string{"Object not found."}, h.do("merlin", "@destroy unicorn"))
}

func TestWizardSetAndUnset(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)
	h.player("bob", h.lobby)
	h.item("rose", h.lobby)

	assert.Equal(t, []string{"rose : gettable = false"}, h.do("merlin", "@set gettable = false on rose"))
	assert.Equal(t, []string{"You cannot get that."}, h.do("bob", "get rose"))
	assert.Equal(t, []string{"gettable = false"}, h.do("merlin", "@set gettable on rose"))

	assert.Equal(t, []string{"No such setting: colour."}, h.do("merlin", "@set colour = red on rose"))
	assert.Equal(t, []string{"Invalid value for gettable."}, h.do("merlin", "@set gettable = maybe on rose"))

	assert.Equal(t, []string{"rose : gettable reset to true."}, h.do("merlin", "@unset gettable on rose"))
	assert.Equal(t, []string{"You get the rose."}, h.do("bob", "get rose"))
}
