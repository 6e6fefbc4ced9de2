package gameserver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tzmud/internal/game/command"
)

func TestDispatcher_EveryCommandHasAHandler(t *testing.T) {
	h := newHarness(t)
	registry := command.DefaultRegistry()
	for _, section := range []command.Section{command.Actions, command.Wizard, command.Admin} {
		for _, cmd := range registry.Commands(section) {
			_, ok := h.d.Handler(section, cmd.Name)
			assert.True(t, ok, "%s%s has no handler", section.Sigil(), cmd.Name)
		}
	}
}

func TestDispatcher_PrivilegeGate(t *testing.T) {
	h := newHarness(t)
	h.player("alice", h.lobby)

	assert.Equal(t, []string{"Wizards only."}, h.do("alice", "@list rooms"))
	assert.Equal(t, []string{"Admin only."}, h.do("alice", "!nudge"))

	h.w.SetWizard(h.get("alice"), true)
	require.NoError(t, h.w.Commit())
	assert.Equal(t, []string{"(#1) lobby"}, h.do("alice", "@list rooms"))
	assert.Equal(t, []string{"Admin only."}, h.do("alice", "!nudge"))
}

func TestDispatcher_UnknownAndMisused(t *testing.T) {
	h := newHarness(t)
	h.player("alice", h.lobby)

	assert.Equal(t, []string{"Command not understood."}, h.do("alice", "xyzzy plugh"))
	assert.Equal(t, []string{"Command used incorrectly."}, h.do("alice", "get"))
	assert.Equal(t, []string{"Command used incorrectly."}, h.do("alice", "put rose"))
	assert.Empty(t, h.do("alice", "   "))
}

func TestDispatcher_BareExitNameTravels(t *testing.T) {
	h := newHarness(t)
	garden := h.room("garden", "north", "south")
	h.player("alice", h.lobby)

	out := h.do("alice", "north")
	require.NotEmpty(t, out)
	assert.Equal(t, "garden", out[0])
	room, ok := h.get("alice").Room()
	require.True(t, ok)
	assert.Equal(t, garden.ID, room.Core().ID)
}

func TestDispatcher_PanicIsRecoveredAndRolledBack(t *testing.T) {
	h := newHarness(t)
	h.player("alice", h.lobby)
	h.d.handlers[handlerKey{command.Actions, "time"}] = func(c *Context) error {
		c.Player.SetPref("colour", "blue")
		panic("boom")
	}

	out := h.do("alice", "time")
	assert.Equal(t, []string{"Sorry. Having trouble with that command. Try: help time"}, out)
	_, set := h.get("alice").Pref("colour")
	assert.False(t, set, "the change made before the panic must be rolled back")
	room, ok := h.get("alice").Room()
	require.True(t, ok)
	assert.True(t, room.AsRoom().Present(h.get("alice")))
}

func TestDispatcher_ErrorAbortsAndDebugShowsIt(t *testing.T) {
	h := newHarness(t)
	h.d.debug = true
	h.player("alice", h.lobby)
	h.d.handlers[handlerKey{command.Actions, "time"}] = func(c *Context) error {
		c.Player.SetPref("colour", "blue")
		return errors.New("disk on fire")
	}

	out := h.do("alice", "time")
	assert.Equal(t, []string{
		"Sorry. Having trouble with that command. Try: help time",
		"disk on fire",
	}, out)
	_, set := h.get("alice").Pref("colour")
	assert.False(t, set)
}

func TestDispatcher_WizardTroubleNamesWizardHelp(t *testing.T) {
	h := newHarness(t)
	h.wizard("merlin", h.lobby)
	h.d.handlers[handlerKey{command.Wizard, "list"}] = func(c *Context) error {
		return errors.New("broken")
	}
	assert.Equal(t, []string{"Sorry. Having trouble with that command. Try: @help list"}, h.do("merlin", "@list rooms"))
}

func TestDispatcher_UsageErrorAborts(t *testing.T) {
	h := newHarness(t)
	h.player("alice", h.lobby)
	h.d.handlers[handlerKey{command.Actions, "time"}] = func(c *Context) error {
		c.Player.SetPref("colour", "blue")
		return usage(c, "everything")
	}
	assert.Equal(t, []string{"Command used incorrectly."}, h.do("alice", "time"))
	_, set := h.get("alice").Pref("colour")
	assert.False(t, set)
}

func TestDispatcher_StaleTransactionIsAborted(t *testing.T) {
	h := newHarness(t)
	h.player("alice", h.lobby)
	require.NoError(t, h.w.Begin())
	h.get("alice").SetPref("stale", "yes")

	h.do("alice", "time")
	_, set := h.get("alice").Pref("stale")
	assert.False(t, set)
}

func TestReconcile_RestoresRoomMembership(t *testing.T) {
	h := newHarness(t)
	other := h.w.NewRoom("closet")
	p := h.player("alice", h.lobby)
	require.NoError(t, h.w.Commit())

	// Simulate a desynchronised membership list.
	p.MoveTo(other)
	h.lobby.PlayerIDs = append(h.lobby.PlayerIDs, p.ID)

	reconcile(h.w, p)
	room, ok := p.Room()
	require.True(t, ok)
	assert.Equal(t, other.ID, room.Core().ID)
	assert.False(t, h.lobby.Present(p))
	assert.True(t, other.Present(p))
	assert.False(t, h.w.InTx())
}
