package gameserver

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/tzmud/internal/game/command"
	_ "github.com/cory-johannsen/tzmud/internal/game/items"
	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/storage"
	"github.com/cory-johannsen/tzmud/internal/text"
)

// recorder is a world.Client that keeps every line with ANSI stripped.
type recorder struct {
	lines  []string
	closed bool
}

func (r *recorder) Message(msg string, indent int) {
	for _, l := range strings.Split(msg, "\n") {
		r.lines = append(r.lines, strings.Repeat(" ", indent)+text.StripANSI(l))
	}
}

func (r *recorder) Lines(lines []string, indent int) {
	for _, l := range lines {
		r.Message(l, indent)
	}
}

func (r *recorder) Close() { r.closed = true }

func (r *recorder) take() []string {
	out := r.lines
	r.lines = nil
	return out
}

// harness is a world with a lobby, a dispatcher and recorded players.
type harness struct {
	t       *testing.T
	w       *world.World
	store   *storage.Memory
	lobby   *world.BaseRoom
	control *Control
	d       *Dispatcher
	clients map[string]*recorder
	ids     map[string]world.ID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := storage.NewMemory()
	w := world.New(world.Options{
		Store:        store,
		PasswordCost: bcrypt.MinCost,
		Rand:         rand.New(rand.NewPCG(1, 2)),
		Clock:        func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	lobby := w.NewRoom("lobby")
	lobby.SetShort("A plain lobby.")
	require.NoError(t, w.Commit())

	control := &Control{Store: store, Delay: time.Hour}
	return &harness{
		t:       t,
		w:       w,
		store:   store,
		lobby:   lobby,
		control: control,
		d:       NewDispatcher(command.DefaultRegistry(), control, false, zap.NewNop()),
		clients: map[string]*recorder{},
		ids:     map[string]world.ID{},
	}
}

// player creates a connected player standing in room.
func (h *harness) player(name string, room world.RoomObject) *world.Player {
	h.t.Helper()
	p, err := h.w.NewPlayer(name, "secret")
	require.NoError(h.t, err)
	rec := &recorder{}
	h.w.Connect(p, rec)
	p.SetLoggedIn(true)
	p.MoveTo(room)
	require.NoError(h.t, h.w.Commit())
	h.clients[name] = rec
	h.ids[name] = p.ID
	return p
}

// wizard creates a connected wizard.
func (h *harness) wizard(name string, room world.RoomObject) *world.Player {
	p := h.player(name, room)
	h.w.SetWizard(p, true)
	require.NoError(h.t, h.w.Commit())
	return p
}

// get returns the current object of a named player. An aborted command
// replaces the objects it touched.
func (h *harness) get(name string) *world.Player {
	h.t.Helper()
	p, ok := h.w.Player(h.ids[name])
	require.True(h.t, ok, name)
	return p
}

// do runs line as the named player and returns what that player was told.
func (h *harness) do(name, line string) []string {
	h.t.Helper()
	h.clients[name].take()
	h.d.Dispatch(h.w, h.get(name), line)
	require.False(h.t, h.w.InTx(), "transaction left open by %q", line)
	return h.clients[name].take()
}

// heard settles pending events and returns what the named player was told.
func (h *harness) heard(name string) []string {
	h.w.Scheduler().Advance(time.Second)
	return h.clients[name].take()
}

// item creates an item of class and places it in dest.
func (h *harness) item(class string, dest world.Container) world.ItemObject {
	h.t.Helper()
	o, err := h.w.Create(class)
	require.NoError(h.t, err)
	it := o.(world.ItemObject)
	world.Place(it, dest)
	require.NoError(h.t, h.w.Commit())
	return it
}

// room creates a room joined to the lobby by a pair of linked exits.
func (h *harness) room(name, there, back string) *world.BaseRoom {
	h.t.Helper()
	r := h.w.NewRoom(name)
	x, err := h.w.NewExit(there, h.lobby, r)
	require.NoError(h.t, err)
	_, err = x.Return(back)
	require.NoError(h.t, err)
	require.NoError(h.t, h.w.Commit())
	return r
}
