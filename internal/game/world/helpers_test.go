package world_test

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/storage"
	"github.com/cory-johannsen/tzmud/internal/text"
)

// recorder is a Client that keeps every line with ANSI stripped.
type recorder struct {
	lines  []string
	closed bool
}

func (r *recorder) Message(msg string, indent int) {
	r.lines = append(r.lines, strings.Repeat(" ", indent)+text.StripANSI(msg))
}

func (r *recorder) Lines(lines []string, indent int) {
	for _, l := range lines {
		r.Message(l, indent)
	}
}

func (r *recorder) Close() { r.closed = true }

// take returns and clears the recorded lines.
func (r *recorder) take() []string {
	out := r.lines
	r.lines = nil
	return out
}

type fixture struct {
	w     *world.World
	store *storage.Memory
	room  *world.BaseRoom
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemory()
	w := world.New(world.Options{
		Store:        store,
		PasswordCost: bcrypt.MinCost,
		Rand:         rand.New(rand.NewPCG(1, 2)),
	})
	room := w.NewRoom("lobby")
	require.NoError(t, w.Commit())
	return &fixture{w: w, store: store, room: room}
}

func (f *fixture) player(t *testing.T, name string, room world.RoomObject) (*world.Player, *recorder) {
	t.Helper()
	p, err := f.w.NewPlayer(name, "secret")
	require.NoError(t, err)
	rec := &recorder{}
	f.w.Connect(p, rec)
	p.MoveTo(room)
	return p, rec
}

// settle runs every task due within the next second of virtual time.
func (f *fixture) settle() {
	f.w.Scheduler().Advance(time.Second)
}
