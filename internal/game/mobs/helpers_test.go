package mobs_test

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/text"
)

type recorder struct {
	lines []string
}

func (r *recorder) Message(msg string, indent int) {
	r.lines = append(r.lines, strings.Repeat(" ", indent)+text.StripANSI(msg))
}

func (r *recorder) Lines(lines []string, indent int) {
	for _, l := range lines {
		r.Message(l, indent)
	}
}

func (r *recorder) Close() {}

func (r *recorder) take() []string {
	out := r.lines
	r.lines = nil
	return out
}

func newWorld(t *testing.T, scripts world.ScriptRunner) (*world.World, *world.BaseRoom) {
	t.Helper()
	w := world.New(world.Options{
		PasswordCost: bcrypt.MinCost,
		Rand:         rand.New(rand.NewPCG(1, 2)),
		Scripts:      scripts,
	})
	return w, w.NewRoom("lobby")
}

func join(t *testing.T, w *world.World, name string, room world.RoomObject) (*world.Player, *recorder) {
	t.Helper()
	p, err := w.NewPlayer(name, "secret")
	require.NoError(t, err)
	rec := &recorder{}
	w.Connect(p, rec)
	p.MoveTo(room)
	return p, rec
}

// spawn creates a mob of class at home in room.
func spawn[T world.MobObject](t *testing.T, w *world.World, class string, room world.RoomObject) T {
	t.Helper()
	o, err := w.Create(class)
	require.NoError(t, err)
	m, ok := o.(T)
	require.True(t, ok, "class %s is %T", class, o)
	m.AsCharacter().SetHome(room)
	m.AsCharacter().MoveTo(room)
	return m
}

func link(t *testing.T, w *world.World, from world.RoomObject, name string, to world.RoomObject, back string) *world.Exit {
	t.Helper()
	x, err := w.NewExit(name, from, to)
	require.NoError(t, err)
	if back != "" {
		_, err = x.Return(back)
		require.NoError(t, err)
	}
	return x
}

func weight(bs []world.Behavior, name string) int {
	for _, b := range bs {
		if b.Name == name {
			return b.Weight
		}
	}
	return -1
}

func advance(w *world.World) {
	w.Scheduler().Advance(time.Second)
}

func stripAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = text.StripANSI(l)
	}
	return out
}
