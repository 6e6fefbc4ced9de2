package items_test

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

func newWorld(t *testing.T) (*world.World, *world.BaseRoom) {
	t.Helper()
	w := world.New(world.Options{PasswordCost: bcrypt.MinCost, Rand: rand.New(rand.NewPCG(1, 2))})
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

func create[T world.Object](t *testing.T, w *world.World, class string) T {
	t.Helper()
	o, err := w.Create(class)
	require.NoError(t, err)
	v, ok := o.(T)
	require.True(t, ok, "class %s is %T", class, o)
	return v
}

func advance(w *world.World, d time.Duration) {
	w.Scheduler().Advance(d)
}
