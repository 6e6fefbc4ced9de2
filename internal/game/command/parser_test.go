package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

func named(n string) world.Reference { return world.Reference{Name: n} }
func id(n int64) world.Reference     { return world.Reference{ID: world.ID(n)} }

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestParse_Actions(t *testing.T) {
	tests := []struct {
		line string
		want Result
	}{
		{"look", Result{Verb: "look"}},
		{"L", Result{Verb: "look"}},
		{"look at the rose", Result{Verb: "look", Obj: named("the rose")}},
		{"look #12", Result{Verb: "look", Obj: id(12)}},
		{"info", Result{Verb: "info"}},
		{"time", Result{Verb: "time"}},
		{"get rose", Result{Verb: "get", Obj: named("rose")}},
		{"TAKE the Rose", Result{Verb: "get", Obj: named("the Rose")}},
		{"get all", Result{Verb: "get", Obj: named("all")}},
		{"get 5 coins", Result{Verb: "get", Count: 5, Obj: named("coins")}},
		{"drop 3 coins", Result{Verb: "drop", Count: 3, Obj: named("coins")}},
		{"drop #7", Result{Verb: "drop", Obj: id(7)}},
		{"put the red key in the box", Result{Verb: "put", Obj: named("the red key"), Obj2: named("the box")}},
		{"put #4 in #5", Result{Verb: "put", Obj: id(4), Obj2: id(5)}},
		{"take rose from cup", Result{Verb: "take", Obj: named("rose"), Obj2: named("cup")}},
		{"take 2 coins from bag", Result{Verb: "take", Count: 2, Obj: named("coins"), Obj2: named("bag")}},
		{"remove rose from cup", Result{Verb: "take", Obj: named("rose"), Obj2: named("cup")}},
		{"remove hat", Result{Verb: "remove", Obj: named("hat")}},
		{"wear silver ring", Result{Verb: "wear", Obj: named("silver ring")}},
		{"i", Result{Verb: "inventory"}},
		{"inv", Result{Verb: "inventory"}},
		{"go north", Result{Verb: "go", Obj: named("north")}},
		{"go to the rat nest", Result{Verb: "go", Obj: named("the rat nest")}},
		{"enter hole", Result{Verb: "go", Obj: named("hole")}},
		{"go", Result{Verb: "go"}},
		{"lock door", Result{Verb: "lock", Obj: named("door")}},
		{"unlock front door with brass key", Result{Verb: "unlock", Obj: named("front door"), Obj2: named("brass key")}},
		{"follow cat", Result{Verb: "follow", Obj: named("cat")}},
		{"follow", Result{Verb: "follow"}},
		{"exits", Result{Verb: "exits"}},
		{"say hello   there", Result{Verb: "say", Text: "hello   there"}},
		{`"hi!`, Result{Verb: "say", Text: "hi!"}},
		{"shout help me", Result{Verb: "shout", Text: "help me"}},
		{":waves", Result{Verb: "emote", Text: "waves"}},
		{"emote dances a jig", Result{Verb: "emote", Text: "dances a jig"}},
		{"quit", Result{Verb: "quit"}},
		{"who", Result{Verb: "who"}},
		{"set", Result{Verb: "set"}},
		{"set ansi", Result{Verb: "set", Var: "ansi"}},
		{"set ANSI=false", Result{Verb: "set", Var: "ansi", Val: "false", HasVal: true}},
		{"set wrap = 60", Result{Verb: "set", Var: "wrap", Val: "60", HasVal: true}},
		{"unset ansi", Result{Verb: "unset", Var: "ansi"}},
		{"password old$ new!", Result{Verb: "password", Old: "old$", New: "new!"}},
		{"help", Result{Verb: "help"}},
		{"? get", Result{Verb: "help", Topic: "get"}},
		{"use camera", Result{Verb: "use", Obj: named("camera")}},
		{"use camera on cat", Result{Verb: "use", Obj: named("camera"), Obj2: named("cat")}},
		{"listen to door", Result{Verb: "listen", Obj: named("door")}},
		{"stats", Result{Verb: "stats"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			tt.want.Section = Actions
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Wizard(t *testing.T) {
	tests := []struct {
		line string
		want Result
	}{
		{"@teleport", Result{Verb: "teleport"}},
		{"@teleport lobby", Result{Verb: "teleport", Obj: named("lobby")}},
		{"@teleport rose to #3", Result{Verb: "teleport", Obj: named("rose"), Obj2: id(3)}},
		{"@dig north to #5 return by south", Result{Verb: "dig", Obj: named("north"), Obj2: id(5), Back: named("south")}},
		{"@dig up to the attic", Result{Verb: "dig", Obj: named("up"), Obj2: named("the attic")}},
		{"@dig hole to rat nest return by exit", Result{Verb: "dig", Obj: named("hole"), Obj2: named("rat nest"), Back: named("exit")}},
		{"@lock door with #9", Result{Verb: "lock", Obj: named("door"), Obj2: id(9)}},
		{"@list Mobs", Result{Verb: "list", Topic: "mobs"}},
		{"@clone rose", Result{Verb: "clone", Obj: named("rose")}},
		{"@clone #4 as red rose", Result{Verb: "clone", Obj: id(4), Text: "red rose"}},
		{"@study timed trap", Result{Verb: "study", Topic: "timed trap"}},
		{"@rename to great hall", Result{Verb: "rename", Text: "great hall"}},
		{"@rename rose to tulip", Result{Verb: "rename", Obj: named("rose"), Text: "tulip"}},
		{"@short is A quiet room.", Result{Verb: "short", Text: "A quiet room."}},
		{"@short for rose is Smells nice.", Result{Verb: "short", Obj: named("rose"), Text: "Smells nice."}},
		{"@long #3 is Very long.", Result{Verb: "long", Obj: id(3), Text: "Very long."}},
		{"@destroy cat", Result{Verb: "destroy", Obj: named("cat")}},
		{"@set timer on trap", Result{Verb: "set", Var: "timer", Obj: named("trap")}},
		{"@set message = Look out on the left! on trap", Result{Verb: "set", Var: "message", Val: "Look out on the left!", HasVal: true, Obj: named("trap")}},
		{"@unset max on #2", Result{Verb: "unset", Var: "max", Obj: id(2)}},
		{"@help dig", Result{Verb: "help", Topic: "dig"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			tt.want.Section = Wizard
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Admin(t *testing.T) {
	got, err := Parse("!Restart 10")
	require.NoError(t, err)
	assert.Equal(t, Result{Section: Admin, Verb: "restart", Args: []string{"10"}, Text: "10"}, got)

	got, err = Parse("!  nudge")
	require.NoError(t, err)
	assert.Equal(t, Result{Section: Admin, Verb: "nudge"}, got)

	_, err = Parse("!")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestParse_NoMatch(t *testing.T) {
	for _, line := range []string{
		"north",
		"xyzzy plugh",
		"get",
		"put rose in",
		"put rose",
		"lock door with",
		"say",
		"@dig north",
		"@list things",
		"@frobnicate",
		"password onlyone",
		"go to",
		"get rose.",
	} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrNoMatch, line)
	}
}

func TestParse_IDShortCircuitsNames(t *testing.T) {
	got, err := Parse("get #0012")
	require.NoError(t, err)
	assert.Equal(t, id(12), got.Obj)
	assert.Empty(t, got.Obj.Name)

	_, err = Parse("get #x")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFirstWord(t *testing.T) {
	assert.Equal(t, "get", FirstWord("  GET me  "))
	assert.Equal(t, "dig", FirstWord("@dig"))
	assert.Equal(t, "", FirstWord("@"))
}

var (
	reserved = map[string]bool{"in": true, "from": true, "with": true, "to": true, "as": true, "on": true, "is": true}
	nameWord = rapid.StringMatching(`[a-z][a-z0-9]{0,7}`).Filter(func(w string) bool { return !reserved[w] })
)

func TestPropertyNamesStopAtKeyword(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first := rapid.SliceOfN(nameWord, 1, 4).Draw(t, "first")
		second := rapid.SliceOfN(nameWord, 1, 4).Draw(t, "second")
		a, b := strings.Join(first, " "), strings.Join(second, " ")

		r, err := Parse("put " + a + " in " + b)
		if err != nil {
			t.Fatalf("put %q in %q: %v", a, b, err)
		}
		if r.Obj.Name != a || r.Obj2.Name != b {
			t.Fatalf("put %q in %q parsed as %q / %q", a, b, r.Obj.Name, r.Obj2.Name)
		}

		r, err = Parse("take " + a + " from " + b)
		if err != nil || r.Verb != "take" || r.Obj.Name != a || r.Obj2.Name != b {
			t.Fatalf("take %q from %q parsed as %+v (%v)", a, b, r, err)
		}
	})
}

func TestPropertyParseNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.String().Draw(t, "line")
		r, err := Parse(line)
		if err == nil && r.Verb == "" {
			t.Fatalf("line %q parsed without a verb", line)
		}
	})
}
