package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()
	for _, tc := range []struct {
		section Section
		word    string
		want    string
	}{
		{Actions, "look", "look"},
		{Actions, "i", "inventory"},
		{Wizard, "dig", "dig"},
		{Admin, "rollback", "rollback"},
	} {
		cmd, ok := r.Resolve(tc.section, tc.word)
		require.True(t, ok, "%s %s", tc.section, tc.word)
		assert.Equal(t, tc.want, cmd.Name)
		assert.Equal(t, tc.section, cmd.Section)
	}
	for _, s := range []Section{Actions, Wizard, Admin} {
		assert.NotEmpty(t, r.Commands(s), s.String())
	}
}

func TestRegistry_SectionsAreSeparate(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve(Actions, "dig")
	assert.False(t, ok)
	_, ok = r.Resolve(Admin, "teleport")
	assert.False(t, ok)

	act, ok := r.Resolve(Actions, "lock")
	require.True(t, ok)
	wiz, ok := r.Resolve(Wizard, "lock")
	require.True(t, ok)
	assert.NotEqual(t, act.Usage, wiz.Usage)
}

func TestNewRegistry_Collisions(t *testing.T) {
	for name, tc := range map[string]struct {
		cmds []Command
		msg  string
	}{
		"name twice": {
			cmds: []Command{{Name: "test", Section: Wizard}, {Name: "test", Section: Wizard}},
			msg:  `wizard command name "test" already used by "test"`,
		},
		"alias twice": {
			cmds: []Command{{Name: "one", Aliases: []string{"t"}}, {Name: "two", Aliases: []string{"t"}}},
			msg:  `alias "t" already used by "one"`,
		},
		"alias shadows name": {
			cmds: []Command{{Name: "t"}, {Name: "two", Aliases: []string{"t"}}},
			msg:  `alias "t" already used by "t"`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(tc.cmds)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestNewRegistry_SameNameInTwoSections(t *testing.T) {
	r, err := NewRegistry([]Command{
		{Name: "help", Section: Actions},
		{Name: "help", Section: Admin},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"help"}, r.Names(Admin))
}

func TestRegistry_NamesSortedWithoutAliases(t *testing.T) {
	names := DefaultRegistry().Names(Actions)
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "inventory")
	assert.NotContains(t, names, "i")
}

func TestBuiltinCommands_HaveHelp(t *testing.T) {
	for _, c := range BuiltinCommands() {
		assert.NotEmpty(t, c.Usage, "%s %s", c.Section, c.Name)
		assert.NotEmpty(t, c.Help, "%s %s", c.Section, c.Name)
	}
}

// Every command in the grammar has a registry entry, so help can describe
// anything the parser accepts.
func TestGrammarVerbsAreRegistered(t *testing.T) {
	r := DefaultRegistry()
	lines := map[Section][]string{
		Actions: {"look", "info x", "time", "get x", "drop x", "put x in y", "take x from y", "use x",
			"i", "wear x", "remove x", "go x", "lock x", "unlock x", "follow x", "exits", "say x",
			"shout x", "emote x", "listen x", "quit", "who", "set", "unset x", "stats", "password a b", "help"},
		Wizard: {"@teleport", "@dig a to b", "@lock a with b", "@list rooms", "@clone x", "@study x",
			"@rename to x", "@short is x", "@long is x", "@destroy x", "@set a on b", "@unset a on b", "@help"},
	}
	for section, ls := range lines {
		for _, l := range ls {
			res, err := Parse(l)
			require.NoError(t, err, l)
			assert.Equal(t, section, res.Section, l)
			_, ok := r.Resolve(section, res.Verb)
			assert.True(t, ok, "%s is not registered", res.Verb)
		}
	}
}

func TestProperty_EveryWordResolvesToItsCommand(t *testing.T) {
	r := DefaultRegistry()
	rapid.Check(t, func(t *rapid.T) {
		section := rapid.SampledFrom([]Section{Actions, Wizard, Admin}).Draw(t, "section")
		cmd := rapid.SampledFrom(r.Commands(section)).Draw(t, "cmd")
		for _, word := range append([]string{cmd.Name}, cmd.Aliases...) {
			got, ok := r.Resolve(section, word)
			if !ok || got != cmd {
				t.Fatalf("%s %q resolved to %v", section, word, got)
			}
		}
	})
}
