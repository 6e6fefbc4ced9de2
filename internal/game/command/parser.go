package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// ErrNoMatch is returned when no grammar alternative accepts a line.
var ErrNoMatch = errors.New("command not understood")

// Section selects one of the command tables.
type Section int

const (
	// Actions are the ordinary player commands.
	Actions Section = iota
	// Wizard commands start with "@".
	Wizard
	// Admin commands start with "!".
	Admin
)

func (s Section) String() string {
	switch s {
	case Wizard:
		return "wizard"
	case Admin:
		return "admin"
	default:
		return "actions"
	}
}

// Sigil returns the prefix that selects the section.
func (s Section) Sigil() string {
	switch s {
	case Wizard:
		return "@"
	case Admin:
		return "!"
	default:
		return ""
	}
}

// Result is a parsed command line. Only the fields named by the matching
// pattern are set.
type Result struct {
	Section Section
	// Verb is the canonical command name.
	Verb string

	// Obj is the primary object reference.
	Obj world.Reference
	// Obj2 is the second reference: the container of put and take, the key
	// of lock, the target of use and the destination of teleport and dig.
	Obj2 world.Reference
	// Back is the return exit of "@dig ... return by <exit>".
	Back world.Reference

	// Count is the leading number of drop and take, zero when absent.
	Count int
	// Text is free text: speech, descriptions and new names.
	Text string
	// Var names a setting. HasVal reports whether "= Val" was given.
	Var    string
	Val    string
	HasVal bool
	// Old and New are the words of password.
	Old string
	New string
	// Topic is the help topic, the listed kind or the studied class.
	Topic string
	// Args are the words after an admin verb.
	Args []string
}

// Parse turns one input line into a Result.
//
// A leading "@" selects the wizard grammar and a leading "!" the admin
// section, whose lines are split into a verb and its arguments without a
// grammar. Everything else is matched against the actions grammar.
//
// Precondition: none; the line may contain any text.
// Postcondition: Returns the first matching alternative, or ErrNoMatch when
// nothing matches. The error never carries partial results.
func Parse(line string) (Result, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Result{}, ErrNoMatch
	}
	switch line[0] {
	case '!':
		return parseAdmin(strings.TrimSpace(line[1:]))
	case '@':
		return match(Wizard, wizardGrammar, strings.TrimSpace(line[1:]))
	}
	return match(Actions, actionsGrammar, expandShorthand(line))
}

// expandShorthand separates the one-character say and emote forms from
// their text, so `"hi` reads as `" hi`.
func expandShorthand(line string) string {
	if (line[0] == '"' || line[0] == ':') && len(line) > 1 && line[1] != ' ' {
		return line[:1] + " " + line[1:]
	}
	return line
}

func parseAdmin(line string) (Result, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return Result{}, ErrNoMatch
	}
	r := Result{Section: Admin, Verb: strings.ToLower(words[0])}
	if len(words) > 1 {
		r.Args = words[1:]
		r.Text = strings.TrimSpace(line[len(words[0]):])
	}
	return r, nil
}

func match(section Section, grammar []pattern, line string) (Result, error) {
	toks := tokenize(line)
	for _, p := range grammar {
		s := &scanner{line: line, toks: toks}
		r := Result{Section: section}
		if p.match(s, &r) {
			return r, nil
		}
	}
	return Result{}, ErrNoMatch
}

// FirstWord returns the lowercased first word of a line with any sigil
// removed. The dispatcher falls back to it when Parse fails.
func FirstWord(line string) string {
	line = strings.TrimLeft(strings.TrimSpace(line), "@!")
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(words[0])
}

type token struct {
	text       string
	start, end int
}

// tokenize splits on whitespace and makes "=" a token of its own.
func tokenize(line string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{text: line[start:end], start: start, end: end})
			start = -1
		}
	}
	for i, c := range line {
		switch {
		case c == ' ' || c == '\t':
			flush(i)
		case c == '=':
			flush(i)
			toks = append(toks, token{text: "=", start: i, end: i + 1})
		case start < 0:
			start = i
		}
	}
	flush(len(line))
	return toks
}

type scanner struct {
	line string
	toks []token
	pos  int
}

func (s *scanner) done() bool { return s.pos >= len(s.toks) }

func (s *scanner) peek(off int) (string, bool) {
	if s.pos+off >= len(s.toks) {
		return "", false
	}
	return s.toks[s.pos+off].text, true
}

// at reports whether the phrase starts at the current position.
func (s *scanner) at(phrase []string) bool {
	for i, w := range phrase {
		t, ok := s.peek(i)
		if !ok || !strings.EqualFold(t, w) {
			return false
		}
	}
	return true
}

// raw returns the text spanned by tokens i through j-1.
func (s *scanner) raw(i, j int) string {
	return s.line[s.toks[i].start:s.toks[j-1].end]
}

func isNameWord(w string) bool {
	if w == "" || w[0] == '#' {
		return false
	}
	for _, c := range w {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '\'' || c == '_':
		default:
			return false
		}
	}
	return true
}

func parseID(w string) (world.ID, bool) {
	if len(w) < 2 || w[0] != '#' {
		return world.NoID, false
	}
	n, err := strconv.ParseInt(w[1:], 10, 64)
	if err != nil || n <= 0 {
		return world.NoID, false
	}
	return world.ID(n), true
}
