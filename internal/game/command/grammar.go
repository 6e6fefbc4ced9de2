package command

import (
	"strconv"
	"strings"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// element consumes tokens and fills in part of a Result. An element that
// returns false may leave the scanner anywhere; pattern and optional restore
// it.
type element func(s *scanner, r *Result) bool

// pattern is one grammar alternative. It matches when every element
// matches and no tokens are left over.
type pattern []element

func (p pattern) match(s *scanner, r *Result) bool {
	for _, e := range p {
		if !e(s, r) {
			return false
		}
	}
	return s.done()
}

var actionsGrammar = []pattern{
	{verb("look", "look", "l"), optional(kw("at")), optional(ref(obj))},
	{verb("info"), optional(ref(obj))},
	{verb("time")},
	{verb("take", "take", "remove"), count(), ref(obj, "from"), kw("from"), ref(obj2)},
	{verb("get", "get", "take"), count(), ref(obj)},
	{verb("drop"), count(), ref(obj)},
	{verb("put"), ref(obj, "in"), kw("in"), ref(obj2)},
	{verb("inventory", "inventory", "inv", "i")},
	{verb("wear"), ref(obj)},
	{verb("remove"), ref(obj)},
	{verb("lock"), ref(obj, "with"), optional(kw("with"), ref(obj2))},
	{verb("unlock"), ref(obj, "with"), optional(kw("with"), ref(obj2))},
	{verb("follow"), ref(obj)},
	{verb("follow")},
	{verb("exits")},
	{verb("say", "say", `"`), text(textField)},
	{verb("shout"), text(textField)},
	{verb("emote", "emote", ":"), text(textField)},
	{verb("quit")},
	{verb("who")},
	{verb("set"), optional(setting(), optional(kw("="), value("")))},
	{verb("unset"), setting()},
	{verb("password"), word(oldField), word(newField)},
	{verb("help", "help", "?"), optional(word(topicField))},
	{verb("go", "go", "enter"), optional(kw("to")), ref(obj)},
	{verb("go", "go", "enter")},
	{verb("use"), ref(obj, "on"), optional(kw("on"), ref(obj2))},
	{verb("listen"), optional(kw("to")), ref(obj)},
	{verb("stats")},
}

var wizardGrammar = []pattern{
	{verb("teleport"), ref(obj, "to"), kw("to"), ref(obj2)},
	{verb("teleport"), optional(ref(obj))},
	{verb("dig"), ref(obj, "to"), kw("to"), ref(obj2, "return by"), optional(kw("return by"), ref(back))},
	{verb("lock"), ref(obj, "with"), kw("with"), ref(obj2)},
	{verb("list"), choice(topicField, "players", "items", "rooms", "mobs", "exits")},
	{verb("clone"), ref(obj, "as"), optional(kw("as"), name(textField))},
	{verb("study"), name(topicField)},
	{verb("rename"), optional(ref(obj, "to")), kw("to"), name(textField)},
	{verb("short"), optional(kw("for")), optional(ref(obj, "is")), kw("is"), text(textField)},
	{verb("long"), optional(kw("for")), optional(ref(obj, "is")), kw("is"), text(textField)},
	{verb("destroy"), ref(obj)},
	{verb("set"), setting(), optional(kw("="), value("on")), kw("on"), ref(obj)},
	{verb("unset"), setting(), kw("on"), ref(obj)},
	{verb("help"), optional(word(topicField))},
}

func obj(r *Result) *world.Reference  { return &r.Obj }
func obj2(r *Result) *world.Reference { return &r.Obj2 }
func back(r *Result) *world.Reference { return &r.Back }

func textField(r *Result) *string  { return &r.Text }
func oldField(r *Result) *string   { return &r.Old }
func newField(r *Result) *string   { return &r.New }
func topicField(r *Result) *string { return &r.Topic }

// verb matches one of the spellings, case-insensitively, and records the
// canonical name. With no spellings the canonical name is the only one.
func verb(canonical string, spellings ...string) element {
	if len(spellings) == 0 {
		spellings = []string{canonical}
	}
	return func(s *scanner, r *Result) bool {
		t, ok := s.peek(0)
		if !ok {
			return false
		}
		for _, sp := range spellings {
			if strings.EqualFold(t, sp) {
				s.pos++
				r.Verb = canonical
				return true
			}
		}
		return false
	}
}

// kw matches a keyword phrase such as "in" or "return by".
func kw(phrase string) element {
	words := strings.Fields(phrase)
	return func(s *scanner, r *Result) bool {
		if !s.at(words) {
			return false
		}
		s.pos += len(words)
		return true
	}
}

// optional matches the elements in sequence, or nothing at all.
func optional(elems ...element) element {
	return func(s *scanner, r *Result) bool {
		pos, saved := s.pos, *r
		for _, e := range elems {
			if !e(s, r) {
				s.pos, *r = pos, saved
				return true
			}
		}
		return true
	}
}

// nameWords consumes name words up to, not including, any stop phrase.
func (s *scanner) nameWords(stops [][]string) (string, bool) {
	start := s.pos
	for !s.done() {
		if t, _ := s.peek(0); !isNameWord(t) || s.stopped(stops) {
			break
		}
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	words := make([]string, 0, s.pos-start)
	for _, t := range s.toks[start:s.pos] {
		words = append(words, t.text)
	}
	return strings.Join(words, " "), true
}

func (s *scanner) stopped(stops [][]string) bool {
	for _, st := range stops {
		if s.at(st) {
			return true
		}
	}
	return false
}

func phrases(stops []string) [][]string {
	out := make([][]string, len(stops))
	for i, st := range stops {
		out[i] = strings.Fields(st)
	}
	return out
}

// ref matches a "#id" or a run of name words ending before any stop
// keyword. An id always takes a single token.
func ref(field func(*Result) *world.Reference, stops ...string) element {
	ps := phrases(stops)
	return func(s *scanner, r *Result) bool {
		t, ok := s.peek(0)
		if !ok {
			return false
		}
		if id, ok := parseID(t); ok {
			s.pos++
			*field(r) = world.Reference{ID: id}
			return true
		}
		n, ok := s.nameWords(ps)
		if !ok {
			return false
		}
		*field(r) = world.Reference{Name: n}
		return true
	}
}

// name matches a run of name words, never an id.
func name(field func(*Result) *string, stops ...string) element {
	ps := phrases(stops)
	return func(s *scanner, r *Result) bool {
		n, ok := s.nameWords(ps)
		if ok {
			*field(r) = n
		}
		return ok
	}
}

// text matches the rest of the line, spacing preserved.
func text(field func(*Result) *string) element {
	return func(s *scanner, r *Result) bool {
		if s.done() {
			return false
		}
		*field(r) = s.raw(s.pos, len(s.toks))
		s.pos = len(s.toks)
		return true
	}
}

// word matches any single token.
func word(field func(*Result) *string) element {
	return func(s *scanner, r *Result) bool {
		t, ok := s.peek(0)
		if !ok || t == "=" {
			return false
		}
		s.pos++
		*field(r) = t
		return true
	}
}

// choice matches one of the fixed words and records it lowercased.
func choice(field func(*Result) *string, options ...string) element {
	return func(s *scanner, r *Result) bool {
		t, ok := s.peek(0)
		if !ok {
			return false
		}
		for _, o := range options {
			if strings.EqualFold(t, o) {
				s.pos++
				*field(r) = o
				return true
			}
		}
		return false
	}
}

// count matches an optional positive number followed by more input.
func count() element {
	return func(s *scanner, r *Result) bool {
		t, ok := s.peek(0)
		if _, more := s.peek(1); !ok || !more {
			return true
		}
		if n, err := strconv.Atoi(t); err == nil && n > 0 {
			s.pos++
			r.Count = n
		}
		return true
	}
}

// setting matches a setting name.
func setting() element {
	return func(s *scanner, r *Result) bool {
		t, ok := s.peek(0)
		if !ok || !isNameWord(t) {
			return false
		}
		s.pos++
		r.Var = strings.ToLower(t)
		return true
	}
}

// value matches the setting value: the rest of the line, or everything up
// to the last stop word when one is given.
func value(stop string) element {
	return func(s *scanner, r *Result) bool {
		end := len(s.toks)
		if stop != "" {
			end = -1
			for i := len(s.toks) - 1; i > s.pos; i-- {
				if strings.EqualFold(s.toks[i].text, stop) {
					end = i
					break
				}
			}
		}
		if end <= s.pos {
			return false
		}
		r.Val = s.raw(s.pos, end)
		r.HasVal = true
		s.pos = end
		return true
	}
}
