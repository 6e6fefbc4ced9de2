package command

import (
	"fmt"
	"slices"
	"strings"
)

type entry struct {
	cmd   *Command
	alias bool
}

// Registry is the help and dispatch index of the built-in commands. Each
// section has its own namespace, so "lock" and "@lock" never collide.
type Registry struct {
	bySection map[Section]map[string]entry
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: within a section every name and alias is unique.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{bySection: make(map[Section]map[string]entry)}
	for i := range cmds {
		cmd := &cmds[i]
		if err := r.add(cmd.Section, cmd.Name, entry{cmd: cmd}); err != nil {
			return nil, err
		}
		for _, alias := range cmd.Aliases {
			if err := r.add(cmd.Section, alias, entry{cmd: cmd, alias: true}); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) add(section Section, word string, e entry) error {
	names := r.bySection[section]
	if names == nil {
		names = make(map[string]entry)
		r.bySection[section] = names
	}
	if prev, taken := names[word]; taken {
		kind := "name"
		if e.alias {
			kind = "alias"
		}
		return fmt.Errorf("%s command %s %q already used by %q", section, kind, word, prev.cmd.Name)
	}
	names[word] = e
	return nil
}

// DefaultRegistry indexes BuiltinCommands. It panics if they collide.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic("command: " + err.Error())
	}
	return r
}

// Resolve finds the command of section called word, by name or alias.
func (r *Registry) Resolve(section Section, word string) (*Command, bool) {
	e, ok := r.bySection[section][word]
	if !ok {
		return nil, false
	}
	return e.cmd, true
}

// Commands lists the commands of section in name order, aliases excluded.
func (r *Registry) Commands(section Section) []*Command {
	var out []*Command
	for _, e := range r.bySection[section] {
		if !e.alias {
			out = append(out, e.cmd)
		}
	}
	slices.SortFunc(out, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Names is Commands reduced to the canonical names.
func (r *Registry) Names(section Section) []string {
	cmds := r.Commands(section)
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return names
}
