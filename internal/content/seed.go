// Package content builds a world from a YAML seed file.
//
// A seed lists rooms. Each room may carry exits, items and mobs; items may
// hold further items. The first room listed becomes the home room.
package content

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed is a whole world description.
type Seed struct {
	Rooms []RoomSpec `yaml:"rooms"`
}

// Describe holds the attributes every seeded object shares.
type Describe struct {
	Name     string            `yaml:"name"`
	Class    string            `yaml:"class"`
	Short    string            `yaml:"short"`
	Long     string            `yaml:"long"`
	Aka      []string          `yaml:"aka"`
	Settings map[string]string `yaml:"settings"`
}

// RoomSpec seeds one room.
type RoomSpec struct {
	Describe `yaml:",inline"`
	Exits    []ExitSpec `yaml:"exits"`
	Items    []ItemSpec `yaml:"items"`
	Mobs     []MobSpec  `yaml:"mobs"`
}

// ExitSpec seeds one exit and, when Return is set, its linked twin.
type ExitSpec struct {
	Describe `yaml:",inline"`
	// To names the destination room.
	To string `yaml:"to"`
	// Return names the exit back from To.
	Return string `yaml:"return"`
	Locked bool   `yaml:"locked"`
	// Keys name seeded key items that fit this door.
	Keys []string `yaml:"keys"`
}

// ItemSpec seeds one item.
type ItemSpec struct {
	Describe `yaml:",inline"`
	// Contents fill a container item.
	Contents []ItemSpec `yaml:"contents"`
}

// MobSpec seeds one mob, at home in its room.
type MobSpec struct {
	Describe `yaml:",inline"`
	// Script names the Lua script of a scripted mob.
	Script string     `yaml:"script"`
	Items  []ItemSpec `yaml:"items"`
}

// LoadSeed reads and decodes a seed file. Unknown fields are errors.
//
// Precondition: path names a readable YAML file.
// Postcondition: Returns a seed with at least one room, or a non-nil error.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed document.
func ParseSeed(data []byte) (Seed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Seed
	if err := dec.Decode(&s); err != nil {
		return Seed{}, fmt.Errorf("parsing seed: %w", err)
	}
	if len(s.Rooms) == 0 {
		return Seed{}, errors.New("parsing seed: no rooms")
	}
	return s, nil
}

// Default is the world used when no seed file is configured: a dark void
// leading to a little house with a rose in it.
func Default() Seed {
	return Seed{Rooms: []RoomSpec{
		{
			Describe: Describe{Name: "void", Short: "A very dark darkness."},
			Exits:    []ExitSpec{{Describe: Describe{Name: "the light"}, To: "house"}},
		},
		{
			Describe: Describe{Name: "house", Short: "A nice little house."},
			Items:    []ItemSpec{{Describe: Describe{Class: "rose"}}},
		},
	}}
}

// DefaultMOTD greets connections when no MOTD file is configured.
var DefaultMOTD = []string{
	"Welcome to TZMud.",
	`Log in with "login <name> <password>" or make a new`,
	`character with "create <name> <password>".`,
}

// LoadMOTD reads the message of the day, one line per line of the file.
// Trailing blank lines are dropped.
func LoadMOTD(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading motd: %w", err)
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), " \t\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading motd: %w", err)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
