// Package mobs provides the concrete mob classes. Each class registers
// itself with the world's class registry when the package is imported.
package mobs

import (
	"strings"
	"time"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// simple mobs only differ from the plain mob by their descriptions.
var simple = []struct {
	class, short, doc string
}{
	{"sloth", "A furry gray sloth.", "A slow mob that mostly sleeps."},
	{"bear", "A large brown bear.", "A big, lazy mob."},
}

// withWeight returns bs with the named behavior reweighted.
func withWeight(bs []world.Behavior, name string, weight int) []world.Behavior {
	for i := range bs {
		if bs[i].Name == name {
			bs[i].Weight = weight
		}
	}
	return bs
}

// Cat wanders about and follows whoever calls it.
type Cat struct {
	world.Mob
}

func newCat() *Cat {
	c := &Cat{Mob: world.MakeMob("cat")}
	c.Short = "A small black cat."
	c.Aka = []string{"kitty"}
	return c
}

// Behaviors makes the cat wander.
func (c *Cat) Behaviors() []world.Behavior {
	return withWeight(c.Mob.Behaviors(), "move", 50)
}

// Look mentions a sleeping cat.
func (c *Cat) Look(looker world.CharacterObject) []string {
	lines := c.Mob.Look(looker)
	if !c.Awake {
		lines = append(lines, "    "+c.Name+" is sleeping... shhhh.")
	}
	return lines
}

// Reactions add answering to "here kitty" and "go away".
func (c *Cat) Reactions() world.Reactions {
	return c.Mob.Reactions().With(world.Reactions{world.ActSay: c.nearSay})
}

func (c *Cat) nearSay(ev *world.Event) {
	if !c.Awake {
		return
	}
	speaker, ok := c.World().Character(ev.Actor)
	if !ok {
		return
	}
	said := strings.ToLower(ev.Text)
	switch {
	case strings.Contains(said, "here kitty"):
		c.Follow(speaker)
		speaker.Message(c, "starts following you", ".")
	case strings.Contains(said, "go away"):
		if c.Following.ID != ev.Actor {
			return
		}
		c.Follow(nil)
		speaker.Message(c, "stops following you", ".")
	}
}

// Snake slithers around constantly.
type Snake struct {
	world.Mob
}

func newSnake() *Snake {
	s := &Snake{Mob: world.MakeMob("snake")}
	s.Short = "A green garter snake."
	s.Period = time.Second
	return s
}

// Behaviors makes the snake move on most ticks.
func (s *Snake) Behaviors() []world.Behavior {
	return withWeight(s.Mob.Behaviors(), "move", 100)
}

func init() {
	for _, sm := range simple {
		world.RegisterClass(world.Class{Name: sm.class, Kind: world.KindMob, Doc: sm.doc,
			Make: func() world.Object {
				m := world.MakeMob(sm.class)
				m.Short = sm.short
				return &m
			}})
	}
	world.RegisterClass(world.Class{Name: "cat", Kind: world.KindMob,
		Doc:  `Wanders around. Say "here kitty" to be followed and "go away" to stop it.`,
		Make: func() world.Object { return newCat() }})
	world.RegisterClass(world.Class{Name: "snake", Kind: world.KindMob,
		Doc:  "Moves around quickly.",
		Make: func() world.Object { return newSnake() }})
	world.RegisterClass(world.Class{Name: "packrat", Kind: world.KindMob,
		Doc:  "Collects dropped items and hoards them in a nest it digs.",
		Make: func() world.Object { return newPackRat() }})
	world.RegisterClass(world.Class{Name: "scripted", Kind: world.KindMob,
		Doc:  "Runs the on_think and on_say hooks of the Lua script named by its script setting.",
		Make: func() world.Object { return newScripted() }})
}
