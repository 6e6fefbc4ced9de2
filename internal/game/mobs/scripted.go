package mobs

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/world"
	"github.com/cory-johannsen/tzmud/internal/scripting"
)

// Hooks run by scripted mobs.
const (
	HookThink = "on_think"
	HookSay   = "on_say"
)

// Scripted is a mob driven by a Lua script. Without a script, or when the
// world has no script runner, it behaves as a plain mob.
type Scripted struct {
	world.Mob

	Script string
}

func newScripted() *Scripted {
	return &Scripted{Mob: world.MakeMob("scripted")}
}

func (s *Scripted) runner() (world.ScriptRunner, bool) {
	if s.Script == "" {
		return nil, false
	}
	return s.World().Scripts()
}

// Tick runs the script's on_think hook.
func (s *Scripted) Tick() error {
	run, ok := s.runner()
	if !ok {
		return s.Mob.Tick()
	}
	return run.Run(s.Script, HookThink, int64(s.ID))
}

// Reactions add the script's on_say hook.
func (s *Scripted) Reactions() world.Reactions {
	return s.Mob.Reactions().With(world.Reactions{world.ActSay: s.nearSay})
}

func (s *Scripted) nearSay(ev *world.Event) {
	run, ok := s.runner()
	if !ok {
		return
	}
	speaker, ok := s.World().Character(ev.Actor)
	if !ok {
		return
	}
	if err := run.Run(s.Script, HookSay, int64(s.ID), speaker.Core().Name, ev.Text); err != nil {
		s.World().Logger().Warn("scripted mob hook failed",
			zap.Int64("object", int64(s.ID)),
			zap.String("script", s.Script),
			zap.Error(err),
		)
	}
}

// SetScript names the script that drives the mob.
func (s *Scripted) SetScript(name string) {
	s.Touch()
	s.Script = name
}

// Info adds the script name.
func (s *Scripted) Info() []string {
	return append(s.Mob.Info(), fmt.Sprintf("Script: %s", s.Script))
}

// Settings add the script name.
func (s *Scripted) Settings() []world.Setting {
	return append(s.Mob.Settings(),
		world.StringSetting("script", "", func() string { return s.Script }, func(v string) error {
			s.SetScript(v)
			return nil
		}),
	)
}

// CopyFrom gives a clone the same script and period.
func (s *Scripted) CopyFrom(src world.Object) {
	s.Mob.CopyFrom(src)
	if o, ok := src.(*Scripted); ok {
		s.SetScript(o.Script)
	}
}

// BindScripts points the tz.* functions of m at mobs in w.
func BindScripts(m *scripting.Manager, w *world.World) {
	mob := func(self int64) (world.MobObject, bool) { return w.Mob(world.ID(self)) }
	m.Say = func(self int64, text string) {
		if c, ok := mob(self); ok {
			c.AsCharacter().Say(text)
		}
	}
	m.Emote = func(self int64, text string) {
		if c, ok := mob(self); ok {
			c.AsCharacter().Emote(text)
		}
	}
	m.Move = func(self int64, exit string) bool {
		c, ok := mob(self)
		if !ok {
			return false
		}
		room, ok := c.Room()
		if !ok {
			return false
		}
		x, ok := room.AsRoom().ExitNamed(exit)
		if !ok {
			return false
		}
		moved, _ := c.AsCharacter().Go(x)
		return moved
	}
	m.Sleep = func(self int64) {
		if c, ok := mob(self); ok {
			c.AsCharacter().Sleep()
		}
	}
	m.Wake = func(self int64) {
		if c, ok := mob(self); ok {
			c.AsCharacter().Wake()
		}
	}
	m.Name = func(self int64) string {
		if c, ok := mob(self); ok {
			return c.Core().Name
		}
		return ""
	}
	m.Room = func(self int64) string {
		if c, ok := mob(self); ok {
			if room, ok := c.Room(); ok {
				return room.Core().Name
			}
		}
		return ""
	}
}
