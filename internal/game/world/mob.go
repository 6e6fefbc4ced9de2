package world

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/tzmud/internal/text"
)

// DefaultMobPeriod is the think interval of a new mob.
const DefaultMobPeriod = 10 * time.Second

// MobObject is a mob or a specialized mob.
type MobObject interface {
	CharacterObject
	AsMob() *Mob
	// Behaviors lists what the mob may do on a think tick.
	Behaviors() []Behavior
}

// Ticker objects run Tick every TickPeriod while the world is ticking.
type Ticker interface {
	Object
	TickPeriod() time.Duration
	Tick() error
}

// Behavior is one weighted choice of a mob's think tick.
type Behavior struct {
	Name   string
	Weight int
	Run    func() error
}

// Mob is an autonomous character.
type Mob struct {
	Character

	Period time.Duration
}

// MakeMob returns an unregistered mob for embedding.
func MakeMob(name string) Mob {
	return Mob{Character: MakeCharacter(name), Period: DefaultMobPeriod}
}

// AsMob implements MobObject.
func (m *Mob) AsMob() *Mob { return m }

// Kind implements Object.
func (m *Mob) Kind() Kind { return KindMob }

func (m *Mob) String() string { return text.MobName(m.Name) }

func (m *Mob) mob() MobObject {
	mo, _ := m.Self().(MobObject)
	return mo
}

// Behaviors returns sleep 5, wake 25 and move 0.
func (m *Mob) Behaviors() []Behavior {
	return []Behavior{
		{Name: "sleep", Weight: 5, Run: m.ActSleep},
		{Name: "awake", Weight: 25, Run: m.ActWake},
		{Name: "move", Weight: 0, Run: m.ActMove},
	}
}

// ActSleep falls asleep.
func (m *Mob) ActSleep() error {
	m.Sleep()
	return nil
}

// ActWake wakes up.
func (m *Mob) ActWake() error {
	m.Wake()
	return nil
}

// ActMove wanders through a random unlocked exit. A mob stays put while the
// character it follows is in the same room.
func (m *Mob) ActMove() error {
	room, ok := m.Room()
	if !ok {
		return nil
	}
	if leader, ok := m.Leader(); ok && room.AsRoom().Present(leader) {
		return nil
	}
	exits := room.AsRoom().Exits()
	if len(exits) == 0 {
		return nil
	}
	x := exits[m.w.rand.IntN(len(exits))]
	if x.AsExit().Locked {
		return nil
	}
	m.Go(x)
	return nil
}

// TickPeriod implements Ticker.
func (m *Mob) TickPeriod() time.Duration { return m.Period }

// Tick picks a weighted behavior and runs it. A sleeping mob can only wake.
func (m *Mob) Tick() error {
	self := m.mob()
	if self == nil {
		return nil
	}
	b, ok := pickBehavior(self.Behaviors(), m.w.rand.IntN)
	if !ok {
		return nil
	}
	if !m.Awake && b.Name != "awake" {
		return nil
	}
	if b.Run == nil {
		return nil
	}
	return b.Run()
}

func pickBehavior(bs []Behavior, intn func(int) int) (Behavior, bool) {
	total := 0
	for _, b := range bs {
		if b.Weight > 0 {
			total += b.Weight
		}
	}
	if total == 0 {
		return Behavior{}, false
	}
	n := intn(total)
	for _, b := range bs {
		if b.Weight <= 0 {
			continue
		}
		if n < b.Weight {
			return b, true
		}
		n -= b.Weight
	}
	return Behavior{}, false
}

// SetPeriod changes the think interval.
func (m *Mob) SetPeriod(d time.Duration) {
	m.touch()
	m.Period = d
}

// Info adds the think period.
func (m *Mob) Info() []string {
	return append(m.Character.Info(), fmt.Sprintf("Period: %s", m.Period))
}

// Settings adds the think period.
func (m *Mob) Settings() []Setting {
	return append(m.Character.Settings(),
		DurationSetting("period", DefaultMobPeriod, func() time.Duration { return m.Period }, func(d time.Duration) error {
			if d <= 0 {
				return fmt.Errorf("%w: period must be positive", ErrInvalidSetting)
			}
			m.SetPeriod(d)
			return nil
		}),
	)
}

// CopyFrom gives a clone the same think period.
func (m *Mob) CopyFrom(src Object) {
	if s, ok := src.(MobObject); ok {
		m.SetPeriod(s.AsMob().Period)
	}
}
