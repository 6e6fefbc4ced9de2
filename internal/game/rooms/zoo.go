package rooms

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tzmud/internal/game/items"
	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// ZooPeriod is how often a zoo checks on its inhabitants.
const ZooPeriod = time.Hour

const cagePrefix = "see the "

// Zoo builds a cage for every mob class and keeps each cage inhabited.
//
// For a class c the zoo has an exit "see the c" to a room "outside the c
// cage", whose locked "door" leads into "c cage". Every door opens with the
// key kept in the zoo; KeyCode remembers its cut so a replacement key still
// fits.
type Zoo struct {
	world.BaseRoom

	KeyCode int64
}

func newZoo() *Zoo {
	z := &Zoo{BaseRoom: world.MakeBaseRoom("zoo")}
	z.Short = "All sorts of strange creatures."
	z.Period = ZooPeriod
	return z
}

// Init stocks a new zoo right away.
func (z *Zoo) Init() {
	z.Populate()
}

// Tick restocks the zoo.
func (z *Zoo) Tick() error {
	z.Populate()
	return nil
}

// Populate makes sure there is a key, builds cages for new mob classes and
// respawns missing inhabitants.
func (z *Zoo) Populate() {
	z.ensureKey()
	for _, c := range world.Classes(world.KindMob) {
		if x, ok := z.cageExit(c.Name); ok {
			if outside, ok := x.AsExit().Dest(); ok {
				z.respawn(outside, c.Name)
				continue
			}
		}
		z.build(c.Name)
	}
}

func (z *Zoo) cageExit(class string) (world.ExitObject, bool) {
	for _, x := range z.Exits() {
		if x.Core().Name == cagePrefix+class {
			return x, true
		}
	}
	return nil, false
}

// ensureKey leaves a key in the zoo. A missing key is usually replaced by
// one with the same cut, but once in a while the zoo makes a fresh lock.
func (z *Zoo) ensureKey() {
	for _, it := range z.Items() {
		if k, ok := it.(*items.Key); ok && (z.KeyCode == 0 || k.Code == z.KeyCode) {
			z.setKeyCode(k.Code)
			return
		}
	}
	w := z.World()
	o, err := w.Create("key")
	if err != nil {
		w.Logger().Warn("zoo cannot make a key", zap.Error(err))
		return
	}
	k := o.(*items.Key)
	if z.KeyCode != 0 && w.Rand().IntN(50) != 0 {
		k.Touch()
		k.Code = z.KeyCode
	}
	world.Place(k, z)
	z.setKeyCode(k.Code)
}

func (z *Zoo) setKeyCode(code int64) {
	if z.KeyCode != code {
		z.Touch()
		z.KeyCode = code
	}
}

func (z *Zoo) build(class string) {
	w := z.World()
	outside := w.NewRoom("outside the " + class + " cage")
	see, err := w.NewExit(cagePrefix+class, z, outside)
	if err != nil {
		w.Logger().Warn("building zoo exhibit", zap.String("class", class), zap.Error(err))
		outside.Destroy()
		return
	}
	if _, err := see.Return("zoo"); err != nil {
		w.Logger().Warn("building zoo exhibit", zap.String("class", class), zap.Error(err))
	}
	cage := w.NewRoom(class + " cage")
	door, err := w.NewExit("door", outside, cage)
	if err != nil {
		w.Logger().Warn("building zoo cage", zap.String("class", class), zap.Error(err))
		cage.Destroy()
		return
	}
	if _, err := door.Return("exit"); err != nil {
		w.Logger().Warn("building zoo cage", zap.String("class", class), zap.Error(err))
	}
	z.respawn(outside, class)
}

// respawn locks the cage door and puts a new mob in the cage when none of
// its class is there.
func (z *Zoo) respawn(outside world.RoomObject, class string) {
	w := z.World()
	door, ok := outside.AsRoom().ExitNamed("door")
	if !ok {
		return
	}
	if z.KeyCode != 0 {
		door.AsExit().AddKey(z.KeyCode)
	}
	door.AsExit().SetLocked(true)
	cage, ok := door.AsExit().Dest()
	if !ok {
		return
	}
	for _, m := range cage.AsRoom().Mobs() {
		if world.ClassName(m) == class {
			return
		}
	}
	o, err := w.Create(class)
	if err != nil {
		w.Logger().Warn("zoo respawn", zap.String("class", class), zap.Error(err))
		return
	}
	m := o.(world.MobObject).AsCharacter()
	m.SetHome(cage)
	m.MoveTo(cage)
}

// Destroy takes down every exhibit. Mobs that wandered into a cage are sent
// home first; the inhabitants go with their cage.
func (z *Zoo) Destroy() {
	for _, x := range z.Exits() {
		if !strings.HasPrefix(x.Core().Name, cagePrefix) {
			continue
		}
		outside, ok := x.AsExit().Dest()
		if !ok {
			continue
		}
		for _, ox := range outside.AsRoom().Exits() {
			cage, ok := ox.AsExit().Dest()
			if !ok || cage.Core().ID == z.ID {
				continue
			}
			for _, m := range cage.AsRoom().Mobs() {
				home, ok := m.AsCharacter().HomeRoom()
				if ok && home.Core().ID != cage.Core().ID {
					m.AsCharacter().MoveTo(home)
					continue
				}
				m.Destroy()
			}
			cage.Destroy()
		}
		outside.Destroy()
	}
	z.BaseRoom.Destroy()
}

// CopyFrom gives a clone the same period. The clone builds its own cages.
func (z *Zoo) CopyFrom(src world.Object) {
	if s, ok := src.(*Zoo); ok {
		z.SetPeriod(s.Period)
	}
}
