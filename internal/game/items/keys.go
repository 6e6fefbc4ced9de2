package items

import (
	"fmt"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// Key locks and unlocks the exits its code was added to.
type Key struct {
	world.Item

	Code int64
}

func newKey() *Key {
	k := &Key{Item: world.MakeItem("key")}
	k.Short = "A large steel key."
	return k
}

// Init derives the cut of a new key from its id.
func (k *Key) Init() {
	if k.Code == 0 {
		k.Touch()
		k.Code = int64(k.ID)
	}
}

// CopyFrom makes a clone open the same doors.
func (k *Key) CopyFrom(src world.Object) {
	if s, ok := src.(*Key); ok {
		k.Touch()
		k.Code = s.Code
	}
}

// Fits reports whether the key works on x.
func (k *Key) Fits(x *world.Exit) bool {
	return x.Accepts(k.Code)
}

// Cut returns the code exits must accept for the key to fit them.
func (k *Key) Cut() int64 { return k.Code }

// Info adds the key's code.
func (k *Key) Info() []string {
	return append(k.Item.Info(), fmt.Sprintf("Code: %d", k.Code))
}

// SkeletonKey fits every exit.
type SkeletonKey struct {
	Key
}

func newSkeletonKey() *SkeletonKey {
	k := &SkeletonKey{Key: *newKey()}
	k.Name = "skeleton key"
	k.Short = "Looks like it may unlock just about anything."
	k.Aka = []string{"key"}
	return k
}

// Fits always succeeds.
func (k *SkeletonKey) Fits(x *world.Exit) bool { return true }
