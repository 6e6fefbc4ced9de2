package items

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tzmud/internal/game/world"
)

// ErrNotEnough is returned when splitting more coins than a pile holds.
var ErrNotEnough = errors.New("not that many coins")

// Coins is a pile of coins. Piles merge whenever they end up in the same
// container and split on request.
type Coins struct {
	world.Item

	N int
}

func newCoins(n int) *Coins {
	c := &Coins{Item: world.MakeItem(coinName(n)), N: n}
	c.Short = "Some coins."
	c.Aka = []string{"coin", "coins"}
	return c
}

func coinName(n int) string {
	if n == 1 {
		return "1 coin"
	}
	return fmt.Sprintf("%d coins", n)
}

// Count implements world.Splitter.
func (c *Coins) Count() int { return c.N }

// SetCount changes the size of the pile and its name.
func (c *Coins) SetCount(n int) {
	c.Touch()
	c.N = n
	c.SetName(coinName(n))
}

// Split leaves n coins in a new pile held by the same container. Splitting
// the whole pile returns the pile itself.
//
// Precondition: 0 < n <= Count().
func (c *Coins) Split(n int) (world.ItemObject, error) {
	if n <= 0 || n > c.N {
		return nil, fmt.Errorf("splitting %d from %d: %w", n, c.N, ErrNotEnough)
	}
	if n == c.N {
		return c, nil
	}
	o, err := c.World().Create("coins")
	if err != nil {
		return nil, err
	}
	pile := o.(*Coins)
	pile.SetCount(n)
	c.SetCount(c.N - n)
	if holder, ok := c.Container(); ok {
		if dest, ok := holder.(world.Container); ok {
			world.ContentsOf(dest).Add(pile)
		}
	}
	return pile, nil
}

// MergeInto folds this pile into another pile already held by dest.
func (c *Coins) MergeInto(dest world.Container) world.ItemObject {
	for _, it := range world.ContentsOf(dest).Items() {
		other, ok := it.(*Coins)
		if !ok || other.ID == c.ID {
			continue
		}
		other.SetCount(other.N + c.N)
		c.Destroy()
		return other
	}
	return c
}

// Settings adds the size of the pile.
func (c *Coins) Settings() []world.Setting {
	return append(c.Item.Settings(),
		world.IntSetting("count", 1, c.Count, func(n int) error {
			if n <= 0 {
				return fmt.Errorf("%w: count must be positive", world.ErrInvalidSetting)
			}
			c.SetCount(n)
			return nil
		}),
	)
}

// CopyFrom gives a clone the same number of coins.
func (c *Coins) CopyFrom(src world.Object) {
	if s, ok := src.(*Coins); ok {
		c.SetCount(s.N)
	}
}
