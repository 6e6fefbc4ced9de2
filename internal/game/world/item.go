package world

import (
	"github.com/cory-johannsen/tzmud/internal/text"
)

// ItemObject is an item or a specialized item. The On hooks run before the
// corresponding state change and may refuse it by returning false.
type ItemObject interface {
	Object
	AsItem() *Item
	OnGet(c CharacterObject) bool
	OnDrop(c CharacterObject) bool
	OnWear(c CharacterObject) bool
	OnUnwear(c CharacterObject) bool
	OnPut(c CharacterObject, into Container) bool
	OnTake(c CharacterObject, from Container) bool
}

// Usable items do something when used, optionally on a target. Use returns
// false when the item cannot be used that way.
type Usable interface {
	Use(actor CharacterObject, target Object) bool
}

// Splitter items can be divided. Split detaches n units into a new item
// held by the same container.
type Splitter interface {
	Count() int
	Split(n int) (ItemObject, error)
}

// Merger items combine with like items after being placed.
type Merger interface {
	// MergeInto returns the item that holds the merged whole, which is the
	// receiver when there was nothing to merge with.
	MergeInto(c Container) ItemObject
}

// KeyObject items can lock and unlock exits.
type KeyObject interface {
	ItemObject
	Fits(x *Exit) bool
}

// Item is an ordinary object that characters can carry.
type Item struct {
	Base
}

// MakeItem returns an unregistered, gettable item for embedding.
func MakeItem(name string) Item {
	b := newBase(name)
	b.Gettable = true
	return Item{Base: b}
}

// AsItem implements ItemObject.
func (i *Item) AsItem() *Item { return i }

// Kind implements Object.
func (i *Item) Kind() Kind { return KindItem }

func (i *Item) String() string { return text.ItemName(i.Name) }

// OnGet allows gettable items.
func (i *Item) OnGet(c CharacterObject) bool { return i.Gettable }

// OnDrop allows the drop.
func (i *Item) OnDrop(c CharacterObject) bool { return true }

// OnWear allows the wear.
func (i *Item) OnWear(c CharacterObject) bool { return true }

// OnUnwear allows the removal.
func (i *Item) OnUnwear(c CharacterObject) bool { return true }

// OnPut allows the put.
func (i *Item) OnPut(c CharacterObject, into Container) bool { return true }

// OnTake allows the take.
func (i *Item) OnTake(c CharacterObject, from Container) bool { return true }

// Settings adds the gettable and wearable flags.
func (i *Item) Settings() []Setting {
	return append(i.Base.Settings(),
		BoolSetting("gettable", true, func() bool { return i.Gettable }, func(v bool) error {
			i.SetGettable(v)
			return nil
		}),
		BoolSetting("wearable", false, func() bool { return i.Wearable }, func(v bool) error {
			i.SetWearable(v)
			return nil
		}),
	)
}

// Destroy detaches the item from its holder and unregisters it.
func (i *Item) Destroy() {
	i.detach()
	i.unregister()
}

func (i *Item) detach() {
	prev, ok := i.Container()
	if !ok {
		return
	}
	if ch, ok := prev.(CharacterObject); ok {
		ch.AsCharacter().unwearID(i.ID)
	}
	if h, ok := prev.(Container); ok {
		h.contents().removeID(i.ID)
	}
}

// ContainerItem is an item that holds other items.
type ContainerItem struct {
	Item
	Contents
}

// MakeContainerItem returns an unregistered container item for embedding.
func MakeContainerItem(name string) ContainerItem {
	return ContainerItem{Item: MakeItem(name)}
}

// Look adds the visible contents.
func (c *ContainerItem) Look(looker CharacterObject) []string {
	lines := c.Base.Look(looker)
	if items := c.visibleItems(looker); len(items) > 0 {
		lines = append(lines, "", "Holding:")
		for _, it := range items {
			lines = append(lines, "    "+it.String())
		}
	}
	return lines
}

// Destroy destroys the contents first.
func (c *ContainerItem) Destroy() {
	c.destroyItems()
	c.Item.Destroy()
}
