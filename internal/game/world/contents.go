package world

import (
	"slices"
	"strings"
)

// Container is an object that holds items.
type Container interface {
	Object
	contents() *Contents
}

// Contents is the ordered item membership embedded by every container.
// It is bound to its owner when the owner is registered; using it before
// registration panics.
type Contents struct {
	ItemIDs []ID

	owner *Base
}

func (c *Contents) contents() *Contents { return c }

// ContentsOf returns the membership list of any container.
func ContentsOf(c Container) *Contents { return c.contents() }

// Items returns the directly held items in insertion order.
func (c *Contents) Items() []ItemObject {
	out := make([]ItemObject, 0, len(c.ItemIDs))
	for _, id := range c.ItemIDs {
		if it, ok := c.owner.w.Item(id); ok {
			out = append(out, it)
		}
	}
	return out
}

// Holds reports direct membership.
func (c *Contents) Holds(item Object) bool {
	return item != nil && slices.Contains(c.ItemIDs, item.Core().ID)
}

// HoldsID reports direct membership by id.
func (c *Contents) HoldsID(id ID) bool {
	return slices.Contains(c.ItemIDs, id)
}

// HasInside reports membership here or in any nested container.
func (c *Contents) HasInside(item Object) bool {
	if c.Holds(item) {
		return true
	}
	for _, it := range c.Items() {
		if nested, ok := it.(Container); ok && nested.contents().HasInside(item) {
			return true
		}
	}
	return false
}

// ItemsNamed returns the direct items whose primary name matches, or failing
// that the items with a matching alias. When neither matches and name starts
// with an article the lookup is retried without it.
func (c *Contents) ItemsNamed(name string) []ItemObject {
	items := c.Items()
	var out []ItemObject
	for _, it := range items {
		if it.Core().Named(name) {
			out = append(out, it)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, it := range items {
		if it.Core().Aliased(name) {
			out = append(out, it)
		}
	}
	if len(out) > 0 {
		return out
	}
	if bare, ok := StripArticle(name); ok {
		return c.ItemsNamed(bare)
	}
	return nil
}

// ItemNamed returns the first match of ItemsNamed.
func (c *Contents) ItemNamed(name string) (ItemObject, bool) {
	items := c.ItemsNamed(name)
	if len(items) == 0 {
		return nil, false
	}
	return items[0], true
}

// Add appends item to the membership list and records this container as
// its holder. Removing the item from its previous holder is the caller's
// job; Place does both.
func (c *Contents) Add(item ItemObject) {
	if c.Holds(item) {
		return
	}
	c.owner.touch()
	c.ItemIDs = append(c.ItemIDs, item.Core().ID)
	item.Core().setHolder(c.owner.Self())
}

// Remove drops item from the membership list.
func (c *Contents) Remove(item ItemObject) bool {
	return c.removeID(item.Core().ID)
}

func (c *Contents) removeID(id ID) bool {
	i := slices.Index(c.ItemIDs, id)
	if i < 0 {
		return false
	}
	c.owner.touch()
	c.ItemIDs = slices.Delete(c.ItemIDs, i, i+1)
	if o, ok := c.owner.w.objects[id]; ok && o.Core().Holder.ID == c.owner.ID {
		o.Core().setHolder(nil)
	}
	return true
}

func (c *Contents) destroyItems() {
	for _, it := range c.Items() {
		it.Destroy()
	}
}

func (c *Contents) visibleItems(looker CharacterObject) []ItemObject {
	var out []ItemObject
	for _, it := range c.Items() {
		if looker == nil || looker.AsCharacter().CanSee(it) {
			out = append(out, it)
		}
	}
	return out
}

// Place moves item out of its current holder and into dest. A character
// losing the item stops wearing it. Stackable items merge with matching
// items already in dest; the item now holding them is returned.
func Place(item ItemObject, dest Container) ItemObject {
	b := item.Core()
	if prev, ok := b.Container(); ok {
		if ch, ok := prev.(CharacterObject); ok {
			ch.AsCharacter().unwearID(b.ID)
		}
		if h, ok := prev.(Container); ok {
			h.contents().removeID(b.ID)
		}
	}
	dest.contents().Add(item)
	if m, ok := item.(Merger); ok {
		return m.MergeInto(dest)
	}
	return item
}

var articles = []string{"the ", "a ", "an "}

// StripArticle removes a leading English article.
func StripArticle(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, a := range articles {
		if strings.HasPrefix(lower, a) && len(name) > len(a) {
			return strings.TrimSpace(name[len(a):]), true
		}
	}
	return name, false
}
