package world

import (
	"sync/atomic"

	"github.com/ravenfell/server/internal/data"
)

// Item object IDs start high to avoid overlap with creature IDs.
var nextItemID atomic.Uint32

func init() {
	nextItemID.Store(500_000_000)
}

// NextItemID allocates a unique item object ID.
func NextItemID() uint32 {
	return nextItemID.Add(1)
}

// Item is a thing in the world: on a tile, inside a container, or in an
// equipment slot. Items with container capacity hold Contents.
type Item struct {
	ID       uint32
	Type     *data.ItemType
	Count    int32
	Contents []*Item
}

func NewItem(typ *data.ItemType, count int32) *Item {
	if count < 1 {
		count = 1
	}
	if !typ.Stackable {
		count = 1
	}
	return &Item{ID: NextItemID(), Type: typ, Count: count}
}

// IsContainer reports whether the item can hold other items.
func (i *Item) IsContainer() bool {
	return i.Type.Capacity > 0
}

// HasRoom reports whether a container item can accept one more entry.
func (i *Item) HasRoom() bool {
	return i.IsContainer() && len(i.Contents) < i.Type.Capacity
}

// AddContent appends an item to a container.
func (i *Item) AddContent(it *Item) bool {
	if !i.HasRoom() {
		return false
	}
	i.Contents = append(i.Contents, it)
	return true
}

// RemoveContentAt removes and returns the item at the given index, or nil.
func (i *Item) RemoveContentAt(index int) *Item {
	if index < 0 || index >= len(i.Contents) {
		return nil
	}
	it := i.Contents[index]
	i.Contents = append(i.Contents[:index], i.Contents[index+1:]...)
	return it
}

// ContentAt returns the item at the given container index, or nil.
func (i *Item) ContentAt(index int) *Item {
	if index < 0 || index >= len(i.Contents) {
		return nil
	}
	return i.Contents[index]
}

// Slot is an inventory position on a creature's body.
type Slot int

const (
	SlotHead Slot = iota
	SlotNecklace
	SlotBackpack
	SlotBody
	SlotRight
	SlotLeft
	SlotLegs
	SlotFeet
	SlotRing
	SlotAmmo
	SlotCount
)
