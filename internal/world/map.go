package world

// ViewRange is the Chebyshev distance at which creatures can see a tile.
const ViewRange int32 = 15

// ThrowRange is the maximum Chebyshev distance for throwing things.
const ThrowRange int32 = 7

type tileKey struct {
	MapID int16
	X, Y  int32
}

// Tile is a single map cell: an optional ground item plus a stack of items
// on top and the creatures standing there.
type Tile struct {
	Loc       Location
	Ground    *Item
	Items     []*Item
	Creatures []uint32
}

// Blocks reports whether anything on the tile prevents walking onto it.
func (t *Tile) Blocks() bool {
	if len(t.Creatures) > 0 {
		return true
	}
	for _, it := range t.Items {
		if it.Type.Blocking {
			return true
		}
	}
	return false
}

// BlocksThrow reports whether anything on the tile interrupts a throw line.
func (t *Tile) BlocksThrow() bool {
	for _, it := range t.Items {
		if it.Type.BlocksLOS {
			return true
		}
	}
	return false
}

// AddItem puts an item on top of the tile stack.
func (t *Tile) AddItem(it *Item) {
	if it.Type.Ground && t.Ground == nil {
		t.Ground = it
		return
	}
	t.Items = append(t.Items, it)
}

// RemoveItem takes a specific item off the tile stack. Returns false when
// the item is not on this tile.
func (t *Tile) RemoveItem(it *Item) bool {
	for i, cur := range t.Items {
		if cur.ID == it.ID {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			return true
		}
	}
	return false
}

// TopItem returns the topmost movable item on the tile, or nil.
func (t *Tile) TopItem() *Item {
	for i := len(t.Items) - 1; i >= 0; i-- {
		if t.Items[i].Type.Movable {
			return t.Items[i]
		}
	}
	return nil
}

// FindItem returns the item with the given object ID, or nil.
func (t *Tile) FindItem(id uint32) *Item {
	for _, it := range t.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (t *Tile) addCreature(id uint32) {
	t.Creatures = append(t.Creatures, id)
}

func (t *Tile) removeCreature(id uint32) {
	for i, cur := range t.Creatures {
		if cur == id {
			t.Creatures[i] = t.Creatures[len(t.Creatures)-1]
			t.Creatures = t.Creatures[:len(t.Creatures)-1]
			return
		}
	}
}

// Map is the tile store. Tiles materialize on first touch; the engine only
// cares about tile contents, not terrain storage, which stays external.
type Map struct {
	tiles map[tileKey]*Tile
}

func NewMap() *Map {
	return &Map{tiles: make(map[tileKey]*Tile)}
}

// Tile returns the tile at loc, creating it on first access.
func (m *Map) Tile(loc Location) *Tile {
	k := tileKey{MapID: loc.MapID, X: loc.X, Y: loc.Y}
	t := m.tiles[k]
	if t == nil {
		t = &Tile{Loc: loc}
		m.tiles[k] = t
	}
	return t
}

// TileIfExists returns the tile at loc, or nil if nothing materialized it.
func (m *Map) TileIfExists(loc Location) *Tile {
	return m.tiles[tileKey{MapID: loc.MapID, X: loc.X, Y: loc.Y}]
}

// CanThrowTo reports whether a thing can be thrown from from to to: in
// range, same map, and no throw-blocking tile strictly between the
// endpoints.
func (m *Map) CanThrowTo(from, to Location) bool {
	if from.MapID != to.MapID {
		return false
	}
	if from.Chebyshev(to) > ThrowRange {
		return false
	}
	cur := from
	for cur != to {
		cur = cur.Step(cur.DirectionTo(to))
		if cur == to {
			break
		}
		if t := m.TileIfExists(cur); t != nil && t.BlocksThrow() {
			return false
		}
	}
	return true
}

// CanWalkTo reports whether a creature can step onto loc.
func (m *Map) CanWalkTo(loc Location) bool {
	t := m.TileIfExists(loc)
	if t == nil {
		return true
	}
	return !t.Blocks()
}
