package world

// State tracks every creature currently in-world plus the bookkeeping of
// which containers are open for which player. Single-goroutine access only
// (the orchestrator's consuming loop).
type State struct {
	gmap *Map

	players  map[uint32]*Player
	byName   map[string]*Player
	monsters map[uint32]*Monster

	// open containers per player: viewer slot → container item
	openContainers map[uint32]map[uint8]*Item

	Info WorldInformation
}

func NewState(m *Map) *State {
	return &State{
		gmap:           m,
		players:        make(map[uint32]*Player),
		byName:         make(map[string]*Player),
		monsters:       make(map[uint32]*Monster),
		openContainers: make(map[uint32]map[uint8]*Item),
	}
}

// Map returns the tile store the state places creatures on.
func (s *State) Map() *Map { return s.gmap }

// AddPlayer registers a player and stands them on their tile.
func (s *State) AddPlayer(p *Player) {
	s.players[p.ID] = p
	s.byName[p.Name] = p
	s.gmap.Tile(p.Loc).addCreature(p.ID)
}

// RemovePlayer removes a player from the world.
func (s *State) RemovePlayer(id uint32) *Player {
	p, ok := s.players[id]
	if !ok {
		return nil
	}
	s.gmap.Tile(p.Loc).removeCreature(p.ID)
	delete(s.players, id)
	delete(s.byName, p.Name)
	delete(s.openContainers, id)
	return p
}

// Player returns a player by creature ID.
func (s *State) Player(id uint32) *Player {
	return s.players[id]
}

// PlayerByName returns a player by character name.
func (s *State) PlayerByName(name string) *Player {
	return s.byName[name]
}

// AddMonster registers a monster and stands it on its tile.
func (s *State) AddMonster(m *Monster) {
	s.monsters[m.ID] = m
	s.gmap.Tile(m.Loc).addCreature(m.ID)
}

// RemoveMonster removes a monster from the world.
func (s *State) RemoveMonster(id uint32) *Monster {
	m, ok := s.monsters[id]
	if !ok {
		return nil
	}
	s.gmap.Tile(m.Loc).removeCreature(m.ID)
	delete(s.monsters, id)
	return m
}

// Monster returns a monster by creature ID.
func (s *State) Monster(id uint32) *Monster {
	return s.monsters[id]
}

// Creature returns the creature record behind any in-world ID, or nil.
func (s *State) Creature(id uint32) *Creature {
	if p, ok := s.players[id]; ok {
		return &p.Creature
	}
	if m, ok := s.monsters[id]; ok {
		return &m.Creature
	}
	return nil
}

// MoveCreature relocates a creature and keeps tile occupancy consistent.
// All position changes must go through here.
func (s *State) MoveCreature(c *Creature, to Location) {
	s.gmap.Tile(c.Loc).removeCreature(c.ID)
	c.Heading = c.Loc.DirectionTo(to)
	c.Loc = to
	s.gmap.Tile(to).addCreature(c.ID)
}

// PlayersWhoCanSee returns every connected player with the location in view
// range. This is the target-selector primitive notifications resolve
// against at send time.
func (s *State) PlayersWhoCanSee(loc Location) []*Player {
	var result []*Player
	for _, p := range s.players {
		if p.Loc.Chebyshev(loc) <= ViewRange {
			result = append(result, p)
		}
	}
	return result
}

// AllPlayers iterates every in-world player.
func (s *State) AllPlayers(fn func(*Player)) {
	for _, p := range s.players {
		fn(p)
	}
}

// AllMonsters iterates every in-world monster.
func (s *State) AllMonsters(fn func(*Monster)) {
	for _, m := range s.monsters {
		fn(m)
	}
}

// PlayerCount returns the number of players in-world.
func (s *State) PlayerCount() int {
	return len(s.players)
}

// --- open-container bookkeeping ---

// OpenContainer records that a player is viewing a container in a slot.
func (s *State) OpenContainer(playerID uint32, viewSlot uint8, container *Item) {
	open := s.openContainers[playerID]
	if open == nil {
		open = make(map[uint8]*Item, 2)
		s.openContainers[playerID] = open
	}
	open[viewSlot] = container
}

// CloseContainer clears a player's container view slot.
func (s *State) CloseContainer(playerID uint32, viewSlot uint8) {
	delete(s.openContainers[playerID], viewSlot)
}

// OpenContainerAt returns the container a player views in a slot, or nil.
func (s *State) OpenContainerAt(playerID uint32, viewSlot uint8) *Item {
	return s.openContainers[playerID][viewSlot]
}

// HasContainerOpen reports whether the player currently views the container.
func (s *State) HasContainerOpen(playerID uint32, containerID uint32) bool {
	for _, c := range s.openContainers[playerID] {
		if c.ID == containerID {
			return true
		}
	}
	return false
}
