package world

import (
	"sync/atomic"
	"time"

	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/scheduling"
)

var nextCreatureID atomic.Uint32

// NextCreatureID allocates a unique creature object ID.
func NextCreatureID() uint32 {
	return nextCreatureID.Add(1)
}

// FightStance selects how hard a creature trades defense for offense.
type FightStance byte

const (
	StanceBalanced FightStance = iota
	StanceOffensive
	StanceDefensive
)

// ChaseMode selects whether a creature walks after its combat target.
type ChaseMode byte

const (
	ChaseStand ChaseMode = iota
	ChaseTarget
)

// Creature is the common in-world entity record for players and monsters.
// Accessed only from the orchestrator's consuming goroutine — no locks
// needed on any of it.
type Creature struct {
	ID      uint32
	Name    string
	Loc     Location
	Heading Direction

	HP, MaxHP   int32
	Level       int16
	Speed       int16
	Attack      int32
	Defense     int32
	AttackSpeed time.Duration
	Blood       data.BloodType

	Dead     bool
	InCombat bool

	TargetID uint32 // current combat target, 0 = none
	Stance   FightStance
	Chase    ChaseMode
	Safety   bool // refuse attacks on players when set

	Plan *WalkPlan // nil = standing still

	Inventory [SlotCount]*Item

	// tracked holds the single active event per kind on this creature,
	// used for cancel, replace and expedite. Starting a new tracked event
	// of a kind that already has one requires cancelling the predecessor
	// first; Track enforces nothing beyond the single-slot invariant.
	tracked map[scheduling.Kind]scheduling.Event
}

// TrackedEvent returns the active event of the given kind, or nil.
func (c *Creature) TrackedEvent(kind scheduling.Kind) scheduling.Event {
	if c.tracked == nil {
		return nil
	}
	return c.tracked[kind]
}

// Track registers ev as the active event of its kind and returns the
// displaced predecessor, if any. Callers must have cancelled the
// predecessor before replacing it.
func (c *Creature) Track(ev scheduling.Event) scheduling.Event {
	if c.tracked == nil {
		c.tracked = make(map[scheduling.Kind]scheduling.Event)
	}
	old := c.tracked[ev.Kind()]
	c.tracked[ev.Kind()] = ev
	return old
}

// Untrack clears the tracked slot for a kind if it still holds ev.
// Clearing unconditionally would let a stale event knock out its
// replacement.
func (c *Creature) Untrack(ev scheduling.Event) {
	if c.tracked == nil {
		return
	}
	if cur, ok := c.tracked[ev.Kind()]; ok && cur.ID() == ev.ID() {
		delete(c.tracked, ev.Kind())
	}
}

// RemainingExhaustion returns how much of the cooldown for the given
// category is still pending at now, derived from the creature's active
// exhaustion condition. Zero when none is tracked or the category expired.
func (c *Creature) RemainingExhaustion(t scheduling.ExhaustionType, now time.Time) time.Duration {
	ev := c.TrackedEvent(scheduling.KindConditionExhaustion)
	if ev == nil {
		return 0
	}
	cond, ok := ev.(*ExhaustionCondition)
	if !ok {
		return 0
	}
	return cond.RemainingFor(t, now)
}

// Player is a creature driven by a client connection.
type Player struct {
	Creature
	Session     *net.Session
	AccountName string
	CharID      int32 // database row ID
}

// Monster is a creature driven by the engine itself.
type Monster struct {
	Creature
	Type *data.MonsterType
}

// NewMonster builds a monster instance from its type template.
func NewMonster(typ *data.MonsterType, loc Location) *Monster {
	return &Monster{
		Creature: Creature{
			ID:          NextCreatureID(),
			Name:        typ.Name,
			Loc:         loc,
			Heading:     South,
			HP:          typ.MaxHP,
			MaxHP:       typ.MaxHP,
			Speed:       typ.Speed,
			Attack:      typ.Attack,
			Defense:     typ.Defense,
			AttackSpeed: typ.AttackInterval(),
			Blood:       typ.Blood,
			Chase:       ChaseTarget,
		},
		Type: typ,
	}
}
