package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
)

// InCombatCondition keeps a creature flagged as recently engaged. Every
// renewal extends it; it clears the flag when it finally fires.
type InCombatCondition struct {
	scheduling.BaseEvent
	Owner *world.Creature
}

func NewInCombatCondition(owner *world.Creature) *InCombatCondition {
	return &InCombatCondition{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindConditionInCombat, owner.ID, true),
		Owner:     owner,
	}
}

func (c *InCombatCondition) Capability() scheduling.Capability     { return scheduling.CapCondition }
func (c *InCombatCondition) ConditionType() scheduling.ConditionType {
	return scheduling.ConditionInCombat
}

// Aggregate always succeeds: a renewal carries no state beyond its duration,
// which the caller applies by postponing this condition.
func (c *InCombatCondition) Aggregate(scheduling.Condition) bool { return true }

func (c *InCombatCondition) Execute(ctx scheduling.Context) scheduling.Result {
	c.Owner.InCombat = false
	c.Owner.Untrack(c)
	return scheduling.Done()
}

// DamageOverTimeCondition applies periodic damage until its ticks run out.
// Aggregating a stronger effect of the same type raises the per-tick damage
// and tops the tick count up; it never shortens what is already there.
type DamageOverTimeCondition struct {
	scheduling.BaseEvent
	Owner     *world.Creature
	Damage    int32
	TicksLeft int
	Interval  time.Duration
}

func NewDamageOverTimeCondition(owner *world.Creature, damage int32, ticks int, interval time.Duration) *DamageOverTimeCondition {
	return &DamageOverTimeCondition{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindConditionDamageOverTime, owner.ID, true),
		Owner:     owner,
		Damage:    damage,
		TicksLeft: ticks,
		Interval:  interval,
	}
}

func (c *DamageOverTimeCondition) Capability() scheduling.Capability { return scheduling.CapCondition }
func (c *DamageOverTimeCondition) ConditionType() scheduling.ConditionType {
	return scheduling.ConditionDamageOverTime
}

func (c *DamageOverTimeCondition) Aggregate(candidate scheduling.Condition) bool {
	other, ok := candidate.(*DamageOverTimeCondition)
	if !ok {
		return false
	}
	if other.Damage > c.Damage {
		c.Damage = other.Damage
	}
	if other.TicksLeft > c.TicksLeft {
		c.TicksLeft = other.TicksLeft
	}
	return true
}

func (c *DamageOverTimeCondition) Execute(ctx scheduling.Context) scheduling.Result {
	cc := ctx.(*ConditionContext)
	if c.Owner.Dead || c.TicksLeft <= 0 {
		c.Owner.Untrack(c)
		return scheduling.Done()
	}
	c.TicksLeft--
	c.Owner.HP -= c.Damage
	if c.Owner.HP < 0 {
		c.Owner.HP = 0
	}
	cc.Publish(NewNotification(TargetObserversOf(c.Owner.Loc), creatureHealthPayload(c.Owner)))
	if c.Owner.HP == 0 {
		c.Owner.Untrack(c)
		cc.CombatantDeath(c.Owner)
		return scheduling.Done()
	}
	if c.TicksLeft == 0 {
		c.Owner.Untrack(c)
		return scheduling.Done()
	}
	return scheduling.RepeatAfter(c.Interval)
}

// DecayCondition removes a ground item when it fires, optionally replacing
// it with the type's decay product.
type DecayCondition struct {
	scheduling.BaseEvent
	ItemID uint32
	Loc    world.Location
}

func NewDecayCondition(itemID uint32, loc world.Location) *DecayCondition {
	return &DecayCondition{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindConditionDecay, 0, true),
		ItemID:    itemID,
		Loc:       loc,
	}
}

func (c *DecayCondition) Capability() scheduling.Capability       { return scheduling.CapCondition }
func (c *DecayCondition) ConditionType() scheduling.ConditionType { return scheduling.ConditionDecay }

// Aggregate rejects everything: decay timers are per item object and never
// merge.
func (c *DecayCondition) Aggregate(scheduling.Condition) bool { return false }

func (c *DecayCondition) Execute(ctx scheduling.Context) scheduling.Result {
	cc := ctx.(*ConditionContext)
	tile := cc.World.Map().TileIfExists(c.Loc)
	if tile == nil {
		return scheduling.Done()
	}
	old := tile.FindItem(c.ItemID)
	if old == nil {
		return scheduling.Done()
	}
	tile.RemoveItem(old)
	cc.Publish(NewNotification(TargetObserversOf(c.Loc), itemRemovedPayload(old.ID, c.Loc)))

	next := old.Type.DecaysTo
	if next == "" {
		return scheduling.Done()
	}
	typ := cc.g.items.Get(next)
	if typ == nil {
		return scheduling.Done()
	}
	repl := world.NewItem(typ, old.Count)
	tile.AddItem(repl)
	cc.Publish(NewNotification(TargetObserversOf(c.Loc), itemAddedPayload(repl, c.Loc)))
	if d := typ.DecayDuration(); d > 0 {
		cc.g.sched.Schedule(NewDecayCondition(repl.ID, c.Loc), d, true)
	}
	return scheduling.Done()
}
