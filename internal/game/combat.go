package game

import (
	"time"

	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/scripting"
	"github.com/ravenfell/server/internal/world"
)

// AutoAttackOperation is the tracked per-attacker combat orchestrator. Each
// firing validates the engagement, emits one strike, and renews itself on
// the attacker's attack speed. It stops by returning Done, at which point it
// untracks itself.
type AutoAttackOperation struct {
	scheduling.BaseOperation
	TargetID uint32
}

func NewAutoAttackOperation(attackerID, targetID uint32) *AutoAttackOperation {
	return &AutoAttackOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindAutoAttack, attackerID, nil, true),
		TargetID:      targetID,
	}
}

func (o *AutoAttackOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	attacker := oc.World.Creature(o.RequestorID())
	if attacker == nil || attacker.Dead {
		return o.stop(attacker)
	}
	// A newer engagement replaces this one through the tracked slot; a
	// stale instance that still fires must not act.
	tracked := attacker.TrackedEvent(scheduling.KindAutoAttack)
	if tracked == nil || tracked.ID() != o.ID() || attacker.TargetID != o.TargetID {
		return scheduling.Done()
	}
	target := oc.World.Creature(o.TargetID)
	if target == nil || target.Dead {
		attacker.TargetID = 0
		oc.Publish(NewNotification(TargetPlayer(attacker.ID), targetChangedPayload(attacker.ID, 0)))
		return o.stop(attacker)
	}
	if attacker.Loc.MapID != target.Loc.MapID || attacker.Loc.Chebyshev(target.Loc) > world.ViewRange {
		return o.stop(attacker)
	}

	attacker.Heading = attacker.Loc.DirectionTo(target.Loc)
	strike := NewStrikeOperation(attacker, o.TargetID, oc.g.cfg.Game.CombatExhaustion)
	oc.Dispatch(strike, 0)
	return scheduling.RepeatAfter(attacker.AttackSpeed)
}

func (o *AutoAttackOperation) stop(attacker *world.Creature) scheduling.Result {
	if attacker != nil {
		attacker.Untrack(o)
	}
	return scheduling.Done()
}

// StrikeOperation lands one melee blow. It revalidates everything at firing
// time: the engagement the orchestrator saw may be gone by now.
type StrikeOperation struct {
	scheduling.BaseOperation
	TargetID uint32
}

func NewStrikeOperation(attacker *world.Creature, targetID uint32, cost time.Duration) *StrikeOperation {
	return &StrikeOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindStrike, attacker.ID,
			map[scheduling.ExhaustionType]time.Duration{scheduling.ExhaustCombat: cost}, true),
		TargetID: targetID,
	}
}

func (o *StrikeOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	attacker := oc.World.Creature(o.RequestorID())
	target := oc.World.Creature(o.TargetID)
	if attacker == nil || attacker.Dead || target == nil || target.Dead {
		return scheduling.Done()
	}
	// Silent no-op when the attacker retargeted while the strike was queued.
	if attacker.TargetID != o.TargetID {
		return scheduling.Done()
	}
	atkPlayer := oc.World.Player(attacker.ID)
	if atkPlayer != nil && atkPlayer.Safety && oc.World.Player(target.ID) != nil {
		oc.Message(atkPlayer, MessageNotPossible)
		return scheduling.Done()
	}
	if !oc.Map.CanThrowTo(attacker.Loc, target.Loc) {
		if atkPlayer != nil {
			oc.Message(atkPlayer, MessageTooFar)
		}
		return scheduling.Done()
	}

	dmg := int32(oc.StrikeDamage(scripting.StrikeContext{
		AttackerLevel:  int(attacker.Level),
		AttackerAttack: int(attacker.Attack),
		TargetDefense:  int(target.Defense),
		Offensive:      attacker.Stance == world.StanceOffensive,
		Defensive:      attacker.Stance == world.StanceDefensive,
	}))
	if dmg < 0 {
		dmg = 0
	}
	target.HP -= dmg
	if target.HP < 0 {
		target.HP = 0
	}

	if dmg > 0 {
		o.leaveSplatter(oc, target)
		if attacker.Blood == data.BloodGreen {
			poison := NewDamageOverTimeCondition(target, dmg/4+1, 3, 4*time.Second)
			oc.AddCondition(target, poison, 4*time.Second)
		}
	}
	oc.Publish(NewNotification(TargetObserversOf(target.Loc), creatureHealthPayload(target)))

	oc.InCombatFor(attacker)
	oc.InCombatFor(target)

	// A struck creature that chases fights back.
	if target.TargetID == 0 && target.Chase == world.ChaseTarget {
		oc.g.SetAttackTarget(target.ID, attacker.ID)
	}

	if target.HP == 0 {
		oc.CombatantDeath(target)
	}
	return scheduling.Done()
}

func (o *StrikeOperation) leaveSplatter(oc *OperationContext, target *world.Creature) {
	name := data.BloodSplatterFor(target.Blood)
	if name == "" || oc.Items == nil {
		return
	}
	typ := oc.Items.Get(name)
	if typ == nil {
		return
	}
	tile := oc.Map.Tile(target.Loc)
	splatter := world.NewItem(typ, 1)
	tile.AddItem(splatter)
	oc.Publish(NewNotification(TargetObserversOf(target.Loc), itemAddedPayload(splatter, target.Loc)))
	if d := typ.DecayDuration(); d > 0 {
		oc.g.sched.Schedule(NewDecayCondition(splatter.ID, target.Loc), d, true)
	}
}
