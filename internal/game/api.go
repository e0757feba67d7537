package game

import (
	"time"

	"github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
)

// StatKind labels a creature stat in change reports to the client.
type StatKind byte

const (
	StatHP StatKind = iota
	StatMaxHP
	StatLevel
	StatAttack
	StatDefense
)

// taskOperation runs an arbitrary closure on the consuming goroutine. It is
// the bridge for producer-side requests that need to read or mutate world
// state before deciding what to do.
type taskOperation struct {
	scheduling.BaseOperation
	fn func(*OperationContext)
}

func newTask(requestorID uint32, fn func(*OperationContext)) *taskOperation {
	return &taskOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindGeneric, requestorID, nil, true),
		fn:            fn,
	}
}

func (o *taskOperation) Execute(ctx scheduling.Context) scheduling.Result {
	o.fn(ctx.(*OperationContext))
	return scheduling.Done()
}

// ---- producer-side API ----
//
// Everything below this point down to the consumer-side section is safe to
// call from any goroutine: it only builds events and hands them to the
// scheduler.

func (g *Game) SubmitLogin(sess *net.Session, account, password, character string) {
	g.sched.Schedule(NewLogInOperation(sess, account, password, character), 0, true)
}

func (g *Game) SubmitLogout(playerID uint32) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		g.logOut(playerID, false)
	}), 0)
}

// SubmitForcedLogout is the link-loss path; it skips the in-combat check and
// force-fires a logout that is already on its way out.
func (g *Game) SubmitForcedLogout(playerID uint32) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		g.logOut(playerID, true)
	}), 0)
}

// SubmitWalk steps the player one tile in a direction.
func (g *Game) SubmitWalk(playerID uint32, dir world.Direction) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		c := oc.World.Creature(playerID)
		if c == nil || c.Dead {
			return
		}
		op := NewMovementOperation(playerID, playerID,
			MapSpot(c.Loc), MapSpot(c.Loc.Step(dir)), 1,
			map[scheduling.ExhaustionType]time.Duration{scheduling.ExhaustMove: g.cfg.Game.MoveExhaustion})
		oc.Dispatch(op, 0)
	}), 0)
}

// SubmitAutoWalk starts the player on a fixed route.
func (g *Game) SubmitAutoWalk(playerID uint32, steps []world.Direction) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		c := oc.World.Creature(playerID)
		if c == nil || c.Dead {
			return
		}
		g.ResetCreatureWalkPlan(c, world.NewStaticWalkPlan(steps))
	}), 0)
}

// SubmitStopWalk abandons the player's pending route.
func (g *Game) SubmitStopWalk(playerID uint32) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		c := oc.World.Creature(playerID)
		if c == nil {
			return
		}
		c.Plan = nil
		g.CancelPlayerOperations(playerID, scheduling.KindAutoWalk)
	}), 0)
}

func (g *Game) SubmitTurn(playerID uint32, dir world.Direction) {
	g.DispatchOperation(NewTurnOperation(playerID, dir), 0)
}

func (g *Game) SubmitSpeech(playerID uint32, mode SpeechMode, text string) {
	g.DispatchOperation(NewSpeechOperation(playerID, mode, text, g.cfg.Game.SpeechExhaustion), 0)
}

// SubmitAttack engages (or, with targetID 0, disengages) a combat target.
func (g *Game) SubmitAttack(playerID, targetID uint32) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		g.SetAttackTarget(playerID, targetID)
	}), 0)
}

func (g *Game) SubmitMoveThing(playerID, thingID uint32, from, to Spot, count int32) {
	op := NewMovementOperation(playerID, thingID, from, to, count,
		map[scheduling.ExhaustionType]time.Duration{scheduling.ExhaustAction: g.cfg.Game.MoveExhaustion})
	g.DispatchOperation(op, 0)
}

// SubmitFightModes applies the client's stance, chase and safety switches.
func (g *Game) SubmitFightModes(playerID uint32, stance world.FightStance, chase world.ChaseMode, safety bool) {
	g.DispatchOperation(newTask(playerID, func(oc *OperationContext) {
		c := oc.World.Creature(playerID)
		if c == nil {
			return
		}
		c.Stance = stance
		c.Chase = chase
		c.Safety = safety
	}), 0)
}

// SubmitHeartbeatResponse answers a client ping.
func (g *Game) SubmitHeartbeatResponse(playerID uint32) {
	g.DispatchOperation(NewHeartbeatResponseOperation(playerID), 0)
}

// SendHeartbeat pings a player from the server side.
func (g *Game) SendHeartbeat(playerID uint32) {
	g.DispatchOperation(NewHeartbeatOperation(playerID), 0)
}

// CreateItemAtLocation conjures a predefined item onto the map.
func (g *Game) CreateItemAtLocation(typeName string, loc world.Location, count int32) {
	g.sched.Schedule(NewCreateItemOperation(typeName, loc, count), 0, true)
}

// PlaceMonster spawns a predefined monster type.
func (g *Game) PlaceMonster(typeName string, loc world.Location) {
	g.sched.Schedule(NewPlaceMonsterOperation(typeName, loc), 0, true)
}

// ---- consumer-side API ----
//
// Everything below runs on the consuming goroutine only, called from event
// Execute bodies.

// logOut dispatches a logout for the player, deduplicating against one
// already pending: a forced request upgrades the pending operation and
// expedites it instead of queueing a second.
func (g *Game) logOut(playerID uint32, forced bool) {
	p := g.state.Player(playerID)
	if p == nil {
		return
	}
	if tracked := p.TrackedEvent(scheduling.KindLogOut); tracked != nil {
		if forced {
			if op, ok := tracked.(*LogOutOperation); ok {
				op.Forced = true
			}
			g.sched.Expedite(tracked)
		}
		return
	}
	op := NewLogOutOperation(playerID, forced)
	p.Track(op)
	g.DispatchOperation(op, 0)
}

// SetAttackTarget points a creature's auto-attack at a target, replacing any
// running engagement. Target 0 disengages.
func (g *Game) SetAttackTarget(attackerID, targetID uint32) {
	attacker := g.state.Creature(attackerID)
	if attacker == nil || attacker.Dead {
		return
	}
	if prev := attacker.TrackedEvent(scheduling.KindAutoAttack); prev != nil {
		g.sched.Cancel(prev)
		attacker.Untrack(prev)
	}
	attacker.TargetID = targetID
	if targetID == 0 {
		g.Publish(NewNotification(TargetPlayer(attackerID), targetChangedPayload(attackerID, 0)))
		return
	}
	target := g.state.Creature(targetID)
	if target == nil || target.Dead {
		attacker.TargetID = 0
		if p := g.state.Player(attackerID); p != nil {
			sendClientMessage(p, MessageNotPossible)
		}
		return
	}
	op := NewAutoAttackOperation(attackerID, targetID)
	attacker.Track(op)
	g.DispatchOperation(op, 0)
	if attacker.Chase == world.ChaseTarget {
		g.ResetCreatureWalkPlan(attacker, world.NewChaseWalkPlan(targetID, 1, world.StrategyAggressive))
	}
}

// ResetCreatureWalkPlan installs a new walk plan, displacing whatever route
// the creature was on.
func (g *Game) ResetCreatureWalkPlan(c *world.Creature, plan *world.WalkPlan) {
	if prev := c.TrackedEvent(scheduling.KindAutoWalk); prev != nil {
		g.sched.Cancel(prev)
		c.Untrack(prev)
	}
	c.Plan = plan
	if plan == nil {
		return
	}
	op := NewAutoWalkOperation(c.ID, g.cfg.Game.MoveExhaustion)
	c.Track(op)
	g.DispatchOperation(op, 0)
}

// CombatantTargetChanged rewires a creature's combat target, tearing down
// the engagement when the new target is 0.
func (g *Game) CombatantTargetChanged(c *world.Creature, targetID uint32) {
	if c.TargetID == targetID {
		return
	}
	g.SetAttackTarget(c.ID, targetID)
}

// CreatureStatChanged reports a stat change to the creature's own client and,
// for health, to everyone watching.
func (g *Game) CreatureStatChanged(c *world.Creature, stat StatKind, value int32) {
	g.Publish(NewNotification(TargetPlayer(c.ID), creatureStatPayload(c, stat, value)))
	if stat == StatHP || stat == StatMaxHP {
		g.Publish(NewNotification(TargetObserversOf(c.Loc), creatureHealthPayload(c)))
	}
}

// CombatantDeath finalizes a death: stops everything the victim had going,
// disengages everyone attacking it, leaves a corpse, and either removes the
// monster or respawns the player.
func (g *Game) CombatantDeath(victim *world.Creature) {
	if victim.Dead {
		return
	}
	victim.Dead = true
	victim.HP = 0
	victim.InCombat = false
	victim.Plan = nil
	loc := victim.Loc

	g.CancelPlayerOperations(victim.ID,
		scheduling.KindAutoAttack, scheduling.KindAutoWalk,
		scheduling.KindMovement, scheduling.KindStrike)
	g.Publish(NewNotification(TargetObserversOf(loc), creatureDiedPayload(victim)))

	// Everyone pointed at the victim loses their target.
	g.state.AllPlayers(func(p *world.Player) {
		if p.TargetID == victim.ID {
			g.CombatantTargetChanged(&p.Creature, 0)
		}
	})
	g.state.AllMonsters(func(m *world.Monster) {
		if m.TargetID == victim.ID {
			g.CombatantTargetChanged(&m.Creature, 0)
		}
	})

	g.dropCorpse(victim, loc)

	if m := g.state.Monster(victim.ID); m != nil {
		g.state.RemoveMonster(victim.ID)
		g.Publish(NewNotification(TargetObserversOf(loc), creatureGonePayload(victim.ID, loc)))
		g.log.Info("monster died", zap.String("name", victim.Name), zap.Uint32("id", victim.ID))
		return
	}
	if p := g.state.Player(victim.ID); p != nil {
		g.respawnPlayer(p)
	}
}

func (g *Game) dropCorpse(victim *world.Creature, loc world.Location) {
	if g.items == nil {
		return
	}
	typ := g.items.Get("corpse")
	if typ == nil {
		return
	}
	corpse := world.NewItem(typ, 1)
	g.gmap.Tile(loc).AddItem(corpse)
	g.Publish(NewNotification(TargetObserversOf(loc), itemAddedPayload(corpse, loc)))
	if d := typ.DecayDuration(); d > 0 {
		g.sched.Schedule(NewDecayCondition(corpse.ID, loc), d, true)
	}
}

// respawnPlayer brings a dead player back at full health where they fell.
func (g *Game) respawnPlayer(p *world.Player) {
	p.Dead = false
	p.HP = p.MaxHP
	p.TargetID = 0
	g.CreatureStatChanged(&p.Creature, StatHP, p.HP)
	g.Publish(NewNotification(TargetObserversOf(p.Loc), creatureNewPayload(&p.Creature)))
	g.log.Info("player died and respawned", zap.String("character", p.Name))
}
