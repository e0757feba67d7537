package game

import (
	"time"

	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/pathfind"
	"github.com/ravenfell/server/internal/persist"
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/scripting"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
)

// execContext is the capability-independent execution context. The
// orchestrator wraps it in the variant matching the event's capability tag
// before invoking Execute.
type execContext struct {
	g   *Game
	now time.Time
}

func (c execContext) Logger() *zap.Logger { return c.g.log }
func (c execContext) Now() time.Time      { return c.now }

// OperationContext is what ordinary operations execute against: the shared
// world, follow-up scheduling, conditions and notifications.
type OperationContext struct {
	execContext
	World  *world.State
	Map    *world.Map
	Finder pathfind.Finder
	Items  *data.ItemTable
}

// Dispatch schedules a follow-up operation through the ordinary
// exhaustion-aware pathway.
func (c *OperationContext) Dispatch(op scheduling.Operation, extraDelay time.Duration) {
	c.g.DispatchOperation(op, extraDelay)
}

// AddCondition routes through the orchestrator's add-or-aggregate pathway.
func (c *OperationContext) AddCondition(target *world.Creature, cond scheduling.Condition, duration time.Duration) {
	c.g.AddOrAggregateCondition(target, cond, duration)
}

// Publish schedules a notification for immediate dispatch.
func (c *OperationContext) Publish(n *Notification) {
	c.g.Publish(n)
}

// Message sends one of the fixed validation messages to a player.
func (c *OperationContext) Message(p *world.Player, msg ClientMessage) {
	sendClientMessage(p, msg)
}

// StrikeDamage evaluates the scripted strike formula.
func (c *OperationContext) StrikeDamage(sctx scripting.StrikeContext) int {
	return c.g.scripts.CalcStrikeDamage(sctx)
}

// CombatantDeath reports that a creature dropped to zero hit points.
func (c *OperationContext) CombatantDeath(victim *world.Creature) {
	c.g.CombatantDeath(victim)
}

// InCombatFor renews the "recently in combat" status on a creature.
func (c *OperationContext) InCombatFor(target *world.Creature) {
	target.InCombat = true
	c.g.AddOrAggregateCondition(target, NewInCombatCondition(target), c.g.cfg.Game.InCombatDuration)
}

// ElevatedContext adds the privileged collaborators: factories, catalogs
// and durable records. Only operations tagged CapElevated receive it.
type ElevatedContext struct {
	OperationContext
	Monsters   *data.MonsterTable
	Accounts   *persist.AccountRepo
	Characters *persist.CharacterRepo
}

// ConditionContext is what conditions execute against.
type ConditionContext struct {
	execContext
	World *world.State
}

// Publish schedules a notification for immediate dispatch.
func (c *ConditionContext) Publish(n *Notification) {
	c.g.Publish(n)
}

// CombatantDeath reports a death caused by a condition tick.
func (c *ConditionContext) CombatantDeath(victim *world.Creature) {
	c.g.CombatantDeath(victim)
}

// NotificationContext only resolves targets against live world state.
type NotificationContext struct {
	execContext
	World *world.State
}
