package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
)

// AutoWalkOperation drives a creature's walk plan one step per firing. It is
// tracked, so replacing the plan replaces the operation, and it renews
// itself while steps remain.
type AutoWalkOperation struct {
	scheduling.BaseOperation
}

func NewAutoWalkOperation(creatureID uint32, stepCost time.Duration) *AutoWalkOperation {
	return &AutoWalkOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindAutoWalk, creatureID,
			map[scheduling.ExhaustionType]time.Duration{scheduling.ExhaustMove: stepCost}, true),
	}
}

func (o *AutoWalkOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	c := oc.World.Creature(o.RequestorID())
	if c == nil || c.Dead || c.Plan == nil {
		return o.stop(oc, c)
	}
	tracked := c.TrackedEvent(scheduling.KindAutoWalk)
	if tracked == nil || tracked.ID() != o.ID() {
		return scheduling.Done()
	}
	plan := c.Plan

	if plan.TargetID != 0 {
		target := oc.World.Creature(plan.TargetID)
		if target == nil || target.Dead {
			c.Plan = nil
			return o.stop(oc, c)
		}
		if c.Loc.MapID == target.Loc.MapID && c.Loc.Chebyshev(target.Loc) <= plan.TargetDistance {
			// In reach; idle until the target moves away.
			plan.Steps = nil
			return scheduling.RepeatAfter(stepInterval(c))
		}
		if plan.NeedsRecalc(target.Loc) {
			steps, _ := oc.Finder.FindPath(c, c.Loc, target.Loc, plan.TargetDistance, nil)
			plan.SetRoute(steps, target.Loc)
		}
	}

	dir, ok := plan.NextStep()
	if !ok {
		if plan.TargetID != 0 {
			// Chase with no route right now; retry after a beat.
			return scheduling.RepeatAfter(stepInterval(c))
		}
		c.Plan = nil
		return o.stop(oc, c)
	}

	from := c.Loc
	to := from.Step(dir)
	if !oc.Map.CanWalkTo(to) {
		if plan.TargetID != 0 {
			plan.Steps = nil
			return scheduling.RepeatAfter(stepInterval(c))
		}
		if p := oc.World.Player(c.ID); p != nil {
			oc.Message(p, MessageThereIsNoWay)
		}
		c.Plan = nil
		return o.stop(oc, c)
	}
	oc.World.MoveCreature(c, to)
	oc.Publish(NewNotification(observersOfEither(from, to), creatureMovedPayload(c, from)))

	if plan.TargetID == 0 && len(plan.Steps) == 0 {
		c.Plan = nil
		return o.stop(oc, c)
	}
	return scheduling.RepeatAfter(stepInterval(c))
}

func (o *AutoWalkOperation) stop(oc *OperationContext, c *world.Creature) scheduling.Result {
	if c != nil {
		c.Untrack(o)
	}
	return scheduling.Done()
}

// stepInterval derives the per-step delay from a creature's speed. Faster
// creatures step more often; the floor keeps a corrupt speed from spinning
// the loop.
func stepInterval(c *world.Creature) time.Duration {
	speed := c.Speed
	if speed < 10 {
		speed = 10
	}
	d := time.Duration(100_000/int64(speed)) * time.Millisecond
	if d < 50*time.Millisecond {
		d = 50 * time.Millisecond
	}
	return d
}
