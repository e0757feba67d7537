package game

import (
	"context"
	"time"

	"github.com/ravenfell/server/internal/config"
	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/pathfind"
	"github.com/ravenfell/server/internal/persist"
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/scripting"
	"github.com/ravenfell/server/internal/telemetry"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
)

// Deps carries everything the game engine needs wired in from main.
// Accounts and Characters may be nil when running without a database.
type Deps struct {
	Config     *config.Config
	Log        *zap.Logger
	Map        *world.Map
	Monsters   *data.MonsterTable
	Items      *data.ItemTable
	Scripts    *scripting.Engine
	Accounts   *persist.AccountRepo
	Characters *persist.CharacterRepo
	Metrics    *telemetry.Metrics
	Finder     pathfind.Finder
}

// Game owns the scheduler and the world state. All mutation of the world
// happens on the single goroutine running Run; everything else talks to it
// by scheduling events.
type Game struct {
	cfg   *config.Config
	log   *zap.Logger
	sched *scheduling.Scheduler
	state *world.State
	gmap  *world.Map

	finder     pathfind.Finder
	monsters   *data.MonsterTable
	items      *data.ItemTable
	scripts    *scripting.Engine
	accounts   *persist.AccountRepo
	characters *persist.CharacterRepo
	metrics    *telemetry.Metrics
}

func New(deps Deps) *Game {
	gmap := deps.Map
	if gmap == nil {
		gmap = world.NewMap()
	}
	finder := deps.Finder
	if finder == nil {
		finder = pathfind.NewGreedyFinder(gmap)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	return &Game{
		cfg:        deps.Config,
		log:        deps.Log,
		sched:      scheduling.NewScheduler(deps.Log),
		state:      world.NewState(gmap),
		gmap:       gmap,
		finder:     finder,
		monsters:   deps.Monsters,
		items:      deps.Items,
		scripts:    deps.Scripts,
		accounts:   deps.Accounts,
		characters: deps.Characters,
		metrics:    metrics,
	}
}

func (g *Game) Scheduler() *scheduling.Scheduler { return g.sched }
func (g *Game) State() *world.State              { return g.state }
func (g *Game) Map() *world.Map                  { return g.gmap }

// Run seeds the background loops and drives the scheduler until ctx is
// cancelled. It blocks; callers run it on a dedicated goroutine.
func (g *Game) Run(ctx context.Context) {
	g.state.Info.Status = world.WorldOpen
	g.sched.Schedule(newWorldClockEvent(g.cfg.Game.WorldClockPeriod), g.cfg.Game.WorldClockPeriod, true)
	g.sched.Schedule(newIdleSweepEvent(g.cfg.Game.IdleSweepPeriod), g.cfg.Game.IdleSweepPeriod, true)
	g.sched.Run(ctx, g.onEventFired)
}

// DispatchOperation schedules an operation to fire after extraDelay. The
// requestor's remaining exhaustion is resolved at fire time on the consuming
// goroutine (see onEventFired), never here, so this is safe to call from any
// producer goroutine without touching world state.
func (g *Game) DispatchOperation(op scheduling.Operation, extraDelay time.Duration) {
	g.sched.Schedule(op, extraDelay, true)
}

// Publish schedules a notification for immediate dispatch.
func (g *Game) Publish(n *Notification) {
	g.sched.Schedule(n, 0, true)
}

// onEventFired runs on the scheduler's consuming goroutine. It builds the
// context matching the event's capability, executes the event with panic
// isolation, applies post-execution exhaustion, and honors repeat requests.
func (g *Game) onEventFired(ev scheduling.Event) {
	now := time.Now()

	// An operation that surfaces while its requestor is still exhausted in a
	// declared category is pushed back out, not executed.
	if op, ok := ev.(scheduling.Operation); ok {
		if wait := g.remainingExhaustion(op, now); wait > 0 {
			g.sched.Schedule(ev, wait, true)
			return
		}
	}

	base := execContext{g: g, now: now}

	var ctx scheduling.Context
	switch ev.Capability() {
	case scheduling.CapOperation:
		ctx = &OperationContext{execContext: base, World: g.state, Map: g.gmap, Finder: g.finder, Items: g.items}
	case scheduling.CapElevated:
		ctx = &ElevatedContext{
			OperationContext: OperationContext{execContext: base, World: g.state, Map: g.gmap, Finder: g.finder, Items: g.items},
			Monsters:         g.monsters,
			Accounts:         g.accounts,
			Characters:       g.characters,
		}
	case scheduling.CapCondition:
		ctx = &ConditionContext{execContext: base, World: g.state}
	case scheduling.CapNotification:
		ctx = &NotificationContext{execContext: base, World: g.state}
	case scheduling.CapGeneric:
		ctx = base
	}

	start := time.Now()
	res := g.executeEvent(ev, ctx)

	if opt, ok := ev.(interface{ SkipTelemetry() bool }); !ok || !opt.SkipTelemetry() {
		g.metrics.ObserveEvent(ev.Kind().String(), time.Since(start))
	}

	if op, ok := ev.(scheduling.Operation); ok {
		g.applyExhaustion(op, now)
	}
	if after, repeat := res.Repeats(); repeat {
		g.sched.Schedule(ev, after, true)
	}
}

// executeEvent isolates panics so one faulty event cannot take down the
// consuming loop.
func (g *Game) executeEvent(ev scheduling.Event, ctx scheduling.Context) (res scheduling.Result) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("event execution panicked",
				zap.String("kind", ev.Kind().String()),
				zap.String("event_id", ev.ID()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			res = scheduling.Done()
		}
	}()
	return ev.Execute(ctx)
}

// remainingExhaustion is the longest remaining cooldown across the categories
// the operation declares. Runs on the consuming goroutine only.
func (g *Game) remainingExhaustion(op scheduling.Operation, now time.Time) time.Duration {
	costs := op.ExhaustionCost()
	if len(costs) == 0 {
		return 0
	}
	c := g.state.Creature(op.RequestorID())
	if c == nil {
		return 0
	}
	var worst time.Duration
	for cat := range costs {
		if rem := c.RemainingExhaustion(cat, now); rem > worst {
			worst = rem
		}
	}
	return worst
}

func (g *Game) applyExhaustion(op scheduling.Operation, now time.Time) {
	costs := op.ExhaustionCost()
	if len(costs) == 0 {
		return
	}
	c := g.state.Creature(op.RequestorID())
	if c == nil {
		return
	}
	var longest time.Duration
	for _, d := range costs {
		if d > longest {
			longest = d
		}
	}
	cond := world.NewExhaustionCondition(c, costs, now)
	g.AddOrAggregateCondition(c, cond, longest)
}

// AddOrAggregateCondition tracks a new condition on the target, or folds the
// candidate into the one already occupying the kind's slot. An unrelated
// event holding the slot wins; the candidate is discarded.
func (g *Game) AddOrAggregateCondition(target *world.Creature, cond scheduling.Condition, duration time.Duration) {
	existing := target.TrackedEvent(cond.Kind())
	if existing == nil {
		target.Track(cond)
		g.sched.Schedule(cond, duration, true)
		return
	}
	held, ok := existing.(scheduling.Condition)
	if !ok || held.ConditionType() != cond.ConditionType() {
		g.log.Debug("condition slot occupied by unrelated event",
			zap.String("kind", cond.Kind().String()),
			zap.Uint32("target", target.ID))
		return
	}
	if !held.Aggregate(cond) {
		return
	}
	if extra := duration - g.sched.CalculateTimeToFire(existing); extra > 0 {
		g.sched.Postpone(existing, extra)
	}
}

// CancelPlayerOperations cancels every pending cancellable event of the
// given kinds owned by the creature, including tracked ones.
func (g *Game) CancelPlayerOperations(ownerID uint32, kinds ...scheduling.Kind) {
	c := g.state.Creature(ownerID)
	for _, k := range kinds {
		g.sched.CancelAllFor(ownerID, k)
		if c == nil {
			continue
		}
		if tracked := c.TrackedEvent(k); tracked != nil && tracked.Cancellable() {
			c.Untrack(tracked)
		}
	}
}

// withDB returns a bounded context for durable reads and writes issued from
// the consuming goroutine.
func (g *Game) withDB() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
