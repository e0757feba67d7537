package world

import (
	"testing"
	"time"

	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCreature(name string) *Creature {
	return &Creature{ID: NextCreatureID(), Name: name, HP: 100, MaxHP: 100}
}

type stubEvent struct {
	scheduling.BaseEvent
}

func newStubEvent(kind scheduling.Kind, owner uint32) *stubEvent {
	return &stubEvent{BaseEvent: scheduling.NewBaseEvent(kind, owner, true)}
}

func TestTrackedEventSingleSlotPerKind(t *testing.T) {
	c := testCreature("Arden")
	first := newStubEvent(scheduling.KindAutoAttack, c.ID)
	second := newStubEvent(scheduling.KindAutoAttack, c.ID)

	assert.Nil(t, c.Track(first))
	displaced := c.Track(second)
	require.NotNil(t, displaced)
	assert.Equal(t, first.ID(), displaced.ID())
	assert.Equal(t, second.ID(), c.TrackedEvent(scheduling.KindAutoAttack).ID())
}

func TestUntrackIgnoresStaleEvent(t *testing.T) {
	c := testCreature("Arden")
	old := newStubEvent(scheduling.KindAutoWalk, c.ID)
	current := newStubEvent(scheduling.KindAutoWalk, c.ID)
	c.Track(old)
	c.Track(current)

	// The stale predecessor must not knock out its replacement.
	c.Untrack(old)
	require.NotNil(t, c.TrackedEvent(scheduling.KindAutoWalk))

	c.Untrack(current)
	assert.Nil(t, c.TrackedEvent(scheduling.KindAutoWalk))
}

func TestExhaustionConditionMergesMonotonically(t *testing.T) {
	c := testCreature("Arden")
	now := time.Now()

	first := NewExhaustionCondition(c, map[scheduling.ExhaustionType]time.Duration{
		scheduling.ExhaustCombat: 2 * time.Second,
		scheduling.ExhaustMove:   300 * time.Millisecond,
	}, now)

	// A shorter combat cooldown must not shrink the merged one.
	shorter := NewExhaustionCondition(c, map[scheduling.ExhaustionType]time.Duration{
		scheduling.ExhaustCombat: time.Second,
	}, now)
	require.True(t, first.Aggregate(shorter))
	assert.Equal(t, 2*time.Second, first.RemainingFor(scheduling.ExhaustCombat, now))

	// A longer one extends it, and new categories merge in.
	longer := NewExhaustionCondition(c, map[scheduling.ExhaustionType]time.Duration{
		scheduling.ExhaustCombat: 4 * time.Second,
		scheduling.ExhaustSpeech: time.Second,
	}, now)
	require.True(t, first.Aggregate(longer))
	assert.Equal(t, 4*time.Second, first.RemainingFor(scheduling.ExhaustCombat, now))
	assert.Equal(t, time.Second, first.RemainingFor(scheduling.ExhaustSpeech, now))
	assert.Equal(t, 300*time.Millisecond, first.RemainingFor(scheduling.ExhaustMove, now))
}

func TestExhaustionConditionExpiry(t *testing.T) {
	c := testCreature("Arden")
	now := time.Now()
	cond := NewExhaustionCondition(c, map[scheduling.ExhaustionType]time.Duration{
		scheduling.ExhaustMove:   time.Second,
		scheduling.ExhaustCombat: 3 * time.Second,
	}, now)
	c.Track(cond)

	res := cond.Execute(fixedClock{at: now.Add(1500 * time.Millisecond)})
	after, repeats := res.Repeats()
	require.True(t, repeats)
	assert.InDelta(t, float64(1500*time.Millisecond), float64(after), float64(time.Millisecond))
	assert.Zero(t, cond.RemainingFor(scheduling.ExhaustMove, now.Add(1500*time.Millisecond)))

	res = cond.Execute(fixedClock{at: now.Add(4 * time.Second)})
	_, repeats = res.Repeats()
	assert.False(t, repeats)
	assert.Nil(t, c.TrackedEvent(scheduling.KindConditionExhaustion))
}

type fixedClock struct {
	at time.Time
}

func (fixedClock) Logger() *zap.Logger { return zap.NewNop() }
func (c fixedClock) Now() time.Time    { return c.at }

func TestRemainingExhaustionViaTrackedSlot(t *testing.T) {
	c := testCreature("Arden")
	now := time.Now()
	assert.Zero(t, c.RemainingExhaustion(scheduling.ExhaustCombat, now))

	cond := NewExhaustionCondition(c, map[scheduling.ExhaustionType]time.Duration{
		scheduling.ExhaustCombat: 2 * time.Second,
	}, now)
	c.Track(cond)
	assert.Equal(t, 2*time.Second, c.RemainingExhaustion(scheduling.ExhaustCombat, now))
	assert.Zero(t, c.RemainingExhaustion(scheduling.ExhaustMove, now))
}

func TestWalkPlanStrategies(t *testing.T) {
	target := Location{X: 5, Y: 5}

	static := NewStaticWalkPlan([]Direction{East, East})
	assert.False(t, static.NeedsRecalc(target))

	conservative := NewChaseWalkPlan(9, 1, StrategyConservative)
	assert.True(t, conservative.NeedsRecalc(target))
	conservative.SetRoute([]Direction{East}, target)
	assert.False(t, conservative.NeedsRecalc(target))

	aggressive := NewChaseWalkPlan(9, 1, StrategyAggressive)
	aggressive.SetRoute([]Direction{East}, target)
	assert.False(t, aggressive.NeedsRecalc(target))
	assert.True(t, aggressive.NeedsRecalc(Location{X: 6, Y: 5}))
}

func TestWalkPlanNextStepConsumesRoute(t *testing.T) {
	plan := NewStaticWalkPlan([]Direction{North, East})
	d, ok := plan.NextStep()
	require.True(t, ok)
	assert.Equal(t, North, d)
	d, ok = plan.NextStep()
	require.True(t, ok)
	assert.Equal(t, East, d)
	_, ok = plan.NextStep()
	assert.False(t, ok)
}

func TestMapThrowLine(t *testing.T) {
	m := NewMap()
	wall := &data.ItemType{Name: "wall", Blocking: true, BlocksLOS: true}

	from := Location{X: 0, Y: 0}
	to := Location{X: 4, Y: 0}
	assert.True(t, m.CanThrowTo(from, to))

	m.Tile(Location{X: 2, Y: 0}).AddItem(NewItem(wall, 1))
	assert.False(t, m.CanThrowTo(from, to))

	// Out of range even with a clear line.
	assert.False(t, m.CanThrowTo(from, Location{X: ThrowRange + 1, Y: 0}))
	// Different maps never connect.
	assert.False(t, m.CanThrowTo(from, Location{X: 1, Y: 0, MapID: 3}))
}

func TestMoveCreatureUpdatesTiles(t *testing.T) {
	m := NewMap()
	s := NewState(m)
	p := &Player{Creature: *testCreature("Arden")}
	p.Loc = Location{X: 1, Y: 1}
	s.AddPlayer(p)

	to := Location{X: 2, Y: 1}
	s.MoveCreature(&p.Creature, to)

	assert.Equal(t, to, p.Loc)
	assert.NotContains(t, m.Tile(Location{X: 1, Y: 1}).Creatures, p.ID)
	assert.Contains(t, m.Tile(to).Creatures, p.ID)
}

func TestPlayersWhoCanSee(t *testing.T) {
	s := NewState(NewMap())
	near := &Player{Creature: *testCreature("Near")}
	near.Loc = Location{X: 10, Y: 10}
	far := &Player{Creature: *testCreature("Far")}
	far.Loc = Location{X: 10 + ViewRange + 1, Y: 10}
	s.AddPlayer(near)
	s.AddPlayer(far)

	seen := s.PlayersWhoCanSee(Location{X: 10, Y: 10})
	require.Len(t, seen, 1)
	assert.Equal(t, near.ID, seen[0].ID)
}

func TestLocationDirections(t *testing.T) {
	l := Location{X: 5, Y: 5}
	assert.Equal(t, East, l.DirectionTo(Location{X: 9, Y: 5}))
	assert.Equal(t, NorthWest, l.DirectionTo(Location{X: 4, Y: 4}))
	assert.Equal(t, Location{X: 5, Y: 4}, l.Step(North))
	assert.Equal(t, int32(4), l.Chebyshev(Location{X: 9, Y: 3}))
}
