package world

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
)

// ExhaustionCondition tracks per-category cooldown expiries on a creature.
// It is the mechanism by which "operation X costs Y of cooldown" becomes
// queryable state: the orchestrator adds one after every operation that
// declares exhaustion costs, through the same aggregation pathway as
// ordinary status conditions.
type ExhaustionCondition struct {
	scheduling.BaseEvent
	Owner  *Creature
	expiry map[scheduling.ExhaustionType]time.Time
}

// NewExhaustionCondition builds a condition expiring the given categories at
// now + their durations.
func NewExhaustionCondition(owner *Creature, costs map[scheduling.ExhaustionType]time.Duration, now time.Time) *ExhaustionCondition {
	expiry := make(map[scheduling.ExhaustionType]time.Time, len(costs))
	for t, d := range costs {
		expiry[t] = now.Add(d)
	}
	return &ExhaustionCondition{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindConditionExhaustion, owner.ID, true),
		Owner:     owner,
		expiry:    expiry,
	}
}

func (c *ExhaustionCondition) Capability() scheduling.Capability {
	return scheduling.CapCondition
}

func (c *ExhaustionCondition) ConditionType() scheduling.ConditionType {
	return scheduling.ConditionExhaustion
}

// RemainingFor returns the unexpired part of the cooldown for a category.
func (c *ExhaustionCondition) RemainingFor(t scheduling.ExhaustionType, now time.Time) time.Duration {
	at, ok := c.expiry[t]
	if !ok {
		return 0
	}
	remaining := at.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LatestExpiry returns the furthest expiry across all categories.
func (c *ExhaustionCondition) LatestExpiry() time.Time {
	var latest time.Time
	for _, at := range c.expiry {
		if at.After(latest) {
			latest = at
		}
	}
	return latest
}

// Aggregate merges another exhaustion condition's expiries, keeping the
// later timestamp per category. Always monotonic: existing expiries are
// never pulled earlier.
func (c *ExhaustionCondition) Aggregate(candidate scheduling.Condition) bool {
	other, ok := candidate.(*ExhaustionCondition)
	if !ok {
		return false
	}
	for t, at := range other.expiry {
		if cur, exists := c.expiry[t]; !exists || at.After(cur) {
			c.expiry[t] = at
		}
	}
	return true
}

// Execute fires at the condition's expiry: drop categories already past and
// keep the condition alive while any cooldown is still running.
func (c *ExhaustionCondition) Execute(ctx scheduling.Context) scheduling.Result {
	now := ctx.Now()
	for t, at := range c.expiry {
		if !at.After(now) {
			delete(c.expiry, t)
		}
	}
	if len(c.expiry) == 0 {
		c.Owner.Untrack(c)
		return scheduling.Done()
	}
	return scheduling.RepeatAfter(c.LatestExpiry().Sub(now))
}
