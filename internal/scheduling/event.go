package scheduling

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context carries the collaborators an event may touch while executing.
// The orchestrator builds a concrete variant matching the event's capability
// tag; the event asserts to the variant it expects. All execution happens on
// the scheduler's consuming goroutine.
type Context interface {
	Logger() *zap.Logger
	Now() time.Time
}

// Event is a schedulable unit of work. Implementations embed BaseEvent and
// override Capability (and Execute) as needed.
type Event interface {
	// ID uniquely identifies this event instance.
	ID() string
	// RequestorID is the creature that asked for this work, or 0 for the
	// server itself.
	RequestorID() uint32
	// Cancellable reports whether the event may be cancelled while pending.
	Cancellable() bool
	Kind() Kind
	Capability() Capability
	// Execute runs the event's logic. Repetition is expressed through the
	// returned Result, never through mutable state inspected afterwards.
	Execute(ctx Context) Result
}

// Operation is an Event that mutates game state on behalf of a requestor and
// declares the cooldowns its execution costs. The orchestrator applies the
// declared costs to the requestor after the operation's own logic completes.
type Operation interface {
	Event
	ExhaustionCost() map[ExhaustionType]time.Duration
}

// Result is what an event's execution reports back to the firing site.
type Result struct {
	repeatAfter time.Duration
}

// Done means the event is finished and will not be rescheduled.
func Done() Result { return Result{} }

// RepeatAfter asks the firing site to reschedule the same event instance
// after d. Non-positive d is treated as Done.
func RepeatAfter(d time.Duration) Result { return Result{repeatAfter: d} }

// Repeats returns the requested repeat delay, if any.
func (r Result) Repeats() (time.Duration, bool) {
	return r.repeatAfter, r.repeatAfter > 0
}

// BaseEvent provides the identity plumbing shared by all events.
type BaseEvent struct {
	id          string
	requestorID uint32
	kind        Kind
	cancellable bool
}

func NewBaseEvent(kind Kind, requestorID uint32, cancellable bool) BaseEvent {
	return BaseEvent{
		id:          uuid.NewString(),
		requestorID: requestorID,
		kind:        kind,
		cancellable: cancellable,
	}
}

func (e *BaseEvent) ID() string              { return e.id }
func (e *BaseEvent) RequestorID() uint32     { return e.requestorID }
func (e *BaseEvent) Kind() Kind              { return e.kind }
func (e *BaseEvent) Cancellable() bool       { return e.cancellable }
func (e *BaseEvent) Capability() Capability { return CapGeneric }
func (e *BaseEvent) Execute(Context) Result { return Done() }

// BaseOperation extends BaseEvent with declared cooldown costs.
type BaseOperation struct {
	BaseEvent
	cost map[ExhaustionType]time.Duration
}

func NewBaseOperation(kind Kind, requestorID uint32, cost map[ExhaustionType]time.Duration, cancellable bool) BaseOperation {
	return BaseOperation{
		BaseEvent: NewBaseEvent(kind, requestorID, cancellable),
		cost:      cost,
	}
}

func (o *BaseOperation) Capability() Capability { return CapOperation }

func (o *BaseOperation) ExhaustionCost() map[ExhaustionType]time.Duration { return o.cost }

// ConditionType identifies a concrete condition implementation. Conditions
// are tracked by Kind but only aggregate with an instance of the exact same
// type; a kind collision between different types leaves the first slot
// holder untouched.
type ConditionType int

const (
	ConditionExhaustion ConditionType = iota
	ConditionInCombat
	ConditionDecay
	ConditionDamageOverTime
)

// Condition is an Event representing an ongoing status effect, including
// cooldown bookkeeping. Its scheduled firing is the effect's expiry (or next
// tick, for periodic effects).
type Condition interface {
	Event
	ConditionType() ConditionType
	// Aggregate folds a fresh instance of the same type into the receiver
	// and reports whether the tracked firing may need to move later. It
	// must never shorten the remaining duration.
	Aggregate(candidate Condition) bool
}
