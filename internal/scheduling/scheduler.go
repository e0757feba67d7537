package scheduling

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// queuedEvent is a heap entry. cancelled entries stay in the heap and are
// discarded when they surface; this keeps cancellation O(1) per event.
type queuedEvent struct {
	ev        Event
	fireAt    time.Time
	seq       uint64
	index     int
	cancelled bool
}

type eventHeap []*queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	qe := x.(*queuedEvent)
	qe.index = len(*h)
	*h = append(*h, qe)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	qe := old[n-1]
	old[n-1] = nil
	qe.index = -1
	*h = old[:n-1]
	return qe
}

// Scheduler is a time-ordered event queue with many concurrent producers and
// exactly one consuming loop. The consuming loop is what serializes every
// mutation of shared game state: all event execution happens on the
// goroutine running Run.
type Scheduler struct {
	mu      sync.Mutex
	queue   eventHeap
	pending map[string]*queuedEvent
	seq     uint64
	wake    chan struct{}
	log     *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{
		pending: make(map[string]*queuedEvent),
		wake:    make(chan struct{}, 1),
		log:     log,
	}
}

// Schedule inserts an event to fire after delay. Negative delays are
// normalized to zero. The async flag matches the dispatch contract: with
// async=false a zero delay means "as soon as possible", which under the
// single-consumer model is exactly zero-delay insertion — execution always
// happens on the consuming goroutine, so insertion never blocks either way.
func (s *Scheduler) Schedule(ev Event, delay time.Duration, async bool) {
	_ = async
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	s.seq++
	qe := &queuedEvent{
		ev:     ev,
		fireAt: time.Now().Add(delay),
		seq:    s.seq,
	}
	heap.Push(&s.queue, qe)
	s.pending[ev.ID()] = qe
	s.mu.Unlock()

	s.wakeConsumer()
}

// CancelAllFor marks every pending cancellable event owned by ownerID with
// the given kind as cancelled. Events already popped for execution run to
// completion; cancelling them is a no-op.
func (s *Scheduler) CancelAllFor(ownerID uint32, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, qe := range s.queue {
		if qe.cancelled || !qe.ev.Cancellable() {
			continue
		}
		if qe.ev.RequestorID() == ownerID && qe.ev.Kind() == kind {
			qe.cancelled = true
			delete(s.pending, qe.ev.ID())
		}
	}
}

// Cancel marks a single pending event as cancelled. Returns false if the
// event is not pending (already fired, already cancelled, or never
// scheduled) or is not cancellable.
func (s *Scheduler) Cancel(ev Event) bool {
	if !ev.Cancellable() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	qe, ok := s.pending[ev.ID()]
	if !ok {
		return false
	}
	qe.cancelled = true
	delete(s.pending, ev.ID())
	return true
}

// CalculateTimeToFire returns the remaining time until a still-pending
// event's fire time, or zero if the event is not pending. Used to decide how
// much extra delay an aggregating condition needs.
func (s *Scheduler) CalculateTimeToFire(ev Event) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	qe, ok := s.pending[ev.ID()]
	if !ok {
		return 0
	}
	remaining := time.Until(qe.fireAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Postpone pushes a pending event's fire time back by extra, in place.
// This is how condition aggregation extends an active effect without a
// removal/reinsertion pair.
func (s *Scheduler) Postpone(ev Event, extra time.Duration) bool {
	if extra <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	qe, ok := s.pending[ev.ID()]
	if !ok {
		return false
	}
	qe.fireAt = qe.fireAt.Add(extra)
	heap.Fix(&s.queue, qe.index)
	return true
}

// Expedite moves a pending event's fire time to now, so it fires on the
// consumer's next pass. Returns false if the event is not pending.
func (s *Scheduler) Expedite(ev Event) bool {
	s.mu.Lock()
	qe, ok := s.pending[ev.ID()]
	if !ok {
		s.mu.Unlock()
		return false
	}
	qe.fireAt = time.Now()
	heap.Fix(&s.queue, qe.index)
	s.mu.Unlock()

	s.wakeConsumer()
	return true
}

// QueueSize returns the number of pending (not yet fired, not cancelled)
// events.
func (s *Scheduler) QueueSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Run is the single consuming loop. It waits until the earliest pending
// event is due, pops it, and hands it to fire; cancelled entries are
// silently discarded when they surface. Run returns when ctx is cancelled.
// Exactly one goroutine may run this loop per scheduler.
func (s *Scheduler) Run(ctx context.Context, fire func(Event)) {
	for {
		s.mu.Lock()

		// Discard cancelled entries at the front.
		for s.queue.Len() > 0 && s.queue[0].cancelled {
			heap.Pop(&s.queue)
		}

		if s.queue.Len() == 0 {
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
			continue
		}

		wait := time.Until(s.queue[0].fireAt)
		if wait <= 0 {
			qe := heap.Pop(&s.queue).(*queuedEvent)
			delete(s.pending, qe.ev.ID())
			s.mu.Unlock()
			fire(qe.ev)
			continue
		}
		s.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wake:
			// A new or expedited event may now be the earliest.
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) wakeConsumer() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
