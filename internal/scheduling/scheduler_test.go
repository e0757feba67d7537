package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedEvent struct {
	BaseEvent
}

func newRecordedEvent(kind Kind, requestor uint32) *recordedEvent {
	return &recordedEvent{BaseEvent: NewBaseEvent(kind, requestor, true)}
}

type firingLog struct {
	mu  sync.Mutex
	ids []string
}

func (l *firingLog) record(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, ev.ID())
}

func (l *firingLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

func runScheduler(t *testing.T, s *Scheduler, fire func(Event)) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, fire)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
	})
	return cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestSchedulerFiresInTimeOrder(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	log := &firingLog{}
	runScheduler(t, s, log.record)

	a := newRecordedEvent(KindGeneric, 1)
	b := newRecordedEvent(KindGeneric, 1)
	s.Schedule(a, 120*time.Millisecond, true)
	s.Schedule(b, 40*time.Millisecond, true)

	waitFor(t, func() bool { return len(log.snapshot()) == 2 })
	require.Equal(t, []string{b.ID(), a.ID()}, log.snapshot())
}

func TestSchedulerNegativeDelayFiresImmediately(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	log := &firingLog{}
	runScheduler(t, s, log.record)

	ev := newRecordedEvent(KindGeneric, 1)
	s.Schedule(ev, -5*time.Second, true)

	waitFor(t, func() bool { return len(log.snapshot()) == 1 })
}

func TestSchedulerCancelBeforeFire(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	log := &firingLog{}
	runScheduler(t, s, log.record)

	keep := newRecordedEvent(KindGeneric, 1)
	drop := newRecordedEvent(KindGeneric, 1)
	s.Schedule(drop, 60*time.Millisecond, true)
	s.Schedule(keep, 80*time.Millisecond, true)
	require.True(t, s.Cancel(drop))

	waitFor(t, func() bool { return len(log.snapshot()) == 1 })
	assert.Equal(t, []string{keep.ID()}, log.snapshot())
}

func TestSchedulerCancelAllForRespectsOwnerAndKind(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	log := &firingLog{}
	runScheduler(t, s, log.record)

	mine := newRecordedEvent(KindMovement, 7)
	otherKind := newRecordedEvent(KindSpeech, 7)
	otherOwner := newRecordedEvent(KindMovement, 8)
	s.Schedule(mine, 60*time.Millisecond, true)
	s.Schedule(otherKind, 60*time.Millisecond, true)
	s.Schedule(otherOwner, 60*time.Millisecond, true)

	s.CancelAllFor(7, KindMovement)

	waitFor(t, func() bool { return len(log.snapshot()) == 2 })
	got := log.snapshot()
	assert.Contains(t, got, otherKind.ID())
	assert.Contains(t, got, otherOwner.ID())
	assert.NotContains(t, got, mine.ID())
}

func TestSchedulerTimeToFireAndPostpone(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	ev := newRecordedEvent(KindGeneric, 1)
	s.Schedule(ev, time.Second, true)

	ttf := s.CalculateTimeToFire(ev)
	assert.InDelta(t, float64(time.Second), float64(ttf), float64(100*time.Millisecond))

	require.True(t, s.Postpone(ev, 2*time.Second))
	ttf = s.CalculateTimeToFire(ev)
	assert.InDelta(t, float64(3*time.Second), float64(ttf), float64(100*time.Millisecond))

	unknown := newRecordedEvent(KindGeneric, 1)
	assert.Zero(t, s.CalculateTimeToFire(unknown))
	assert.False(t, s.Postpone(unknown, time.Second))
}

func TestSchedulerExpedite(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	log := &firingLog{}
	runScheduler(t, s, log.record)

	ev := newRecordedEvent(KindGeneric, 1)
	s.Schedule(ev, time.Hour, true)
	require.True(t, s.Expedite(ev))

	waitFor(t, func() bool { return len(log.snapshot()) == 1 })
}

func TestSchedulerQueueSize(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	assert.Zero(t, s.QueueSize())

	a := newRecordedEvent(KindGeneric, 1)
	b := newRecordedEvent(KindGeneric, 1)
	s.Schedule(a, time.Hour, true)
	s.Schedule(b, time.Hour, true)
	assert.Equal(t, 2, s.QueueSize())

	s.Cancel(a)
	assert.Equal(t, 1, s.QueueSize())
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	log := &firingLog{}
	cancel := runScheduler(t, s, log.record)

	cancel()
	time.Sleep(20 * time.Millisecond)
	s.Schedule(newRecordedEvent(KindGeneric, 1), 0, true)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, log.snapshot())
}
