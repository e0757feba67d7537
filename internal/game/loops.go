package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
)

// worldClockEvent advances ambient world state on a fixed cadence. It is the
// only writer of WorldInformation. It also samples the gauges while it is
// here, so telemetry needs no extra loop.
type worldClockEvent struct {
	scheduling.BaseEvent
	period time.Duration
}

func newWorldClockEvent(period time.Duration) *worldClockEvent {
	return &worldClockEvent{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindWorldClock, 0, false),
		period:    period,
	}
}

func (e *worldClockEvent) SkipTelemetry() bool { return true }

func (e *worldClockEvent) Execute(ctx scheduling.Context) scheduling.Result {
	g := ctx.(execContext).g

	// One real hour is one in-game day.
	minute := int(ctx.Now().Unix()/60) % 60
	level, color := world.LightBandFor(minute)
	info := &g.state.Info
	if info.LightLevel != level || info.LightColor != color {
		info.LightLevel = level
		info.LightColor = color
		g.Publish(NewNotification(TargetAllPlayers(), worldLightPayload(level, color)))
		g.log.Debug("world light changed", zap.Uint8("level", level), zap.Uint8("color", color))
	}

	g.metrics.SampleQueueSize(g.sched.QueueSize())
	g.metrics.SamplePlayersOnline(g.state.PlayerCount())
	return scheduling.RepeatAfter(e.period)
}

// idleSweepEvent walks all players on a slow cadence, kicking the ones whose
// link died or went silent and heartbeating the rest.
type idleSweepEvent struct {
	scheduling.BaseEvent
	period time.Duration
}

func newIdleSweepEvent(period time.Duration) *idleSweepEvent {
	return &idleSweepEvent{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindIdleSweep, 0, false),
		period:    period,
	}
}

func (e *idleSweepEvent) SkipTelemetry() bool { return true }

func (e *idleSweepEvent) Execute(ctx scheduling.Context) scheduling.Result {
	g := ctx.(execContext).g
	now := ctx.Now()
	kickAfter := g.cfg.Game.IdleKickAfter

	var kicked, pinged int
	g.state.AllPlayers(func(p *world.Player) {
		if p.Session == nil || p.Session.IsClosed() {
			g.logOut(p.ID, true)
			kicked++
			return
		}
		if kickAfter > 0 && now.Sub(p.Session.LastActivity()) > kickAfter {
			g.logOut(p.ID, true)
			kicked++
			return
		}
		g.DispatchOperation(NewHeartbeatOperation(p.ID), 0)
		pinged++
	})
	if kicked > 0 {
		g.log.Info("idle sweep", zap.Int("kicked", kicked), zap.Int("pinged", pinged))
	}
	return scheduling.RepeatAfter(e.period)
}
