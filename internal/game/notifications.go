package game

import (
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
)

// TargetFunc resolves the recipients of a notification against the world as
// it is at delivery time, not at creation time.
type TargetFunc func(s *world.State) []*world.Player

// Notification carries a payload to a lazily resolved set of players. The
// payload may be fixed up front or built per recipient with Prepare.
type Notification struct {
	scheduling.BaseEvent
	Targets TargetFunc

	// Payload is sent verbatim to every target when Prepare is nil.
	Payload []byte

	// Prepare, when set, builds the frame for one recipient. Returning nil
	// skips that recipient.
	Prepare func(p *world.Player) []byte

	// AfterDelivery runs once after all sends, still on the consuming
	// goroutine.
	AfterDelivery func(s *world.State)
}

func NewNotification(targets TargetFunc, payload []byte) *Notification {
	return &Notification{
		BaseEvent: scheduling.NewBaseEvent(scheduling.KindNotification, 0, true),
		Targets:   targets,
		Payload:   payload,
	}
}

func (n *Notification) Capability() scheduling.Capability { return scheduling.CapNotification }

// SkipTelemetry keeps the high-volume notification traffic out of the
// per-kind duration stats.
func (n *Notification) SkipTelemetry() bool { return true }

func (n *Notification) Execute(ctx scheduling.Context) scheduling.Result {
	nc := ctx.(*NotificationContext)
	for _, p := range n.Targets(nc.World) {
		if p == nil || p.Session == nil {
			continue
		}
		frame := n.Payload
		if n.Prepare != nil {
			frame = n.Prepare(p)
		}
		if len(frame) == 0 {
			continue
		}
		p.Session.Send(frame)
	}
	if n.AfterDelivery != nil {
		n.AfterDelivery(nc.World)
	}
	return scheduling.Done()
}

// TargetObserversOf selects every connected player that can see the location.
func TargetObserversOf(loc world.Location) TargetFunc {
	return func(s *world.State) []*world.Player {
		return s.PlayersWhoCanSee(loc)
	}
}

// TargetAllPlayers selects every connected player.
func TargetAllPlayers() TargetFunc {
	return func(s *world.State) []*world.Player {
		var out []*world.Player
		s.AllPlayers(func(p *world.Player) { out = append(out, p) })
		return out
	}
}

// TargetPlayer selects a single player by creature id, if still connected.
func TargetPlayer(id uint32) TargetFunc {
	return func(s *world.State) []*world.Player {
		if p := s.Player(id); p != nil {
			return []*world.Player{p}
		}
		return nil
	}
}
