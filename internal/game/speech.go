package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
)

// SpeechMode selects how far a line of speech carries.
type SpeechMode byte

const (
	SpeechSay SpeechMode = iota
	SpeechWhisper
	SpeechYell
)

const (
	whisperRange = int32(1)
	yellFactor   = int32(3)
)

// SpeechOperation broadcasts a line of text from a creature. The audience is
// resolved at delivery time, so creatures that moved in or out of range
// between scheduling and firing are handled correctly.
type SpeechOperation struct {
	scheduling.BaseOperation
	Mode SpeechMode
	Text string
}

func NewSpeechOperation(requestorID uint32, mode SpeechMode, text string, yellCost time.Duration) *SpeechOperation {
	var cost map[scheduling.ExhaustionType]time.Duration
	if mode == SpeechYell {
		cost = map[scheduling.ExhaustionType]time.Duration{scheduling.ExhaustSpeech: yellCost}
	}
	return &SpeechOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindSpeech, requestorID, cost, true),
		Mode:          mode,
		Text:          text,
	}
}

func (o *SpeechOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	speaker := oc.World.Creature(o.RequestorID())
	if speaker == nil || speaker.Dead || o.Text == "" {
		return scheduling.Done()
	}

	loc := speaker.Loc
	mode := o.Mode
	audible := func(p *world.Player) bool {
		if p.Loc.MapID != loc.MapID {
			return false
		}
		d := p.Loc.Chebyshev(loc)
		switch mode {
		case SpeechWhisper:
			return d <= whisperRange
		case SpeechYell:
			return d <= world.ViewRange*yellFactor
		default:
			return d <= world.ViewRange
		}
	}
	targets := func(s *world.State) []*world.Player {
		var out []*world.Player
		s.AllPlayers(func(p *world.Player) {
			if audible(p) {
				out = append(out, p)
			}
		})
		return out
	}
	oc.Publish(NewNotification(targets, speechPayload(speaker, o.Mode, o.Text)))
	return scheduling.Done()
}

// TurnOperation rotates a creature in place.
type TurnOperation struct {
	scheduling.BaseOperation
	Heading world.Direction
}

func NewTurnOperation(requestorID uint32, heading world.Direction) *TurnOperation {
	return &TurnOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindTurn, requestorID, nil, true),
		Heading:       heading,
	}
}

func (o *TurnOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	c := oc.World.Creature(o.RequestorID())
	if c == nil || c.Dead || c.Heading == o.Heading {
		return scheduling.Done()
	}
	c.Heading = o.Heading
	oc.Publish(NewNotification(TargetObserversOf(c.Loc), creatureTurnedPayload(c)))
	return scheduling.Done()
}
