package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
)

const monsterAggroRange = int32(7)

// MonsterThinkOperation is a hostile monster's brain tick. While idle it
// scans for a player to engage; once engaged the auto-attack orchestrator
// and chase plan do the work and thinking pauses until the fight ends.
type MonsterThinkOperation struct {
	scheduling.BaseOperation
	Interval time.Duration
}

func NewMonsterThinkOperation(monsterID uint32, interval time.Duration) *MonsterThinkOperation {
	return &MonsterThinkOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindMonsterThink, monsterID, nil, true),
		Interval:      interval,
	}
}

func (o *MonsterThinkOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	m := oc.World.Monster(o.RequestorID())
	if m == nil || m.Dead {
		return scheduling.Done()
	}
	if !m.Type.Hostile || m.TargetID != 0 {
		return scheduling.RepeatAfter(o.Interval)
	}

	var closest *world.Player
	var best int32
	for _, p := range oc.World.PlayersWhoCanSee(m.Loc) {
		if p.Dead {
			continue
		}
		d := m.Loc.Chebyshev(p.Loc)
		if d > monsterAggroRange {
			continue
		}
		if closest == nil || d < best {
			closest = p
			best = d
		}
	}
	if closest != nil {
		oc.g.SetAttackTarget(m.ID, closest.ID)
	}
	return scheduling.RepeatAfter(o.Interval)
}
