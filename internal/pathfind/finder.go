// Package pathfind computes walking routes for creatures. The engine only
// consumes the Finder interface; the route construction here is a greedy
// step-toward walker that respects tile blocking.
package pathfind

import (
	"github.com/ravenfell/server/internal/world"
)

// Finder turns a from/to pair into a direction sequence for a creature.
type Finder interface {
	// FindPath returns the steps that bring the creature from from toward
	// to, stopping within targetDistance, plus the location the route
	// actually reaches. Locations in avoid are never stepped on.
	FindPath(c *world.Creature, from, to world.Location, targetDistance int32, avoid []world.Location) ([]world.Direction, world.Location)
}

// GreedyFinder steps toward the target one tile at a time, sidestepping a
// blocked tile by trying the two adjacent headings before giving up.
type GreedyFinder struct {
	gmap     *world.Map
	maxSteps int
}

func NewGreedyFinder(m *world.Map) *GreedyFinder {
	return &GreedyFinder{gmap: m, maxSteps: 64}
}

func (f *GreedyFinder) FindPath(c *world.Creature, from, to world.Location, targetDistance int32, avoid []world.Location) ([]world.Direction, world.Location) {
	if targetDistance < 1 {
		targetDistance = 1
	}
	avoidSet := make(map[world.Location]struct{}, len(avoid))
	for _, loc := range avoid {
		avoidSet[loc] = struct{}{}
	}

	var steps []world.Direction
	cur := from
	for i := 0; i < f.maxSteps; i++ {
		if cur.Chebyshev(to) <= targetDistance {
			break
		}
		want := cur.DirectionTo(to)
		stepped := false
		for _, d := range []world.Direction{want, (want + 1) % 8, (want + 7) % 8} {
			next := cur.Step(d)
			if _, avoided := avoidSet[next]; avoided {
				continue
			}
			if !f.gmap.CanWalkTo(next) {
				continue
			}
			steps = append(steps, d)
			cur = next
			stepped = true
			break
		}
		if !stepped {
			break
		}
	}
	return steps, cur
}
