package pathfind

import (
	"testing"

	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkRoute(from world.Location, steps []world.Direction) world.Location {
	cur := from
	for _, d := range steps {
		cur = cur.Step(d)
	}
	return cur
}

func TestGreedyFinderReachesTarget(t *testing.T) {
	m := world.NewMap()
	f := NewGreedyFinder(m)
	c := &world.Creature{ID: 1}

	from := world.Location{X: 0, Y: 0}
	to := world.Location{X: 5, Y: 3}
	steps, reached := f.FindPath(c, from, to, 1, nil)

	require.NotEmpty(t, steps)
	assert.Equal(t, reached, walkRoute(from, steps))
	assert.LessOrEqual(t, reached.Chebyshev(to), int32(1))
}

func TestGreedyFinderStopsAtDistance(t *testing.T) {
	m := world.NewMap()
	f := NewGreedyFinder(m)
	c := &world.Creature{ID: 1}

	from := world.Location{X: 0, Y: 0}
	to := world.Location{X: 6, Y: 0}
	_, reached := f.FindPath(c, from, to, 3, nil)
	assert.Equal(t, int32(3), reached.Chebyshev(to))
}

func TestGreedyFinderSidestepsBlockedTile(t *testing.T) {
	m := world.NewMap()
	wall := &data.ItemType{Name: "wall", Blocking: true}
	m.Tile(world.Location{X: 1, Y: 0}).AddItem(world.NewItem(wall, 1))

	f := NewGreedyFinder(m)
	c := &world.Creature{ID: 1}

	from := world.Location{X: 0, Y: 0}
	to := world.Location{X: 3, Y: 0}
	steps, reached := f.FindPath(c, from, to, 1, nil)

	require.NotEmpty(t, steps)
	cur := from
	for _, d := range steps {
		cur = cur.Step(d)
		assert.True(t, m.CanWalkTo(cur), "route stepped onto a blocked tile")
	}
	assert.LessOrEqual(t, reached.Chebyshev(to), int32(1))
}

func TestGreedyFinderRespectsAvoidList(t *testing.T) {
	m := world.NewMap()
	f := NewGreedyFinder(m)
	c := &world.Creature{ID: 1}

	from := world.Location{X: 0, Y: 0}
	to := world.Location{X: 2, Y: 0}
	avoid := []world.Location{{X: 1, Y: 0}}
	steps, _ := f.FindPath(c, from, to, 1, avoid)

	cur := from
	for _, d := range steps {
		cur = cur.Step(d)
		assert.NotEqual(t, avoid[0], cur)
	}
}
