package world

// Location identifies a tile in the world (map + coordinates).
type Location struct {
	X, Y  int32
	MapID int16
}

// Chebyshev returns the Chebyshev distance to another location, or a large
// value when the locations are on different maps.
func (l Location) Chebyshev(o Location) int32 {
	if l.MapID != o.MapID {
		return 1 << 30
	}
	dx := l.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := l.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

// Step returns the location one tile away in the given direction.
func (l Location) Step(d Direction) Location {
	dx, dy := d.Deltas()
	return Location{X: l.X + dx, Y: l.Y + dy, MapID: l.MapID}
}

// Direction is a heading on the 8-way compass.
type Direction int16

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionDeltas = [8][2]int32{
	{0, -1},  // North
	{1, -1},  // NorthEast
	{1, 0},   // East
	{1, 1},   // SouthEast
	{0, 1},   // South
	{-1, 1},  // SouthWest
	{-1, 0},  // West
	{-1, -1}, // NorthWest
}

func (d Direction) Deltas() (dx, dy int32) {
	if d < 0 || d > 7 {
		return 0, 0
	}
	return directionDeltas[d][0], directionDeltas[d][1]
}

// DirectionTo returns the compass heading that moves from l toward o.
func (l Location) DirectionTo(o Location) Direction {
	dx, dy := int32(0), int32(0)
	if o.X > l.X {
		dx = 1
	} else if o.X < l.X {
		dx = -1
	}
	if o.Y > l.Y {
		dy = 1
	} else if o.Y < l.Y {
		dy = -1
	}
	for d, deltas := range directionDeltas {
		if deltas[0] == dx && deltas[1] == dy {
			return Direction(d)
		}
	}
	return South
}
