package world

// WalkStrategy selects when a chase plan recomputes its route.
type WalkStrategy int

const (
	// StrategyStatic follows a fixed direction list and never recalculates.
	StrategyStatic WalkStrategy = iota
	// StrategyConservative recalculates only when the plan runs out of
	// steps while the target is still out of reach.
	StrategyConservative
	// StrategyAggressive recalculates whenever the target has moved since
	// the route was computed.
	StrategyAggressive
)

// WalkPlan is a creature's pending movement: either a fixed direction list
// or a dynamic chase toward a target with a recalculation strategy.
type WalkPlan struct {
	Strategy       WalkStrategy
	Steps          []Direction
	TargetID       uint32 // 0 = no target, fixed route
	TargetDistance int32  // desired Chebyshev distance to the target
	lastTargetLoc  Location
}

// NewStaticWalkPlan builds a plan that walks the given directions in order.
func NewStaticWalkPlan(steps []Direction) *WalkPlan {
	return &WalkPlan{Strategy: StrategyStatic, Steps: steps}
}

// NewChaseWalkPlan builds a plan that pursues targetID until within
// distance, recalculating per the strategy.
func NewChaseWalkPlan(targetID uint32, distance int32, strategy WalkStrategy) *WalkPlan {
	if distance < 1 {
		distance = 1
	}
	return &WalkPlan{Strategy: strategy, TargetID: targetID, TargetDistance: distance}
}

// NextStep pops the next direction, or reports none remain.
func (p *WalkPlan) NextStep() (Direction, bool) {
	if len(p.Steps) == 0 {
		return 0, false
	}
	d := p.Steps[0]
	p.Steps = p.Steps[1:]
	return d, true
}

// SetRoute replaces the pending steps with a freshly computed route toward
// the target's current position.
func (p *WalkPlan) SetRoute(steps []Direction, targetLoc Location) {
	p.Steps = steps
	p.lastTargetLoc = targetLoc
}

// NeedsRecalc reports whether the plan should recompute its route given the
// target's current position.
func (p *WalkPlan) NeedsRecalc(targetLoc Location) bool {
	switch p.Strategy {
	case StrategyStatic:
		return false
	case StrategyConservative:
		return len(p.Steps) == 0
	case StrategyAggressive:
		return len(p.Steps) == 0 || targetLoc != p.lastTargetLoc
	}
	return false
}
