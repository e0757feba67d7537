package game

import (
	"github.com/ravenfell/server/internal/scheduling"
)

// HeartbeatOperation pings a connected player so an idle but healthy link
// keeps refreshing its activity timestamp.
type HeartbeatOperation struct {
	scheduling.BaseOperation
}

func NewHeartbeatOperation(playerID uint32) *HeartbeatOperation {
	return &HeartbeatOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindHeartbeat, playerID, nil, true),
	}
}

func (o *HeartbeatOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	p := oc.World.Player(o.RequestorID())
	if p == nil || p.Session == nil {
		return scheduling.Done()
	}
	p.Session.Send(pingPayload())
	return scheduling.Done()
}

// HeartbeatResponseOperation answers a ping the client sent us.
type HeartbeatResponseOperation struct {
	scheduling.BaseOperation
}

func NewHeartbeatResponseOperation(playerID uint32) *HeartbeatResponseOperation {
	return &HeartbeatResponseOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindHeartbeatResponse, playerID, nil, true),
	}
}

func (o *HeartbeatResponseOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	p := oc.World.Player(o.RequestorID())
	if p == nil || p.Session == nil {
		return scheduling.Done()
	}
	p.Session.Send(pongPayload())
	return scheduling.Done()
}

// CancelOperationsOperation cancels a creature's pending cancellable events
// from inside the consuming loop, for callers that want the cancellation
// serialized with everything else rather than applied immediately.
type CancelOperationsOperation struct {
	scheduling.BaseOperation
	Kinds []scheduling.Kind
}

func NewCancelOperationsOperation(ownerID uint32, kinds ...scheduling.Kind) *CancelOperationsOperation {
	return &CancelOperationsOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindCancelPending, ownerID, nil, true),
		Kinds:         kinds,
	}
}

func (o *CancelOperationsOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	oc.g.CancelPlayerOperations(o.RequestorID(), o.Kinds...)
	return scheduling.Done()
}
