package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
)

// CreateItemOperation conjures an item of a predefined type onto the map.
// Decaying types get their decay timer scheduled on placement.
type CreateItemOperation struct {
	scheduling.BaseOperation
	TypeName string
	Loc      world.Location
	Count    int32
}

func NewCreateItemOperation(typeName string, loc world.Location, count int32) *CreateItemOperation {
	if count <= 0 {
		count = 1
	}
	return &CreateItemOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindCreateItem, 0, nil, true),
		TypeName:      typeName,
		Loc:           loc,
		Count:         count,
	}
}

func (o *CreateItemOperation) Capability() scheduling.Capability { return scheduling.CapElevated }

func (o *CreateItemOperation) Execute(ctx scheduling.Context) scheduling.Result {
	ec := ctx.(*ElevatedContext)
	typ := ec.Items.Get(o.TypeName)
	if typ == nil {
		ec.Logger().Warn("create item: unknown type", zap.String("type", o.TypeName))
		return scheduling.Done()
	}
	count := o.Count
	if !typ.Stackable {
		count = 1
	}
	item := world.NewItem(typ, count)
	ec.Map.Tile(o.Loc).AddItem(item)
	ec.Publish(NewNotification(TargetObserversOf(o.Loc), itemAddedPayload(item, o.Loc)))
	if d := typ.DecayDuration(); d > 0 {
		ec.g.sched.Schedule(NewDecayCondition(item.ID, o.Loc), d, true)
	}
	return scheduling.Done()
}

// PlaceMonsterOperation spawns a monster of a predefined type.
type PlaceMonsterOperation struct {
	scheduling.BaseOperation
	TypeName string
	Loc      world.Location
}

func NewPlaceMonsterOperation(typeName string, loc world.Location) *PlaceMonsterOperation {
	return &PlaceMonsterOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindPlaceMonster, 0, nil, true),
		TypeName:      typeName,
		Loc:           loc,
	}
}

func (o *PlaceMonsterOperation) Capability() scheduling.Capability { return scheduling.CapElevated }

func (o *PlaceMonsterOperation) Execute(ctx scheduling.Context) scheduling.Result {
	ec := ctx.(*ElevatedContext)
	typ := ec.Monsters.Get(o.TypeName)
	if typ == nil {
		ec.Logger().Warn("place monster: unknown type", zap.String("type", o.TypeName))
		return scheduling.Done()
	}
	if !ec.Map.CanWalkTo(o.Loc) {
		ec.Logger().Warn("place monster: blocked location", zap.String("type", o.TypeName))
		return scheduling.Done()
	}
	m := world.NewMonster(typ, o.Loc)
	ec.World.AddMonster(m)
	ec.Publish(NewNotification(TargetObserversOf(o.Loc), creatureNewPayload(&m.Creature)))
	if typ.Hostile {
		think := NewMonsterThinkOperation(m.ID, time.Second)
		m.Track(think)
		ec.Dispatch(think, 0)
	}
	return scheduling.Done()
}
