package game

import (
	"time"

	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
)

// SpotKind says where a thing sits: on the map, inside an open container, or
// in an equipment slot.
type SpotKind byte

const (
	SpotMap SpotKind = iota
	SpotContainer
	SpotSlot
)

// Spot addresses one position a thing can occupy. Container spots are
// addressed through the requestor's open-container view slots, so a stale
// client reference to a container closed meanwhile fails validation instead
// of touching the wrong object.
type Spot struct {
	Kind     SpotKind
	Loc      world.Location // SpotMap
	ViewSlot uint8          // SpotContainer: open-container view slot
	Index    int            // SpotContainer: index inside the container
	Slot     world.Slot     // SpotSlot
}

func MapSpot(loc world.Location) Spot { return Spot{Kind: SpotMap, Loc: loc} }

func ContainerSpot(view uint8, index int) Spot {
	return Spot{Kind: SpotContainer, ViewSlot: view, Index: index}
}

func SlotSpot(slot world.Slot) Spot { return Spot{Kind: SpotSlot, Slot: slot} }

// MovementOperation moves a creature one step, or moves a quantity of an
// item between any pair of spots. Validation happens entirely at firing
// time; a failed precondition sends one fixed message to the requestor and
// leaves the world untouched.
type MovementOperation struct {
	scheduling.BaseOperation
	ThingID  uint32
	Count    int32
	From, To Spot
}

func NewMovementOperation(requestorID, thingID uint32, from, to Spot, count int32, cost map[scheduling.ExhaustionType]time.Duration) *MovementOperation {
	return &MovementOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindMovement, requestorID, cost, true),
		ThingID:       thingID,
		Count:         count,
		From:          from,
		To:            to,
	}
}

func (o *MovementOperation) Execute(ctx scheduling.Context) scheduling.Result {
	oc := ctx.(*OperationContext)
	requestor := oc.World.Creature(o.RequestorID())
	player := oc.World.Player(o.RequestorID())
	if requestor == nil || requestor.Dead {
		return scheduling.Done()
	}

	if o.From.Kind == SpotMap && o.To.Kind == SpotMap {
		if c := oc.World.Creature(o.ThingID); c != nil {
			o.stepCreature(oc, player, c)
			return scheduling.Done()
		}
	}

	if msg := o.moveItem(oc, requestor, player); msg != "" {
		oc.Message(player, msg)
	}
	return scheduling.Done()
}

// stepCreature walks the requestor one tile. Only self-movement is allowed.
func (o *MovementOperation) stepCreature(oc *OperationContext, player *world.Player, c *world.Creature) {
	if c.ID != o.RequestorID() || c.Dead {
		oc.Message(player, MessageNotPossible)
		return
	}
	from := c.Loc
	to := o.To.Loc
	if to.MapID != from.MapID || from.Chebyshev(to) != 1 {
		oc.Message(player, MessageNotPossible)
		return
	}
	if !oc.Map.CanWalkTo(to) {
		oc.Message(player, MessageThereIsNoWay)
		return
	}
	oc.World.MoveCreature(c, to)
	oc.Publish(NewNotification(observersOfEither(from, to), creatureMovedPayload(c, from)))
}

// observersOfEither targets every player that can see either end of a move.
func observersOfEither(a, b world.Location) TargetFunc {
	return func(s *world.State) []*world.Player {
		seen := make(map[uint32]bool)
		var out []*world.Player
		for _, loc := range []world.Location{a, b} {
			for _, p := range s.PlayersWhoCanSee(loc) {
				if !seen[p.ID] {
					seen[p.ID] = true
					out = append(out, p)
				}
			}
		}
		return out
	}
}

func (o *MovementOperation) moveItem(oc *OperationContext, requestor *world.Creature, player *world.Player) ClientMessage {
	item, restore, msg := o.takeFrom(oc, requestor, player)
	if msg != "" {
		return msg
	}
	if msg := o.putTo(oc, requestor, player, item); msg != "" {
		restore(item)
		return msg
	}
	return ""
}

// takeFrom detaches the moved quantity from the source spot. It returns the
// detached item and a restore func that puts it back exactly where it was,
// used when placement at the destination fails.
func (o *MovementOperation) takeFrom(oc *OperationContext, requestor *world.Creature, player *world.Player) (*world.Item, func(*world.Item), ClientMessage) {
	switch o.From.Kind {
	case SpotMap:
		loc := o.From.Loc
		tile := oc.Map.TileIfExists(loc)
		if tile == nil {
			return nil, nil, MessageNotPossible
		}
		item := tile.FindItem(o.ThingID)
		if item == nil {
			return nil, nil, MessageNotPossible
		}
		if !item.Type.Movable {
			return nil, nil, MessageMayNotMove
		}
		if requestor.Loc.MapID != loc.MapID || requestor.Loc.Chebyshev(loc) > 1 {
			return nil, nil, MessageTooFar
		}
		taken, msg := o.split(item, func() { tile.RemoveItem(item) })
		if msg != "" {
			return nil, nil, msg
		}
		if taken == item {
			oc.Publish(NewNotification(TargetObserversOf(loc), itemRemovedPayload(item.ID, loc)))
		}
		return taken, func(it *world.Item) {
			if it == item {
				// Observers already saw the removal; show the item again.
				tile.AddItem(it)
				oc.Publish(NewNotification(TargetObserversOf(loc), itemAddedPayload(it, loc)))
			} else {
				item.Count += it.Count
			}
		}, ""

	case SpotContainer:
		if player == nil {
			return nil, nil, MessageNotPossible
		}
		cont := oc.World.OpenContainerAt(player.ID, o.From.ViewSlot)
		if cont == nil {
			return nil, nil, MessageMustOpenContainer
		}
		index := o.From.Index
		item := cont.ContentAt(index)
		if item == nil || item.ID != o.ThingID {
			return nil, nil, MessageNotPossible
		}
		taken, msg := o.split(item, func() { cont.RemoveContentAt(index) })
		if msg != "" {
			return nil, nil, msg
		}
		return taken, func(it *world.Item) {
			if it == item {
				cont.AddContent(it)
			} else {
				item.Count += it.Count
			}
		}, ""

	case SpotSlot:
		if player == nil {
			return nil, nil, MessageNotPossible
		}
		slot := o.From.Slot
		if slot < 0 || slot >= world.SlotCount {
			return nil, nil, MessageNotPossible
		}
		item := player.Inventory[slot]
		if item == nil || item.ID != o.ThingID {
			return nil, nil, MessageNotPossible
		}
		taken, msg := o.split(item, func() { player.Inventory[slot] = nil })
		if msg != "" {
			return nil, nil, msg
		}
		return taken, func(it *world.Item) {
			if it == item {
				player.Inventory[slot] = it
			} else {
				item.Count += it.Count
			}
		}, ""
	}
	return nil, nil, MessageNotPossible
}

// split validates the requested quantity against the source item. Taking
// everything detaches the item itself; taking part of a stack leaves the
// remainder in place and returns a fresh item for the moved portion.
func (o *MovementOperation) split(item *world.Item, detach func()) (*world.Item, ClientMessage) {
	count := o.Count
	if count <= 0 || count > item.Count {
		return nil, MessageNotEnoughQuantity
	}
	if count == item.Count || !item.Type.Stackable {
		detach()
		return item, ""
	}
	item.Count -= count
	return world.NewItem(item.Type, count), ""
}

func (o *MovementOperation) putTo(oc *OperationContext, requestor *world.Creature, player *world.Player, item *world.Item) ClientMessage {
	switch o.To.Kind {
	case SpotMap:
		loc := o.To.Loc
		if requestor.Loc.MapID != loc.MapID || requestor.Loc.Chebyshev(loc) > world.ThrowRange {
			return MessageDestinationTooFar
		}
		if !oc.Map.CanThrowTo(requestor.Loc, loc) {
			return MessageMayNotThrow
		}
		tile := oc.Map.Tile(loc)
		if tile.Blocks() {
			return MessageNotEnoughRoom
		}
		if top := tile.TopItem(); top != nil && top.Type == item.Type && item.Type.Stackable {
			top.Count += item.Count
			oc.Publish(NewNotification(TargetObserversOf(loc), itemAddedPayload(top, loc)))
			return ""
		}
		tile.AddItem(item)
		oc.Publish(NewNotification(TargetObserversOf(loc), itemAddedPayload(item, loc)))
		return ""

	case SpotContainer:
		if player == nil {
			return MessageNotPossible
		}
		cont := oc.World.OpenContainerAt(player.ID, o.To.ViewSlot)
		if cont == nil {
			return MessageMustOpenContainer
		}
		if cont.ID == item.ID {
			return MessageNotPossible
		}
		if !cont.HasRoom() {
			return MessageNotEnoughRoom
		}
		cont.AddContent(item)
		return ""

	case SpotSlot:
		if player == nil {
			return MessageNotPossible
		}
		slot := o.To.Slot
		if slot < 0 || slot >= world.SlotCount {
			return MessageNotPossible
		}
		if player.Inventory[slot] != nil {
			return MessageNotEnoughRoom
		}
		player.Inventory[slot] = item
		return ""
	}
	return MessageNotPossible
}
