// Package handler decodes inbound client frames and turns them into game
// submissions. It runs on session reader goroutines and never touches world
// state directly; everything goes through the game's producer-side API.
package handler

import (
	"github.com/ravenfell/server/internal/game"
	"github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
)

// Client to server message types.
const (
	opLogin      byte = 0x01
	opLogout     byte = 0x02
	opWalk       byte = 0x03
	opAutoWalk   byte = 0x04
	opStopWalk   byte = 0x05
	opTurn       byte = 0x06
	opSay        byte = 0x07
	opAttack     byte = 0x08
	opMoveThing  byte = 0x09
	opFightModes byte = 0x0a
	opPing       byte = 0x1d
	opPong       byte = 0x1e
)

const maxAutoWalkSteps = 32

// Router implements net.Handler.
type Router struct {
	game *game.Game
	log  *zap.Logger
}

func NewRouter(g *game.Game, log *zap.Logger) *Router {
	return &Router{game: g, log: log}
}

func (r *Router) SessionOpened(s *net.Session) {
	r.log.Debug("session opened", zap.Uint64("session", s.ID), zap.String("addr", s.IP))
}

func (r *Router) SessionClosed(s *net.Session) {
	if id := s.PlayerID(); id != 0 {
		r.game.SubmitForcedLogout(id)
	}
	r.log.Debug("session closed", zap.Uint64("session", s.ID))
}

func (r *Router) FrameReceived(s *net.Session, payload []byte) {
	rd := net.NewReader(payload)
	op, err := rd.ReadByte()
	if err != nil {
		return
	}

	if op == opLogin {
		r.handleLogin(s, rd)
		return
	}
	playerID := s.PlayerID()
	if playerID == 0 {
		r.log.Debug("frame before login", zap.Uint64("session", s.ID), zap.Uint8("op", op))
		s.Close()
		return
	}

	switch op {
	case opLogout:
		r.game.SubmitLogout(playerID)
	case opWalk:
		if d, err := rd.ReadByte(); err == nil {
			r.game.SubmitWalk(playerID, world.Direction(d)%8)
		}
	case opAutoWalk:
		r.handleAutoWalk(playerID, rd)
	case opStopWalk:
		r.game.SubmitStopWalk(playerID)
	case opTurn:
		if d, err := rd.ReadByte(); err == nil {
			r.game.SubmitTurn(playerID, world.Direction(d)%8)
		}
	case opSay:
		r.handleSay(playerID, rd)
	case opAttack:
		if target, err := rd.ReadUint32(); err == nil {
			r.game.SubmitAttack(playerID, target)
		}
	case opMoveThing:
		r.handleMoveThing(playerID, rd)
	case opFightModes:
		r.handleFightModes(playerID, rd)
	case opPing:
		r.game.SubmitHeartbeatResponse(playerID)
	case opPong:
		// Activity timestamp already refreshed by the read loop.
	default:
		r.log.Debug("unknown opcode", zap.Uint64("session", s.ID), zap.Uint8("op", op))
	}
}

func (r *Router) handleLogin(s *net.Session, rd *net.Reader) {
	account, err := rd.ReadString()
	if err != nil {
		s.Close()
		return
	}
	password, err := rd.ReadString()
	if err != nil {
		s.Close()
		return
	}
	character, err := rd.ReadString()
	if err != nil {
		s.Close()
		return
	}
	if s.PlayerID() != 0 {
		// Double login on one connection.
		s.Close()
		return
	}
	r.game.SubmitLogin(s, account, password, character)
}

func (r *Router) handleAutoWalk(playerID uint32, rd *net.Reader) {
	n, err := rd.ReadByte()
	if err != nil || n == 0 || int(n) > maxAutoWalkSteps {
		return
	}
	steps := make([]world.Direction, 0, n)
	for i := 0; i < int(n); i++ {
		d, err := rd.ReadByte()
		if err != nil {
			return
		}
		steps = append(steps, world.Direction(d)%8)
	}
	r.game.SubmitAutoWalk(playerID, steps)
}

func (r *Router) handleSay(playerID uint32, rd *net.Reader) {
	mode, err := rd.ReadByte()
	if err != nil {
		return
	}
	text, err := rd.ReadString()
	if err != nil || text == "" {
		return
	}
	if mode > byte(game.SpeechYell) {
		mode = byte(game.SpeechSay)
	}
	r.game.SubmitSpeech(playerID, game.SpeechMode(mode), text)
}

// readSpot decodes one movement endpoint. Wire form mirrors game.Spot: a
// kind byte, then the fields that kind needs.
func readSpot(rd *net.Reader) (game.Spot, bool) {
	kind, err := rd.ReadByte()
	if err != nil {
		return game.Spot{}, false
	}
	switch game.SpotKind(kind) {
	case game.SpotMap:
		x, err := rd.ReadUint16()
		if err != nil {
			return game.Spot{}, false
		}
		y, err := rd.ReadUint16()
		if err != nil {
			return game.Spot{}, false
		}
		mapID, err := rd.ReadByte()
		if err != nil {
			return game.Spot{}, false
		}
		return game.MapSpot(world.Location{X: int32(x), Y: int32(y), MapID: int16(mapID)}), true
	case game.SpotContainer:
		view, err := rd.ReadByte()
		if err != nil {
			return game.Spot{}, false
		}
		index, err := rd.ReadByte()
		if err != nil {
			return game.Spot{}, false
		}
		return game.ContainerSpot(view, int(index)), true
	case game.SpotSlot:
		slot, err := rd.ReadByte()
		if err != nil {
			return game.Spot{}, false
		}
		return game.SlotSpot(world.Slot(slot)), true
	}
	return game.Spot{}, false
}

func (r *Router) handleMoveThing(playerID uint32, rd *net.Reader) {
	thingID, err := rd.ReadUint32()
	if err != nil {
		return
	}
	from, ok := readSpot(rd)
	if !ok {
		return
	}
	to, ok := readSpot(rd)
	if !ok {
		return
	}
	count, err := rd.ReadByte()
	if err != nil {
		return
	}
	r.game.SubmitMoveThing(playerID, thingID, from, to, int32(count))
}

func (r *Router) handleFightModes(playerID uint32, rd *net.Reader) {
	stance, err := rd.ReadByte()
	if err != nil {
		return
	}
	chase, err := rd.ReadByte()
	if err != nil {
		return
	}
	safety, err := rd.ReadByte()
	if err != nil {
		return
	}
	if stance > byte(world.StanceDefensive) {
		stance = byte(world.StanceBalanced)
	}
	if chase > byte(world.ChaseTarget) {
		chase = byte(world.ChaseStand)
	}
	r.game.SubmitFightModes(playerID, world.FightStance(stance), world.ChaseMode(chase), safety != 0)
}
