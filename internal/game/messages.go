package game

import (
	"github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/world"
)

// Server to client message types.
const (
	msgLoginOK        byte = 0x0a
	msgLoginError     byte = 0x0b
	msgPing           byte = 0x1d
	msgPong           byte = 0x1e
	msgClientMessage  byte = 0x20
	msgCreatureSpeech byte = 0x21
	msgCreatureMoved  byte = 0x30
	msgCreatureTurned byte = 0x31
	msgCreatureHealth byte = 0x32
	msgCreatureDied   byte = 0x33
	msgCreatureStat   byte = 0x34
	msgTargetChanged  byte = 0x35
	msgCreatureGone   byte = 0x36
	msgCreatureNew    byte = 0x37
	msgItemAdded      byte = 0x40
	msgItemRemoved    byte = 0x41
	msgWorldLight     byte = 0x50
)

// ClientMessage is the fixed set of validation replies operations may send.
type ClientMessage string

const (
	MessageNotPossible       ClientMessage = "Sorry, not possible."
	MessageTooFar            ClientMessage = "Too far away."
	MessageDestinationTooFar ClientMessage = "Destination is too far away."
	MessageMayNotThrow       ClientMessage = "You may not throw there."
	MessageNotEnoughRoom     ClientMessage = "There is not enough room."
	MessageMayNotMove        ClientMessage = "You may not move this object."
	MessageNotEnoughQuantity ClientMessage = "There is not enough quantity."
	MessageMustOpenContainer ClientMessage = "You must first open that container."
	MessageThereIsNoWay      ClientMessage = "There is no way."
)

func sendClientMessage(p *world.Player, msg ClientMessage) {
	if p == nil || p.Session == nil {
		return
	}
	w := net.NewWriter(msgClientMessage)
	w.WriteString(string(msg))
	p.Session.Send(w.Bytes())
}

func writeLocation(w *net.Writer, loc world.Location) {
	w.WriteUint16(uint16(loc.X))
	w.WriteUint16(uint16(loc.Y))
	w.WriteUint8(byte(loc.MapID))
}

func loginOKPayload(p *world.Player) []byte {
	w := net.NewWriter(msgLoginOK)
	w.WriteUint32(p.ID)
	w.WriteString(p.Name)
	writeLocation(w, p.Loc)
	w.WriteUint16(uint16(p.HP))
	w.WriteUint16(uint16(p.MaxHP))
	w.WriteUint8(byte(p.Level))
	return w.Bytes()
}

func loginErrorPayload(reason string) []byte {
	w := net.NewWriter(msgLoginError)
	w.WriteString(reason)
	return w.Bytes()
}

func pingPayload() []byte { return net.NewWriter(msgPing).Bytes() }
func pongPayload() []byte { return net.NewWriter(msgPong).Bytes() }

func speechPayload(speaker *world.Creature, mode SpeechMode, text string) []byte {
	w := net.NewWriter(msgCreatureSpeech)
	w.WriteUint32(speaker.ID)
	w.WriteString(speaker.Name)
	w.WriteUint8(byte(mode))
	writeLocation(w, speaker.Loc)
	w.WriteString(text)
	return w.Bytes()
}

func creatureMovedPayload(c *world.Creature, from world.Location) []byte {
	w := net.NewWriter(msgCreatureMoved)
	w.WriteUint32(c.ID)
	writeLocation(w, from)
	writeLocation(w, c.Loc)
	w.WriteUint8(byte(c.Heading))
	return w.Bytes()
}

func creatureTurnedPayload(c *world.Creature) []byte {
	w := net.NewWriter(msgCreatureTurned)
	w.WriteUint32(c.ID)
	w.WriteUint8(byte(c.Heading))
	return w.Bytes()
}

func creatureHealthPayload(c *world.Creature) []byte {
	w := net.NewWriter(msgCreatureHealth)
	w.WriteUint32(c.ID)
	w.WriteUint16(uint16(c.HP))
	w.WriteUint16(uint16(c.MaxHP))
	return w.Bytes()
}

func creatureDiedPayload(c *world.Creature) []byte {
	w := net.NewWriter(msgCreatureDied)
	w.WriteUint32(c.ID)
	writeLocation(w, c.Loc)
	return w.Bytes()
}

func creatureStatPayload(c *world.Creature, stat StatKind, value int32) []byte {
	w := net.NewWriter(msgCreatureStat)
	w.WriteUint32(c.ID)
	w.WriteUint8(byte(stat))
	w.WriteUint32(uint32(value))
	return w.Bytes()
}

func targetChangedPayload(attackerID, targetID uint32) []byte {
	w := net.NewWriter(msgTargetChanged)
	w.WriteUint32(attackerID)
	w.WriteUint32(targetID)
	return w.Bytes()
}

func creatureGonePayload(id uint32, loc world.Location) []byte {
	w := net.NewWriter(msgCreatureGone)
	w.WriteUint32(id)
	writeLocation(w, loc)
	return w.Bytes()
}

func creatureNewPayload(c *world.Creature) []byte {
	w := net.NewWriter(msgCreatureNew)
	w.WriteUint32(c.ID)
	w.WriteString(c.Name)
	writeLocation(w, c.Loc)
	w.WriteUint8(byte(c.Heading))
	w.WriteUint16(uint16(c.HP))
	w.WriteUint16(uint16(c.MaxHP))
	return w.Bytes()
}

func itemAddedPayload(it *world.Item, loc world.Location) []byte {
	w := net.NewWriter(msgItemAdded)
	w.WriteUint32(it.ID)
	w.WriteUint16(it.Type.ClientID)
	w.WriteUint8(byte(it.Count))
	writeLocation(w, loc)
	return w.Bytes()
}

func itemRemovedPayload(id uint32, loc world.Location) []byte {
	w := net.NewWriter(msgItemRemoved)
	w.WriteUint32(id)
	writeLocation(w, loc)
	return w.Bytes()
}

func worldLightPayload(level, color uint8) []byte {
	w := net.NewWriter(msgWorldLight)
	w.WriteUint8(level)
	w.WriteUint8(color)
	return w.Bytes()
}
