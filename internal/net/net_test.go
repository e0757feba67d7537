package net

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWireRoundTrip(t *testing.T) {
	w := NewWriter(0x42)
	w.WriteUint8(7)
	w.WriteUint16(1000)
	w.WriteUint32(123456)
	w.WriteString("Arden")

	r := NewReader(w.Bytes())
	msgType, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), msgType)

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(7), b)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(123456), u32)

	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Arden", s)

	_, err = r.ReadByte()
	assert.Error(t, err)
}

func TestReaderShortFrame(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.ReadUint32()
	assert.Error(t, err)
	_, err = r.ReadString()
	assert.Error(t, err)
}

func TestSessionFraming(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := NewSession(server, 1, 16, 0, 0, zap.NewNop())
	frames := make(chan []byte, 4)
	closed := make(chan struct{})
	s.Start(
		func(_ *Session, payload []byte) { frames <- payload },
		func(*Session) { close(closed) },
	)

	// Inbound: [2B LE length][payload].
	payload := []byte{0x07, 0xaa, 0xbb}
	header := make([]byte, 2)
	binary.LittleEndian.PutUint16(header, uint16(len(payload)))
	_, err := client.Write(append(header, payload...))
	require.NoError(t, err)

	select {
	case got := <-frames:
		assert.Equal(t, payload, got)
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}

	// Outbound frames get the same length prefix.
	s.Send([]byte{0x10, 0x01})
	out := make([]byte, 4)
	client.SetReadDeadline(time.Now().Add(time.Second))
	_, err = client.Read(out[:2])
	require.NoError(t, err)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(out[:2]))
	_, err = client.Read(out[2:])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x01}, out[2:])

	s.Close()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close callback not fired")
	}
}

func TestSessionPlayerBinding(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := NewSession(server, 2, 16, 0, 0, zap.NewNop())
	assert.Zero(t, s.PlayerID())
	s.BindPlayer(77)
	assert.Equal(t, uint32(77), s.PlayerID())
}

func TestSessionRejectsOversizedFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	s := NewSession(server, 3, 16, 0, 0, zap.NewNop())
	closed := make(chan struct{})
	s.Start(
		func(*Session, []byte) { t.Error("frame should not be delivered") },
		func(*Session) { close(closed) },
	)

	header := make([]byte, 2)
	binary.LittleEndian.PutUint16(header, uint16(maxFrameSize+1))
	_, _ = client.Write(header)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("oversized frame did not close the session")
	}
}
