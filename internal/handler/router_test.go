package handler

import (
	stdnet "net"
	"testing"
	"time"

	"github.com/ravenfell/server/internal/config"
	"github.com/ravenfell/server/internal/data"
	"github.com/ravenfell/server/internal/game"
	"github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*Router, *game.Game) {
	t.Helper()
	scripts, err := scripting.NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(scripts.Close)

	g := game.New(game.Deps{
		Config:   config.Defaults(),
		Log:      zap.NewNop(),
		Items:    data.NewItemTableFromTypes(nil),
		Monsters: data.NewMonsterTableFromTypes(nil),
		Scripts:  scripts,
	})
	return NewRouter(g, zap.NewNop()), g
}

func newTestSession(t *testing.T) *net.Session {
	t.Helper()
	client, server := stdnet.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return net.NewSession(server, 1, 16, 0, 0, zap.NewNop())
}

func loginFrame(account, password, character string) []byte {
	w := net.NewWriter(0x01)
	w.WriteString(account)
	w.WriteString(password)
	w.WriteString(character)
	return w.Bytes()
}

func TestLoginFrameSchedulesLogin(t *testing.T) {
	r, g := newTestRouter(t)
	s := newTestSession(t)

	r.FrameReceived(s, loginFrame("acct", "secret", "arden"))
	assert.Equal(t, 1, g.Scheduler().QueueSize())
	assert.False(t, s.IsClosed())
}

func TestTruncatedLoginClosesSession(t *testing.T) {
	r, _ := newTestRouter(t)
	s := newTestSession(t)

	w := net.NewWriter(0x01)
	w.WriteString("acct")
	r.FrameReceived(s, w.Bytes())
	assert.True(t, s.IsClosed())
}

func TestFrameBeforeLoginClosesSession(t *testing.T) {
	r, g := newTestRouter(t)
	s := newTestSession(t)

	walk := net.NewWriter(0x03)
	walk.WriteUint8(2)
	r.FrameReceived(s, walk.Bytes())

	assert.True(t, s.IsClosed())
	assert.Zero(t, g.Scheduler().QueueSize())
}

func TestWalkFrameAfterBinding(t *testing.T) {
	r, g := newTestRouter(t)
	s := newTestSession(t)
	s.BindPlayer(42)

	walk := net.NewWriter(0x03)
	walk.WriteUint8(2)
	r.FrameReceived(s, walk.Bytes())

	assert.False(t, s.IsClosed())
	assert.Equal(t, 1, g.Scheduler().QueueSize())
}

func TestSessionClosedForcesLogout(t *testing.T) {
	r, g := newTestRouter(t)
	s := newTestSession(t)
	s.BindPlayer(42)

	r.SessionClosed(s)
	assert.Equal(t, 1, g.Scheduler().QueueSize())
}

func TestUnknownOpcodeIgnored(t *testing.T) {
	r, g := newTestRouter(t)
	s := newTestSession(t)
	s.BindPlayer(42)

	r.FrameReceived(s, []byte{0x7f})
	assert.False(t, s.IsClosed())
	assert.Zero(t, g.Scheduler().QueueSize())

	// Empty frames are dropped without fuss too.
	r.FrameReceived(s, nil)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, s.IsClosed())
}
