package net

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// maxFrameSize caps a single inbound frame.
const maxFrameSize = 8 * 1024

// Session is a single client connection. Network I/O runs in dedicated
// goroutines; game state is touched only by the orchestrator. Frames are
// [2B LE length][payload] with the payload opaque to this layer.
type Session struct {
	ID   uint64
	conn net.Conn

	OutQueue chan []byte // writer goroutine drains this

	IP string

	lastActivity atomic.Int64 // unix nanos of last inbound frame

	playerID atomic.Uint32 // bound creature ID after login, 0 before

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	readTimeout  time.Duration
	writeTimeout time.Duration

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, outSize int, readTimeout, writeTimeout time.Duration, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		IP:           conn.RemoteAddr().String(),
		closeCh:      make(chan struct{}),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.lastActivity.Store(time.Now().UnixNano())
	return s
}

// Start launches the reader and writer goroutines. onFrame runs on the
// reader goroutine for every inbound frame; it must hand work to the
// scheduler rather than touch game state itself. onClose fires once when
// the connection dies.
func (s *Session) Start(onFrame func(*Session, []byte), onClose func(*Session)) {
	go s.readLoop(onFrame, onClose)
	go s.writeLoop()
}

// Send queues a prepared frame for delivery. Non-blocking: a full queue
// drops the connection (backpressure).
func (s *Session) Send(payload []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- payload:
	default:
		s.log.Warn("output queue full, disconnecting")
		s.Close()
	}
}

// LastActivity returns when the client last sent anything.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// BindPlayer records which creature this connection drives.
func (s *Session) BindPlayer(id uint32) {
	s.playerID.Store(id)
}

// PlayerID returns the bound creature ID, or 0 when not logged in.
func (s *Session) PlayerID() uint32 {
	return s.playerID.Load()
}

// IsClosed reports whether the session has been shut down.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Close shuts the connection down once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) readLoop(onFrame func(*Session, []byte), onClose func(*Session)) {
	defer func() {
		s.Close()
		onClose(s)
	}()

	header := make([]byte, 2)
	for {
		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		if _, err := io.ReadFull(s.conn, header); err != nil {
			if !s.closed.Load() {
				s.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		size := int(binary.LittleEndian.Uint16(header))
		if size == 0 || size > maxFrameSize {
			s.log.Warn("bad frame size", zap.Int("size", size))
			return
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(s.conn, payload); err != nil {
			return
		}
		s.lastActivity.Store(time.Now().UnixNano())
		onFrame(s, payload)
	}
}

func (s *Session) writeLoop() {
	header := make([]byte, 2)
	for {
		select {
		case <-s.closeCh:
			return
		case payload := <-s.OutQueue:
			binary.LittleEndian.PutUint16(header, uint16(len(payload)))
			if s.writeTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if _, err := s.conn.Write(header); err != nil {
				s.Close()
				return
			}
			if _, err := s.conn.Write(payload); err != nil {
				s.Close()
				return
			}
		}
	}
}
