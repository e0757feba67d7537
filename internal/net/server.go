package net

import (
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Handler receives session lifecycle callbacks. Frame callbacks run on the
// session's reader goroutine: implementations schedule work, they do not
// mutate game state in place.
type Handler interface {
	SessionOpened(s *Session)
	FrameReceived(s *Session, payload []byte)
	SessionClosed(s *Session)
}

// Server accepts TCP connections and wires Sessions to a Handler.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	handler  Handler

	outSize      int
	readTimeout  time.Duration
	writeTimeout time.Duration

	closeCh chan struct{}
	log     *zap.Logger
}

func NewServer(bindAddr string, outSize int, readTimeout, writeTimeout time.Duration, handler Handler, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener:     ln,
		handler:      handler,
		outSize:      outSize,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.outSize, s.readTimeout, s.writeTimeout, s.log)
		s.log.Info("client connected",
			zap.Uint64("session", id),
			zap.String("ip", sess.IP),
		)
		s.handler.SessionOpened(sess)
		sess.Start(s.handler.FrameReceived, s.handler.SessionClosed)
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}
