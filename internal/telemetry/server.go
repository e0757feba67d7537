package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server exposes the metrics registry over HTTP for operators.
type Server struct {
	metrics *Metrics
	router  *mux.Router
	http    *http.Server
	log     *zap.Logger
}

func NewServer(bindAddr string, metrics *Metrics, log *zap.Logger) *Server {
	s := &Server{metrics: metrics, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.health)
	r.HandleFunc("/api/gauges", s.gauges)
	r.HandleFunc("/api/events", s.events)
	s.router = r

	s.http = &http.Server{
		Addr:         bindAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Router exposes the route table, mainly for tests.
func (s *Server) Router() *mux.Router { return s.router }

// ListenAndServe blocks serving HTTP; run it on its own goroutine.
func (s *Server) ListenAndServe() {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error("telemetry server failed", zap.Error(err))
	}
}

func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) gauges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]int64{
		"scheduler_queue_size": s.metrics.QueueSize(),
		"players_online":       s.metrics.PlayersOnline(),
	})
}

func (s *Server) events(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.metrics.EventSnapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
