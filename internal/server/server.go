// Package server exposes a session to a view layer over HTTP: commands and
// point queries as JSON endpoints, and a server-sent event stream carrying a
// snapshot after every tick.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/cxd309/abs-engine/internal/engine"
	"github.com/cxd309/abs-engine/internal/signal"
	"github.com/cxd309/abs-engine/internal/track"
	"github.com/cxd309/abs-engine/internal/train"
)

// SnapshotStream is the SSE stream id carrying session snapshots.
const SnapshotStream = "snapshot"

// Session is the part of engine.Session the server needs.
type Session interface {
	Start() bool
	Pause() bool
	Reset()
	PositionOf(id train.TrainID) (float64, error)
	AspectOf(id track.TrackID, blockIndex int) (signal.Aspect, error)
	Aspects(id track.TrackID) ([]signal.Aspect, error)
	Snapshot() (engine.Snapshot, error)
}

// Server serves one session.
type Server struct {
	session Session
	events  *sse.Server
	mux     *http.ServeMux
}

// New creates a Server for s and registers its routes.
func New(s Session) *Server {
	events := sse.New()
	events.AutoReplay = false
	events.CreateStream(SnapshotStream)

	srv := &Server{
		session: s,
		events:  events,
		mux:     http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /health", srv.handleHealth)
	srv.mux.HandleFunc("GET /api/state", srv.handleState)
	srv.mux.HandleFunc("GET /api/trains/{id}", srv.handleTrain)
	srv.mux.HandleFunc("GET /api/tracks/{id}/signals", srv.handleSignals)
	srv.mux.HandleFunc("GET /api/tracks/{id}/signals/{index}", srv.handleSignal)
	srv.mux.HandleFunc("POST /api/start", srv.handleStart)
	srv.mux.HandleFunc("POST /api/pause", srv.handlePause)
	srv.mux.HandleFunc("POST /api/reset", srv.handleReset)
	srv.mux.Handle("GET /api/events", events)
	return srv
}

// Handler returns the server's routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.mux)
}

// Publish sends a snapshot to every event stream subscriber. It is the
// clock's observer.
func (s *Server) Publish(snap engine.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		zap.S().Errorw("server: marshal snapshot", "error", err)
		return
	}
	s.events.TryPublish(SnapshotStream, &sse.Event{Data: data})
}

// Close ends every event stream.
func (s *Server) Close() {
	s.events.Close()
}
