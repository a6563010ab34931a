package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cxd309/abs-engine/internal/engine"
	"github.com/cxd309/abs-engine/internal/signal"
	"github.com/cxd309/abs-engine/internal/track"
	"github.com/cxd309/abs-engine/internal/train"
)

type trainResponse struct {
	ID       string  `json:"train_id"`
	Position float64 `json:"position"`
}

type signalResponse struct {
	Track  string        `json:"track_id"`
	Index  int           `json:"index"`
	Aspect signal.Aspect `json:"aspect"`
	Heads  int           `json:"heads"`
}

type commandResponse struct {
	OK         bool `json:"ok"`
	Running    bool `json:"running"`
	AllArrived bool `json:"all_arrived"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Snapshot()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pos, err := s.session.PositionOf(train.TrainID(id))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, trainResponse{ID: id, Position: pos})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	aspects, err := s.session.Aspects(track.TrackID(id))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	out := make([]signalResponse, len(aspects))
	for i, a := range aspects {
		out[i] = signalResponse{Track: id, Index: i, Aspect: a, Heads: a.Heads()}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "index must be an integer")
		return
	}
	a, err := s.session.AspectOf(track.TrackID(id), index)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, signalResponse{Track: id, Index: index, Aspect: a, Heads: a.Heads()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ok := s.session.Start()
	s.writeCommand(w, r, ok)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	ok := s.session.Pause()
	s.writeCommand(w, r, ok)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	s.writeCommand(w, r, true)
}

// writeCommand reports the outcome of a lifecycle command. A refused command
// is not an error; ok is false and the status is still 200.
func (s *Server) writeCommand(w http.ResponseWriter, r *http.Request, ok bool) {
	snap, err := s.session.Snapshot()
	if err != nil {
		writeErr(w, r, err)
		return
	}
	s.Publish(snap)
	writeJSON(w, r, http.StatusOK, commandResponse{
		OK:         ok,
		Running:    snap.Running,
		AllArrived: snap.AllArrived,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnw("encode failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeErr maps engine errors to HTTP statuses.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, signal.ErrInvalidBlockIndex):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrUnknownTrain), errors.Is(err, engine.ErrUnknownTrack):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}
