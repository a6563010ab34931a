package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cxd309/abs-engine/internal/engine"
	"github.com/cxd309/abs-engine/internal/signal"
)

func newTestServer(t *testing.T) (*engine.Session, *httptest.Server) {
	t.Helper()
	s, err := engine.NewSession(engine.DefaultInput())
	if err != nil {
		t.Fatal(err)
	}
	srv := New(s)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return s, ts
}

func doJSON(t *testing.T, method, url string, wantStatus int, v any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d", method, url, resp.StatusCode, wantStatus)
	}
	if v == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("%s %s: decode: %v", method, url, err)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	var got map[string]string
	doJSON(t, http.MethodGet, ts.URL+"/health", http.StatusOK, &got)
	if got["status"] != "ok" {
		t.Fatalf("health: %v", got)
	}
}

func TestCommands(t *testing.T) {
	s, ts := newTestServer(t)

	var cmd commandResponse
	doJSON(t, http.MethodPost, ts.URL+"/api/start", http.StatusOK, &cmd)
	if diff := cmp.Diff(commandResponse{OK: true, Running: true}, cmd); diff != "" {
		t.Fatalf("start (-want +got):\n%s", diff)
	}
	doJSON(t, http.MethodPost, ts.URL+"/api/start", http.StatusOK, &cmd)
	if cmd.OK {
		t.Fatal("second start reported ok")
	}

	s.Tick()
	doJSON(t, http.MethodPost, ts.URL+"/api/pause", http.StatusOK, &cmd)
	if diff := cmp.Diff(commandResponse{OK: true}, cmd); diff != "" {
		t.Fatalf("pause (-want +got):\n%s", diff)
	}

	var tr trainResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/trains/express", http.StatusOK, &tr)
	if tr.Position <= 0 {
		t.Fatalf("express at %v after a tick", tr.Position)
	}

	doJSON(t, http.MethodPost, ts.URL+"/api/reset", http.StatusOK, &cmd)
	doJSON(t, http.MethodGet, ts.URL+"/api/trains/express", http.StatusOK, &tr)
	if tr.Position != 0 {
		t.Fatalf("express at %v after reset", tr.Position)
	}

	doJSON(t, http.MethodGet, ts.URL+"/api/start", http.StatusMethodNotAllowed, nil)
}

func TestSignals(t *testing.T) {
	_, ts := newTestServer(t)

	var sig signalResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/tracks/local/signals/1", http.StatusOK, &sig)
	want := signalResponse{Track: "local", Index: 1, Aspect: signal.Green, Heads: 1}
	if diff := cmp.Diff(want, sig); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	var all []signalResponse
	doJSON(t, http.MethodGet, ts.URL+"/api/tracks/express/signals", http.StatusOK, &all)
	if len(all) != 7 || all[0].Aspect != signal.Red || all[1].Aspect != signal.Green {
		t.Fatalf("express signals: %+v", all)
	}

	doJSON(t, http.MethodGet, ts.URL+"/api/tracks/local/signals/7", http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, ts.URL+"/api/tracks/local/signals/x", http.StatusBadRequest, nil)
	doJSON(t, http.MethodGet, ts.URL+"/api/tracks/branch/signals/0", http.StatusNotFound, nil)
	doJSON(t, http.MethodGet, ts.URL+"/api/trains/nope", http.StatusNotFound, nil)
}

func TestState(t *testing.T) {
	s, ts := newTestServer(t)
	var snap engine.Snapshot
	doJSON(t, http.MethodGet, ts.URL+"/api/state", http.StatusOK, &snap)
	if snap.SessionID != s.ID() {
		t.Fatalf("session id %s, want %s", snap.SessionID, s.ID())
	}
	if len(snap.Trains) != 3 || len(snap.Tracks) != 2 {
		t.Fatalf("snapshot: %d trains, %d tracks", len(snap.Trains), len(snap.Tracks))
	}
}

func TestEventStreamCarriesSnapshots(t *testing.T) {
	s, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events?stream="+SnapshotStream, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type %q", ct)
	}

	doJSON(t, http.MethodPost, ts.URL+"/api/start", http.StatusOK, nil)

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var snap engine.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if !snap.Running {
			t.Fatal("event after start reports a stopped session")
		}
		if snap.SessionID != s.ID() {
			t.Fatalf("session id %s, want %s", snap.SessionID, s.ID())
		}
		return
	}
	t.Fatalf("stream ended without a snapshot: %v", sc.Err())
}

func TestPublishWithoutSubscribers(t *testing.T) {
	s, err := engine.NewSession(engine.DefaultInput())
	if err != nil {
		t.Fatal(err)
	}
	srv := New(s)
	defer srv.Close()

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	srv.Publish(snap)
}
