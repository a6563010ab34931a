//go:build js && wasm

// Command wasm exposes the block-signalling engine to the browser via
// WebAssembly. After loading, it registers two global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	newSession(jsonString?) -> session
//
// runSimulation takes a SessionInput and returns the SimulationLog, matching
// `abs run`. newSession builds a live session (the built-in layout when no
// argument is given) whose methods a page calls from its own timer:
//
//	start() -> bool, pause() -> bool, reset(), tick() -> bool,
//	isAllArrived() -> bool, positionOf(trainId) -> number,
//	aspectOf(trackId, index) -> string, snapshot() -> jsonString
//
// Lookup failures are returned as {error: message}.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/cxd309/abs-engine/internal/engine"
	"github.com/cxd309/abs-engine/internal/track"
	"github.com/cxd309/abs-engine/internal/train"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	js.Global().Set("newSession", js.FuncOf(newSession))
	select {} // keep the WASM module alive until the page is closed
}

func jsError(err error) any {
	return map[string]any{"error": err.Error()}
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return jsError(err)
	}
	return result
}

func newSession(_ js.Value, args []js.Value) any {
	input := engine.DefaultInput()
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[0].String()), &input); err != nil {
			return jsError(err)
		}
	}
	s, err := engine.NewSession(input)
	if err != nil {
		return jsError(err)
	}

	return map[string]any{
		"id":           s.ID().String(),
		"start":        js.FuncOf(func(js.Value, []js.Value) any { return s.Start() }),
		"pause":        js.FuncOf(func(js.Value, []js.Value) any { return s.Pause() }),
		"tick":         js.FuncOf(func(js.Value, []js.Value) any { return s.Tick() }),
		"isAllArrived": js.FuncOf(func(js.Value, []js.Value) any { return s.IsAllArrived() }),
		"reset": js.FuncOf(func(js.Value, []js.Value) any {
			s.Reset()
			return nil
		}),
		"positionOf": js.FuncOf(func(_ js.Value, a []js.Value) any {
			if len(a) < 1 {
				return map[string]any{"error": "no train id"}
			}
			p, err := s.PositionOf(train.TrainID(a[0].String()))
			if err != nil {
				return jsError(err)
			}
			return p
		}),
		"aspectOf": js.FuncOf(func(_ js.Value, a []js.Value) any {
			if len(a) < 2 {
				return map[string]any{"error": "need track id and signal index"}
			}
			aspect, err := s.AspectOf(track.TrackID(a[0].String()), a[1].Int())
			if err != nil {
				return jsError(err)
			}
			return string(aspect)
		}),
		"snapshot": js.FuncOf(func(js.Value, []js.Value) any {
			snap, err := s.Snapshot()
			if err != nil {
				return jsError(err)
			}
			data, err := json.Marshal(snap)
			if err != nil {
				return jsError(err)
			}
			return string(data)
		}),
	}
}
