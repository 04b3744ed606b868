package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"laxyguide/pkg/player"
)

// fakeTransport records transport commands.
type fakeTransport struct {
	actions []string
	seconds []float64
	state   player.State
}

func (f *fakeTransport) Play()            { f.actions = append(f.actions, "play") }
func (f *fakeTransport) Pause()           { f.actions = append(f.actions, "pause") }
func (f *fakeTransport) TogglePlayPause() { f.actions = append(f.actions, "toggle") }
func (f *fakeTransport) SeekTo(s float64) {
	f.actions = append(f.actions, "seek")
	f.seconds = append(f.seconds, s)
}
func (f *fakeTransport) SkipForward(s float64) {
	f.actions = append(f.actions, "skip_forward")
	f.seconds = append(f.seconds, s)
}
func (f *fakeTransport) SkipBackward(s float64) {
	f.actions = append(f.actions, "skip_backward")
	f.seconds = append(f.seconds, s)
}
func (f *fakeTransport) Snapshot() player.State { return f.state }

func newTransportServer(f *fakeTransport) *httptest.Server {
	h := NewTransportHandler(f)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/player/control", h.HandleControl)
	mux.HandleFunc("GET /api/player/status", h.HandleStatus)
	return httptest.NewServer(mux)
}

func postControl(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/player/control", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHandleControl_Actions(t *testing.T) {
	f := &fakeTransport{}
	srv := newTransportServer(f)
	defer srv.Close()

	cases := []struct {
		body   string
		action string
	}{
		{`{"action":"play"}`, "play"},
		{`{"action":"pause"}`, "pause"},
		{`{"action":"toggle"}`, "toggle"},
		{`{"action":"seek","seconds":42.5}`, "seek"},
		{`{"action":"skip_forward"}`, "skip_forward"},
		{`{"action":"skip_backward","seconds":30}`, "skip_backward"},
	}
	for _, tc := range cases {
		resp := postControl(t, srv, tc.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", tc.action, resp.StatusCode)
		}
	}

	want := []string{"play", "pause", "toggle", "seek", "skip_forward", "skip_backward"}
	if len(f.actions) != len(want) {
		t.Fatalf("expected %d actions, got %v", len(want), f.actions)
	}
	for i, a := range want {
		if f.actions[i] != a {
			t.Errorf("action %d: expected %s, got %s", i, a, f.actions[i])
		}
	}
	if f.seconds[0] != 42.5 {
		t.Errorf("seek target not forwarded: %v", f.seconds)
	}
	// skip with no amount forwards zero; the engine applies its default
	if f.seconds[1] != 0 {
		t.Errorf("expected zero skip amount, got %v", f.seconds)
	}
}

func TestHandleControl_UnknownAction(t *testing.T) {
	f := &fakeTransport{}
	srv := newTransportServer(f)
	defer srv.Close()

	resp := postControl(t, srv, `{"action":"rewind-to-start"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if len(f.actions) != 0 {
		t.Error("unknown action must not reach the engine")
	}
}

func TestHandleStatus(t *testing.T) {
	f := &fakeTransport{state: player.State{StepID: "s1", IsPlaying: true, CurrentTime: 12.5, Duration: 60}}
	srv := newTransportServer(f)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/player/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var state player.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.StepID != "s1" || !state.IsPlaying || state.CurrentTime != 12.5 {
		t.Errorf("unexpected status payload: %+v", state)
	}
}
