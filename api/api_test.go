package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hoshinonyaruko/snake-in-browser/network"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

type fakeLoop struct {
	mu     sync.Mutex
	keys   []snake.Key
	full   bool
	latest structs.Frame
	hub    *network.Broadcaster
}

func newFakeLoop() *fakeLoop {
	return &fakeLoop{
		hub: network.NewBroadcaster(),
		latest: structs.Frame{
			Seq: 7,
			State: structs.GameState{
				Snake:     []structs.Position{{X: 10, Y: 10}},
				Food:      structs.Position{X: 3, Y: 4},
				Score:     20,
				Running:   true,
				TileCount: 20,
			},
			PNG: []byte("\x89PNG fake"),
		},
	}
}

func (f *fakeLoop) Press(k snake.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.keys = append(f.keys, k)
	return true
}

func (f *fakeLoop) pressed() []snake.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]snake.Key(nil), f.keys...)
}

func (f *fakeLoop) Latest() structs.Frame                   { return f.latest }
func (f *fakeLoop) Subscribe() (int, <-chan structs.Frame) { return f.hub.Register() }
func (f *fakeLoop) Unsubscribe(id int)                     { f.hub.Unregister(id) }

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestIndexServesPage(t *testing.T) {
	w := doRequest(NewRouter(newFakeLoop()), http.MethodGet, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "gameCanvas") {
		t.Error("Index page is missing the canvas")
	}
}

func TestStateHandler(t *testing.T) {
	w := doRequest(NewRouter(newFakeLoop()), http.MethodGet, "/state")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body struct {
		Seq   uint64            `json:"seq"`
		State structs.GameState `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Seq != 7 || body.State.Score != 20 || body.State.Food != (structs.Position{X: 3, Y: 4}) {
		t.Errorf("Unexpected state %+v", body)
	}
}

func TestFrameHandler(t *testing.T) {
	loop := newFakeLoop()
	router := NewRouter(loop)

	w := doRequest(router, http.MethodGet, "/frame.png")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("Expected PNG, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if w.Body.String() != string(loop.latest.PNG) {
		t.Error("Frame body differs from the latest frame")
	}

	loop.latest.PNG = nil
	if w := doRequest(router, http.MethodGet, "/frame.png"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a frame, got %d", w.Code)
	}
}

func TestUpdateDirection(t *testing.T) {
	tests := []struct {
		query string
		code  int
		key   snake.Key
	}{
		{"direction=up", http.StatusOK, snake.KeyUp},
		{"direction=ArrowLeft", http.StatusOK, snake.KeyLeft},
		{"", http.StatusBadRequest, snake.KeyNone},
		{"direction=sideways", http.StatusBadRequest, snake.KeyNone},
		{"direction=reset", http.StatusBadRequest, snake.KeyNone},
	}

	for _, tt := range tests {
		loop := newFakeLoop()
		w := doRequest(NewRouter(loop), http.MethodGet, "/update-direction?"+tt.query)

		if w.Code != tt.code {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.code, w.Code)
		}
		keys := loop.pressed()
		if tt.key == snake.KeyNone && len(keys) != 0 {
			t.Errorf("%q: unexpected keys %v", tt.query, keys)
		}
		if tt.key != snake.KeyNone && (len(keys) != 1 || keys[0] != tt.key) {
			t.Errorf("%q: expected key %v, got %v", tt.query, tt.key, keys)
		}
	}
}

func TestResetAndFullQueue(t *testing.T) {
	loop := newFakeLoop()
	router := NewRouter(loop)

	if w := doRequest(router, http.MethodPost, "/reset"); w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if keys := loop.pressed(); len(keys) != 1 || keys[0] != snake.KeyReset {
		t.Errorf("Expected reset key, got %v", keys)
	}

	loop.full = true
	if w := doRequest(router, http.MethodGet, "/update-direction?direction=down"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 on full queue, got %d", w.Code)
	}
}

func TestWebsocketFramesAndKeys(t *testing.T) {
	loop := newFakeLoop()
	server := httptest.NewServer(NewRouter(loop))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// 连接后立即收到当前画面
	var msg FrameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Read first frame: %v", err)
	}
	if msg.Seq != 7 || msg.Score != 20 || !msg.Running || !strings.HasPrefix(msg.Frame, "data:image/png;base64,") {
		t.Errorf("Unexpected first frame %+v", msg)
	}

	loop.hub.Broadcast(structs.Frame{Seq: 8, State: structs.GameState{Score: 30}, PNG: []byte("x")})
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Read broadcast frame: %v", err)
	}
	if msg.Seq != 8 || msg.Score != 30 || msg.Running {
		t.Errorf("Unexpected broadcast frame %+v", msg)
	}

	if err := conn.WriteJSON(KeyMessage{Key: "ArrowDown"}); err != nil {
		t.Fatal(err)
	}
	conn.WriteJSON(KeyMessage{Key: "q"})
	if err := conn.WriteJSON(KeyMessage{Key: " "}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(loop.pressed()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Keys not delivered, got %v", loop.pressed())
		}
		time.Sleep(10 * time.Millisecond)
	}
	keys := loop.pressed()
	if keys[0] != snake.KeyDown || keys[1] != snake.KeyReset {
		t.Errorf("Expected [down reset], got %v", keys)
	}
}
