package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mivchik/platforge/internal/board"
	"github.com/mivchik/platforge/internal/footprint"
	"github.com/mivchik/platforge/internal/grid"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", msg, err)
	}
	return ev
}

func TestFeedPublishesBoardEvents(t *testing.T) {
	g, err := grid.New(16, 16, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := board.NewRegistry(g, board.Config{})
	if err != nil {
		t.Fatal(err)
	}

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	Attach(reg, hub)
	conn := dialTestHub(t, hub)

	// Give the register message time to reach the hub loop before the
	// first broadcast.
	time.Sleep(50 * time.Millisecond)

	p := reg.Spawn("plaza", footprint.Footprint{W: 4, L: 4}, board.Rules{})
	p.X, p.Z = 2, 2
	if !reg.Register(p) {
		t.Fatal("Register failed")
	}

	// Register emits a connections event for the platform, then placed.
	var sawPlaced bool
	for i := 0; i < 2; i++ {
		ev := readEvent(t, conn)
		if ev.Platform == nil {
			t.Fatalf("event %q carries no platform", ev.Type)
		}
		if ev.Type == EventPlaced {
			sawPlaced = true
			if ev.Platform.Kind != "plaza" || ev.Platform.State != "Registered" {
				t.Errorf("placed payload = %+v", ev.Platform)
			}
		}
	}
	if !sawPlaced {
		t.Error("never saw a placed event")
	}

	reg.PickUp(p)
	ev := readEvent(t, conn)
	if ev.Type != EventPickedUp {
		t.Errorf("event type %q, want %q", ev.Type, EventPickedUp)
	}
	if ev.Platform.State != "PickedUp" {
		t.Errorf("state %q, want PickedUp", ev.Platform.State)
	}
}

func TestPublishDropsWhenSaturated(t *testing.T) {
	hub := NewHub() // Run never started, so the buffer cannot drain.
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.Publish([]byte("x")) // must not block
	}
}
