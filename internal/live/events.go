package live

import (
	"encoding/json"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/mivchik/platforge/internal/board"
)

// Event is the JSON envelope for every feed message.
type Event struct {
	Type     string    `json:"type"`
	Platform *Platform `json:"platform,omitempty"`
}

// Platform is the wire form of a platform's public state.
type Platform struct {
	ID        int64   `json:"id"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Yaw       float64 `json:"yaw"`
	State     string  `json:"state"`
	Connected []int   `json:"connected,omitempty"`
}

// Event types published by the feed.
const (
	EventPlaced      = "platform_placed"
	EventPickedUp    = "platform_picked_up"
	EventRemoved     = "platform_removed"
	EventConnections = "connections_changed"
)

// Attach subscribes the hub to the registry's mutation events. Every board
// change becomes one broadcast message.
func Attach(reg *board.Registry, hub *Hub) {
	reg.OnPlatformPlaced(func(p *board.Platform) { hub.publishEvent(EventPlaced, p) })
	reg.OnPlatformPickedUp(func(p *board.Platform) { hub.publishEvent(EventPickedUp, p) })
	reg.OnPlatformRemoved(func(p *board.Platform) { hub.publishEvent(EventRemoved, p) })
	reg.OnConnectionsChanged(func(p *board.Platform) { hub.publishEvent(EventConnections, p) })
}

func (h *Hub) publishEvent(typ string, p *board.Platform) {
	msg, err := json.Marshal(Event{Type: typ, Platform: wirePlatform(p)})
	if err != nil {
		log.Error("live: marshal failed", "type", typ, "err", err)
		return
	}
	h.Publish(msg)
}

func wirePlatform(p *board.Platform) *Platform {
	connected := p.ConnectedSet()
	indices := make([]int, 0, len(connected))
	for i := range connected {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return &Platform{
		ID:        p.ID,
		Kind:      p.Kind,
		X:         p.X,
		Z:         p.Z,
		Yaw:       p.Yaw,
		State:     p.State().String(),
		Connected: indices,
	}
}
