// Package websocket - websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"go-typing-comp/logger"
)

// Hub tracks every live WebSocket connection and fans events out to them.
// It implements session.Broadcaster. The hub is an explicit instance handed
// to main, not a package-level global, so tests can run isolated hubs.
type Hub struct {
	mu          sync.Mutex
	connections map[*Connection]bool
	byID        map[string]*Connection
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		byID:        make(map[string]*Connection),
	}
}

// register adds a connection to the hub.
func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	h.byID[c.id] = c
	total := len(h.connections)
	h.mu.Unlock()

	go PublishConnectionCount(total)
}

// unregister removes a connection and closes its send channel.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		delete(h.byID, c.id)
		close(c.send)
	}
	total := len(h.connections)
	h.mu.Unlock()

	go PublishConnectionCount(total)
}

// attach binds a connection to a competition once a join or organizerJoin
// succeeds. Matching the original room semantics, a connection belongs to at
// most one competition.
func (h *Hub) attach(c *Connection, competitionID, participantName string, organizer bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.competitionID = competitionID
	c.participantName = participantName
	c.isOrganizer = organizer
}

// detach unbinds a connection from its competition.
func (h *Hub) detach(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.competitionID = ""
	c.participantName = ""
	c.isOrganizer = false
}

// ---------------------- session.Broadcaster ----------------------

// ToCompetition sends an event to every connection attached to the
// competition. Slow consumers are dropped rather than blocking the core.
func (h *Hub) ToCompetition(competitionID, event string, payload interface{}) {
	msg, err := json.Marshal(OutboundMessage{Event: event, Data: payload})
	if err != nil {
		logger.Error.Printf("[hub] Error marshalling %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.connections {
		if c.competitionID != competitionID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			logger.Warn.Printf("[hub] Dropping %s message for connection %v", event, c.conn.RemoteAddr())
			go PublishDroppedMessage(competitionID)
		}
	}
}

// ToConnection sends an event to a single connection by id.
func (h *Hub) ToConnection(connectionID, event string, payload interface{}) {
	msg, err := json.Marshal(OutboundMessage{Event: event, Data: payload})
	if err != nil {
		logger.Error.Printf("[hub] Error marshalling %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.byID[connectionID]
	if !ok {
		logger.Debug.Printf("[hub] No connection %s for %s event", connectionID, event)
		return
	}
	select {
	case c.send <- msg:
	default:
		logger.Warn.Printf("[hub] Dropping %s message for connection %v", event, c.conn.RemoteAddr())
	}
}
