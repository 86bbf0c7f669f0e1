package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"funnelwerk/internal/domain/lead"
)

// Hub fans lead events out to connected dashboard clients. Connections are
// keyed by an opaque id so one admin may hold several tabs open.
type Hub struct {
	connections map[string]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Register(connID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[connID]; exists && old != nil {
		_ = old.Close()
	}
	h.connections[connID] = conn
}

func (h *Hub) Unregister(connID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[connID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, connID)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

// LeadEvent is the wire shape pushed on new submissions.
type LeadEvent struct {
	Type           string    `json:"type"`
	LeadID         int64     `json:"lead_id"`
	FunnelID       string    `json:"funnel_id"`
	Classification string    `json:"classification"`
	TotalScore     int       `json:"total_score"`
	ContactName    string    `json:"contact_name"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// LeadCreated implements the lead.Notifier interface.
func (h *Hub) LeadCreated(sub *lead.Submission) {
	h.broadcast(LeadEvent{
		Type:           "lead.created",
		LeadID:         sub.ID,
		FunnelID:       sub.FunnelID,
		Classification: string(sub.Classification),
		TotalScore:     sub.TotalScore,
		ContactName:    sub.Contact.Name,
		SubmittedAt:    sub.SubmittedAt,
	})
}

func (h *Hub) broadcast(message interface{}) {
	h.mutex.RLock()
	conns := make(map[string]*websocket.Conn, len(h.connections))
	for id, c := range h.connections {
		conns[id] = c
	}
	h.mutex.RUnlock()

	for id, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			h.Unregister(id)
		}
	}
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, id)
	}
}
