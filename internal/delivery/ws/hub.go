package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"
)

const (
	AdminRoom    = "admin"
	writeTimeout = 5 * time.Second
)

// Hub fans messages out to rooms of websocket connections.
// gorilla connections allow one writer at a time, so sends hold the write lock.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]bool
	log   *logger.ZapLogger
}

func NewHub(log *logger.ZapLogger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]bool),
		log:   log,
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[roomID][conn] = true

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "ws register",
		Fields:  map[string]any{"room": roomID, "conns": len(h.rooms[roomID])},
	})
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
	}
	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "ws unregister",
		Fields:  map[string]any{"room": roomID, "conns": len(conns)},
	})
}

// Count returns the number of live connections in a room.
func (h *Hub) Count(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// SendToRoom writes msg to every connection in the room and drops the ones
// that fail.
func (h *Hub) SendToRoom(roomID string, msg []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.rooms[roomID]
	sent := 0
	for conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "ws send failed",
				Fields:  map[string]any{"room": roomID},
				Error:   err,
			})
			delete(conns, conn)
			conn.Close()
			continue
		}
		sent++
	}
	if conns != nil && len(conns) == 0 {
		delete(h.rooms, roomID)
	}
	return sent
}

// CloseAll disconnects every client. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, conns := range h.rooms {
		for conn := range conns {
			conn.Close()
		}
		delete(h.rooms, roomID)
	}
}

// HubPublisher broadcasts domain events to the admin room.
type HubPublisher struct {
	Hub *Hub
}

func (p HubPublisher) Publish(_ context.Context, ev models.ResourceEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	p.Hub.SendToRoom(AdminRoom, b)
	return nil
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
