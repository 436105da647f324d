package services

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dwellport-backend/shared/database/models/notification"
)

// Hub tracks one live WebSocket connection per user and delivers
// notification pushes to them. A second connection for the same user
// replaces the first.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*websocket.Conn
	upgrader websocket.Upgrader
}

// NewHub builds a hub that only accepts upgrade requests from the
// portal frontend origin.
func NewHub(frontendURL string) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || origin == frontendURL {
					return true
				}
				log.Printf("🚫 WebSocket connection rejected from origin: %s", origin)
				return false
			},
		},
	}
}

// Serve upgrades the request and pumps it until the client goes away.
// The read loop only answers pings; all real traffic is server to client.
func (h *Hub) Serve(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Failed to upgrade WebSocket: %v", err)
		return
	}

	h.attach(userID, conn)
	defer h.detach(userID, conn)

	if err := conn.WriteJSON(&notification.WebSocketMessage{
		Type:    "connection",
		UserID:  userID,
		Payload: gin.H{"message": "WebSocket connection established"},
	}); err != nil {
		return
	}

	for {
		var incoming struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&incoming); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket error for user %s: %v", userID, err)
			}
			return
		}
		if incoming.Type == "ping" {
			h.SendToUser(userID, &notification.WebSocketMessage{Type: "pong", UserID: userID})
		}
	}
}

// SendToUser delivers one message to a connected user. Returns an
// error when the user has no live connection.
func (h *Hub) SendToUser(userID string, message *notification.WebSocketMessage) error {
	h.mu.RLock()
	conn, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s not connected", userID)
	}

	if err := conn.WriteJSON(message); err != nil {
		log.Printf("❌ Failed to send message to user %s: %v", userID, err)
		h.detach(userID, conn)
		return err
	}

	log.Printf("📱 Message sent to user %s: %s", userID, message.Type)
	return nil
}

// Broadcast delivers one message to every connected client and drops
// the connections that fail.
func (h *Hub) Broadcast(message *notification.WebSocketMessage) {
	h.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(h.clients))
	for userID, conn := range h.clients {
		conns[userID] = conn
	}
	h.mu.RUnlock()

	sent := 0
	for userID, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("❌ Failed to send message to user %s: %v", userID, err)
			h.detach(userID, conn)
			continue
		}
		sent++
	}

	log.Printf("📡 Broadcast sent to %d of %d clients (Type: %s)", sent, len(conns), message.Type)
}

// ConnectedUsers lists the user IDs with a live connection.
func (h *Hub) ConnectedUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

// ConnectionCount reports the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) attach(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if previous, ok := h.clients[userID]; ok {
		previous.Close()
	}
	h.clients[userID] = conn
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("🔌 WebSocket client connected: %s (Total: %d)", userID, total)
}

// detach removes the connection only if it is still the one registered
// for the user, so a replacement connection is never torn down by the
// old connection's cleanup.
func (h *Hub) detach(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	current, ok := h.clients[userID]
	if ok && current == conn {
		delete(h.clients, userID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	conn.Close()
	if ok && current == conn {
		log.Printf("🔌 WebSocket client disconnected: %s (Total: %d)", userID, total)
	}
}
