package realtime

import (
	"sync"
)

// Client-to-server and server-to-client event names.
const (
	EventSendMessage    = "send-message"
	EventTyping         = "typing"
	EventMarkRead       = "mark-read"
	EventMessageSent    = "message-sent"
	EventReceiveMessage = "receive-message"
	EventMessageError   = "message-error"
	EventUserTyping     = "user-typing"
	EventMessagesRead   = "messages-read"
)

// Hub is the presence registry: one live connection per participant. It is
// the only shared mutable in-memory state in the process and is rebuilt
// empty on restart; connections re-register after reconnecting.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]*Client)}
}

// Register makes c the active connection for its user. On reconnect the
// last connection wins; the previous one is closed.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	prev := h.clients[c.UserID]
	h.clients[c.UserID] = c
	h.mu.Unlock()

	if prev != nil && prev != c {
		prev.Close()
	}
}

// Unregister removes c, but only while it is still the active connection,
// so a stale disconnect never evicts a fresh one.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == c {
		delete(h.clients, c.UserID)
	}
	h.mu.Unlock()
}

func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	_, ok := h.clients[userID]
	h.mu.RUnlock()
	return ok
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	return n
}

// Send pushes an event to the user's live connection if one exists. It is
// best effort: delivery is not required for correctness because every
// message is already durably stored.
func (h *Hub) Send(userID uint, event string, data interface{}) bool {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Enqueue(event, data)
}
