package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 16
)

// Frame is one JSON message on the websocket, both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one participant's live connection.
type Client struct {
	UserID uint

	conn      *websocket.Conn
	send      chan outFrame
	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan outFrame, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Enqueue queues an outbound frame without blocking; a slow consumer with a
// full buffer simply drops the frame.
func (c *Client) Enqueue(event string, data interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- outFrame{Event: event, Data: data}:
		return true
	default:
		log.Printf("ws: dropping %s frame for user %d, send buffer full", event, c.UserID)
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// WritePump serializes all writes to the connection and keeps it alive with
// pings. Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadPump reads inbound frames and hands them to handler until the
// connection drops.
func (c *Client) ReadPump(handler func(event string, data json.RawMessage)) {
	defer c.Close()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: user %d read error: %v", c.UserID, err)
			}
			return
		}
		handler(frame.Event, frame.Data)
	}
}
