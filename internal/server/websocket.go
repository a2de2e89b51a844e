package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kode4food/caravan/topic"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type (
	// Client represents a WebSocket client connection for event streaming
	Client struct {
		server   *Server
		conn     *websocket.Conn
		consumer topic.Consumer[*api.StreamEvent]

		mu     sync.Mutex
		filter streamFilter

		closeOnce sync.Once
	}

	// streamFilter decides whether a stream event reaches the client
	streamFilter func(*api.StreamEvent) bool
)

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 512
	wsBufferSize       = 1024
	incomingBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", log.Error(err))
		return
	}

	client := &Client{
		server:   s,
		conn:     conn,
		consumer: s.engine.Hub().NewConsumer(),
		filter:   func(*api.StreamEvent) bool { return true },
	}
	s.registerWebSocket(client)

	go client.run()
}

// Close terminates the client connection
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.consumer.Close()
		_ = c.conn.Close()
	})
}

func (c *Client) run() {
	defer func() {
		c.server.unregisterWebSocket(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	for {
		select {
		case message, ok := <-incoming:
			if !ok {
				return
			}
			c.handleSubscribe(message)

		case event, ok := <-c.consumer.Receive():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.sendEventIfMatched(event) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			close(incoming)
			return
		}
		incoming <- message
	}
}

// handleSubscribe narrows the client's stream to the requested execution
// and event types
func (c *Client) handleSubscribe(message []byte) {
	var sub api.StreamSubscription
	if err := json.Unmarshal(message, &sub); err != nil {
		slog.Error("Failed to parse WebSocket message", log.Error(err))
		return
	}
	if sub.Type != "subscribe" {
		return
	}

	c.mu.Lock()
	c.filter = buildFilter(&sub)
	c.mu.Unlock()
}

func (c *Client) sendEventIfMatched(event *api.StreamEvent) bool {
	c.mu.Lock()
	matched := c.filter(event)
	c.mu.Unlock()
	if !matched {
		return true
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal stream event", log.Error(err))
		return true
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false
	}
	return true
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil) == nil
}

func buildFilter(sub *api.StreamSubscription) streamFilter {
	execID := sub.ExecutionID
	types := slices.Clone(sub.EventTypes)
	return func(ev *api.StreamEvent) bool {
		if execID != "" && ev.ExecutionID != execID {
			return false
		}
		return len(types) == 0 || slices.Contains(types, ev.Type)
	}
}
