package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snakelights/snakelights/game/engine"
	"github.com/snakelights/snakelights/game/sim"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Per-client outbound buffer, in messages.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Display bridges connect from anywhere on the local network.
		return true
	},
}

// Events sent to run subscribers.
const (
	EventFrame    = "frame"
	EventFinished = "finished"
	EventReset    = "reset"
)

// Message is the wire format for run updates.
type Message struct {
	RunID  string        `json:"run_id"`
	Event  string        `json:"event"`
	Frame  *engine.Frame `json:"frame,omitempty"`
	Result *sim.Result   `json:"result,omitempty"`
}

// Client represents one connected display or visualizer.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	runID string
}

// Hub maintains the set of active clients per run and broadcasts
// messages to them.
type Hub struct {
	// Registered clients by run ID.
	runs map[string]map[*Client]bool

	// Inbound messages from producers.
	broadcast chan *Message

	// Register requests from clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		runs:       make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the client to runID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, runID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		runID: runID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastFrames sends a batch of frames, in order, to every client
// subscribed to the run, followed by a finished event when the run is
// done.
func (h *Hub) BroadcastFrames(runID string, frames []engine.Frame, result sim.Result) {
	for i := range frames {
		h.broadcast <- &Message{RunID: runID, Event: EventFrame, Frame: &frames[i]}
	}
	if result.Done {
		h.broadcast <- &Message{RunID: runID, Event: EventFinished, Result: &result}
	}
}

// BroadcastEvent sends a bare event (e.g. reset) to a run's clients.
func (h *Hub) BroadcastEvent(runID string, event string) {
	h.broadcast <- &Message{RunID: runID, Event: event}
}

// registerClient adds a client to a run's subscriber set.
func (h *Hub) registerClient(client *Client) {
	if h.runs[client.runID] == nil {
		h.runs[client.runID] = make(map[*Client]bool)
	}
	h.runs[client.runID][client] = true

	log.Printf("Client subscribed to run %s (total clients: %d)",
		client.runID, len(h.runs[client.runID]))
}

// unregisterClient removes a client from its run's subscriber set.
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.runs[client.runID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.runs, client.runID)
			}

			log.Printf("Client unsubscribed from run %s (remaining clients: %d)",
				client.runID, len(clients))
		}
	}
}

// broadcastMessage delivers a message to all clients of its run.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.runs[message.RunID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, drop it.
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the WebSocket connection. Incoming payloads are
// ignored; the read loop only exists for pong handling and to notice
// disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
