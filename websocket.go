package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qctl/cryosim/simulation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 65536,
	// The simulator is typically viewed from local tooling; origin
	// enforcement belongs to a fronting proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FrameMessage is the per-tick payload pushed to every client.
type FrameMessage struct {
	Type      string                    `json:"type"` // "frame"
	ElapsedNs float64                   `json:"elapsed_ns"`
	Stage     string                    `json:"stage"`
	Paused    bool                      `json:"paused"`
	Result    *simulation.Result        `json:"result"`
	Spectrum  *simulation.SpectrumFrame `json:"spectrum"`
}

// ControlMessage is a client command. Exactly one command field is used
// per message, selected by Cmd.
type ControlMessage struct {
	Cmd        string                       `json:"cmd"`
	Stage      int                          `json:"stage,omitempty"`       // cmd=stage
	Paused     bool                         `json:"paused,omitempty"`      // cmd=pause
	TimeScale  float64                      `json:"time_scale,omitempty"`  // cmd=timescale
	Field      string                       `json:"field,omitempty"`       // cmd=set
	Value      float64                      `json:"value,omitempty"`       // cmd=set
	Shape      string                       `json:"shape,omitempty"`       // cmd=shape
	ChainStage string                       `json:"chain_stage,omitempty"` // cmd=components
	Components []simulation.ChainComponent `json:"components,omitempty"`  // cmd=components
}

// wsClient is one connected viewer/controller.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// WSHub fans simulation frames out to connected clients and applies their
// control messages to the simulator.
type WSHub struct {
	mu        sync.Mutex
	clients   map[string]*wsClient
	simulator *Simulator
	metrics   *PrometheusMetrics
}

// NewWSHub creates an empty hub bound to the simulator.
func NewWSHub(simulator *Simulator, metrics *PrometheusMetrics) *WSHub {
	return &WSHub{
		clients:   make(map[string]*wsClient),
		simulator: simulator,
		metrics:   metrics,
	}
}

// HandleWS upgrades an HTTP request and registers the client.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket: upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetConnectedClients(count)
	}
	log.Printf("WebSocket: client %s connected (%d total)", client.id, count)

	go h.writeLoop(client)
	go h.readLoop(client)
}

func (h *WSHub) remove(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetConnectedClients(count)
	}
	log.Printf("WebSocket: client %s disconnected (%d total)", client.id, count)
}

func (h *WSHub) writeLoop(client *wsClient) {
	defer client.conn.Close()
	for msg := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *WSHub) readLoop(client *wsClient) {
	defer h.remove(client)
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("WebSocket: client %s sent invalid JSON: %v", client.id, err)
			continue
		}
		h.handleControl(client, &msg)
	}
}

func (h *WSHub) handleControl(client *wsClient, msg *ControlMessage) {
	switch msg.Cmd {
	case "stage":
		h.simulator.SetCursor(simulation.Stage(msg.Stage))
	case "pause":
		h.simulator.SetPaused(msg.Paused)
	case "timescale":
		h.simulator.SetTimeScale(msg.TimeScale)
	case "set":
		if err := h.simulator.SetScalar(msg.Field, msg.Value); err != nil {
			log.Printf("WebSocket: client %s: %v", client.id, err)
		}
	case "shape":
		h.simulator.SetShape(simulation.EnvelopeShape(msg.Shape))
	case "components":
		if err := h.simulator.ReplaceComponents(msg.ChainStage, msg.Components); err != nil {
			log.Printf("WebSocket: client %s: %v", client.id, err)
		}
	default:
		log.Printf("WebSocket: client %s sent unknown command %q", client.id, msg.Cmd)
	}
}

// Broadcast pushes a frame to every connected client, dropping frames for
// clients whose send queue is full rather than stalling the tick loop.
func (h *WSHub) Broadcast(frame *FrameMessage) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("WebSocket: frame marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
			if h.metrics != nil {
				h.metrics.AddFrameBytes(len(data))
			}
		default:
			// Slow client: skip this frame.
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
