package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/game"
)

// Message types on the websocket.
const (
	MessageTypeState  = "state"
	MessageTypeSpeech = "speech"
	MessageTypeAction = "action"
	MessageTypeResult = "result"
	MessageTypeError  = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
)

// Message is the websocket envelope.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ActionData is a decision sent by a seated client.
type ActionData struct {
	Action    game.Action `json:"action"`
	Amount    int         `json:"amount,omitempty"`
	Reasoning string      `json:"reasoning,omitempty"`
	Version   uint64      `json:"version"`
}

// StateData is a state change projected for one client.
type StateData struct {
	Seq     uint64     `json:"seq,omitempty"`
	Version uint64     `json:"version"`
	Event   game.Event `json:"event"`
	View    game.View  `json:"view"`
}

// ErrorData reports a rejected message.
type ErrorData struct {
	Error string `json:"error"`
	Stale bool   `json:"stale,omitempty"`
}

func newMessage(kind string, data any) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: kind, Data: raw}, nil
}

// Hub streams table state to websocket clients and accepts their actions.
// It is a Notifier and an agent.Speaker; neither path ever blocks on a slow
// client.
type Hub struct {
	manager  *Manager
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub returns a hub routing actions to manager.
func NewHub(manager *Manager, logger *log.Logger) *Hub {
	return &Hub{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks are left to the CORS layer in front of the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger.WithPrefix("hub"),
		clients: make(map[*client]bool),
	}
}

// Serve upgrades the request and streams tableID to it. A non-empty
// playerID sees their own hole cards and may act.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, tableID, playerID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		hub:      h,
		conn:     conn,
		tableID:  tableID,
		playerID: playerID,
		send:     make(chan *Message, sendBuffer),
		ctx:      ctx,
		cancel:   cancel,
		logger:   h.logger.With("table", tableID, "player", playerID),
	}

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", "table", tableID, "player", playerID, "total", total)

	if table, ok := h.manager.Get(tableID); ok {
		view, version := table.View(playerID)
		c.sendData(MessageTypeState, StateData{Version: version, View: view})
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client disconnected", "table", c.tableID, "player", c.playerID, "total", total)
}

func (h *Hub) tableClients(tableID string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*client
	for c := range h.clients {
		if c.tableID == tableID {
			out = append(out, c)
		}
	}
	return out
}

// Notify sends the change to every client at its table. Seated clients get
// their own projection of the latest state.
func (h *Hub) Notify(change StateChange) {
	clients := h.tableClients(change.TableID)
	if len(clients) == 0 {
		return
	}
	table, _ := h.manager.Get(change.TableID)
	for _, c := range clients {
		data := StateData{Seq: change.Seq, Version: change.Version, Event: change.Event, View: change.View}
		if c.playerID != "" && table != nil {
			data.View, data.Version = table.View(c.playerID)
		}
		c.sendData(MessageTypeState, data)
	}
}

// Speak relays an agent's voice line to its table.
func (h *Hub) Speak(s agent.Speech) {
	for _, c := range h.tableClients(s.TableID) {
		c.sendData(MessageTypeSpeech, s)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.close()
	}
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	tableID   string
	playerID  string
	send      chan *Message
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    *log.Logger
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
		c.hub.remove(c)
	})
}

// sendData queues a message without blocking; a full buffer drops it.
func (c *client) sendData(kind string, data any) {
	msg, err := newMessage(kind, data)
	if err != nil {
		c.logger.Error("encode message", "type", kind, "error", err)
		return
	}
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("send buffer full, dropping message", "type", kind)
	}
}

func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read failed", "error", err)
			}
			return
		}
		c.handle(&msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *client) handle(msg *Message) {
	if msg.Type != MessageTypeAction {
		c.sendData(MessageTypeError, ErrorData{Error: "unknown message type " + msg.Type})
		return
	}
	if c.playerID == "" {
		c.sendData(MessageTypeError, ErrorData{Error: "spectators cannot act"})
		return
	}
	var data ActionData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendData(MessageTypeError, ErrorData{Error: "invalid action: " + err.Error()})
		return
	}

	decision := game.Decision{Action: data.Action, Amount: data.Amount, Reasoning: data.Reasoning}
	out, err := c.hub.manager.Submit(c.ctx, c.tableID, c.playerID, decision, data.Version)
	if err != nil {
		c.sendData(MessageTypeError, ErrorData{Error: err.Error(), Stale: errors.Is(err, game.ErrStaleTurn)})
		return
	}
	c.sendData(MessageTypeResult, out)
}
