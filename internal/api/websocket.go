package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"keyemu/internal/protocol"
	"keyemu/internal/vk"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for now as this is a local network tool
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSManager handles WebSocket connections and broadcasting
type WSManager struct {
	server     *Server
	clients    map[*WebSocketClient]bool
	clientsMu  sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *WebSocketClient
	unregister chan *WebSocketClient
	shutdown   chan struct{}
}

// WebSocketClient represents a connected controller
type WebSocketClient struct {
	manager *WSManager
	conn    *websocket.Conn
	send    chan []byte
	ip      string
	authed  bool
}

func newWSManager(s *Server) *WSManager {
	return &WSManager{
		server:     s,
		clients:    make(map[*WebSocketClient]bool),
		broadcast:  make(chan protocol.Message),
		register:   make(chan *WebSocketClient),
		unregister: make(chan *WebSocketClient),
		shutdown:   make(chan struct{}),
	}
}

func (m *WSManager) start() {
	for {
		select {
		case client := <-m.register:
			m.clientsMu.Lock()
			m.clients[client] = true
			m.clientsMu.Unlock()
			log.Printf("WS: New client registered from %s. Total clients: %d", client.ip, len(m.clients))

		case client := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
				log.Printf("WS: Client unregistered from %s. Total clients: %d", client.ip, len(m.clients))
			}
			m.clientsMu.Unlock()

		case message := <-m.broadcast:
			m.broadcastMessage(message)

		case <-m.shutdown:
			return
		}
	}
}

func (m *WSManager) broadcastMessage(message protocol.Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("WS: Failed to marshal broadcast message: %v", err)
		return
	}

	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	for client := range m.clients {
		select {
		case client.send <- jsonMsg:
		default:
			close(client.send)
			delete(m.clients, client)
		}
	}
}

func (m *WSManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: Failed to upgrade connection: %v", err)
		return
	}

	client := &WebSocketClient{
		manager: m,
		conn:    conn,
		send:    make(chan []byte, 256),
		ip:      r.RemoteAddr,
		// Connections are pre-authenticated when no token is configured
		authed: m.server.token == "",
	}

	m.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS: Read error: %v", err)
			}
			break
		}

		if !c.handleMessage(message) {
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
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

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one client message. Returns false when the
// connection should be dropped (failed auth).
func (c *WebSocketClient) handleMessage(data []byte) bool {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("WS: Invalid message format: %v", err)
		return true
	}

	if msg.Type == protocol.TypeAuth {
		var payload protocol.AuthPayload
		decodePayload(msg.Payload, &payload)

		if c.manager.server.token != "" && payload.Token != c.manager.server.token {
			log.Printf("WS: Auth failed from %s", c.ip)
			c.sendResult(false, "authentication failed")
			return false
		}
		c.authed = true
		log.Printf("WS: Client %s authenticated (%s %s)", c.ip, payload.ClientName, payload.ClientVersion)
		c.sendResult(true, "")
		return true
	}

	if !c.authed {
		c.sendResult(false, "not authenticated")
		return false
	}

	switch msg.Type {
	case protocol.TypeText:
		var payload protocol.TextPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			c.sendResult(false, "invalid type_text payload")
			return true
		}
		// Typing a long string blocks for its whole duration; run it off
		// the read pump so pings keep flowing.
		go func() {
			server := c.manager.server
			if server.Paused() {
				c.sendResult(false, "injection is paused")
				return
			}
			opts, err := server.typeOptions(payload)
			if err != nil {
				c.sendResult(false, err.Error())
				return
			}
			if err := server.emu.TypeString(context.Background(), payload.Text, opts); err != nil {
				log.Printf("WS: type_text failed: %v", err)
				c.sendResult(false, err.Error())
				return
			}
			c.sendResult(true, "")
		}()

	case protocol.TypeTap:
		var payload protocol.TapPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			c.sendResult(false, "invalid tap payload")
			return true
		}
		c.runTap(payload.Chord)

	case protocol.TypeKey:
		var payload protocol.KeyPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			c.sendResult(false, "invalid key payload")
			return true
		}
		c.runKey(payload)

	case protocol.TypeStatus:
		status := protocol.Message{
			Type:    protocol.TypeStatus,
			Payload: c.manager.server.statusPayload(),
		}
		if data, err := json.Marshal(status); err == nil {
			c.send <- data
		}

	case protocol.TypePing:
		// Application-level heartbeat; nothing to do beyond the read deadline reset.
	}

	return true
}

func (c *WebSocketClient) runTap(chord string) {
	server := c.manager.server
	if server.Paused() {
		c.sendResult(false, "injection is paused")
		return
	}

	modifiers, key, err := vk.ParseChord(chord)
	if err != nil {
		c.sendResult(false, err.Error())
		return
	}
	if err := server.emu.Tap(key, modifiers...); err != nil {
		log.Printf("WS: tap %q failed: %v", chord, err)
		c.sendResult(false, err.Error())
		return
	}
	c.sendResult(true, "")
}

func (c *WebSocketClient) runKey(payload protocol.KeyPayload) {
	server := c.manager.server
	if server.Paused() {
		return
	}

	code := vk.Code(payload.KeyCode)
	var err error
	if payload.Pressed {
		err = server.emu.Press(code)
	} else {
		err = server.emu.Release(code)
	}
	if err != nil {
		log.Printf("WS: key event 0x%02X pressed=%v failed: %v", payload.KeyCode, payload.Pressed, err)
	}
}

func (c *WebSocketClient) sendResult(ok bool, errMsg string) {
	msg := protocol.Message{
		Type:    protocol.TypeResult,
		Payload: protocol.ResultPayload{OK: ok, Error: errMsg},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// decodePayload re-marshals the generic payload into a concrete struct.
func decodePayload(payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// BroadcastStatus pushes the daemon state to all connected clients (e.g.
// when the tray toggles the pause gate).
func (m *WSManager) BroadcastStatus(status protocol.StatusPayload) {
	msg := protocol.Message{
		Type:    protocol.TypeStatus,
		Payload: status,
	}
	select {
	case m.broadcast <- msg:
	default:
	}
}
