package websocket

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/tunequiz-backend/internal"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

const (
	sendQueueSize = 256
	writeWait     = 5 * time.Second
)

var ErrBackpressure = errors.New("backpressure")

type Config struct {
	// ReadLimit caps the size of one inbound message.
	ReadLimit int64
	// PingPeriod is how often the server pings; a peer silent for longer
	// than that plus a margin is dropped.
	PingPeriod time.Duration
	// TrustedUserHeader names a header set by an authenticating proxy. When
	// present on the upgrade request the connection joins as that user.
	TrustedUserHeader string
}

// Room is what the hub needs from a game room.
type Room interface {
	Name() string
	Join(conn internal.ConnID, nickname string)
	JoinRegistered(conn internal.ConnID, nickname string)
	Leave(conn internal.ConnID)
	Guess(conn internal.ConnID, guess string)
	Chat(conn internal.ConnID, msg, to string)
	Kick(conn internal.ConnID, target, why string, ban time.Duration)
	Ignore(conn internal.ConnID, target string)
	Unignore(conn internal.ConnID, target string)
}

// =============================================================================
// CONNECTIONS
// =============================================================================

type client struct {
	id      internal.ConnID
	conn    *websocket.Conn
	address string
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	alive   atomic.Bool
}

func (c *client) trySend(data []byte) error {
	select {
	case <-c.done:
		return net.ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// close ends both pumps; the read pump then runs the disconnect path.
func (c *client) close() {
	c.once.Do(func() {
		c.alive.Store(false)
		close(c.done)
		_ = c.conn.Close()
	})
}

// =============================================================================
// HUB
// =============================================================================

// Hub owns every websocket connection and implements the game transport.
type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu     sync.RWMutex
	conns  map[internal.ConnID]*client
	groups map[string]map[internal.ConnID]*client
}

func NewHub(cfg Config) *Hub {
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = 54 * time.Second
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.With().Str("module", "websocket.hub").Logger(),
		conns:  make(map[internal.ConnID]*client),
		groups: make(map[string]map[internal.ConnID]*client),
	}
}

// Serve upgrades the request and plays room over the connection until it
// closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, room Room) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	c := &client{
		id:      internal.ConnID(uuid.NewString()),
		conn:    conn,
		address: ClientAddress(r),
		send:    make(chan []byte, sendQueueSize),
		done:    make(chan struct{}),
	}
	c.alive.Store(true)

	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()

	h.logger.Debug().Str("conn", string(c.id)).Str("room", room.Name()).Str("address", c.address).Msg("connection opened")

	go h.writePump(c)

	if h.cfg.TrustedUserHeader != "" {
		if nickname := r.Header.Get(h.cfg.TrustedUserHeader); nickname != "" {
			room.JoinRegistered(c.id, nickname)
		}
	}

	h.readPump(c, room)
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if data == nil {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "terminated"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug().Err(err).Str("conn", string(c.id)).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client, room Room) {
	defer func() {
		// Mark the connection dead before the room hears about it, so a
		// join completing in between sees it gone.
		c.close()
		h.unregister(c)
		room.Leave(c.id)
		h.logger.Debug().Str("conn", string(c.id)).Msg("connection closed")
	}()

	if h.cfg.ReadLimit > 0 {
		c.conn.SetReadLimit(h.cfg.ReadLimit)
	}
	pongWait := h.cfg.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("conn", string(c.id)).Msg("read failed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		h.dispatch(c, room, data)
	}
}

// dispatch routes one inbound message to the room.
func (h *Hub) dispatch(c *client, room Room, data []byte) {
	var msg internal.Message[json.RawMessage]
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Debug().Err(err).Str("conn", string(c.id)).Msg("bad json")
		return
	}

	var err error
	switch msg.Type {
	case internal.RequestJoin:
		var req internal.JoinRequest
		if err = json.Unmarshal(msg.Data, &req); err == nil {
			room.Join(c.id, req.Nickname)
		}
	case internal.RequestGuess:
		var guess string
		if err = json.Unmarshal(msg.Data, &guess); err == nil {
			room.Guess(c.id, guess)
		}
	case internal.RequestChat:
		var req internal.ChatRequest
		if err = json.Unmarshal(msg.Data, &req); err == nil {
			room.Chat(c.id, req.Msg, req.To)
		}
	case internal.RequestKick:
		var req internal.KickRequest
		if err = json.Unmarshal(msg.Data, &req); err == nil {
			room.Kick(c.id, req.Who, req.Why, time.Duration(req.Duration)*time.Second)
		}
	case internal.RequestIgnore:
		var req internal.TargetRequest
		if err = json.Unmarshal(msg.Data, &req); err == nil {
			room.Ignore(c.id, req.Who)
		}
	case internal.RequestUnignore:
		var req internal.TargetRequest
		if err = json.Unmarshal(msg.Data, &req); err == nil {
			room.Unignore(c.id, req.Who)
		}
	default:
		h.logger.Debug().Str("conn", string(c.id)).Str("type", msg.Type).Msg("unknown message type")
		return
	}
	if err != nil {
		h.logger.Debug().Err(err).Str("conn", string(c.id)).Str("type", msg.Type).Msg("bad payload")
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c.id)
	for name, group := range h.groups {
		delete(group, c.id)
		if len(group) == 0 {
			delete(h.groups, name)
		}
	}
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (h *Hub) encode(msg any) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode message")
		return nil, false
	}
	return data, true
}

// deliver queues data on c. A peer too slow to drain its queue is dropped.
func (h *Hub) deliver(c *client, data []byte) {
	if err := c.trySend(data); errors.Is(err, ErrBackpressure) {
		h.logger.Warn().Str("conn", string(c.id)).Msg("send queue full, dropping connection")
		c.close()
	}
}

func (h *Hub) Send(conn internal.ConnID, msg any) {
	h.mu.RLock()
	c, ok := h.conns[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if data, ok := h.encode(msg); ok {
		h.deliver(c, data)
	}
}

func (h *Hub) Broadcast(room string, msg any) {
	h.BroadcastExcept(room, "", msg)
}

func (h *Hub) BroadcastExcept(room string, except internal.ConnID, msg any) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.groups[room]))
	for id, c := range h.groups[room] {
		if id != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, data)
	}
}

// BroadcastAll reaches every open connection, joined or not.
func (h *Hub) BroadcastAll(msg any) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	targets := make([]*client, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, data)
	}
}

func (h *Hub) Join(conn internal.ConnID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[conn]
	if !ok {
		return
	}
	group, ok := h.groups[room]
	if !ok {
		group = make(map[internal.ConnID]*client)
		h.groups[room] = group
	}
	group[conn] = c
}

// Terminate closes the connection once what is already queued is written.
func (h *Hub) Terminate(conn internal.ConnID) {
	h.mu.RLock()
	c, ok := h.conns[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.alive.Store(false)
	// A nil frame tells the write pump to close.
	if err := c.trySend(nil); err != nil {
		c.close()
	}
}

func (h *Hub) IsAlive(conn internal.ConnID) bool {
	h.mu.RLock()
	c, ok := h.conns[conn]
	h.mu.RUnlock()
	return ok && c.alive.Load()
}

func (h *Hub) Address(conn internal.ConnID) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.conns[conn]; ok {
		return c.address
	}
	return ""
}

// ClientAddress returns the first X-Forwarded-For hop, or the remote host.
func ClientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
