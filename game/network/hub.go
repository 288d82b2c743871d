package network

import (
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"ShashkiAI/game/ai"
	"ShashkiAI/game/core"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxDepth     = 10
	DefaultWriteTimeout = 10 * time.Second
)

// ErrDepthOutOfRange is returned for a requested search depth above the
// hub's MaxDepth or below zero.
var ErrDepthOutOfRange = errors.New("search depth out of range")

// Settings are the defaults applied to every room the hub creates.
type Settings struct {
	Rules     core.Rules
	Evaluator ai.Evaluator
	Search    ai.Options
	Depth     int
	// MaxDepth caps the depth a client may ask for. Zero means DefaultMaxDepth.
	MaxDepth int
	// AISide is the computer's side in new rooms; NoSide for human games.
	AISide         core.Side
	AllowedOrigins []string
	// WriteTimeout bounds each write to a client. Zero means
	// DefaultWriteTimeout.
	WriteTimeout time.Duration
	// IdleRoomTTL removes rooms created through the API that are still
	// empty after this long. Zero keeps them.
	IdleRoomTTL time.Duration
}

// Hub owns the rooms of one server.
type Hub struct {
	settings Settings
	upgrader websocket.Upgrader
	rooms    map[string]*Room
	mu       sync.Mutex
}

func NewHub(s Settings) *Hub {
	if s.MaxDepth == 0 {
		s.MaxDepth = DefaultMaxDepth
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	h := &Hub{
		settings: s,
		rooms:    make(map[string]*Room),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.settings.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.settings.AllowedOrigins {
		if allowed == origin || allowed == u.Host {
			return true
		}
	}
	return false
}

// Routes registers the WebSocket endpoint and the room API on r.
func (h *Hub) Routes(r gin.IRouter) {
	r.GET("/ws", h.HandleWebSocket)
	api := r.Group("/api")
	api.POST("/rooms", h.handleCreateRoom)
	api.GET("/rooms", h.handleListRooms)
	api.GET("/rooms/:id", h.handleGetRoom)
}

// CreateRoom opens a room with a fresh id. A depth of zero uses the hub
// default.
func (h *Hub) CreateRoom(aiSide core.Side, depth int) (*Room, error) {
	if depth == 0 {
		depth = h.settings.Depth
	}
	if depth < 1 || depth > h.settings.MaxDepth {
		return nil, errors.Wrapf(ErrDepthOutOfRange, "depth %d, allowed 1 to %d", depth, h.settings.MaxDepth)
	}
	room := newRoom(uuid.NewString(), h.settings, aiSide, depth)

	h.mu.Lock()
	h.rooms[room.ID] = room
	h.mu.Unlock()

	if ttl := h.settings.IdleRoomTTL; ttl > 0 {
		time.AfterFunc(ttl, func() { h.removeIfEmpty(room) })
	}
	log.Info().Str("room", room.ID).Stringer("ai", aiSide).Int("depth", depth).Msg("created room")
	return room, nil
}

func (h *Hub) Room(id string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[id]
	return room, ok
}

// roomOrCreate returns the room named id. A new room is built outside mu
// since building it may run the computer's opening search.
func (h *Hub) roomOrCreate(id string) *Room {
	if room, ok := h.Room(id); ok {
		return room
	}
	fresh := newRoom(id, h.settings, h.settings.AISide, h.settings.Depth)

	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[id]; ok {
		return room
	}
	h.rooms[id] = fresh
	log.Info().Str("room", id).Msg("created room")
	return fresh
}

// removeIfEmpty forgets room unless a client joined it in the meantime.
func (h *Hub) removeIfEmpty(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room.mu.Lock()
	empty := len(room.clients) == 0
	room.mu.Unlock()

	if empty && h.rooms[room.ID] == room {
		delete(h.rooms, room.ID)
		log.Info().Str("room", room.ID).Msg("removed empty room")
	}
}

func (h *Hub) handleCreateRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorContent{Message: err.Error()})
		return
	}

	aiSide := h.settings.AISide
	if req.AI != "" {
		side, err := core.ParseSide(req.AI)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorContent{Message: err.Error()})
			return
		}
		aiSide = side
	}

	room, err := h.CreateRoom(aiSide, req.Depth)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorContent{Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, RoomResponse{ID: room.ID, State: room.State()})
}

func (h *Hub) handleGetRoom(c *gin.Context) {
	room, ok := h.Room(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorContent{Message: "room not found"})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{ID: room.ID, State: room.State()})
}

func (h *Hub) handleListRooms(c *gin.Context) {
	h.mu.Lock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	sort.Strings(ids)
	c.JSON(http.StatusOK, gin.H{"rooms": ids})
}
