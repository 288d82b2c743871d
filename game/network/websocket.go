package network

import (
	"encoding/json"
	"sync"
	"time"

	"ShashkiAI/game/ai"
	"ShashkiAI/game/controller"
	"ShashkiAI/game/core"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	errRoomFull    = errors.New("room is full")
	errNotYourTurn = errors.New("not your turn")
	errSpectator   = errors.New("spectators cannot move")
)

// Room is one game with its connected clients. Every access to the game and
// every write to a client connection happens under mu.
type Room struct {
	ID      string
	Created time.Time

	game     *controller.Game
	searcher *ai.Searcher
	aiSide   core.Side
	depth    int
	clients  map[*websocket.Conn]core.Side
	mu       sync.Mutex

	writeTimeout time.Duration
}

func newRoom(id string, s Settings, aiSide core.Side, depth int) *Room {
	r := &Room{
		ID:       id,
		Created:  time.Now(),
		game:     controller.New(s.Rules),
		searcher: ai.NewSearcher(s.Rules, s.Evaluator, s.Search),
		aiSide:   aiSide,
		depth:    depth,
		clients:  make(map[*websocket.Conn]core.Side),

		writeTimeout: s.WriteTimeout,
	}
	if r.writeTimeout == 0 {
		r.writeTimeout = DefaultWriteTimeout
	}
	r.mu.Lock()
	r.playAI()
	r.mu.Unlock()
	return r
}

// seat picks the side for a new client: the human side when the computer
// plays, otherwise Light then Dark.
func (r *Room) seat() (core.Side, error) {
	taken := make(map[core.Side]bool, len(r.clients))
	for _, side := range r.clients {
		taken[side] = true
	}
	if r.aiSide != core.NoSide {
		taken[r.aiSide] = true
	}
	for _, side := range []core.Side{core.Light, core.Dark} {
		if !taken[side] {
			return side, nil
		}
	}
	return core.NoSide, errRoomFull
}

func (r *Room) join(conn *websocket.Conn) (core.Side, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	side, err := r.seat()
	if err != nil {
		return core.NoSide, err
	}
	r.clients[conn] = side
	log.Info().Str("room", r.ID).Stringer("side", side).Int("players", len(r.clients)).Msg("player joined")
	r.broadcast()
	return side, nil
}

// leave drops conn and reports how many clients remain.
func (r *Room) leave(conn *websocket.Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if side, ok := r.clients[conn]; ok {
		delete(r.clients, conn)
		log.Info().Str("room", r.ID).Stringer("side", side).Int("players", len(r.clients)).Msg("player left")
		r.broadcast()
	}
	return len(r.clients)
}

func (r *Room) handleSelect(conn *websocket.Conn, sel SelectContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	side := r.clients[conn]
	switch {
	case side == core.NoSide:
		return errSpectator
	case r.game.Winner() != core.NoSide:
		return errors.Wrapf(controller.ErrGameOver, "%v has won", r.game.Winner())
	case side != r.game.CurrentTurn():
		return errNotYourTurn
	}
	before := len(r.game.History())
	if err := r.game.Select(sel.Row, sel.Col); err != nil {
		return err
	}
	r.broadcast()
	if len(r.game.History()) != before {
		log.Debug().Str("room", r.ID).Stringer("move", r.game.History()[before]).Msg("human move")
		if r.playAI() {
			r.broadcast()
		}
	}
	return nil
}

func (r *Room) newGame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.game.Reset()
	log.Info().Str("room", r.ID).Msg("new game")
	r.playAI()
	r.broadcast()
}

// playAI makes the computer's move when it is its turn. It reports whether
// the board changed. The caller holds mu.
func (r *Room) playAI() bool {
	if r.aiSide == core.NoSide || r.game.Winner() != core.NoSide || r.game.CurrentTurn() != r.aiSide {
		return false
	}
	start := time.Now()
	res, err := r.searcher.Analyze(r.game.Board(), r.depth, r.aiSide, r.aiSide)
	if err != nil {
		log.Error().Err(err).Str("room", r.ID).Msg("ai search failed")
		return false
	}
	if err := r.game.AIMove(res.Board); err != nil {
		log.Error().Err(err).Str("room", r.ID).Msg("ai move rejected")
		return false
	}
	log.Debug().
		Str("room", r.ID).
		Stringer("move", res.Move).
		Float64("score", res.Score).
		Int64("nodes", res.Nodes).
		Dur("took", time.Since(start)).
		Msg("ai move")
	return true
}

// state builds the view of the room for a client playing side. The caller
// holds mu.
func (r *Room) state(side core.Side) GameState {
	return GameState{
		Snapshot: r.game.Snapshot(),
		Room:     r.ID,
		YourSide: side,
		AISide:   r.aiSide,
		Players:  len(r.clients),
	}
}

// State is the room as seen by an observer without a seat.
func (r *Room) State() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(core.NoSide)
}

// broadcast sends each client its own view and drops clients that cannot
// be written to. The caller holds mu.
func (r *Room) broadcast() {
	for client, side := range r.clients {
		if err := r.write(client, Message{Type: TypeState, Content: r.state(side)}); err != nil {
			log.Warn().Err(err).Str("room", r.ID).Msg("error sending state")
			delete(r.clients, client)
			client.Close()
		}
	}
}

func (r *Room) sendState(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write(conn, Message{Type: TypeState, Content: r.state(r.clients[conn])}); err != nil {
		log.Warn().Err(err).Str("room", r.ID).Msg("error sending state")
	}
}

// write sends msg with a deadline so a stalled client cannot hold the room.
// The caller holds mu.
func (r *Room) write(conn *websocket.Conn, msg Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (r *Room) send(conn *websocket.Conn, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write(conn, msg); err != nil {
		log.Warn().Err(err).Str("room", r.ID).Msg("error sending message")
	}
}

func (r *Room) sendError(conn *websocket.Conn, err error) {
	r.send(conn, Message{Type: TypeError, Content: ErrorContent{Message: err.Error()}})
}

// HandleWebSocket upgrades the request and serves the room named by the
// room query parameter, creating it when it does not exist yet.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	roomID := c.Query("room")
	if roomID == "" {
		roomID = "default"
	}
	room := h.roomOrCreate(roomID)

	if _, err := room.join(conn); err != nil {
		room.sendError(conn, err)
		return
	}
	defer func() {
		if room.leave(conn) == 0 {
			h.removeIfEmpty(room)
		}
	}()

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("room", room.ID).Msg("error reading message")
			}
			return
		}

		switch msg.Type {
		case TypeSelect:
			var sel SelectContent
			if err := json.Unmarshal(msg.Content, &sel); err != nil {
				room.sendError(conn, errors.Wrap(err, "bad select"))
				continue
			}
			if err := room.handleSelect(conn, sel); err != nil {
				room.sendError(conn, err)
			}
		case TypeNewGame:
			room.newGame()
		case TypeGetState:
			room.sendState(conn)
		default:
			room.sendError(conn, errors.Errorf("unknown message type %q", msg.Type))
		}
	}
}
