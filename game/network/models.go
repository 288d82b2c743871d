package network

import (
	"encoding/json"

	"ShashkiAI/game/controller"
	"ShashkiAI/game/core"
)

// Message types exchanged over the room WebSocket.
const (
	TypeSelect   = "select"
	TypeNewGame  = "new_game"
	TypeGetState = "get_state"
	TypeState    = "state"
	TypeError    = "error"
)

type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content,omitempty"`
}

// inbound is a client message whose content is decoded once the type is known.
type inbound struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type SelectContent struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type ErrorContent struct {
	Message string `json:"message"`
}

// GameState is what every client of a room sees after each change.
type GameState struct {
	controller.Snapshot
	Room     string    `json:"room"`
	YourSide core.Side `json:"yourSide"`
	AISide   core.Side `json:"aiSide"`
	Players  int       `json:"players"`
}

// RoomRequest is the optional body of POST /api/rooms. AI names the side
// the computer plays ("light", "dark" or "none"); empty uses the default.
type RoomRequest struct {
	AI    string `json:"ai"`
	Depth int    `json:"depth"`
}

type RoomResponse struct {
	ID    string    `json:"id"`
	State GameState `json:"state"`
}
