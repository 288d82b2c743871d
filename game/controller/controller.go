// Package controller owns the authoritative game: the board, whose turn it
// is, the current selection and the winner. Presentation code only talks to
// a Game; the search receives board values from it and hands one back
// through AIMove.
package controller

import (
	"encoding/json"

	"ShashkiAI/game/core"

	"github.com/pkg/errors"
)

// ErrGameOver is returned by Select and AIMove once a winner is recorded.
// The game does not change after that until Reset.
var ErrGameOver = errors.New("game over")

type State int

const (
	AwaitingSelection State = iota
	PieceSelected
	GameOver
)

func (s State) String() string {
	switch s {
	case PieceSelected:
		return "piece_selected"
	case GameOver:
		return "game_over"
	}
	return "awaiting_selection"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	for _, st := range []State{AwaitingSelection, PieceSelected, GameOver} {
		if st.String() == str {
			*s = st
			return nil
		}
	}
	return errors.Errorf("unknown game state %q", str)
}

type Game struct {
	rules        core.Rules
	board        core.Board
	turn         core.Side
	selected     core.Position
	hasSelection bool
	validMoves   []core.Move
	winner       core.Side
	history      []core.Move
}

// New starts a game from the standard layout with Light to move.
func New(rules core.Rules) *Game {
	g := &Game{rules: rules}
	g.Reset()
	return g
}

// NewFromBoard starts a game from an arbitrary position.
func NewFromBoard(rules core.Rules, board core.Board, turn core.Side) (*Game, error) {
	if turn.Opponent() == core.NoSide {
		return nil, errors.Errorf("invalid side to move %v", turn)
	}
	if err := board.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid board")
	}
	if board.PieceCount(core.Light)+board.PieceCount(core.Dark) == 0 {
		return nil, errors.New("invalid board: no pieces")
	}
	g := &Game{rules: rules, board: board, turn: turn}
	g.winner = g.computeWinner()
	return g, nil
}

func (g *Game) Reset() {
	g.board = core.NewBoard()
	g.turn = core.Light
	g.clearSelection()
	g.winner = core.NoSide
	g.history = nil
}

// Select handles a click on (row, col). With nothing selected, a cell
// holding a piece of the side to move becomes the selection. With a
// selection, a cell ending one of its legal moves plays that move (the
// first in generation order when several chains end there); any other cell
// drops the selection and, if it holds one of the mover's pieces, selects
// that piece instead.
func (g *Game) Select(row, col int) error {
	if g.winner != core.NoSide {
		return errors.Wrapf(ErrGameOver, "%v has won", g.winner)
	}
	pos := core.Position{Row: row, Col: col}
	if g.hasSelection {
		for _, m := range g.validMoves {
			if m.To == pos {
				return g.commit(m)
			}
		}
		g.clearSelection()
	}
	if pos.Valid() && g.board.At(pos).Side == g.turn {
		g.selected = pos
		g.hasSelection = true
		g.validMoves = g.rules.MovesFrom(g.board, pos)
	}
	return nil
}

// AIMove commits board if it is the result of exactly one legal move of the
// side to move. Otherwise the game is left untouched.
func (g *Game) AIMove(board core.Board) error {
	if g.winner != core.NoSide {
		return errors.Wrapf(ErrGameOver, "%v has won", g.winner)
	}
	for _, m := range g.rules.LegalMoves(g.board, g.turn) {
		next, err := g.rules.Apply(g.board, m)
		if err == nil && next == board {
			return g.commit(m)
		}
	}
	return errors.Wrapf(core.ErrInvalidMove, "board is not one legal %v move away", g.turn)
}

func (g *Game) commit(m core.Move) error {
	next, err := g.rules.Apply(g.board, m)
	if err != nil {
		return err
	}
	g.board = next
	g.history = append(g.history, m)
	g.turn = g.turn.Opponent()
	g.clearSelection()
	g.winner = g.computeWinner()
	return nil
}

// computeWinner: a side with no pieces, or unable to move on its turn, loses.
func (g *Game) computeWinner() core.Side {
	switch {
	case g.board.PieceCount(core.Light) == 0:
		return core.Dark
	case g.board.PieceCount(core.Dark) == 0:
		return core.Light
	case !g.rules.HasLegalMove(g.board, g.turn):
		return g.turn.Opponent()
	}
	return core.NoSide
}

func (g *Game) clearSelection() {
	g.selected = core.Position{}
	g.hasSelection = false
	g.validMoves = nil
}

// Board returns a copy of the current board.
func (g *Game) Board() core.Board {
	return g.board
}

func (g *Game) CurrentTurn() core.Side {
	return g.turn
}

// Winner returns core.NoSide while the game is running.
func (g *Game) Winner() core.Side {
	return g.winner
}

func (g *Game) State() State {
	switch {
	case g.winner != core.NoSide:
		return GameOver
	case g.hasSelection:
		return PieceSelected
	}
	return AwaitingSelection
}

func (g *Game) Selected() (core.Position, bool) {
	return g.selected, g.hasSelection
}

// ValidMoves lists the legal moves of the selected piece.
func (g *Game) ValidMoves() []core.Move {
	return append([]core.Move(nil), g.validMoves...)
}

func (g *Game) PiecesLeft(side core.Side) int {
	return g.board.PieceCount(side)
}

func (g *Game) KingsLeft(side core.Side) int {
	return g.board.KingCount(side)
}

func (g *Game) History() []core.Move {
	return append([]core.Move(nil), g.history...)
}

func (g *Game) Rules() core.Rules {
	return g.rules
}

// Snapshot is a read-only view of the game for clients.
type Snapshot struct {
	Board      core.Board     `json:"board"`
	Turn       core.Side      `json:"turn"`
	Winner     core.Side      `json:"winner"`
	State      State          `json:"state"`
	Selected   *core.Position `json:"selected,omitempty"`
	ValidMoves []core.Move    `json:"validMoves,omitempty"`
	Pieces     map[string]int `json:"pieces"`
	Kings      map[string]int `json:"kings"`
	MoveCount  int            `json:"moveCount"`
	LastMove   *core.Move     `json:"lastMove,omitempty"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Board:      g.board,
		Turn:       g.turn,
		Winner:     g.winner,
		State:      g.State(),
		ValidMoves: g.ValidMoves(),
		Pieces: map[string]int{
			core.Light.String(): g.PiecesLeft(core.Light),
			core.Dark.String():  g.PiecesLeft(core.Dark),
		},
		Kings: map[string]int{
			core.Light.String(): g.KingsLeft(core.Light),
			core.Dark.String():  g.KingsLeft(core.Dark),
		},
		MoveCount: len(g.history),
	}
	if pos, ok := g.Selected(); ok {
		s.Selected = &pos
	}
	if n := len(g.history); n > 0 {
		last := g.history[n-1]
		s.LastMove = &last
	}
	return s
}
