package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const Size = 8

// ErrInvalidMove is returned when a move violates adjacency, occupancy or
// capture-chain legality.
var ErrInvalidMove = errors.New("invalid move")

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Playable reports whether p is on the board and on a dark square.
func (p Position) Playable() bool {
	return p.Valid() && (p.Row+p.Col)%2 != 0
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type Move struct {
	From     Position   `json:"from"`
	To       Position   `json:"to"`
	Captures []Position `json:"captures,omitempty"`
}

func (m Move) IsCapture() bool {
	return len(m.Captures) > 0
}

func (m Move) String() string {
	if !m.IsCapture() {
		return fmt.Sprintf("%v-%v", m.From, m.To)
	}
	parts := make([]string, len(m.Captures))
	for i, c := range m.Captures {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%v-%v x%s", m.From, m.To, strings.Join(parts, ""))
}

// Board is a value type: copies are independent and == compares contents.
type Board struct {
	Grid [Size][Size]Piece
}

// NewBoard returns the standard starting layout with Dark on rows 0-2 and
// Light on rows 5-7.
func NewBoard() Board {
	var b Board
	b.initializePieces()
	return b
}

func EmptyBoard() Board {
	return Board{}
}

func (b *Board) initializePieces() {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if (row+col)%2 != 0 {
				if row < 3 {
					b.Grid[row][col] = Piece{Side: Dark}
				} else if row > 4 {
					b.Grid[row][col] = Piece{Side: Light}
				}
			}
		}
	}
}

func (b Board) At(p Position) Piece {
	return b.Grid[p.Row][p.Col]
}

func (b *Board) Set(p Position, piece Piece) {
	b.Grid[p.Row][p.Col] = piece
}

func (b *Board) Remove(p Position) {
	b.Grid[p.Row][p.Col] = Piece{}
}

func (b Board) Equal(other Board) bool {
	return b == other
}

func (b Board) PieceCount(side Side) int {
	return b.count(func(p Piece) bool { return p.Side == side })
}

func (b Board) KingCount(side Side) int {
	return b.count(func(p Piece) bool { return p.Side == side && p.Rank == King })
}

func (b Board) RegularCount(side Side) int {
	return b.count(func(p Piece) bool { return p.Side == side && p.Rank == Regular })
}

func (b Board) count(match func(Piece) bool) int {
	n := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if match(b.Grid[row][col]) {
				n++
			}
		}
	}
	return n
}

// Validate checks that pieces only stand on playable squares.
func (b Board) Validate() error {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := Position{Row: row, Col: col}
			piece := b.At(p)
			if piece.Empty() {
				continue
			}
			if piece.Side != Light && piece.Side != Dark {
				return errors.Errorf("unknown side %d at %v", piece.Side, p)
			}
			if !p.Playable() {
				return errors.Errorf("piece at %v is on a light square", p)
			}
		}
	}
	return nil
}

// Apply applies m under the standard rules.
func (b Board) Apply(m Move) (Board, error) {
	return Standard.Apply(b, m)
}

// Apply returns the board after m. b itself is never modified. Captured
// pieces stay in place until the chain is complete, so a chain can neither
// land on nor jump twice over the same piece.
func (r Rules) Apply(b Board, m Move) (Board, error) {
	if !m.From.Playable() || !m.To.Playable() {
		return b, errors.Wrapf(ErrInvalidMove, "%v: off the playable squares", m)
	}
	piece := b.At(m.From)
	if piece.Empty() {
		return b, errors.Wrapf(ErrInvalidMove, "no piece at %v", m.From)
	}

	next := b
	next.Remove(m.From)
	if !next.At(m.To).Empty() {
		return b, errors.Wrapf(ErrInvalidMove, "destination %v is occupied", m.To)
	}

	if !m.IsCapture() {
		dr, dc := m.To.Row-m.From.Row, m.To.Col-m.From.Col
		if abs(dr) != 1 || abs(dc) != 1 || !r.canStep(piece, dr) {
			return b, errors.Wrapf(ErrInvalidMove, "%v is not a step for a %v %v piece", m, piece.Side, piece.Rank)
		}
	} else {
		cur := m.From
		for i, c := range m.Captures {
			dr, dc := c.Row-cur.Row, c.Col-cur.Col
			if abs(dr) != 1 || abs(dc) != 1 {
				return b, errors.Wrapf(ErrInvalidMove, "capture %v is not adjacent to %v", c, cur)
			}
			if !r.canCapture(piece, dr) {
				return b, errors.Wrapf(ErrInvalidMove, "capture %v goes backward for a regular piece", c)
			}
			if next.At(c).Side != piece.Side.Opponent() {
				return b, errors.Wrapf(ErrInvalidMove, "no opponent piece at %v", c)
			}
			for _, prev := range m.Captures[:i] {
				if prev == c {
					return b, errors.Wrapf(ErrInvalidMove, "%v captured twice", c)
				}
			}
			landing := Position{Row: c.Row + dr, Col: c.Col + dc}
			if !landing.Valid() || !next.At(landing).Empty() {
				return b, errors.Wrapf(ErrInvalidMove, "no empty landing square behind %v", c)
			}
			cur = landing
		}
		if cur != m.To {
			return b, errors.Wrapf(ErrInvalidMove, "capture chain ends at %v, not %v", cur, m.To)
		}
		for _, c := range m.Captures {
			next.Remove(c)
		}
	}

	if piece.Rank == Regular && m.To.Row == piece.Side.PromotionRow() {
		piece.Rank = King
	}
	next.Set(m.To, piece)
	return next, nil
}

// String renders the board as eight lines, row 0 first: l/d are regular
// Light/Dark pieces, L/D kings and '.' an empty square.
func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sb.WriteByte(b.Grid[row][col].symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseBoard reads the format produced by Board.String. Blank lines and
// spaces are ignored.
func ParseBoard(s string) (Board, error) {
	var b Board
	row := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		if line == "" {
			continue
		}
		if row >= Size {
			return b, errors.Errorf("too many rows")
		}
		if len(line) != Size {
			return b, errors.Errorf("row %d has %d squares", row, len(line))
		}
		for col := 0; col < Size; col++ {
			piece, ok := pieceFromSymbol(line[col])
			if !ok {
				return b, errors.Errorf("unknown symbol %q at (%d,%d)", line[col], row, col)
			}
			b.Grid[row][col] = piece
		}
		row++
	}
	if row != Size {
		return b, errors.Errorf("expected %d rows, got %d", Size, row)
	}
	if err := b.Validate(); err != nil {
		return b, err
	}
	return b, nil
}

// MustParseBoard is ParseBoard for fixtures known to be valid.
func MustParseBoard(s string) Board {
	b, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MarshalJSON encodes the grid as rows of nullable pieces.
func (b Board) MarshalJSON() ([]byte, error) {
	var rows [Size][Size]*Piece
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if piece := b.Grid[row][col]; !piece.Empty() {
				rows[row][col] = &piece
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [Size][Size]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	var next Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if rows[row][col] != nil {
				next.Grid[row][col] = *rows[row][col]
			}
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*b = next
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
