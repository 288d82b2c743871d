package core

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type Side int

const (
	NoSide Side = iota
	Light
	Dark
)

type Rank int

const (
	Regular Rank = iota
	King
)

// Piece is the content of one cell. The zero value is an empty cell.
type Piece struct {
	Side Side `json:"side"`
	Rank Rank `json:"rank"`
}

func (p Piece) Empty() bool {
	return p.Side == NoSide
}

func (p Piece) IsKing() bool {
	return p.Side != NoSide && p.Rank == King
}

// Opponent returns the other side. NoSide has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case Light:
		return Dark
	case Dark:
		return Light
	}
	return NoSide
}

// Forward is the row delta of a regular piece's step.
// Light starts at the bottom and moves up.
func (s Side) Forward() int {
	if s == Light {
		return -1
	}
	return 1
}

// PromotionRow is the opponent's back rank.
func (s Side) PromotionRow() int {
	if s == Light {
		return 0
	}
	return Size - 1
}

func (s Side) String() string {
	switch s {
	case Light:
		return "light"
	case Dark:
		return "dark"
	}
	return "none"
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	case "none", "":
		return NoSide, nil
	}
	return NoSide, errors.Errorf("unknown side %q", s)
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	side, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = side
	return nil
}

func (r Rank) String() string {
	if r == King {
		return "king"
	}
	return "regular"
}

func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "king":
		*r = King
	case "regular":
		*r = Regular
	default:
		return errors.Errorf("unknown rank %q", str)
	}
	return nil
}

// symbol is the one-letter text form used by Board.String.
func (p Piece) symbol() byte {
	switch {
	case p.Side == Light && p.Rank == King:
		return 'L'
	case p.Side == Light:
		return 'l'
	case p.Side == Dark && p.Rank == King:
		return 'D'
	case p.Side == Dark:
		return 'd'
	}
	return '.'
}

func pieceFromSymbol(c byte) (Piece, bool) {
	switch c {
	case 'l':
		return Piece{Side: Light, Rank: Regular}, true
	case 'L':
		return Piece{Side: Light, Rank: King}, true
	case 'd':
		return Piece{Side: Dark, Rank: Regular}, true
	case 'D':
		return Piece{Side: Dark, Rank: King}, true
	case '.':
		return Piece{}, true
	}
	return Piece{}, false
}
