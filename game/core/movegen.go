package core

// Rules selects the rule variant used by move generation and Apply.
type Rules struct {
	// ForcedCapture excludes simple moves whenever a capture is available.
	ForcedCapture bool `json:"forced_capture" yaml:"forced_capture" toml:"forced_capture"`
	// BackwardCaptures lets regular pieces capture toward their own back rank.
	BackwardCaptures bool `json:"backward_captures" yaml:"backward_captures" toml:"backward_captures"`
}

// Standard is forced capture with regular pieces allowed to capture backward.
var Standard = Rules{ForcedCapture: true, BackwardCaptures: true}

// directions in enumeration order: up-left, up-right, down-left, down-right.
var directions = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// LegalMoves lists the legal moves of side under the standard rules.
func LegalMoves(b Board, side Side) []Move {
	return Standard.LegalMoves(b, side)
}

// LegalMoves returns every legal move of side, pieces in row-major order and
// each piece's moves in direction order. Capture moves always carry a full
// chain: the generator keeps jumping while a continuation exists.
func (r Rules) LegalMoves(b Board, side Side) []Move {
	if side == NoSide {
		return nil
	}
	var steps, captures, all []Move
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			from := Position{Row: row, Col: col}
			piece := b.At(from)
			if piece.Side != side {
				continue
			}
			chains := r.captureChains(b, from, piece)
			captures = append(captures, chains...)
			if r.ForcedCapture && len(captures) > 0 {
				continue
			}
			pieceSteps := r.steps(b, from, piece)
			steps = append(steps, pieceSteps...)
			all = append(append(all, chains...), pieceSteps...)
		}
	}
	switch {
	case !r.ForcedCapture:
		return all
	case len(captures) > 0:
		return captures
	}
	return steps
}

// HasLegalMove reports whether side can move at all.
func (r Rules) HasLegalMove(b Board, side Side) bool {
	if side == NoSide {
		return false
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			from := Position{Row: row, Col: col}
			piece := b.At(from)
			if piece.Side != side {
				continue
			}
			if len(r.steps(b, from, piece)) > 0 || r.canJump(b, from, piece) {
				return true
			}
		}
	}
	return false
}

// MovesFrom returns the legal moves of the piece at from. The forced-capture
// rule is applied board-wide, so a piece with only simple moves has none
// while another piece can capture.
func (r Rules) MovesFrom(b Board, from Position) []Move {
	if !from.Valid() {
		return nil
	}
	piece := b.At(from)
	if piece.Empty() {
		return nil
	}
	var moves []Move
	for _, m := range r.LegalMoves(b, piece.Side) {
		if m.From == from {
			moves = append(moves, m)
		}
	}
	return moves
}

func (r Rules) canStep(piece Piece, dr int) bool {
	return piece.Rank == King || dr == piece.Side.Forward()
}

func (r Rules) canCapture(piece Piece, dr int) bool {
	return piece.Rank == King || r.BackwardCaptures || dr == piece.Side.Forward()
}

func (r Rules) steps(b Board, from Position, piece Piece) []Move {
	var moves []Move
	for _, d := range directions {
		if !r.canStep(piece, d[0]) {
			continue
		}
		to := Position{Row: from.Row + d[0], Col: from.Col + d[1]}
		if to.Valid() && b.At(to).Empty() {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (r Rules) canJump(b Board, from Position, piece Piece) bool {
	for _, d := range directions {
		if r.jumpTarget(b, from, piece, d, nil) != nil {
			return true
		}
	}
	return false
}

// jumpTarget returns the landing square of a jump from cur in direction d,
// or nil. Within a chain b must have the moving piece lifted off its origin.
func (r Rules) jumpTarget(b Board, cur Position, piece Piece, d [2]int, taken []Position) *Position {
	if !r.canCapture(piece, d[0]) {
		return nil
	}
	over := Position{Row: cur.Row + d[0], Col: cur.Col + d[1]}
	landing := Position{Row: cur.Row + 2*d[0], Col: cur.Col + 2*d[1]}
	if !landing.Valid() {
		return nil
	}
	if b.At(over).Side != piece.Side.Opponent() || !b.At(landing).Empty() {
		return nil
	}
	for _, t := range taken {
		if t == over {
			return nil
		}
	}
	return &landing
}

// captureChains enumerates every maximal jump chain of the piece at from.
func (r Rules) captureChains(b Board, from Position, piece Piece) []Move {
	lifted := b
	lifted.Remove(from)
	var moves []Move
	var walk func(cur Position, taken []Position)
	walk = func(cur Position, taken []Position) {
		extended := false
		for _, d := range directions {
			landing := r.jumpTarget(lifted, cur, piece, d, taken)
			if landing == nil {
				continue
			}
			extended = true
			over := Position{Row: cur.Row + d[0], Col: cur.Col + d[1]}
			next := make([]Position, len(taken), len(taken)+1)
			copy(next, taken)
			walk(*landing, append(next, over))
		}
		if !extended && len(taken) > 0 {
			moves = append(moves, Move{From: from, To: cur, Captures: taken})
		}
	}
	walk(from, nil)
	return moves
}
