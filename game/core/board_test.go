package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const openingLayout = `
.d.d.d.d
d.d.d.d.
.d.d.d.d
........
........
l.l.l.l.
.l.l.l.l
l.l.l.l.
`

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()
	require.Equal(t, 12, b.PieceCount(Light))
	require.Equal(t, 12, b.PieceCount(Dark))
	require.Equal(t, 0, b.KingCount(Light))
	require.Equal(t, 12, b.RegularCount(Dark))
	require.NoError(t, b.Validate())
	require.Equal(t, MustParseBoard(openingLayout), b)
}

func TestApplySimpleStepLeavesInputUntouched(t *testing.T) {
	b := NewBoard()
	before := b

	next, err := b.Apply(Move{From: Position{5, 0}, To: Position{4, 1}})
	require.NoError(t, err)
	require.Equal(t, before, b, "Apply must not modify its input")
	require.True(t, next.At(Position{5, 0}).Empty())
	require.Equal(t, Piece{Side: Light}, next.At(Position{4, 1}))
	require.False(t, next.Equal(b))
}

func TestApplyPromotes(t *testing.T) {
	tests := []struct {
		name  string
		board string
		move  Move
		want  Piece
	}{
		{
			name: "light regular reaches row 0",
			board: `
				........
				..l.....
				........
				........
				........
				........
				........
				........`,
			move: Move{From: Position{1, 2}, To: Position{0, 1}},
			want: Piece{Side: Light, Rank: King},
		},
		{
			name: "dark regular reaches row 7 by capture",
			board: `
				........
				........
				........
				........
				........
				......d.
				.....l..
				........`,
			move: Move{From: Position{5, 6}, To: Position{7, 4}, Captures: []Position{{6, 5}}},
			want: Piece{Side: Dark, Rank: King},
		},
		{
			name: "king stays king",
			board: `
				........
				..L.....
				........
				........
				........
				........
				........
				........`,
			move: Move{From: Position{1, 2}, To: Position{2, 3}},
			want: Piece{Side: Light, Rank: King},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := MustParseBoard(tt.board).Apply(tt.move)
			require.NoError(t, err)
			require.Equal(t, tt.want, next.At(tt.move.To))
			for _, c := range tt.move.Captures {
				require.True(t, next.At(c).Empty(), "captured square %v not cleared", c)
			}
		})
	}
}

func TestApplyRejectsIllegalMoves(t *testing.T) {
	board := MustParseBoard(`
		........
		........
		........
		..d.....
		.l......
		l.l.....
		........
		........`)

	tests := []struct {
		name string
		move Move
	}{
		{"empty origin", Move{From: Position{6, 3}, To: Position{5, 4}}},
		{"occupied destination", Move{From: Position{5, 0}, To: Position{4, 1}}},
		{"off board", Move{From: Position{4, 1}, To: Position{3, -1}}},
		{"light square", Move{From: Position{4, 1}, To: Position{3, 1}}},
		{"two squares without capture", Move{From: Position{4, 1}, To: Position{2, 3}}},
		{"regular steps backward", Move{From: Position{5, 2}, To: Position{6, 3}}},
		{"capture over empty square", Move{From: Position{4, 1}, To: Position{2, 3}, Captures: []Position{{3, 0}}}},
		{"capture over own piece", Move{From: Position{5, 2}, To: Position{3, 0}, Captures: []Position{{4, 1}}}},
		{"chain ends elsewhere", Move{From: Position{4, 1}, To: Position{1, 4}, Captures: []Position{{3, 2}}}},
		{"capture not adjacent", Move{From: Position{5, 0}, To: Position{2, 3}, Captures: []Position{{3, 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := board
			_, err := board.Apply(tt.move)
			require.ErrorIs(t, err, ErrInvalidMove)
			require.Equal(t, before, board)
		})
	}

	next, err := board.Apply(Move{From: Position{4, 1}, To: Position{2, 3}, Captures: []Position{{3, 2}}})
	require.NoError(t, err)
	require.Equal(t, 0, next.PieceCount(Dark))
}

func TestApplyForwardOnlyCaptureVariant(t *testing.T) {
	board := MustParseBoard(`
		........
		........
		........
		........
		...l....
		..d.....
		........
		........`)
	backward := Move{From: Position{4, 3}, To: Position{6, 1}, Captures: []Position{{5, 2}}}

	_, err := Standard.Apply(board, backward)
	require.NoError(t, err)

	_, err = Rules{ForcedCapture: true}.Apply(board, backward)
	require.ErrorIs(t, err, ErrInvalidMove)
}

func TestParseBoardErrors(t *testing.T) {
	_, err := ParseBoard("d.......\n")
	require.Error(t, err)

	_, err = ParseBoard(`
		d.......
		........
		........
		........
		........
		........
		........
		........`)
	require.ErrorContains(t, err, "light square")

	_, err = ParseBoard(`
		.x......
		........
		........
		........
		........
		........
		........
		........`)
	require.ErrorContains(t, err, "unknown symbol")
}

func TestBoardJSON(t *testing.T) {
	data, err := json.Marshal(NewBoard())
	require.NoError(t, err)

	var rows [][]*struct {
		Side string `json:"side"`
		Rank string `json:"rank"`
	}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, Size)
	require.Nil(t, rows[0][0])
	require.Equal(t, "dark", rows[0][1].Side)
	require.Equal(t, "regular", rows[0][1].Rank)
	require.Equal(t, "light", rows[7][0].Side)

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, NewBoard(), decoded)
}
