package ai

import "ShashkiAI/game/core"

// Evaluator scores a board without look-ahead. Higher is better for the
// side asked about.
type Evaluator struct {
	// KingWeight is the value of a king in regular pieces; must exceed 1.
	KingWeight float64 `json:"king_weight" yaml:"king_weight" toml:"king_weight"`
	// AdvanceWeight rewards regular pieces for each row they have advanced.
	AdvanceWeight float64 `json:"advance_weight" yaml:"advance_weight" toml:"advance_weight"`
}

func DefaultEvaluator() Evaluator {
	return Evaluator{KingWeight: 1.5}
}

func (e Evaluator) Evaluate(b core.Board, side core.Side) float64 {
	opp := side.Opponent()
	score := float64(b.RegularCount(side)-b.RegularCount(opp)) +
		float64(b.KingCount(side)-b.KingCount(opp))*e.KingWeight
	if e.AdvanceWeight != 0 {
		score += float64(advance(b, side)-advance(b, opp)) * e.AdvanceWeight
	}
	return score
}

// advance sums how far each regular piece of side is from its own back rank.
func advance(b core.Board, side core.Side) int {
	home := core.Size - 1 - side.PromotionRow()
	total := 0
	for row := 0; row < core.Size; row++ {
		for col := 0; col < core.Size; col++ {
			p := b.Grid[row][col]
			if p.Side == side && p.Rank == core.Regular {
				total += abs(row - home)
			}
		}
	}
	return total
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
