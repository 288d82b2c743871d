package ai

import "ShashkiAI/game/core"

// alphaBeta is fail-soft: a value at or below alpha (at or above beta) is
// only a bound, anything strictly inside the window is exact. The root keeps
// a successor only on strict improvement, so it never picks a bound and the
// chosen move equals the plain minimax choice.
func (st *search) alphaBeta(b core.Board, depth int, toMove core.Side, alpha, beta float64) float64 {
	st.nodes.Add(1)
	if depth == 0 {
		return st.eval.Evaluate(b, st.maximizer)
	}
	moves := st.rules.LegalMoves(b, toMove)
	if len(moves) == 0 {
		return st.eval.Evaluate(b, st.maximizer)
	}

	maximizing := toMove == st.maximizer
	best := worst(maximizing)
	for _, m := range moves {
		child, err := st.rules.Apply(b, m)
		if err != nil {
			continue
		}
		v := st.alphaBeta(child, depth-1, toMove.Opponent(), alpha, beta)
		if maximizing {
			if v > best {
				best = v
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if v < best {
				best = v
			}
			if best < beta {
				beta = best
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
