package main

import (
	"fmt"
	"io"

	"ShashkiAI/config"
	"ShashkiAI/game/ai"
	"ShashkiAI/game/controller"
	"ShashkiAI/game/core"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// selfPlay lets the engine play both sides and prints every position to w.
// It returns the winner, or NoSide when maxPlies is reached first.
func selfPlay(w io.Writer, cfg config.Config, lightDepth, darkDepth, maxPlies int) (core.Side, *controller.Game, error) {
	game := controller.New(cfg.Rules)
	searcher := ai.NewSearcher(cfg.Rules, cfg.AI.Evaluator, cfg.AI.Search)
	depths := map[core.Side]int{core.Light: lightDepth, core.Dark: darkDepth}

	fmt.Fprintln(w, game.Board())
	for ply := 1; ply <= maxPlies && game.Winner() == core.NoSide; ply++ {
		side := game.CurrentTurn()
		res, err := searcher.Analyze(game.Board(), depths[side], side, side)
		if err != nil {
			return core.NoSide, game, errors.Wrapf(err, "ply %d", ply)
		}
		if err := game.AIMove(res.Board); err != nil {
			return core.NoSide, game, errors.Wrapf(err, "ply %d", ply)
		}
		log.Debug().Int("ply", ply).Stringer("side", side).Stringer("move", res.Move).Float64("score", res.Score).Int64("nodes", res.Nodes).Msg("self-play move")
		fmt.Fprintf(w, "%d. %v %v\n%v\n", ply, side, res.Move, game.Board())
	}

	switch winner := game.Winner(); winner {
	case core.NoSide:
		fmt.Fprintf(w, "no winner after %d plies\n", len(game.History()))
	default:
		fmt.Fprintf(w, "%v wins after %d plies\n", winner, len(game.History()))
	}
	return game.Winner(), game, nil
}
