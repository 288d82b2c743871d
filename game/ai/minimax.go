package ai

import (
	"context"
	"math"
	"sync/atomic"

	"ShashkiAI/game/core"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoLegalMove means the search was asked to move for a side that
	// cannot move. Callers should check for a winner first.
	ErrNoLegalMove  = errors.New("no legal move")
	ErrInvalidDepth = errors.New("invalid search depth")
)

type Algorithm string

const (
	Minimax   Algorithm = "minimax"
	AlphaBeta Algorithm = "alphabeta"
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Minimax, AlphaBeta:
		return Algorithm(s), nil
	}
	return "", errors.Errorf("unknown search algorithm %q", s)
}

type Options struct {
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	// Workers bounds how many root successors are searched at once.
	Workers int `json:"workers" yaml:"workers" toml:"workers"`
	// Cache enables the transposition cache of the plain minimax search.
	Cache      bool `json:"cache" yaml:"cache" toml:"cache"`
	CacheLimit int  `json:"cache_limit" yaml:"cache_limit" toml:"cache_limit"`
}

func DefaultOptions() Options {
	return Options{
		Algorithm:  AlphaBeta,
		Workers:    1,
		CacheLimit: 1 << 20,
	}
}

// Result is the outcome of a root search. Score is from the maximizer's
// point of view.
type Result struct {
	Score     float64
	Board     core.Board
	Move      core.Move
	Nodes     int64
	CacheSize int
}

type Searcher struct {
	rules core.Rules
	eval  Evaluator
	opts  Options
}

func NewSearcher(rules core.Rules, eval Evaluator, opts Options) *Searcher {
	if opts.Algorithm == "" {
		opts.Algorithm = AlphaBeta
	}
	return &Searcher{rules: rules, eval: eval, opts: opts}
}

// Search looks depth plies ahead with side to move and maximizing, and
// returns the best successor board with its score.
func (s *Searcher) Search(b core.Board, depth int, side core.Side) (float64, core.Board, error) {
	res, err := s.Analyze(b, depth, side, side)
	if err != nil {
		return 0, b, err
	}
	return res.Score, res.Board, nil
}

// Analyze searches with toMove to play and scores from maximizer's side.
// When toMove is not the maximizer the root keeps the minimum instead.
// Among equal scores the first successor in move generation order wins.
func (s *Searcher) Analyze(b core.Board, depth int, toMove, maximizer core.Side) (Result, error) {
	return s.AnalyzeContext(context.Background(), b, depth, toMove, maximizer)
}

// AnalyzeContext is Analyze that stops between root successors once ctx is
// done and returns its error.
func (s *Searcher) AnalyzeContext(ctx context.Context, b core.Board, depth int, toMove, maximizer core.Side) (Result, error) {
	if depth < 0 {
		return Result{}, errors.Wrapf(ErrInvalidDepth, "depth %d", depth)
	}
	if maximizer.Opponent() == core.NoSide || toMove.Opponent() == core.NoSide {
		return Result{}, errors.Errorf("search: unknown side (to move %v, maximizer %v)", toMove, maximizer)
	}

	st := &search{rules: s.rules, eval: s.eval, maximizer: maximizer}
	if s.opts.Cache && s.opts.Algorithm == Minimax {
		st.cache = newCache(s.opts.CacheLimit)
	}
	if depth == 0 {
		return Result{Score: s.eval.Evaluate(b, maximizer), Board: b, Nodes: 1}, nil
	}

	moves := s.rules.LegalMoves(b, toMove)
	if len(moves) == 0 {
		return Result{}, errors.Wrapf(ErrNoLegalMove, "%v to move", toMove)
	}
	children := make([]core.Board, len(moves))
	for i, m := range moves {
		child, err := s.rules.Apply(b, m)
		if err != nil {
			return Result{}, errors.Wrapf(err, "generated move %v", m)
		}
		children[i] = child
	}

	maximizing := toMove == maximizer
	var best int
	var err error
	if s.opts.Workers > 1 && len(children) > 1 {
		best, err = s.searchParallel(ctx, st, children, depth, toMove.Opponent(), maximizing)
	} else {
		best, err = s.searchSequential(ctx, st, children, depth, toMove.Opponent(), maximizing)
	}
	if err != nil {
		return Result{}, errors.Wrap(err, "search interrupted")
	}

	res := Result{
		Score: st.scores[best],
		Board: children[best],
		Move:  moves[best],
		Nodes: st.nodes.Load() + 1,
	}
	if st.cache != nil {
		res.CacheSize = st.cache.size()
	}
	return res, nil
}

func (s *Searcher) searchSequential(ctx context.Context, st *search, children []core.Board, depth int, next core.Side, maximizing bool) (int, error) {
	st.scores = make([]float64, len(children))
	best := 0
	bestScore := worst(maximizing)
	for i, child := range children {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		var v float64
		if s.opts.Algorithm == AlphaBeta {
			if maximizing {
				v = st.alphaBeta(child, depth-1, next, bestScore, math.Inf(1))
			} else {
				v = st.alphaBeta(child, depth-1, next, math.Inf(-1), bestScore)
			}
		} else {
			v = st.minimax(child, depth-1, next)
		}
		st.scores[i] = v
		if better(v, bestScore, maximizing) {
			best, bestScore = i, v
		}
	}
	return best, nil
}

// searchParallel scores every root successor exactly, then picks the best
// in generation order so the result matches the sequential search.
func (s *Searcher) searchParallel(ctx context.Context, st *search, children []core.Board, depth int, next core.Side, maximizing bool) (int, error) {
	st.scores = make([]float64, len(children))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.opts.Algorithm == AlphaBeta {
				st.scores[i] = st.alphaBeta(child, depth-1, next, math.Inf(-1), math.Inf(1))
			} else {
				st.scores[i] = st.minimax(child, depth-1, next)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	best := 0
	for i := 1; i < len(st.scores); i++ {
		if better(st.scores[i], st.scores[best], maximizing) {
			best = i
		}
	}
	return best, nil
}

type search struct {
	rules     core.Rules
	eval      Evaluator
	maximizer core.Side
	cache     *cache
	nodes     atomic.Int64
	scores    []float64
}

func (st *search) minimax(b core.Board, depth int, toMove core.Side) float64 {
	st.nodes.Add(1)
	if depth == 0 {
		return st.eval.Evaluate(b, st.maximizer)
	}
	key := cacheKey{board: b, toMove: toMove, depth: depth}
	if st.cache != nil {
		if v, ok := st.cache.probe(key); ok {
			return v
		}
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
		v := st.minimax(child, depth-1, toMove.Opponent())
		if better(v, best, maximizing) {
			best = v
		}
	}
	if st.cache != nil {
		st.cache.store(key, best)
	}
	return best
}

func worst(maximizing bool) float64 {
	if maximizing {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func better(v, best float64, maximizing bool) bool {
	if maximizing {
		return v > best
	}
	return v < best
}
