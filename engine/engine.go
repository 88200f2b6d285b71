// Package engine is the peripheral shell: it wires a game.Position, a
// game.Adapter, an optional evaluator.Evaluator, and an mcts.Driver into a
// single Search type with the three operations a caller actually needs —
// construct from a FEN, search for a best move, and advance the tree by a
// played move — without exposing the generic mcts package directly.
package engine

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/kavehparsa/chesszero/evaluator"
	"github.com/kavehparsa/chesszero/game"
	"github.com/kavehparsa/chesszero/mcts"
)

// Search is a single, resumable MCTS search over a chess game, reusing its
// tree across successive positions via Advance.
type Search struct {
	adapter *game.Adapter
	driver  *mcts.Driver[game.Position]
	root    *mcts.SearchNode[game.Position]
}

// Option configures New beyond its required arguments.
type Option func(*options)

type options struct {
	conf      mcts.Config
	evaluator *evaluator.Evaluator
	seed      int64
}

// WithConfig overrides the default iteration/time/cpuct budget.
func WithConfig(conf mcts.Config) Option {
	return func(o *options) { o.conf = conf }
}

// WithEvaluator supplies a learned policy/value model; without it, every
// leaf is evaluated by random rollout.
func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(o *options) { o.evaluator = e }
}

// WithSeed fixes the rollout PRNG's seed, for reproducible searches (spec
// §8 scenario S1).
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// New constructs a Search rooted at the position described by fen. An
// invalid FEN or Config is a ConfigurationError.
func New(fen string, opts ...Option) (*Search, error) {
	o := &options{conf: mcts.DefaultConfig(), seed: 1}
	for _, opt := range opts {
		opt(o)
	}

	pos, err := game.FromFEN(fen)
	if err != nil {
		return nil, mcts.NewConfigurationError(errors.Wrap(err, "engine: parsing FEN"))
	}

	adapter := game.NewAdapter(rand.New(rand.NewSource(o.seed)))
	var ev mcts.Evaluator[game.Position]
	if o.evaluator != nil {
		ev = o.evaluator
	}
	driver, err := mcts.NewDriver[game.Position](adapter, ev, o.conf)
	if err != nil {
		return nil, err
	}

	return &Search{
		adapter: adapter,
		driver:  driver,
		root:    mcts.NewRoot(pos),
	}, nil
}

// BestMove runs the search's configured budget against the current root and
// returns the best move found, in UCI form. ErrNoLegalMoves propagates
// unchanged if the root has no legal moves (spec §8 scenario S3).
func (s *Search) BestMove() (string, mcts.Stats, error) {
	stats := s.driver.Search(s.root)
	best, err := s.driver.BestMove(s.root)
	if err != nil {
		return "", stats, err
	}
	return best.UCI(), stats, nil
}

// Advance plays uci against the current root, reusing whatever subtree was
// already explored for it (spec §5) — or, if uci was never expanded as a
// child during search, building a fresh root from the resulting position
// instead (UnknownMoveInAdvance). uci must be one of the root's legal
// moves; anything else is a plain error, since that is a caller mistake
// rather than a tree-reuse miss.
func (s *Search) Advance(uci string) error {
	legal := s.root.State()
	for _, m := range s.adapter.LegalMoves(legal) {
		if m.UCI() == uci {
			s.root = s.root.AdvanceTree(s.adapter, m)
			return nil
		}
	}
	return errors.Errorf("engine: %q is not a legal move from the current position", uci)
}

// FEN returns the current root position's FEN string.
func (s *Search) FEN() string {
	return s.root.State().FEN()
}
