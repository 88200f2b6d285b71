package mcts

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ErrNoLegalMoves is returned by BestMove when the root has no children —
// either the root itself is terminal, or the search budget ran out before a
// single iteration completed (spec §8 scenario S3, stalemate).
var ErrNoLegalMoves = errors.New("mcts: no legal moves from root")

// Config holds the driver's tunables. None of these are invariants — they
// are the numeric defaults spec §6 calls out.
type Config struct {
	MaxIterations int
	MaxSeconds    float64
	CPUCT         float32
}

// DefaultConfig returns spec §6's numeric defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 15000,
		MaxSeconds:    5,
		CPUCT:         2.0,
	}
}

// Validate reports a ConfigurationError-shaped error for a non-positive
// budget or exploration constant.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return errors.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.MaxSeconds <= 0 {
		return errors.Errorf("max seconds must be positive, got %v", c.MaxSeconds)
	}
	if c.CPUCT <= 0 {
		return errors.Errorf("cpuct must be positive, got %v", c.CPUCT)
	}
	return nil
}

// Driver owns no tree state itself — it is handed a root on every Search
// call and operates on it — so the same Driver can run searches against
// successive roots produced by AdvanceTree without being reconstructed.
type Driver[P any] struct {
	adapter   GameAdapter[P]
	evaluator Evaluator[P] // nil selects pure-rollout mode
	conf      Config
}

// NewDriver validates conf and constructs a Driver. evaluator may be nil, in
// which case every leaf is evaluated via adapter.Rollout.
func NewDriver[P any](adapter GameAdapter[P], evaluator Evaluator[P], conf Config) (*Driver[P], error) {
	if err := conf.Validate(); err != nil {
		return nil, NewConfigurationError(err)
	}
	return &Driver[P]{adapter: adapter, evaluator: evaluator, conf: conf}, nil
}

// Stats is the per-search iteration accounting the peripheral shell can log;
// it carries no semantics the core relies on.
type Stats struct {
	Iterations int
	Elapsed    time.Duration
}

// Search runs the select/evaluate/expand/backpropagate loop against root
// until either MaxIterations iterations have run or MaxSeconds have
// elapsed, whichever comes first. Both bounds are checked only between
// iterations (spec §4.4: "soft... checked between iterations, not
// preempted mid-iteration").
func (d *Driver[P]) Search(root *SearchNode[P]) Stats {
	start := time.Now()
	budget := time.Duration(d.conf.MaxSeconds * float64(time.Second))
	iterations := 0
	for iterations < d.conf.MaxIterations && time.Since(start) < budget {
		d.iterate(root)
		iterations++
	}
	return Stats{Iterations: iterations, Elapsed: time.Since(start)}
}

// iterate runs exactly one select/evaluate/expand/backpropagate pass.
func (d *Driver[P]) iterate(root *SearchNode[P]) {
	cur := root
	for cur.IsEvaluated() && cur.IsFullyExpanded(d.adapter) && !cur.IsTerminal(d.adapter) {
		cur = cur.SelectBestChild(d.adapter, d.conf.CPUCT)
	}

	var value float32
	if cur.IsEvaluated() {
		// A terminal node is absorbing (repeated evaluation returns the
		// same value); a partially-expanded evaluated node is being
		// revisited while its untried queue still drains — both cases
		// reuse the cached value rather than re-evaluating.
		value = cur.Evaluation().Value
	} else {
		value = cur.Evaluate(d.adapter, d.evaluator)
	}

	if !cur.IsTerminal(d.adapter) && cur.IsEvaluated() && !cur.IsFullyExpanded(d.adapter) {
		cur.Expand(d.adapter)
	}

	cur.Backpropagate(value, 1)
}

// BestMove picks the root child with the highest visit count, breaking ties
// first by Q (from the root's side-to-move perspective) and then by first
// occurrence in Children() — a stable sort over (visits desc, Q desc)
// implements exactly that tie-break order.
func (d *Driver[P]) BestMove(root *SearchNode[P]) (Move, error) {
	children := root.Children()
	if len(children) == 0 {
		return nil, ErrNoLegalMoves
	}
	selector := d.adapter.SideToMove(root.State())

	ranked := append([]*SearchNode[P](nil), children...)
	slices.SortStableFunc(ranked, func(a, b *SearchNode[P]) int {
		if a.Visits() != b.Visits() {
			if a.Visits() > b.Visits() {
				return -1
			}
			return 1
		}
		qa, qb := qFromPerspective(a, selector), qFromPerspective(b, selector)
		switch {
		case qa > qb:
			return -1
		case qa < qb:
			return 1
		default:
			return 0
		}
	})
	return ranked[0].IncomingMove(), nil
}

func qFromPerspective[P any](n *SearchNode[P], selector Side) float32 {
	if n.Visits() == 0 {
		return 0.5
	}
	winrate := n.Score() / float32(n.Visits())
	if selector == SideA {
		return winrate
	}
	return 1 - winrate
}
