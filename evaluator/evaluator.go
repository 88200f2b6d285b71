// Package evaluator wraps a learned policy/value model behind the
// mcts.Evaluator[game.Position] contract: encode a position, run the
// model's forward pass, mask and renormalize the policy down to the
// position's legal moves, and convert the scalar value into SideA's
// global frame.
package evaluator

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/kavehparsa/chesszero/game"
	"github.com/kavehparsa/chesszero/mcts"
)

// Model is a loaded policy/value network's forward pass: input is the
// (12,8,8) board encoding flattened to length game.Planes*64, policy is the
// raw length-4096 logit vector (one entry per dense from*64+to index, before
// any legal-move masking), and value is already in SideA's global frame, per
// SPEC open question #1 — this package performs no side-to-move flip on it.
//
// This mirrors the teacher's Inferer interface (Infer(input) (policy,
// value, err)) almost exactly; the rename to Model/Forward is so a
// call-site reads "the network's forward pass" rather than a generic verb.
type Model interface {
	Forward(input []float32) (policy []float32, value float32, err error)
}

// Evaluator adapts a Model to mcts.Evaluator[game.Position].
type Evaluator struct {
	model Model
}

// New constructs an Evaluator wrapping model. model must not be nil.
func New(model Model) (*Evaluator, error) {
	if model == nil {
		return nil, mcts.NewConfigurationError(errors.New("evaluator: model must not be nil"))
	}
	return &Evaluator{model: model}, nil
}

// Evaluate implements mcts.Evaluator[game.Position]. A Model error is
// returned to the caller wrapped with context, and the caller recovers it locally
// (EvaluationError) by falling back to rollout — this package does not log
// or recover it itself, since it has no node context to log against.
func (e *Evaluator) Evaluate(pos game.Position) (mcts.NodeEvaluation, error) {
	input := game.Encode(pos)
	rawPolicy, value, err := e.model.Forward(input)
	if err != nil {
		return mcts.NodeEvaluation{}, errors.Wrap(err, "evaluator: model forward pass failed")
	}
	if len(rawPolicy) != game.PolicyDim {
		return mcts.NodeEvaluation{}, errors.Errorf(
			"evaluator: model returned policy of length %d, want %d", len(rawPolicy), game.PolicyDim)
	}

	priors := maskAndNormalize(rawPolicy, pos.LegalMoves())
	return mcts.NodeEvaluation{Priors: priors, Value: value}, nil
}

// maskAndNormalize masks rawPolicy down to legal's dense indices,
// exponentiates each surviving logit, and renormalizes the resulting mass
// to sum to 1 (spec §4.2 step 3: softmax over the legal subset, not a
// linear rescaling of the raw logits), splitting a shared (from, to)
// logit's share equally among the distinct promotion moves that index maps
// to (SPEC open question #2).
func maskAndNormalize(rawPolicy []float32, legal []game.Move) map[string]float32 {
	byIndex := make(map[int][]game.Move, len(legal))
	for _, m := range legal {
		idx := m.PolicyIndex()
		byIndex[idx] = append(byIndex[idx], m)
	}

	expByIndex := make(map[int]float64, len(byIndex))
	mass := make([]float64, 0, len(byIndex))
	for idx := range byIndex {
		e := math.Exp(float64(rawPolicy[idx]))
		expByIndex[idx] = e
		mass = append(mass, e)
	}
	total := floats.Sum(mass)
	if total <= 0 {
		// No legal moves, or every legal logit underflowed to zero: fall back
		// to a uniform prior over the legal moves (empty when there are none).
		uniform := make(map[string]float32, len(legal))
		for _, m := range legal {
			uniform[m.UCI()] = 1 / float32(len(legal))
		}
		return uniform
	}

	priors := make(map[string]float32, len(legal))
	for idx, moves := range byIndex {
		share := float32(expByIndex[idx] / total / float64(len(moves)))
		for _, m := range moves {
			priors[m.UCI()] = share
		}
	}
	return priors
}
