package evaluator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavehparsa/chesszero/evaluator"
	"github.com/kavehparsa/chesszero/game"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type fakeModel struct {
	policy []float32
	value  float32
	err    error
}

func (m fakeModel) Forward(input []float32) ([]float32, float32, error) {
	return m.policy, m.value, m.err
}

func TestNew_RejectsNilModel(t *testing.T) {
	_, err := evaluator.New(nil)
	assert.Error(t, err)
}

func TestEvaluate_UniformPolicyAndPassthroughValue(t *testing.T) {
	policy := make([]float32, game.PolicyDim)
	for i := range policy {
		policy[i] = 1
	}
	m := fakeModel{policy: policy, value: 0.73}
	e, err := evaluator.New(m)
	require.NoError(t, err)

	pos, err := game.FromFEN(startFEN)
	require.NoError(t, err)

	ev, err := e.Evaluate(pos)
	require.NoError(t, err)
	assert.Equal(t, float32(0.73), ev.Value)

	var total float32
	for _, p := range ev.Priors {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-4)
	assert.Len(t, ev.Priors, len(pos.LegalMoves()))
}

// TestEvaluate_SoftmaxNotLinearNormalization pins down that the priors are a
// softmax over the legal moves' logits, not a linear rescaling. A linear
// normalization of these (distinct, partly negative) logits would produce
// different shares than exp-then-normalize — several of them negative,
// tripping the p > 0 guard mcts.SearchNode.SelectBestChild falls back on.
func TestEvaluate_SoftmaxNotLinearNormalization(t *testing.T) {
	pos, err := game.FromFEN(startFEN)
	require.NoError(t, err)
	legal := pos.LegalMoves()
	require.GreaterOrEqual(t, len(legal), 3)

	policy := make([]float32, game.PolicyDim)
	logits := []float32{2.0, -1.0, 0.5}
	for i, m := range legal[:3] {
		policy[m.PolicyIndex()] = logits[i]
	}

	m := fakeModel{policy: policy, value: 0}
	e, err := evaluator.New(m)
	require.NoError(t, err)

	ev, err := e.Evaluate(pos)
	require.NoError(t, err)

	// The softmax runs over every legal move, so the remaining legal moves
	// (logit 0, exp 1 each) share the denominator with the three set above.
	var expSum float64
	for _, mv := range legal {
		expSum += math.Exp(float64(policy[mv.PolicyIndex()]))
	}

	for i, mv := range legal[:3] {
		want := float32(math.Exp(float64(logits[i])) / expSum)
		got := ev.Priors[mv.UCI()]
		assert.Greater(t, got, float32(0), "prior for %s must be positive", mv.UCI())
		assert.InDelta(t, want, got, 1e-4, "prior for %s should match softmax, not linear normalization", mv.UCI())
	}

	var total float32
	for _, p := range ev.Priors {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-4)
}

func TestEvaluate_ModelErrorPropagates(t *testing.T) {
	m := fakeModel{err: assertError{"boom"}}
	e, err := evaluator.New(m)
	require.NoError(t, err)

	pos, err := game.FromFEN(startFEN)
	require.NoError(t, err)

	_, err = e.Evaluate(pos)
	assert.Error(t, err)
}

func TestEvaluate_WrongPolicyLengthErrors(t *testing.T) {
	m := fakeModel{policy: []float32{1, 2, 3}, value: 0.5}
	e, err := evaluator.New(m)
	require.NoError(t, err)

	pos, err := game.FromFEN(startFEN)
	require.NoError(t, err)

	_, err = e.Evaluate(pos)
	assert.Error(t, err)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
