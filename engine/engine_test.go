package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavehparsa/chesszero/engine"
	"github.com/kavehparsa/chesszero/mcts"
)

func TestNew_InvalidFEN(t *testing.T) {
	_, err := engine.New("not a fen")
	assert.Error(t, err)
}

func TestSearch_BestMove_ForcedMateInOne(t *testing.T) {
	s, err := engine.New("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		engine.WithConfig(mcts.Config{MaxIterations: 1500, MaxSeconds: 5, CPUCT: 1.4}),
		engine.WithSeed(42),
	)
	require.NoError(t, err)

	best, stats, err := s.BestMove()
	require.NoError(t, err)
	assert.Greater(t, stats.Iterations, 0)
	assert.Equal(t, "a1a8", best)
}

func TestSearch_BestMove_StalemateHasNoMoves(t *testing.T) {
	s, err := engine.New("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)

	_, _, err = s.BestMove()
	assert.ErrorIs(t, err, mcts.ErrNoLegalMoves)
}

func TestSearch_Advance_IllegalMoveErrors(t *testing.T) {
	s, err := engine.New("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	err = s.Advance("e2e5")
	assert.Error(t, err)
}

func TestSearch_Advance_LegalMoveUpdatesFEN(t *testing.T) {
	s, err := engine.New("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	before := s.FEN()
	require.NoError(t, s.Advance("e2e4"))
	assert.NotEqual(t, before, s.FEN())
}
