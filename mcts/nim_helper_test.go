package mcts_test

import (
	"math/rand"

	"github.com/kavehparsa/chesszero/mcts"
)

// A toy game used to exercise the search kernel without depending on the
// game package: subtraction Nim. Two players alternately remove 1 or 2
// counters from a pile; whoever removes the last counter wins. It is a
// perfect-information, zero-sum, two-player game with a tiny, fully
// enumerable state space, which is all SearchNode needs from its P type
// parameter.
type nimState struct {
	remaining int
	toMove    mcts.Side
}

type nimMove struct{ take int }

func (m nimMove) UCI() string { return string(rune('0' + m.take)) }
func (m nimMove) Equal(other mcts.Move) bool {
	o, ok := other.(nimMove)
	return ok && o.take == m.take
}

type nimAdapter struct{ rng *rand.Rand }

func newNimAdapter(seed int64) *nimAdapter {
	return &nimAdapter{rng: rand.New(rand.NewSource(seed))}
}

func (a *nimAdapter) LegalMoves(s nimState) []mcts.Move {
	var out []mcts.Move
	for _, take := range []int{1, 2} {
		if take <= s.remaining {
			out = append(out, nimMove{take: take})
		}
	}
	return out
}

func (a *nimAdapter) Apply(s nimState, m mcts.Move) nimState {
	nm := m.(nimMove)
	return nimState{remaining: s.remaining - nm.take, toMove: s.toMove.Other()}
}

func (a *nimAdapter) IsTerminal(s nimState) bool { return s.remaining <= 0 }

func (a *nimAdapter) TerminalValue(s nimState) float32 {
	// The player to move at a terminal state has no counters left to take,
	// so the *other* player made the winning move.
	winner := s.toMove.Other()
	if winner == mcts.SideA {
		return 1
	}
	return 0
}

func (a *nimAdapter) SideToMove(s nimState) mcts.Side { return s.toMove }

func (a *nimAdapter) Rollout(s nimState) float32 {
	cur := s
	for !a.IsTerminal(cur) {
		moves := a.LegalMoves(cur)
		cur = a.Apply(cur, moves[a.rng.Intn(len(moves))])
	}
	return a.TerminalValue(cur)
}
