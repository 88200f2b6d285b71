package game

import (
	"math/rand"

	"github.com/kavehparsa/chesszero/mcts"
)

// DefaultRolloutPlies bounds a rollout's length before falling back to the
// material heuristic, per spec §4.1/§6's named rollout depth cap for chess.
const DefaultRolloutPlies = 500

// Adapter implements mcts.GameAdapter[Position], the only place in this
// package that bridges the concrete chess rules to the generic search
// kernel's mcts.Move-typed signatures. It is not safe for concurrent use by
// multiple goroutines sharing one *rand.Rand.
type Adapter struct {
	rng         *rand.Rand
	rolloutPlies int
}

// NewAdapter constructs an Adapter. rng drives Rollout only; LegalMoves,
// Apply, IsTerminal, TerminalValue, and SideToMove are pure functions of the
// position.
func NewAdapter(rng *rand.Rand) *Adapter {
	return &Adapter{rng: rng, rolloutPlies: DefaultRolloutPlies}
}

// LegalMoves enumerates pos's legal moves as opaque mcts.Move values.
func (a *Adapter) LegalMoves(pos Position) []mcts.Move {
	moves := pos.LegalMoves()
	out := make([]mcts.Move, len(moves))
	for i, m := range moves {
		out[i] = m
	}
	return out
}

// Apply returns the position reached by playing m from pos. m must have come
// from this Adapter's own LegalMoves(pos) — anything else is an
// InvariantViolation, since a foreign mcts.Move can never satisfy the
// underlying type assertion.
func (a *Adapter) Apply(pos Position, m mcts.Move) Position {
	gm, ok := m.(Move)
	if !ok {
		panic(mcts.InvariantViolation{Msg: "game: Apply called with a non-game.Move"})
	}
	return pos.Apply(gm)
}

// IsTerminal reports whether pos has no legal continuation.
func (a *Adapter) IsTerminal(pos Position) bool { return pos.IsTerminal() }

// TerminalValue returns pos's SideA-perspective terminal value. Calling this
// on a non-terminal position is an InvariantViolation.
func (a *Adapter) TerminalValue(pos Position) float32 {
	res, ok := pos.TerminalResult()
	if !ok {
		panic(mcts.InvariantViolation{Msg: "game: TerminalValue called on a non-terminal position"})
	}
	return res.Value()
}

// SideToMove returns the side to move at pos.
func (a *Adapter) SideToMove(pos Position) mcts.Side { return pos.SideToMove() }

// Rollout plays a bounded random simulation from pos, falling back to the
// bounded material heuristic if no terminal position is reached within
// DefaultRolloutPlies plies.
func (a *Adapter) Rollout(pos Position) float32 {
	return pos.Rollout(a.rng, a.rolloutPlies)
}
