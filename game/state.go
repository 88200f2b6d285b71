// Package game adapts the chess rules library (github.com/notnil/chess) to
// the generic GameAdapter contract the mcts package consumes. It is the only
// package in this module that imports notnil/chess directly.
package game

import (
	"math/rand"

	"github.com/notnil/chess"

	"github.com/kavehparsa/chesszero/mcts"
)

// Side to move and value perspective throughout this package are expressed
// in mcts.Side directly (SideA is White, SideB is Black) rather than a
// parallel local type — spec §3's "fixed global perspective" is a single
// concept and belongs in one place.
func sideOf(c chess.Color) mcts.Side {
	if c == chess.Black {
		return mcts.SideB
	}
	return mcts.SideA
}

// Result is a terminal outcome, defined only once a position is terminal.
type Result uint8

const (
	ResultAWins Result = iota
	ResultBWins
	ResultDraw
)

// Value converts a Result into the SideA-perspective scalar in {0.0, 0.5,
// 1.0}. This is one of the two places in the module value perspective is
// fixed; the other is Evaluator's model-output conversion. Neither flips
// per-node.
func (r Result) Value() float32 {
	switch r {
	case ResultAWins:
		return 1.0
	case ResultBWins:
		return 0.0
	default:
		return 0.5
	}
}

// Move is an opaque legal move, carrying its own canonical UCI form and
// equality. Two Moves compare equal iff their underlying from/to/promotion
// triple matches.
type Move struct {
	m *chess.Move
}

// UCI returns the canonical UCI string, e.g. "e2e4" or "e7e8q". notnil/chess's
// Move.String formats from-square/to-square/promotion in exactly this form,
// and it is the form the Evaluator keys its priors by; any deviation between
// this and the Evaluator's policy keys silently breaks prior lookup.
func (mv Move) UCI() string {
	if mv.m == nil {
		return ""
	}
	return mv.m.String()
}

// Equal reports whether two moves are the same move. other must itself be a
// Move; anything else (including nil) compares unequal.
func (mv Move) Equal(other mcts.Move) bool {
	o, ok := other.(Move)
	if !ok {
		return false
	}
	if mv.m == nil || o.m == nil {
		return mv.m == o.m
	}
	return mv.m.S1() == o.m.S1() &&
		mv.m.S2() == o.m.S2() &&
		mv.m.Promo() == o.m.Promo()
}

// fromSquareIndex and toSquareIndex give the 0..63 square indices used to key
// the dense 4096-wide policy vector: from*64+to. notnil/chess's Square type
// is already a 0..63 index in the same a1..h8 ordering the board encoder
// walks, so no remapping happens here; a mismatch between this ordering and
// the encoder's would silently misalign policy with position.
func (mv Move) fromSquareIndex() int { return int(mv.m.S1()) }
func (mv Move) toSquareIndex() int   { return int(mv.m.S2()) }

// PolicyIndex returns the dense policy index (0..4095) this move's from/to
// square pair maps to: from(m)*64 + to(m).
func (mv Move) PolicyIndex() int {
	return mv.fromSquareIndex()*64 + mv.toSquareIndex()
}

// Position is an opaque chess position: side to move, legal moves, terminal
// detection, and copy-then-apply-move. It wraps *chess.Game rather than bare
// *chess.Position because terminal detection (threefold repetition, the
// fifty-move rule) needs move history, which only Game tracks.
type Position struct {
	g *chess.Game
}

// FromFEN constructs a Position from a FEN string. An invalid FEN returns
// the parse error as is; engine.New reports it as a ConfigurationError,
// fatal to the search being constructed.
func FromFEN(fen string) (Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Position{}, err
	}
	g := chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))
	return Position{g: g}, nil
}

// SideToMove returns the side to move next.
func (p Position) SideToMove() mcts.Side {
	return sideOf(p.g.Position().Turn())
}

// IsTerminal reports whether the position is checkmate, stalemate, or
// otherwise drawn.
func (p Position) IsTerminal() bool {
	return p.g.Outcome() != chess.NoOutcome
}

// TerminalResult returns the terminal result. The second return value is
// false if the position is not terminal; calling this on a non-terminal
// position is a caller bug, matching spec §4.1's "defined only when
// terminal."
func (p Position) TerminalResult() (Result, bool) {
	switch p.g.Outcome() {
	case chess.WhiteWon:
		return ResultAWins, true
	case chess.BlackWon:
		return ResultBWins, true
	case chess.Draw:
		return ResultDraw, true
	default:
		return 0, false
	}
}

// LegalMoves enumerates legal moves. Order follows notnil/chess's own
// ValidMoves ordering, which is deterministic for a given position though
// otherwise unspecified, matching spec §4.1's "order is implementation-
// defined but must be deterministic."
func (p Position) LegalMoves() []Move {
	valid := p.g.ValidMoves()
	out := make([]Move, len(valid))
	for i, m := range valid {
		out[i] = Move{m: m}
	}
	return out
}

// Apply returns a fresh position with m applied; it never mutates p. m must
// be one of p.LegalMoves() — applying an illegal move is a caller bug (spec
// §4.1: "all operations are total given valid inputs; illegal moves are a
// caller bug"), surfaced here as a panic rather than swallowed.
func (p Position) Apply(m Move) Position {
	clone := p.g.Clone()
	if err := clone.Move(m.m); err != nil {
		panic(mcts.InvariantViolation{Msg: "game: Apply called with illegal move " + m.UCI() + ": " + err.Error()})
	}
	return Position{g: clone}
}

// Board exposes the underlying chess board for encoding; it is read-only.
func (p Position) Board() *chess.Board {
	return p.g.Position().Board()
}

// FEN returns the position's FEN string.
func (p Position) FEN() string {
	return p.g.Position().String()
}

// Rollout plays up to maxPlies random legal moves from p. If a terminal
// position is reached, it returns the exact terminal value from SideA's
// perspective. Otherwise it returns a bounded material heuristic normalized
// into [0,1] from SideA's perspective. rng is caller-supplied so rollouts are
// reproducible under a fixed seed (cf. spec §8 scenario S1).
func (p Position) Rollout(rng *rand.Rand, maxPlies int) float32 {
	cur := p
	for i := 0; i < maxPlies; i++ {
		if cur.IsTerminal() {
			res, _ := cur.TerminalResult()
			return res.Value()
		}
		moves := cur.LegalMoves()
		if len(moves) == 0 {
			return 0.5
		}
		cur = cur.Apply(moves[rng.Intn(len(moves))])
	}
	if cur.IsTerminal() {
		res, _ := cur.TerminalResult()
		return res.Value()
	}
	return materialScore(cur.Board())
}
