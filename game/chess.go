package game

import "github.com/notnil/chess"

// pieceValue gives the standard material weight of a piece type; the king is
// excluded (its presence is implied, not counted) as is conventional for a
// material-only heuristic.
func pieceValue(pt chess.PieceType) float32 {
	switch pt {
	case chess.Pawn:
		return 1
	case chess.Knight, chess.Bishop:
		return 3
	case chess.Rook:
		return 5
	case chess.Queen:
		return 9
	default:
		return 0
	}
}

// materialScore computes a bounded material heuristic from SideA's (White's)
// perspective, normalized into [0,1]. It is the "bounded material-based
// heuristic" spec §4.1 asks Rollout to fall back on once the ply cap is hit
// without a terminal position.
//
// The raw material difference is clamped to +/-39 (one side holding every
// non-king piece against a lone king) before being mapped onto [0,1], so a
// decisive material imbalance saturates rather than blows out the scale.
func materialScore(b *chess.Board) float32 {
	const maxDiff = float32(39)
	var diff float32
	for _, piece := range b.SquareMap() {
		v := pieceValue(piece.Type())
		if piece.Color() == chess.White {
			diff += v
		} else {
			diff -= v
		}
	}
	if diff > maxDiff {
		diff = maxDiff
	}
	if diff < -maxDiff {
		diff = -maxDiff
	}
	return (diff/maxDiff + 1) / 2
}
