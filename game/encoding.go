package game

import "github.com/notnil/chess"

// Planes is the number of binary planes in the encoded tensor: one per
// (piece type, color) combination.
const Planes = 12

// BoardSize is the board's width and height in squares.
const BoardSize = 8

// squaresPerBoard is BoardSize*BoardSize, the number of squares in one
// encoding plane.
const squaresPerBoard = BoardSize * BoardSize

// PolicyDim is the dense policy vector's width: 64 from-squares times 64
// to-squares.
const PolicyDim = squaresPerBoard * squaresPerBoard

func pieceTypeIndex(pt chess.PieceType) int {
	switch pt {
	case chess.Pawn:
		return 0
	case chess.Knight:
		return 1
	case chess.Bishop:
		return 2
	case chess.Rook:
		return 3
	case chess.Queen:
		return 4
	case chess.King:
		return 5
	default:
		return -1
	}
}

// Encode produces the dense (Planes, BoardSize, BoardSize) tensor spec §4.2
// requires: twelve binary planes indexed by (piece_type, color), each
// flattened in the same a1..h8 square order notnil/chess's Square indices
// use (square index = plane_offset + rank*8+file). This ordering MUST match
// the square indexing Move.PolicyIndex uses for the same position — a
// mismatch here silently corrupts policy alignment, per spec §4.2's warning.
//
// The returned slice is flat, length Planes*BoardSize*BoardSize, in
// plane-major order: encode()[plane*64 + square].
func Encode(p Position) []float32 {
	out := make([]float32, Planes*BoardSize*BoardSize)
	for sq, piece := range p.Board().SquareMap() {
		if piece == chess.NoPiece {
			continue
		}
		typeIdx := pieceTypeIndex(piece.Type())
		if typeIdx < 0 {
			continue
		}
		colorOffset := 0
		if piece.Color() == chess.Black {
			colorOffset = 6
		}
		plane := colorOffset + typeIdx
		out[plane*squaresPerBoard+int(sq)] = 1
	}
	return out
}
