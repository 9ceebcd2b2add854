// Package engine implements the Othello evaluator, transposition cache and
// search algorithms, plus the policy layer that turns remaining clock time
// into a chosen move.
package engine

import (
	"github.com/hailam/othello/internal/board"
)

// Evaluator scores a position from pos.MySelf's point of view. Larger is
// better for MySelf.
type Evaluator func(pos *board.Position) int

// EvalWeights are the coefficients of the positional blend.
type EvalWeights struct {
	Material  int // disc difference
	Stability int // corners plus same-side corner neighbours
	Edge      int // discs on the middle squares of each edge
	Mobility  int // legal move count difference
	Frontier  int // frontier disc difference (subtracted)
	Square    int // weight-table sum difference

	// Below EndgameEmpties empty squares only material and stability count.
	EndgameEmpties   int
	EndgameMaterial  int
	EndgameStability int
}

// DefaultEvalWeights is the blend used by PositionalScore.
var DefaultEvalWeights = EvalWeights{
	Material:         1,
	Stability:        30,
	Edge:             4,
	Mobility:         8,
	Frontier:         4,
	Square:           1,
	EndgameEmpties:   5,
	EndgameMaterial:  10,
	EndgameStability: 20,
}

// neighborMask[sq] holds the squares adjacent to sq.
var neighborMask [64]board.Bitboard

func init() {
	for sq := board.A1; sq < board.NoSquare; sq++ {
		neighborMask[sq] = board.SquareBB(sq).Neighbors()
	}
}

// MaterialScore returns own discs minus opponent discs. It is the coarse
// evaluator used for diagnostics and quick searches.
func MaterialScore(pos *board.Position) int {
	return pos.Count(pos.MySelf) - pos.Count(pos.Opponent)
}

// PositionalScore is the primary evaluator, using DefaultEvalWeights.
func PositionalScore(pos *board.Position) int {
	return positionalScore(pos, &DefaultEvalWeights)
}

// NewPositionalEvaluator returns a positional evaluator with custom weights.
func NewPositionalEvaluator(w EvalWeights) Evaluator {
	return func(pos *board.Position) int {
		return positionalScore(pos, &w)
	}
}

func positionalScore(pos *board.Position, w *EvalWeights) int {
	me, opp := pos.MySelf, pos.Opponent

	material := pos.Count(me) - pos.Count(opp)
	stable := Stability(pos, me) - Stability(pos, opp)

	if pos.Empties() < w.EndgameEmpties {
		return w.EndgameMaterial*material + w.EndgameStability*stable
	}

	edges := edgeCount(pos, me) - edgeCount(pos, opp)
	myMoves, oppMoves, myFrontier, oppFrontier := MobilityAndFrontier(pos)
	squares := SquareWeights(pos, me) - SquareWeights(pos, opp)

	return w.Material*material +
		w.Stability*stable +
		w.Edge*edges +
		w.Mobility*(myMoves-oppMoves) -
		w.Frontier*(myFrontier-oppFrontier) +
		w.Square*squares
}

// Stability counts 1 for each corner side holds plus 1 for each of that
// corner's three neighbours also held by side.
func Stability(pos *board.Position, side board.Side) int {
	discs := pos.Discs(side)
	s := 0
	for _, c := range board.Corners {
		if !discs.IsSet(c) {
			continue
		}
		s++
		neighbors, _ := board.CornerNeighbors(c)
		for _, sq := range neighbors {
			if discs.IsSet(sq) {
				s++
			}
		}
	}
	return s
}

func edgeCount(pos *board.Position, side board.Side) int {
	return (pos.Discs(side) & board.EdgeMiddle).PopCount()
}

// SquareWeights sums the position's weight table over side's discs.
func SquareWeights(pos *board.Position, side board.Side) int {
	sum := 0
	pos.Discs(side).ForEach(func(sq board.Square) {
		sum += pos.Weight(sq)
	})
	return sum
}

// MobilityAndFrontier walks the board once. Empty squares are tested for
// legality for both sides; occupied squares next to an empty square count as
// frontier discs for their owner. Counts are returned for MySelf first.
func MobilityAndFrontier(pos *board.Position) (myMoves, oppMoves, myFrontier, oppFrontier int) {
	empty := ^pos.Taken
	for sq := board.A1; sq < board.NoSquare; sq++ {
		if empty.IsSet(sq) {
			m := board.MoveAt(sq)
			if pos.IsLegal(m, pos.MySelf) {
				myMoves++
			}
			if pos.IsLegal(m, pos.Opponent) {
				oppMoves++
			}
			continue
		}
		if neighborMask[sq]&empty == 0 {
			continue
		}
		if pos.At(sq) == board.Own {
			myFrontier++
		} else {
			oppFrontier++
		}
	}
	return myMoves, oppMoves, myFrontier, oppFrontier
}
