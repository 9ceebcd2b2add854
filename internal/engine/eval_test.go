package engine

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/othello/internal/board"
)

func TestOpeningEvaluation(t *testing.T) {
	is := is.New(t)
	for _, side := range []board.Side{board.Black, board.White} {
		pos := board.NewPosition(side)
		is.Equal(MaterialScore(pos), 0)
		is.Equal(PositionalScore(pos), 0)

		myMoves, oppMoves, myFrontier, oppFrontier := MobilityAndFrontier(pos)
		is.Equal(myMoves, 4)
		is.Equal(oppMoves, 4)
		is.Equal(myFrontier, 2)
		is.Equal(oppFrontier, 2)
	}
}

func TestEvaluationIsAntisymmetric(t *testing.T) {
	is := is.New(t)
	descs := []string{
		"...........bbw.....wbw.....wbbb....bwwb.....w...................",
		"..........wwwb.....bbwbw...bwbbbb..bwwwb....bbw.....w...........",
		"...........b........bw.....bbb......wb..........................",
	}
	for _, desc := range descs {
		black := board.NewPosition(board.Black)
		white := board.NewPosition(board.White)
		black.Load(desc)
		white.Load(desc)
		is.Equal(MaterialScore(black), -MaterialScore(white))
		is.Equal(PositionalScore(black), -PositionalScore(white))
	}
}

func TestEndgameUsesMaterialAndStability(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	// f8, g8 and h8 empty; black holds three full corners.
	pos.Load(strings.Repeat("b", 61) + "...")
	is.Equal(pos.Empties(), 3)
	is.Equal(Stability(pos, board.Black), 12)
	is.Equal(Stability(pos, board.White), 0)
	is.Equal(PositionalScore(pos), 10*61+20*12)
}

func TestStability(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	// a1 and b1 black, b2 white; h8 white alone.
	pos.Load("bb" + strings.Repeat(".", 7) + "w" + strings.Repeat(".", 53) + "w")
	is.Equal(Stability(pos, board.Black), 2)
	is.Equal(Stability(pos, board.White), 1)
}

func TestCustomWeights(t *testing.T) {
	is := is.New(t)
	materialOnly := NewPositionalEvaluator(EvalWeights{Material: 1})
	pos := board.NewPosition(board.White)
	pos.Load("...........bbw.....wbw.....wbbb....bwwb.....w...................")
	is.Equal(materialOnly(pos), MaterialScore(pos))
}

func TestEdgeMiddleSquares(t *testing.T) {
	is := is.New(t)
	is.Equal(board.EdgeMiddle.PopCount(), 12)

	edges := []board.Bitboard{board.Rank1, board.Rank8, board.FileA, board.FileH}
	for _, edge := range edges {
		is.Equal((board.EdgeMiddle & edge).PopCount(), 3)
	}
	is.Equal(board.EdgeMiddle&board.CornerMask, board.Bitboard(0))

	pos := board.NewPosition(board.Black)
	// Rank 1 full of black, file a above it full of white.
	pos.Load("bbbbbbbb" + strings.Repeat("w.......", 7))
	is.Equal(edgeCount(pos, board.Black), 3)
	is.Equal(edgeCount(pos, board.White), 3)
}
