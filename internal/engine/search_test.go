package engine

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/othello/internal/board"
)

// randomOpening plays n random legal moves from the start, passing when
// forced, and returns the position and the side to move.
func randomOpening(rng *rand.Rand, mySelf board.Side, n int) (*board.Position, board.Side) {
	pos := board.NewPosition(mySelf)
	side := board.Black
	for i := 0; i < n && !pos.IsDone(); i++ {
		moves := pos.GenerateLegalMoves(side)
		if moves.Len() > 0 {
			pos.Apply(moves.Get(rng.IntN(moves.Len())), side, nil)
		}
		side = side.Other()
	}
	return pos, side
}

func TestAlgorithmsAgree(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 12; trial++ {
		base, side := randomOpening(rng, board.Black, rng.IntN(6))
		for depth := 1; depth <= 4; depth++ {
			type result struct {
				score int
				move  board.Move
			}
			run := func(algo Algorithm, cache *Cache) result {
				s := NewSearcher(base.Copy(), PositionalScore, cache)
				move, score := s.Search(algo, depth, side)
				return result{score, move}
			}

			mm := run(AlgoMinimax, nil)
			ab := run(AlgoAlphaBeta, nil)
			ns := run(AlgoNegascout, nil)
			abCached := run(AlgoAlphaBeta, NewCache(DefaultChainCap, nil))
			nsCached := run(AlgoNegascout, NewCache(DefaultChainCap, nil))

			is.Equal(ab.score, mm.score)
			is.Equal(ns.score, mm.score)
			is.Equal(abCached.score, mm.score)
			is.Equal(nsCached.score, mm.score)
			// Without the cache every algorithm enumerates in the same order
			// and keeps the earliest of tied moves.
			is.Equal(ab.move, mm.move)
			is.Equal(ns.move, mm.move)
		}
	}
}

func TestNegamaxIdentity(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(3, 5))

	for trial := 0; trial < 6; trial++ {
		base, side := randomOpening(rng, board.White, 2+rng.IntN(4))
		const depth = 3

		pos := base.Copy()
		s := NewSearcher(pos, PositionalScore, nil)
		root := s.AlphaBeta(depth, -Infinity, Infinity, side)

		best := -Infinity
		moves := base.GenerateLegalMoves(side)
		for i := 0; i < moves.Len(); i++ {
			child := base.Copy()
			child.Apply(moves.Get(i), side, board.NewSearchLog())
			cs := NewSearcher(child, PositionalScore, nil)
			if v := -cs.AlphaBeta(depth-1, -Infinity, Infinity, side.Other()); v > best {
				best = v
			}
		}
		is.Equal(root, best)
	}
}

func TestNegamaxSymmetryAtHorizon(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	pos.Load("...........bbw.....wbw.....wbbb....bwwb.....w...................")

	a := NewSearcher(pos.Copy(), PositionalScore, nil)
	b := NewSearcher(pos.Copy(), PositionalScore, nil)
	is.Equal(a.AlphaBeta(0, -Infinity, Infinity, board.Black), -b.AlphaBeta(0, -Infinity, Infinity, board.White))
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(1, 2))
	pos, side := randomOpening(rng, board.Black, 10)
	taken, black, weights := pos.Taken, pos.BlackDiscs, pos.Weights()

	s := NewSearcher(pos, PositionalScore, NewCache(DefaultChainCap, nil))
	for _, algo := range []Algorithm{AlgoMinimax, AlgoAlphaBeta, AlgoNegascout} {
		move, _ := s.Search(algo, 3, side)
		is.True(pos.IsLegal(move, side))
		is.Equal(pos.Taken, taken)
		is.Equal(pos.BlackDiscs, black)
		is.Equal(pos.Weights(), weights)
		is.Equal(s.Log().Len(), 0)
		is.True(s.Nodes() > 0)
	}
}

func TestSearchedCornerKeepsWeights(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	// a1 is open to both sides: white via a2, black via b1.
	pos.Load(".wb.....b.......w")
	is.True(pos.IsLegal(board.MoveAt(board.A1), board.Black))
	is.True(pos.IsLegal(board.MoveAt(board.A1), board.White))
	weights := pos.Weights()

	s := NewSearcher(pos, PositionalScore, NewCache(DefaultChainCap, nil))
	for _, algo := range []Algorithm{AlgoMinimax, AlgoAlphaBeta, AlgoNegascout} {
		s.Search(algo, 3, board.White)
		is.Equal(pos.Weights(), weights)
	}
}

func TestTiesKeepEarliestMove(t *testing.T) {
	is := is.New(t)
	// Every opening move flips exactly one disc.
	for _, algo := range []Algorithm{AlgoMinimax, AlgoAlphaBeta, AlgoNegascout} {
		pos := board.NewPosition(board.Black)
		s := NewSearcher(pos, MaterialScore, nil)
		move, score := s.Search(algo, 1, board.Black)
		is.Equal(move, board.NewMove(3, 2)) // d3
		is.Equal(score, 3)
		is.Equal(pos.Pending, move)
	}
}

func TestCachedMoveIsTriedFirst(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	cache := NewCache(DefaultChainCap, nil)
	e6 := board.NewMove(4, 5)
	cache.Store(pos.Fingerprint(), e6, 0)

	s := NewSearcher(pos, MaterialScore, cache)
	move, _ := s.Search(AlgoAlphaBeta, 1, board.Black)
	is.Equal(move, e6)

	// An illegal cached move is ignored.
	cache.Store(pos.Fingerprint(), board.MoveAt(board.A1), 0)
	move, _ = s.Search(AlgoNegascout, 1, board.Black)
	is.Equal(move, board.NewMove(3, 2))
}

func TestSearchStoresRootMove(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.White)
	cache := NewCache(DefaultChainCap, nil)
	s := NewSearcher(pos, PositionalScore, cache)

	move, score := s.Search(AlgoNegascout, 3, board.Black)
	e, ok := cache.Lookup(pos.Fingerprint())
	is.True(ok)
	is.Equal(e.Move, move)
	is.Equal(e.Score, score)
}

func TestPassAtRoot(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	pos.Load("wb") // black cannot move, white can play c1
	for _, algo := range []Algorithm{AlgoMinimax, AlgoAlphaBeta, AlgoNegascout} {
		s := NewSearcher(pos, MaterialScore, nil)
		move, score := s.Search(algo, 4, board.Black)
		is.Equal(move, board.Pass)
		is.Equal(score, 0)
	}
}

func TestTimeoutAborts(t *testing.T) {
	is := is.New(t)
	for _, algo := range []Algorithm{AlgoAlphaBeta, AlgoNegascout} {
		pos := board.NewPosition(board.Black)
		taken, black, weights := pos.Taken, pos.BlackDiscs, pos.Weights()
		s := NewSearcher(pos, PositionalScore, NewCache(DefaultChainCap, nil))
		s.SetCeiling(0)

		move, score := s.Search(algo, 4, board.Black)
		is.Equal(score, AbortedScore)
		is.Equal(move, board.TimedOut)
		is.Equal(pos.Pending, board.TimedOut)
		is.Equal(s.Log().Len(), 0)
		is.Equal(pos.Taken, taken)
		is.Equal(pos.BlackDiscs, black)
	}
}

func TestTimeoutMidSearchUnwinds(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(9, 9))
	for _, algo := range []Algorithm{AlgoAlphaBeta, AlgoNegascout} {
		pos, side := randomOpening(rng, board.Black, 12)
		taken, black, weights := pos.Taken, pos.BlackDiscs, pos.Weights()
		s := NewSearcher(pos, PositionalScore, NewCache(DefaultChainCap, nil))
		s.SetCeiling(50 * time.Microsecond)

		move, score := s.Search(algo, 8, side)
		if score == AbortedScore {
			is.Equal(move, board.TimedOut)
		} else {
			is.True(pos.IsLegal(move, side))
		}
		is.Equal(s.Log().Len(), 0)
		is.Equal(pos.Taken, taken)
		is.Equal(pos.BlackDiscs, black)
	}
}

func TestTerminalAtDepthZero(t *testing.T) {
	is := is.New(t)
	pos := board.NewPosition(board.Black)
	s := NewSearcher(pos, PositionalScore, nil)
	s.SetCeiling(0)
	// Terminal frames are scored before the clock is checked.
	is.Equal(s.AlphaBeta(0, -Infinity, Infinity, board.Black), 0)
	is.Equal(pos.Pending, board.NoMove)
}

func TestParseAlgorithm(t *testing.T) {
	is := is.New(t)
	for _, algo := range []Algorithm{AlgoMinimax, AlgoAlphaBeta, AlgoNegascout} {
		got, err := ParseAlgorithm(algo.String())
		is.NoErr(err)
		is.Equal(got, algo)
	}
	_, err := ParseAlgorithm("mtdf")
	is.True(err != nil)
}
