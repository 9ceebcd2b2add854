package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othello/internal/board"
)

// Search constants
const (
	// Infinity bounds every evaluator score.
	Infinity = 1 << 24
	// AbortedScore is returned by a search frame that ran out of time. It lies
	// far outside [-Infinity, Infinity] so no real score can collide with it.
	AbortedScore = -(1 << 28)
	// NoCeiling disables the time ceiling.
	NoCeiling = time.Duration(math.MaxInt64)
)

// Algorithm selects the search routine.
type Algorithm int

const (
	AlgoMinimax Algorithm = iota
	AlgoAlphaBeta
	AlgoNegascout
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgoMinimax:
		return "minimax"
	case AlgoAlphaBeta:
		return "alphabeta"
	case AlgoNegascout:
		return "negascout"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// ParseAlgorithm maps a configuration name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "minimax":
		return AlgoMinimax, nil
	case "alphabeta", "alpha-beta", "ab":
		return AlgoAlphaBeta, nil
	case "negascout", "pvs", "":
		return AlgoNegascout, nil
	}
	return 0, fmt.Errorf("unknown search algorithm %q", s)
}

// Searcher runs depth-first searches over one Position. Speculative moves go
// through the searcher's own MoveLog and are always undone before a frame
// returns, so the position is unchanged after every search, aborted or not.
// The chosen root move is left in pos.Pending.
type Searcher struct {
	pos     *board.Position
	eval    Evaluator
	cache   *Cache
	log     *board.MoveLog
	ceiling time.Duration
	nodes   uint64
}

// NewSearcher creates a searcher for pos. A nil cache disables move ordering
// from the transposition cache; a nil eval means PositionalScore.
func NewSearcher(pos *board.Position, eval Evaluator, cache *Cache) *Searcher {
	if eval == nil {
		eval = PositionalScore
	}
	return &Searcher{
		pos:     pos,
		eval:    eval,
		cache:   cache,
		log:     board.NewSearchLog(),
		ceiling: NoCeiling,
	}
}

// SetCeiling sets the elapsed time after which alpha-beta and negascout
// abort. A zero ceiling aborts every non-terminal frame.
func (s *Searcher) SetCeiling(d time.Duration) {
	s.ceiling = d
}

// Ceiling returns the current time ceiling.
func (s *Searcher) Ceiling() time.Duration {
	return s.ceiling
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Log returns the searcher's speculative move log. It is empty between
// searches.
func (s *Searcher) Log() *board.MoveLog {
	return s.log
}

// Cache returns the transposition cache, or nil.
func (s *Searcher) Cache() *Cache {
	return s.cache
}

// Search runs algo to depth for side with a full window and returns the
// chosen move and its score. On timeout the move is board.TimedOut and the
// score is AbortedScore.
func (s *Searcher) Search(algo Algorithm, depth int, side board.Side) (board.Move, int) {
	start := time.Now()
	var score int
	switch algo {
	case AlgoMinimax:
		score = s.Minimax(depth, side)
	case AlgoAlphaBeta:
		score = s.AlphaBeta(depth, -Infinity, Infinity, side)
	default:
		score = s.Negascout(depth, -Infinity, Infinity, side)
	}

	ev := log.Debug().
		Str("algorithm", algo.String()).
		Int("depth", depth).
		Str("side", side.String()).
		Str("move", s.pos.Pending.String()).
		Uint64("nodes", s.nodes).
		Dur("elapsed", time.Since(start))
	if score == AbortedScore {
		ev.Bool("aborted", true)
	} else {
		ev.Int("score", score)
	}
	if s.cache != nil {
		ev.Float64("cache_hit_rate", s.cache.HitRate())
	}
	ev.Msg("search complete")

	return s.pos.Pending, score
}

// Minimax searches every legal move to depth without pruning or time checks.
func (s *Searcher) Minimax(depth int, side board.Side) int {
	s.nodes = 0
	return s.minimax(depth, side, true)
}

// AlphaBeta searches within [alpha, beta] and honours the time ceiling.
func (s *Searcher) AlphaBeta(depth, alpha, beta int, side board.Side) int {
	s.nodes = 0
	return s.alphaBeta(depth, alpha, beta, side, true, 0)
}

// Negascout is principal variation search: after the first candidate every
// move is tried with a null window and re-searched only if it beats alpha.
func (s *Searcher) Negascout(depth, alpha, beta int, side board.Side) int {
	s.nodes = 0
	return s.negascout(depth, alpha, beta, side, true, 0)
}

// evaluate scores the position for side.
func (s *Searcher) evaluate(side board.Side) int {
	score := s.eval(s.pos)
	if side != s.pos.MySelf {
		return -score
	}
	return score
}

// terminal reports whether the frame stops here and, at the root, records
// the move it leaves behind: Pass when side cannot move, NoMove when the
// depth is exhausted.
func (s *Searcher) terminal(depth int, moves *board.MoveList, isRoot bool) bool {
	if moves.Len() == 0 {
		if isRoot {
			s.pos.Pending = board.Pass
		}
		return true
	}
	if depth <= 0 {
		if isRoot {
			s.pos.Pending = board.NoMove
		}
		return true
	}
	return false
}

// timedOut reports whether the frame must abort and marks the root move.
func (s *Searcher) timedOut(timeSoFar time.Duration, isRoot bool) bool {
	if timeSoFar < s.ceiling {
		return false
	}
	if isRoot {
		s.pos.Pending = board.TimedOut
	}
	return true
}

// candidates lists side's legal moves in row-major order, with the cached
// principal move first when the cache holds a legal one for this board.
func (s *Searcher) candidates(side board.Side) (*board.MoveList, board.Fingerprint) {
	moves := s.pos.GenerateLegalMoves(side)
	var fp board.Fingerprint
	if s.cache == nil || moves.Len() == 0 {
		return moves, fp
	}
	fp = s.pos.Fingerprint()
	if entry, ok := s.cache.Lookup(fp); ok && entry.Move.IsSquare() {
		moves.MoveToFront(entry.Move)
	}
	return moves, fp
}

func (s *Searcher) minimax(depth int, side board.Side, isRoot bool) int {
	s.nodes++
	moves := s.pos.GenerateLegalMoves(side)
	if s.terminal(depth, moves, isRoot) {
		return s.evaluate(side)
	}

	best, bestMove := -Infinity, board.NoMove
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		var score int
		s.pos.Try(m, side, s.log, func() {
			score = -s.minimax(depth-1, side.Other(), false)
		})
		if score > best {
			best, bestMove = score, m
		}
	}

	if isRoot {
		s.pos.Pending = bestMove
	}
	return best
}

func (s *Searcher) alphaBeta(depth, alpha, beta int, side board.Side, isRoot bool, timeSoFar time.Duration) int {
	start := time.Now()
	s.nodes++

	moves, fp := s.candidates(side)
	if s.terminal(depth, moves, isRoot) {
		return s.evaluate(side)
	}
	if s.timedOut(timeSoFar, isRoot) {
		return AbortedScore
	}

	best, bestMove := -Infinity, board.NoMove
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		var score int
		s.pos.Try(m, side, s.log, func() {
			score = s.alphaBeta(depth-1, -beta, -alpha, side.Other(), false, timeSoFar+time.Since(start))
		})
		if score == AbortedScore {
			if isRoot {
				s.pos.Pending = board.TimedOut
			}
			return AbortedScore
		}
		score = -score

		if score > best {
			best, bestMove = score, m
			if score > alpha {
				alpha = score
			}
			if score >= beta {
				break
			}
		}
	}

	s.finish(fp, bestMove, best, isRoot)
	return best
}

func (s *Searcher) negascout(depth, alpha, beta int, side board.Side, isRoot bool, timeSoFar time.Duration) int {
	start := time.Now()
	s.nodes++

	moves, fp := s.candidates(side)
	if s.terminal(depth, moves, isRoot) {
		return s.evaluate(side)
	}
	if s.timedOut(timeSoFar, isRoot) {
		return AbortedScore
	}

	best, bestMove := -Infinity, board.NoMove
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		score := AbortedScore
		s.pos.Try(m, side, s.log, func() {
			elapsed := func() time.Duration { return timeSoFar + time.Since(start) }
			if i == 0 {
				if v := s.negascout(depth-1, -beta, -alpha, side.Other(), false, elapsed()); v != AbortedScore {
					score = -v
				}
				return
			}
			v := s.negascout(depth-1, -alpha-1, -alpha, side.Other(), false, elapsed())
			if v == AbortedScore {
				return
			}
			score = -v
			if score > alpha && score < beta {
				if v := s.negascout(depth-1, -beta, -alpha, side.Other(), false, elapsed()); v != AbortedScore {
					score = -v
				} else {
					score = AbortedScore
				}
			}
		})
		if score == AbortedScore {
			if isRoot {
				s.pos.Pending = board.TimedOut
			}
			return AbortedScore
		}

		if score > best {
			best, bestMove = score, m
			if score > alpha {
				alpha = score
			}
			if score >= beta {
				break
			}
		}
	}

	s.finish(fp, bestMove, best, isRoot)
	return best
}

// finish records a completed frame in the cache and, at the root, in
// pos.Pending.
func (s *Searcher) finish(fp board.Fingerprint, move board.Move, score int, isRoot bool) {
	if s.cache != nil {
		s.cache.Store(fp, move, score)
	}
	if isRoot {
		s.pos.Pending = move
	}
}
