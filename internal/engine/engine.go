package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/othello/internal/board"
)

// SearchInfo describes one completed iteration of iterative deepening.
type SearchInfo struct {
	Depth     int
	Algorithm Algorithm
	Move      board.Move
	Score     int
	Nodes     uint64
	Time      time.Duration
	CacheHits float64 // hit rate in percent
}

// Options configures an Engine.
type Options struct {
	Algorithm Algorithm
	MaxDepth  int
	// MoveLimit caps the time spent on any single move.
	MoveLimit time.Duration
	// EndgameEmpties switches to searching to the end of the game once this
	// few squares are empty.
	EndgameEmpties int
	// GreedyBelow plays the greedy weighted move when less clock time than
	// this remains.
	GreedyBelow time.Duration
	ChainCap    int
	Eviction    EvictionPolicy
	Eval        Evaluator
}

// MinimaxMaxDepth caps minimax, which has neither pruning nor time checks.
const MinimaxMaxDepth = 4

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Algorithm:      AlgoNegascout,
		MaxDepth:       12,
		MoveLimit:      2 * time.Second,
		EndgameEmpties: 10,
		GreedyBelow:    100 * time.Millisecond,
		ChainCap:       DefaultChainCap,
		Eviction:       PopularityEviction{},
		Eval:           PositionalScore,
	}
}

// Engine is an Othello player. It owns its Position, the game history and a
// transposition cache, and decides moves from the clock time it is given.
type Engine struct {
	pos      *board.Position
	history  *board.MoveLog
	cache    *Cache
	searcher *Searcher
	tm       *TimeManager
	opts     Options

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine playing side from the opening position.
func NewEngine(side board.Side, opts Options) *Engine {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	if opts.Eval == nil {
		opts.Eval = PositionalScore
	}
	e := &Engine{
		opts:  opts,
		cache: NewCache(opts.ChainCap, opts.Eviction),
		tm:    NewTimeManager(opts.MoveLimit),
	}
	e.reset(board.NewPosition(side))
	return e
}

func (e *Engine) reset(pos *board.Position) {
	e.pos = pos
	e.history = board.NewMoveLog()
	e.searcher = NewSearcher(pos, e.opts.Eval, e.cache)
	e.cache.Clear()
}

// NewGame starts over from the opening position, playing side.
func (e *Engine) NewGame(side board.Side) {
	e.reset(board.NewPosition(side))
}

// Position returns the engine's position. Callers must not apply moves to
// it directly; use ApplyMove so the history stays consistent.
func (e *Engine) Position() *board.Position {
	return e.pos
}

// Side returns the side the engine plays.
func (e *Engine) Side() board.Side {
	return e.pos.MySelf
}

// Searcher returns the engine's searcher.
func (e *Engine) Searcher() *Searcher {
	return e.searcher
}

// Cache returns the engine's transposition cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Load replaces the board with a 64-symbol description and clears the game
// history.
func (e *Engine) Load(desc string) {
	e.pos.Load(desc)
	e.history.Reset()
	e.cache.Clear()
}

// ApplyMove plays m for side in the game history. Passes are accepted only
// when side has no square move.
func (e *Engine) ApplyMove(m board.Move, side board.Side) bool {
	_, ok := e.pos.Apply(m, side, e.history)
	return ok
}

// Undo retracts the newest square move from the game history.
func (e *Engine) Undo() bool {
	return e.pos.Undo(e.history)
}

// History returns the game history log.
func (e *Engine) History() *board.MoveLog {
	return e.history
}

// Evaluate returns the static evaluation from the engine's point of view.
func (e *Engine) Evaluate() int {
	return e.opts.Eval(e.pos)
}

// Play applies the opponent's last move, chooses a reply with remaining
// clock time and applies it. opponentMove may be board.Pass or board.NoMove
// when the engine moves first. A negative remaining means no clock. The
// returned move is a square or board.Pass, never a reserved value.
func (e *Engine) Play(opponentMove board.Move, remaining time.Duration) board.Move {
	if opponentMove.IsSquare() {
		if !e.ApplyMove(opponentMove, e.pos.Opponent) {
			log.Warn().Str("move", opponentMove.String()).Msg("ignoring illegal opponent move")
		}
	}

	m := e.Think(remaining)
	if m.IsSquare() {
		e.ApplyMove(m, e.pos.MySelf)
	}
	return m
}

// Think chooses a move for the engine's side without playing it.
func (e *Engine) Think(remaining time.Duration) board.Move {
	side := e.pos.MySelf
	if !e.pos.HasAnyLegalMove(side) {
		return board.Pass
	}
	if remaining >= 0 && remaining < e.opts.GreedyBelow {
		m := e.GreedyMove(side)
		log.Debug().Dur("remaining", remaining).Str("move", m.String()).Msg("low on time, playing greedy move")
		return m
	}
	return e.iterate(remaining)
}

// algorithmFor returns the algorithm and depth limit for the current board.
func (e *Engine) algorithmFor() (Algorithm, int) {
	algo, maxDepth := e.opts.Algorithm, e.opts.MaxDepth
	empties := e.pos.Empties()
	if empties <= e.opts.EndgameEmpties && algo != AlgoMinimax {
		maxDepth = max(maxDepth, empties)
	}
	if algo == AlgoMinimax {
		maxDepth = min(maxDepth, MinimaxMaxDepth)
	}
	return algo, maxDepth
}

// iterate runs iterative deepening until the depth limit, the end of the
// game or the time budget is reached. An aborted iteration is discarded in
// favour of the last completed one.
func (e *Engine) iterate(remaining time.Duration) board.Move {
	side := e.pos.MySelf
	empties := e.pos.Empties()
	algo, maxDepth := e.algorithmFor()
	e.tm.Init(remaining, empties)

	bestMove := board.NoMove
	stability := 0

	for depth := 1; depth <= maxDepth; depth++ {
		if e.tm.ShouldStop() {
			break
		}
		e.searcher.SetCeiling(e.tm.Ceiling())

		move, score := e.searcher.Search(algo, depth, side)
		if move == board.TimedOut {
			log.Debug().Int("depth", depth).Dur("elapsed", e.tm.Elapsed()).Msg("search timed out, keeping previous result")
			break
		}
		if !move.IsSquare() {
			break
		}

		if move == bestMove {
			stability++
			if stability == 4 {
				e.tm.AdjustForStability(stability)
			}
		} else {
			stability = 0
		}
		bestMove = move

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:     depth,
				Algorithm: algo,
				Move:      move,
				Score:     score,
				Nodes:     e.searcher.Nodes(),
				Time:      e.tm.Elapsed(),
				CacheHits: e.cache.HitRate(),
			})
		}

		// Every square is filled within empties plies.
		if depth >= empties {
			break
		}
		if e.tm.PastOptimum() {
			break
		}
	}

	if !bestMove.IsSquare() {
		bestMove = e.GreedyMove(side)
		log.Info().Str("move", bestMove.String()).Msg("no search completed, falling back to greedy move")
	}
	e.pos.Pending = bestMove
	return bestMove
}

// GreedyMove returns side's legal square with the highest weight, the first
// in row-major order on ties, or board.Pass when side cannot move.
func (e *Engine) GreedyMove(side board.Side) board.Move {
	return GreedyMove(e.pos, side)
}

// GreedyMove returns side's legal square on pos with the highest weight.
func GreedyMove(pos *board.Position, side board.Side) board.Move {
	best, bestWeight := board.Pass, 0
	pos.LegalMoves(side).ForEach(func(sq board.Square) {
		w := pos.Weight(sq)
		if best == board.Pass || w > bestWeight {
			best, bestWeight = board.MoveAt(sq), w
		}
	})
	return best
}
