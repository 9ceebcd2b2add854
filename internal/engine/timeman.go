package engine

import (
	"time"
)

// TimeManager turns the clock time left for the whole game into a budget
// for one move.
type TimeManager struct {
	optimumTime time.Duration // don't start another iteration after this
	maximumTime time.Duration // abort ceiling for the running iteration
	startTime   time.Time
	limit       time.Duration // per-move cap, also used when there is no clock
}

// NewTimeManager creates a time manager that never spends more than limit
// on a single move.
func NewTimeManager(limit time.Duration) *TimeManager {
	if limit <= 0 {
		limit = NoCeiling
	}
	return &TimeManager{limit: limit}
}

// Init plans a move with remaining clock time and empties empty squares.
// A negative remaining means the game has no clock.
func (tm *TimeManager) Init(remaining time.Duration, empties int) {
	tm.startTime = time.Now()

	if remaining < 0 {
		tm.optimumTime = tm.limit / 2
		tm.maximumTime = tm.limit
		return
	}

	// Each side plays about half of the remaining empties.
	mtg := (empties + 1) / 2
	if mtg < 1 {
		mtg = 1
	}
	if mtg > 30 {
		mtg = 30
	}

	baseTime := remaining / time.Duration(mtg)
	tm.optimumTime = baseTime

	// Opening moves matter less; bank some time for the middle game.
	if empties > 50 {
		tm.optimumTime = baseTime * 85 / 100
	}

	// Maximum time: 3x optimum or 80% of remaining, whichever is smaller
	tm.maximumTime = min(tm.optimumTime*3, remaining*8/10)

	if tm.maximumTime > tm.limit {
		tm.maximumTime = tm.limit
	}
	if tm.optimumTime > tm.maximumTime {
		tm.optimumTime = tm.maximumTime
	}
}

// Elapsed returns the time elapsed since Init.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// Ceiling returns the abort ceiling for a search starting now.
func (tm *TimeManager) Ceiling() time.Duration {
	left := tm.maximumTime - tm.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// ShouldStop returns true if no time is left for this move.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum returns true if we've exceeded the optimum time.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}

// AdjustForStability shortens the optimum when the best move hasn't changed
// for several depths.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimumTime = tm.optimumTime * 40 / 100
	case stability >= 4:
		tm.optimumTime = tm.optimumTime * 60 / 100
	case stability >= 2:
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}
