package board

// Change records the occupant a square held before a move altered it.
type Change struct {
	Square Square
	Prior  Occupant
}

type logKind uint8

const (
	kindChange logKind = iota
	kindPly
)

type logEntry struct {
	kind   logKind
	change Change
}

// MoveLog is an append-only sequence of square changes interleaved with ply
// markers. One log is owned by one search invocation (or one game session)
// and passed to every Apply/Undo that should be reversible.
//
// Commit places a permanent boundary: Undo never unwinds past it, so a
// session can keep committed history and speculative lines in one log.
//
// A search log is speculative: moves applied through it never re-weight
// corner neighbours.
type MoveLog struct {
	entries     []logEntry
	floor       int
	plies       int
	speculative bool
}

// NewMoveLog creates an empty game history log.
func NewMoveLog() *MoveLog {
	return &MoveLog{entries: make([]logEntry, 0, 512)}
}

// NewSearchLog creates an empty speculative log with room for a typical
// search.
func NewSearchLog() *MoveLog {
	return &MoveLog{entries: make([]logEntry, 0, 512), speculative: true}
}

// Speculative reports whether moves applied through l leave the weight
// table alone.
func (l *MoveLog) Speculative() bool {
	return l != nil && l.speculative
}

// Len returns the number of entries (changes and markers) above the
// permanent boundary.
func (l *MoveLog) Len() int {
	return len(l.entries) - l.floor
}

// Plies returns the number of undoable plies above the permanent boundary.
func (l *MoveLog) Plies() int {
	return l.plies
}

// Commit makes everything logged so far permanent.
func (l *MoveLog) Commit() {
	l.floor = len(l.entries)
	l.plies = 0
}

// Reset discards every entry, including committed history.
func (l *MoveLog) Reset() {
	l.entries = l.entries[:0]
	l.floor = 0
	l.plies = 0
}

func (l *MoveLog) beginPly() {
	l.entries = append(l.entries, logEntry{kind: kindPly})
	l.plies++
}

func (l *MoveLog) record(sq Square, prior Occupant) {
	l.entries = append(l.entries, logEntry{kind: kindChange, change: Change{Square: sq, Prior: prior}})
}

// popPly removes the newest ply and calls restore for each of its changes,
// newest first. It returns false if there is no ply above the boundary.
func (l *MoveLog) popPly(restore func(Change)) bool {
	if l.plies == 0 {
		return false
	}
	for i := len(l.entries) - 1; i >= l.floor; i-- {
		e := l.entries[i]
		if e.kind == kindPly {
			l.entries = l.entries[:i]
			l.plies--
			return true
		}
		restore(e.change)
	}
	// Unreachable while plies > 0.
	l.entries = l.entries[:l.floor]
	l.plies = 0
	return false
}
