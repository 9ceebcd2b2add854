package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadNotation is returned when a move or square string cannot be parsed.
var ErrBadNotation = errors.New("bad notation")

// Move is either a board square (0-63) or one of the sentinel values below.
type Move uint8

const (
	// Pass is played when the side to move has no legal square.
	Pass Move = 64
	// NoMove marks that no candidate ever beat the search floor.
	NoMove Move = 65
	// TimedOut is reported by a search that hit its time ceiling.
	TimedOut Move = 66
)

// NewMove creates a move onto square (x, y).
func NewMove(x, y int) Move {
	return Move(NewSquare(x, y))
}

// MoveAt creates a move onto the given square.
func MoveAt(sq Square) Move {
	return Move(sq)
}

// IsSquare returns true if the move places a disc.
func (m Move) IsSquare() bool {
	return m < 64
}

// Square returns the destination square, or NoSquare for sentinels.
func (m Move) Square() Square {
	if !m.IsSquare() {
		return NoSquare
	}
	return Square(m)
}

// X returns the column of the move, or -1 for sentinels.
func (m Move) X() int {
	if !m.IsSquare() {
		return -1
	}
	return Square(m).X()
}

// Y returns the row of the move, or -1 for sentinels.
func (m Move) Y() int {
	if !m.IsSquare() {
		return -1
	}
	return Square(m).Y()
}

// String returns the move in coordinate notation, "pass", "none" or "timeout".
func (m Move) String() string {
	switch m {
	case Pass:
		return "pass"
	case NoMove:
		return "none"
	case TimedOut:
		return "timeout"
	}
	return Square(m).String()
}

// ParseMove parses "d3"-style notation or "pass".
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "pass" || s == "--" {
		return Pass, nil
	}
	sq, err := ParseSquare(s)
	if err != nil {
		return NoMove, fmt.Errorf("parse move: %w", err)
	}
	return MoveAt(sq), nil
}
