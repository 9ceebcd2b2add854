package board

// Side represents one of the two players.
type Side uint8

const (
	Black Side = iota
	White
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return s ^ 1
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "NoSide"
	}
}

// Symbol returns the single-character symbol used by the bulk loader and
// fingerprints.
func (s Side) Symbol() byte {
	if s == Black {
		return 'B'
	}
	return 'W'
}

// ParseSide parses "black"/"b" or "white"/"w" (any case).
func ParseSide(s string) (Side, bool) {
	switch s {
	case "black", "Black", "BLACK", "b", "B":
		return Black, true
	case "white", "White", "WHITE", "w", "W":
		return White, true
	}
	return Black, false
}

// Occupant is the state of a single square relative to a Position's own side.
type Occupant uint8

const (
	Empty Occupant = iota
	Own
	Opponent
)

// String returns the occupant name.
func (o Occupant) String() string {
	switch o {
	case Own:
		return "own"
	case Opponent:
		return "opponent"
	default:
		return "empty"
	}
}
