// Package board implements the Othello board representation using bitboards.
package board

import "fmt"

// Square represents a square on the board (0-63).
// Square index is x + 8*y, so A1=0, H1=7, A8=56, H8=63. The file letter is
// the x coordinate and the rank digit is y+1.
type Square uint8

// Square constants used by tests and the weight table.
const (
	A1 Square = 0
	B1 Square = 1
	C1 Square = 2
	D1 Square = 3
	E1 Square = 4
	F1 Square = 5
	G1 Square = 6
	H1 Square = 7
	A2 Square = 8
	B2 Square = 9
	G2 Square = 14
	H2 Square = 15
	A3 Square = 16
	C3 Square = 18
	D3 Square = 19
	E3 Square = 20
	F3 Square = 21
	H3 Square = 23
	A4 Square = 24
	C4 Square = 26
	D4 Square = 27
	E4 Square = 28
	F4 Square = 29
	H4 Square = 31
	A5 Square = 32
	C5 Square = 34
	D5 Square = 35
	E5 Square = 36
	F5 Square = 37
	H5 Square = 39
	C6 Square = 42
	D6 Square = 43
	E6 Square = 44
	F6 Square = 45
	A7 Square = 48
	B7 Square = 49
	G7 Square = 54
	H7 Square = 55
	A8 Square = 56
	B8 Square = 57
	C8 Square = 58
	D8 Square = 59
	E8 Square = 60
	G8 Square = 62
	H8 Square = 63

	NoSquare Square = 64
)

// Corners lists the four corner squares.
var Corners = [4]Square{A1, H1, A8, H8}

// X returns the column of the square (0-7).
func (sq Square) X() int {
	return int(sq) & 7
}

// Y returns the row of the square (0-7).
func (sq Square) Y() int {
	return int(sq) >> 3
}

// String returns the square in coordinate notation (e.g., "d3").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.X(), '1'+sq.Y())
}

// NewSquare creates a square from x and y (0-indexed).
func NewSquare(x, y int) Square {
	return Square(y*8 + x)
}

// ParseSquare parses coordinate notation (e.g., "d3") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}

	x := int(s[0]) - 'a'
	y := int(s[1]) - '1'

	if !IsOnBoard(x, y) {
		return NoSquare, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}

	return NewSquare(x, y), nil
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// IsCorner returns true for a1, h1, a8 and h8.
func (sq Square) IsCorner() bool {
	return CornerMask.IsSet(sq)
}

// IsOnBoard reports whether (x, y) lies on the 8x8 board.
func IsOnBoard(x, y int) bool {
	return 0 <= x && x < 8 && 0 <= y && y < 8
}
