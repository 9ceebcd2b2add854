package board

import (
	"fmt"
	"math/bits"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8.
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = 0x0202020202020202
	FileG Bitboard = 0x4040404040404040
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000
)

// Special masks
const (
	Empty64  Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF

	NotFileA Bitboard = ^FileA
	NotFileH Bitboard = ^FileH

	CornerMask Bitboard = 1<<A1 | 1<<H1 | 1<<A8 | 1<<H8

	// EdgeMiddle holds three middle squares of each edge: c-e on ranks 1
	// and 8, 3-5 on files a and h.
	EdgeMiddle Bitboard = 1<<C1 | 1<<D1 | 1<<E1 |
		1<<C8 | 1<<D8 | 1<<E8 |
		1<<A3 | 1<<A4 | 1<<A5 |
		1<<H3 | 1<<H4 | 1<<H5
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | (1 << sq)
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ (1 << sq)
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits (population count).
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the least significant bit (lowest square index).
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Direction is one of the eight compass directions used for ray scans.
type Direction struct {
	DX, DY int
}

// Directions lists the eight ray directions in the order the legality and
// flip scans visit them.
var Directions = [8]Direction{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Shift moves every bit one step in direction d, dropping bits that would wrap
// around a file edge or fall off the board.
func (b Bitboard) Shift(d Direction) Bitboard {
	switch {
	case d.DX == 1:
		b = (b << 1) & NotFileA
	case d.DX == -1:
		b = (b >> 1) & NotFileH
	}
	switch {
	case d.DY == 1:
		b <<= 8
	case d.DY == -1:
		b >>= 8
	}
	return b
}

// Neighbors returns every square adjacent to a set bit.
func (b Bitboard) Neighbors() Bitboard {
	var n Bitboard
	for _, d := range Directions {
		n |= b.Shift(d)
	}
	return n
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	s := ""
	for y := 7; y >= 0; y-- {
		s += fmt.Sprintf("%d ", y+1)
		for x := 0; x < 8; x++ {
			if b.IsSet(NewSquare(x, y)) {
				s += "1 "
			} else {
				s += ". "
			}
		}
		s += "\n"
	}
	s += "  a b c d e f g h\n"
	return s
}

// ForEach calls the function for each set square in ascending order.
func (b Bitboard) ForEach(f func(Square)) {
	for b != 0 {
		f(b.PopLSB())
	}
}

// Squares returns a slice of all squares that are set, in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
