package board

import (
	"fmt"
	"strings"
)

// Position is the full board state of one game, seen from one side.
//
// Taken has bit i set iff square i holds a disc. BlackDiscs distinguishes
// colour and is kept zero on empty squares so that undo restores both masks
// bit for bit. MySelf and Opponent are fixed for the lifetime of the
// Position; the weight table belongs to MySelf's point of view.
type Position struct {
	Taken      Bitboard
	BlackDiscs Bitboard

	MySelf   Side
	Opponent Side

	// Pending is the move chosen by the most recent root search.
	Pending Move

	weights [64]int
}

// NewPosition creates the standard opening position for the given side:
// white on d4 and e5, black on e4 and d5.
func NewPosition(mySelf Side) *Position {
	p := &Position{
		MySelf:   mySelf,
		Opponent: mySelf.Other(),
		Pending:  NoMove,
		weights:  initialWeights,
	}
	p.set(White, D4)
	p.set(White, E5)
	p.set(Black, E4)
	p.set(Black, D5)
	return p
}

// Copy creates a deep copy of the position, including its weight table.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Occupied returns true if (x, y) holds a disc.
func (p *Position) Occupied(x, y int) bool {
	return p.Taken.IsSet(NewSquare(x, y))
}

// Owns returns true if (x, y) holds a disc of the given side.
func (p *Position) Owns(side Side, x, y int) bool {
	return p.Discs(side).IsSet(NewSquare(x, y))
}

// Discs returns the bitboard of the given side's discs.
func (p *Position) Discs(side Side) Bitboard {
	if side == Black {
		return p.Taken & p.BlackDiscs
	}
	return p.Taken &^ p.BlackDiscs
}

// At returns the occupant of sq relative to MySelf.
func (p *Position) At(sq Square) Occupant {
	if !p.Taken.IsSet(sq) {
		return Empty
	}
	if p.BlackDiscs.IsSet(sq) == (p.MySelf == Black) {
		return Own
	}
	return Opponent
}

// SideAt returns the side holding sq and false if it is empty.
func (p *Position) SideAt(sq Square) (Side, bool) {
	if !p.Taken.IsSet(sq) {
		return Black, false
	}
	if p.BlackDiscs.IsSet(sq) {
		return Black, true
	}
	return White, true
}

// set places a disc of side on sq (no logging).
func (p *Position) set(side Side, sq Square) {
	bb := SquareBB(sq)
	p.Taken |= bb
	if side == Black {
		p.BlackDiscs |= bb
	} else {
		p.BlackDiscs &^= bb
	}
}

// restore puts sq back to a logged prior occupant.
func (p *Position) restore(c Change) {
	switch c.Prior {
	case Empty:
		bb := SquareBB(c.Square)
		p.Taken &^= bb
		p.BlackDiscs &^= bb
	case Own:
		p.set(p.MySelf, c.Square)
	case Opponent:
		p.set(p.Opponent, c.Square)
	}
}

// Count returns the number of discs held by side.
func (p *Position) Count(side Side) int {
	return p.Discs(side).PopCount()
}

// CountBlack returns the number of black discs.
func (p *Position) CountBlack() int {
	return p.Discs(Black).PopCount()
}

// CountWhite returns the number of white discs.
func (p *Position) CountWhite() int {
	return p.Discs(White).PopCount()
}

// DiscCount returns the total number of discs on the board.
func (p *Position) DiscCount() int {
	return p.Taken.PopCount()
}

// Empties returns the number of empty squares.
func (p *Position) Empties() int {
	return 64 - p.Taken.PopCount()
}

// IsDone returns true if neither side has a legal move.
func (p *Position) IsDone() bool {
	return !p.HasAnyLegalMove(Black) && !p.HasAnyLegalMove(White)
}

// Apply plays m for side. Illegal moves and passes leave the board untouched
// and return ok=false (a pass is reported as ok when it is legal). For a
// square move every flipped disc and the placed disc are recorded in log, if
// one is given, after a ply marker. Taking a corner outside a search log
// re-weights its neighbours; that adjustment is not logged and survives
// Undo.
func (p *Position) Apply(m Move, side Side, log *MoveLog) (flipped int, ok bool) {
	if m == Pass {
		return 0, p.IsLegal(Pass, side)
	}
	if !p.IsLegal(m, side) {
		return 0, false
	}
	if log != nil {
		log.beginPly()
	}

	from := m.Square()
	X, Y := from.X(), from.Y()
	other := side.Other()

	for _, d := range Directions {
		x, y := X+d.DX, Y+d.DY
		for IsOnBoard(x, y) && p.Owns(other, x, y) {
			x += d.DX
			y += d.DY
		}
		if !IsOnBoard(x, y) || !p.Owns(side, x, y) {
			continue
		}
		x, y = X+d.DX, Y+d.DY
		for p.Owns(other, x, y) {
			sq := NewSquare(x, y)
			if log != nil {
				log.record(sq, p.At(sq))
			}
			p.set(side, sq)
			flipped++
			x += d.DX
			y += d.DY
		}
	}

	if log != nil {
		log.record(from, Empty)
	}
	p.set(side, from)

	if from.IsCorner() && !log.Speculative() {
		p.reweightCorner(from, side)
	}

	return flipped, true
}

// Undo reverts the newest logged ply. It returns false without touching the
// board when the log holds nothing above its committed boundary.
func (p *Position) Undo(log *MoveLog) bool {
	if log == nil {
		return false
	}
	return log.popPly(p.restore)
}

// Try applies m for side, runs fn and undoes the move before returning, even
// when fn panics. It reports whether m was applied. log must not be nil.
func (p *Position) Try(m Move, side Side, log *MoveLog, fn func()) bool {
	if !m.IsSquare() {
		return false
	}
	if _, ok := p.Apply(m, side, log); !ok {
		return false
	}
	defer p.Undo(log)
	fn()
	return true
}

// Load overwrites all 64 squares from a flat description in row-major order
// (a1, b1, ..., h8). 'b'/'B' is a black disc, 'w'/'W' a white disc and any
// other symbol, or a missing one, leaves the square empty. Legality is not
// checked. Used to seed known positions in tests and tools.
func (p *Position) Load(desc string) {
	p.Taken = 0
	p.BlackDiscs = 0
	for i := 0; i < 64 && i < len(desc); i++ {
		switch desc[i] {
		case 'b', 'B':
			p.set(Black, Square(i))
		case 'w', 'W':
			p.set(White, Square(i))
		}
	}
}

// String returns a visual representation of the position with row 1 on top.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for y := 0; y < 8; y++ {
		fmt.Fprintf(&sb, "%d ", y+1)
		for x := 0; x < 8; x++ {
			sq := NewSquare(x, y)
			side, ok := p.SideAt(sq)
			switch {
			case !ok:
				sb.WriteString(". ")
			case side == Black:
				sb.WriteString("B ")
			default:
				sb.WriteString("W ")
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Black: %d  White: %d  Me: %s\n", p.CountBlack(), p.CountWhite(), p.MySelf)
	return sb.String()
}
