package board

// IsLegal reports whether side may play m. A square move is legal when the
// square is empty and at least one of the eight rays from it crosses one or
// more opponent discs and then ends, still on the board, on one of side's
// discs. Passing is legal only when no square move is.
func (p *Position) IsLegal(m Move, side Side) bool {
	if m == Pass {
		return !p.HasAnyLegalMove(side)
	}
	if !m.IsSquare() {
		return false
	}

	X, Y := m.X(), m.Y()
	if p.Occupied(X, Y) {
		return false
	}

	other := side.Other()
	for _, d := range Directions {
		x, y := X+d.DX, Y+d.DY
		if !IsOnBoard(x, y) || !p.Owns(other, x, y) {
			continue
		}
		for IsOnBoard(x, y) && p.Owns(other, x, y) {
			x += d.DX
			y += d.DY
		}
		if IsOnBoard(x, y) && p.Owns(side, x, y) {
			return true
		}
	}
	return false
}

// LegalMoves returns the bitboard of every legal square for side, computed
// with directional flood fills.
func (p *Position) LegalMoves(side Side) Bitboard {
	own := p.Discs(side)
	opp := p.Discs(side.Other())
	empty := ^p.Taken

	var moves Bitboard
	for _, d := range Directions {
		x := own.Shift(d) & opp
		// Opponent runs are at most six discs long.
		for i := 0; i < 5; i++ {
			x |= x.Shift(d) & opp
		}
		moves |= x.Shift(d) & empty
	}
	return moves
}

// HasAnyLegalMove returns true if side has at least one legal square.
func (p *Position) HasAnyLegalMove(side Side) bool {
	return p.LegalMoves(side) != 0
}

// GenerateLegalMoves lists the legal square moves for side in row-major
// order (a1, b1, ..., h8).
func (p *Position) GenerateLegalMoves(side Side) *MoveList {
	ml := NewMoveList()
	p.LegalMoves(side).ForEach(func(sq Square) {
		ml.Add(MoveAt(sq))
	})
	return ml
}

// Flips returns the discs that m would flip for side without changing the
// position. It returns 0 for illegal moves.
func (p *Position) Flips(m Move, side Side) Bitboard {
	if !m.IsSquare() || !p.IsLegal(m, side) {
		return 0
	}
	own := p.Discs(side)
	opp := p.Discs(side.Other())
	from := SquareBB(m.Square())

	var flips Bitboard
	for _, d := range Directions {
		var run Bitboard
		x := from.Shift(d)
		for x&opp != 0 {
			run |= x
			x = x.Shift(d)
		}
		if x&own != 0 {
			flips |= run
		}
	}
	return flips
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [64]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// MoveToFront moves m to index 0, shifting the moves before it back by one
// so the remaining order is kept. It returns false if m is not in the list.
func (ml *MoveList) MoveToFront(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			copy(ml.moves[1:i+1], ml.moves[:i])
			ml.moves[0] = m
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
