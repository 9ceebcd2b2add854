package board

// Perft counts the leaf nodes of the game tree to the given depth from the
// current position with side to move. A forced pass counts as a ply; a
// position where neither side can move is a leaf. The board is restored
// before returning.
func Perft(p *Position, side Side, depth int) int64 {
	return perft(p, side, NewSearchLog(), depth, false)
}

func perft(p *Position, side Side, log *MoveLog, depth int, passed bool) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves(side)
	if moves.Len() == 0 {
		if passed {
			return 1
		}
		return perft(p, side.Other(), log, depth-1, true)
	}

	var nodes int64
	for _, m := range moves.Slice() {
		p.Try(m, side, log, func() {
			nodes += perft(p, side.Other(), log, depth-1, false)
		})
	}
	return nodes
}
