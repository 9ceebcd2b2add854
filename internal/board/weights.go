package board

// Corner re-weighting factors. When the engine's own side takes a corner the
// three neighbours (negative until then) are multiplied by OwnCornerFactor and
// become strongly positive. When the opponent takes it they are divided by
// OpponentCornerDivisor and stay mildly negative.
const (
	OwnCornerFactor       = -10
	OpponentCornerDivisor = 10
)

// cornerNeighbors maps each corner to its two orthogonal and one diagonal
// neighbour.
var cornerNeighbors = map[Square][3]Square{
	A1: {B1, A2, B2},
	H1: {G1, H2, G2},
	A8: {A7, B7, B8},
	H8: {G8, G7, H7},
}

// CornerNeighbors returns the three squares re-weighted when corner is taken.
func CornerNeighbors(corner Square) ([3]Square, bool) {
	n, ok := cornerNeighbors[corner]
	return n, ok
}

// initialWeights is the quadrant-symmetric seed table: corners and edges are
// positive, the ring one square in from an edge is strongly negative, and the
// ring two squares in is mildly negative.
var initialWeights = buildInitialWeights()

func buildInitialWeights() [64]int {
	var w [64]int
	for i := range w {
		row, col := i/8, i%8
		s := 1
		if col == 0 || col == 7 {
			s *= 3
		}
		if row == 0 || row == 7 {
			s *= 3
		}
		if (row == 2 || row == 5) && !(i == 16 || i == 23 || i == 40 || i == 47) {
			s = -2 * abs(s)
		}
		if (col == 2 || col == 5) && !(i == 2 || i == 5 || i == 58 || i == 61) {
			s = -2 * abs(s)
		}
		if row == 1 || row == 6 {
			s = -5 * abs(s)
		}
		if col == 1 || col == 6 {
			s = -5 * abs(s)
		}
		w[i] = s
	}
	// X-squares
	w[B2] *= 3
	w[G2] *= 3
	w[B7] *= 3
	w[G7] *= 3
	return w
}

// InitialWeights returns a copy of the seed weight table.
func InitialWeights() [64]int {
	return initialWeights
}

// reweightCorner sets the neighbours of corner for side having captured it.
// The factor is applied to the seed weights, so the table always reflects
// the latest committed capture of each corner.
func (p *Position) reweightCorner(corner Square, side Side) {
	for _, sq := range cornerNeighbors[corner] {
		if side == p.MySelf {
			p.weights[sq] = initialWeights[sq] * OwnCornerFactor
		} else {
			p.weights[sq] = initialWeights[sq] / OpponentCornerDivisor
		}
	}
}

// Weight returns the current positional weight of sq.
func (p *Position) Weight(sq Square) int {
	return p.weights[sq]
}

// Weights returns a copy of the current weight table.
func (p *Position) Weights() [64]int {
	return p.weights
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
