package board

// Fingerprint is the exact serialisation of every square: 'B' for a black
// disc, 'W' for a white disc and '.' for an empty square, in row-major
// order. Two positions share a fingerprint iff their boards are identical.
type Fingerprint [64]byte

// Fingerprint returns the exact serialisation of the board.
func (p *Position) Fingerprint() Fingerprint {
	var fp Fingerprint
	for i := range fp {
		fp[i] = '.'
	}
	for _, side := range [2]Side{Black, White} {
		for _, sq := range p.Discs(side).Squares() {
			fp[sq] = side.Symbol()
		}
	}
	return fp
}

// BlackCount returns the number of black discs encoded in the fingerprint.
func (fp Fingerprint) BlackCount() int {
	n := 0
	for _, c := range fp {
		if c == Black.Symbol() {
			n++
		}
	}
	return n
}

// String returns the fingerprint as a 64-character string, which is also a
// valid Load description.
func (fp Fingerprint) String() string {
	return string(fp[:])
}
