package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/othello/internal/board"
)

func TestSVGElements(t *testing.T) {
	pos := board.NewPosition(board.Black)
	opts := DefaultOptions()
	opts.ShowMoves = true
	opts.MovesFor = board.Black
	opts.LastMove = board.NewMove(3, 2)

	doc := SVG(pos, opts)
	assert.True(t, strings.HasPrefix(doc, "<svg"))
	// Four discs plus four legal-move markers.
	assert.Equal(t, 8, strings.Count(doc, "<circle"))
	assert.Equal(t, 2, strings.Count(doc, `fill="`+blackColor+`"`))
	assert.Equal(t, 2, strings.Count(doc, `fill="`+whiteColor+`"`))
	assert.Contains(t, doc, `stroke="`+lastColor+`"`)
}

func TestImagePixels(t *testing.T) {
	pos := board.NewPosition(board.Black)
	opts := Options{Size: 400, Oversample: 2, LastMove: board.NoMove}

	img, err := Image(pos, opts)
	require.NoError(t, err)
	require.Equal(t, 400, img.Bounds().Dx())
	require.Equal(t, 400, img.Bounds().Dy())

	// 50px cells without labels; sample cell centres.
	white := img.RGBAAt(175, 175) // d4
	black := img.RGBAAt(225, 175) // e4
	empty := img.RGBAAt(25, 25)   // a1

	assert.Greater(t, white.R, uint8(200))
	assert.Less(t, black.R, uint8(60))
	assert.Greater(t, empty.G, empty.R)
	assert.Greater(t, empty.G, empty.B)
}

func TestPNG(t *testing.T) {
	pos := board.NewPosition(board.White)
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, pos, DefaultOptions()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 480, img.Bounds().Dx())
}

func TestImageDefaultsSize(t *testing.T) {
	img, err := Image(board.NewPosition(board.Black), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Size, img.Bounds().Dx())
}
