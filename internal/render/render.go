// Package render draws a Position as a PNG. The board is built as an SVG
// document, rasterised with oksvg at an oversampled resolution and scaled
// down for smooth disc edges.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/othello/internal/board"
)

// SVG geometry in document units.
const (
	cellUnits   = 100
	marginUnits = 40
	discRadius  = 42
	markRadius  = 10
)

// Colours
const (
	boardColor  = "#2e8b57"
	gridColor   = "#0b2e1a"
	blackColor  = "#111111"
	whiteColor  = "#f5f5f5"
	markerColor = "#1b5e3a"
	lastColor   = "#d9352b"
)

// Options controls what is drawn.
type Options struct {
	Size       int  // output width and height in pixels
	Oversample int  // render scale before downsampling
	Labels     bool // file letters and rank digits in a margin

	// ShowMoves marks the legal squares of MovesFor.
	ShowMoves bool
	MovesFor  board.Side

	// LastMove is outlined when it is a square.
	LastMove board.Move
}

// DefaultOptions returns a 480px labelled board.
func DefaultOptions() Options {
	return Options{
		Size:       480,
		Oversample: 3,
		Labels:     true,
		LastMove:   board.NoMove,
	}
}

func (o Options) margin() int {
	if o.Labels {
		return marginUnits
	}
	return 0
}

func (o Options) total() int {
	return 8*cellUnits + 2*o.margin()
}

// SVG returns the board as an SVG document with row 1 at the top.
func SVG(pos *board.Position, opts Options) string {
	m, total := opts.margin(), opts.total()
	var sb strings.Builder

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`, total, total, total, total)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", total, total, gridColor)
	fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n", m, m, 8*cellUnits, 8*cellUnits, boardColor)

	for i := 0; i <= 8; i++ {
		p := m + i*cellUnits
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="3"/>`+"\n", p, m, p, m+8*cellUnits, gridColor)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="3"/>`+"\n", m, p, m+8*cellUnits, p, gridColor)
	}

	center := func(sq board.Square) (int, int) {
		return m + sq.X()*cellUnits + cellUnits/2, m + sq.Y()*cellUnits + cellUnits/2
	}

	pos.Taken.ForEach(func(sq board.Square) {
		side, _ := pos.SideAt(sq)
		fill := whiteColor
		if side == board.Black {
			fill = blackColor
		}
		cx, cy := center(sq)
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%d" fill="%s"/>`+"\n", cx, cy, discRadius, fill)
	})

	if opts.ShowMoves {
		pos.LegalMoves(opts.MovesFor).ForEach(func(sq board.Square) {
			cx, cy := center(sq)
			fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%d" fill="%s"/>`+"\n", cx, cy, markRadius, markerColor)
		})
	}

	if opts.LastMove.IsSquare() {
		sq := opts.LastMove.Square()
		x, y := m+sq.X()*cellUnits+4, m+sq.Y()*cellUnits+4
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="%s" stroke-width="6"/>`+"\n",
			x, y, cellUnits-8, cellUnits-8, lastColor)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// Image renders the board to an RGBA image of opts.Size pixels.
func Image(pos *board.Position, opts Options) (*image.RGBA, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Oversample <= 0 {
		opts.Oversample = 1
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(SVG(pos, opts)))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}

	// Render at higher resolution, then scale down
	renderSize := opts.Size * opts.Oversample
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))
	big := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, big, big.Bounds())
	raster := rasterx.NewDasher(renderSize, renderSize, scanner)
	icon.Draw(raster, 1.0)

	img := big
	if opts.Oversample > 1 {
		img = image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
		draw.CatmullRom.Scale(img, img.Bounds(), big, big.Bounds(), draw.Over, nil)
	}

	if opts.Labels {
		drawLabels(img, opts)
	}
	return img, nil
}

// drawLabels writes a-h above and 1-8 left of the board.
func drawLabels(img *image.RGBA, opts Options) {
	scale := float64(opts.Size) / float64(opts.total())
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0xe0, 0xe0, 0xe0, 0xff}),
		Face: basicfont.Face7x13,
	}
	m := float64(opts.margin())
	for i := 0; i < 8; i++ {
		mid := (m + float64(i*cellUnits+cellUnits/2)) * scale

		d.Dot = fixed.P(int(mid)-3, int(m*scale/2)+5)
		d.DrawString(string(rune('a' + i)))

		d.Dot = fixed.P(int(m*scale/2)-3, int(mid)+5)
		d.DrawString(string(rune('1' + i)))
	}
}

// PNG renders the board and encodes it to w.
func PNG(w io.Writer, pos *board.Position, opts Options) error {
	img, err := Image(pos, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
