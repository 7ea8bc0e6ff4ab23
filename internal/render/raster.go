package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/skip2/go-qrcode"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/mmynk/splitbill/internal/i18n"
)

// Rasterizer turns a summary view into a raster image.
type Rasterizer interface {
	Rasterize(ctx context.Context, s Summary) (image.Image, error)
}

// Layout in logical pixels.
const (
	canvasWidth     = 320
	margin          = 12
	lineHeight      = 12
	baselineOffset  = 9
	columnGap       = 8
	qrSize          = 96

	// maxScaledPixels caps the pixel count of a scaled image. Taller
	// summaries are drawn at a lower scale instead.
	maxScaledPixels = 16 << 20

	// DefaultScale doubles the resolution, like a 2x device pixel ratio.
	DefaultScale = 2
)

var (
	colorBG         = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorFG         = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorDim        = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	colorRule       = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	colorAccent     = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
	colorTax        = color.RGBA{R: 0xea, G: 0x58, B: 0x0c, A: 0xff}
	colorAdditional = color.RGBA{R: 0x93, G: 0x33, B: 0xea, A: 0xff}
)

type rowKind int

const (
	rowCentered rowKind = iota
	rowSplit
	rowRule
)

type row struct {
	kind  rowKind
	left  string
	right string
	color color.RGBA
}

// CanvasRasterizer draws summaries with a bitmap font and appends a QR code
// carrying Summary.Digest.
type CanvasRasterizer struct {
	Scale int
	font  tinyfont.Fonter
}

// NewCanvasRasterizer returns a rasterizer at DefaultScale.
func NewCanvasRasterizer() *CanvasRasterizer {
	return &CanvasRasterizer{Scale: DefaultScale, font: &proggy.TinySZ8pt7b}
}

// Rasterize draws s top to bottom: header, one block per person, footer, QR.
func (r *CanvasRasterizer) Rasterize(ctx context.Context, s Summary) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qr, err := qrcode.New(s.Digest(), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary QR code: %w", err)
	}

	rows := layout(s)
	height := margin + len(rows)*lineHeight + margin + qrSize + margin
	scale := fitScale(r.Scale, height)
	c := newCanvas(canvasWidth, height, scale, colorBG)

	y := margin
	for _, rw := range rows {
		r.drawRow(c, y, rw)
		y += lineHeight
	}

	y += margin
	c.drawImage((canvasWidth-qrSize)/2, y, qr.Image(qrSize*scale))

	return c.img, nil
}

// fitScale lowers scale until a canvasWidth x height image fits in
// maxScaledPixels. It never goes below 1.
func fitScale(scale, height int) int {
	if scale < 1 {
		scale = 1
	}
	for scale > 1 && canvasWidth*scale*height*scale > maxScaledPixels {
		scale--
	}
	return scale
}

func layout(s Summary) []row {
	rows := []row{
		{kind: rowCentered, left: s.Title, color: colorFG},
		{kind: rowCentered, left: s.GrandTotalLine, color: colorFG},
		{kind: rowCentered, left: s.ChargesLine, color: colorDim},
		{kind: rowRule},
	}

	for _, p := range s.People {
		rows = append(rows,
			row{kind: rowSplit, left: p.Name, right: p.Total, color: colorAccent},
			row{kind: rowSplit, left: s.OrdersLabel, color: colorDim},
		)
		for _, line := range p.Lines {
			rows = append(rows, row{kind: rowSplit, left: "  " + line.Item, right: line.Price, color: colorFG})
		}
		rows = append(rows,
			row{kind: rowSplit, left: s.SubtotalLabel, right: p.Subtotal, color: colorFG},
			row{kind: rowSplit, left: s.TaxLabel, right: p.Tax, color: colorTax},
			row{kind: rowSplit, left: s.AdditionalLabel, right: p.AdditionalShare, color: colorAdditional},
			row{kind: rowSplit, left: s.TotalLabel, right: p.Total, color: colorAccent},
			row{kind: rowRule},
		)
	}

	return append(rows, row{kind: rowCentered, left: s.GeneratedOn, color: colorDim})
}

func (r *CanvasRasterizer) drawRow(c *canvas, top int, rw row) {
	baseline := top + baselineOffset
	switch rw.kind {
	case rowRule:
		c.FillRectangle(margin, int16(top+lineHeight/2), canvasWidth-2*margin, 1, colorRule)

	case rowCentered:
		text := fitWidth(r.font, i18n.ASCIIFold(rw.left), canvasWidth-2*margin)
		x := (canvasWidth - textWidth(r.font, text)) / 2
		tinyfont.WriteLine(c, r.font, int16(x), int16(baseline), text, rw.color)

	case rowSplit:
		right := i18n.ASCIIFold(rw.right)
		rightWidth := textWidth(r.font, right)
		if right != "" {
			x := canvasWidth - margin - rightWidth
			tinyfont.WriteLine(c, r.font, int16(x), int16(baseline), right, rw.color)
		}
		left := fitWidth(r.font, i18n.ASCIIFold(rw.left), canvasWidth-2*margin-rightWidth-columnGap)
		tinyfont.WriteLine(c, r.font, margin, int16(baseline), left, rw.color)
	}
}

func textWidth(f tinyfont.Fonter, s string) int {
	_, w := tinyfont.LineWidth(f, s)
	return int(w)
}

// fitWidth shortens s with a trailing ".." until it fits in limit pixels.
// Every glyph advances at least one pixel, so no more than limit runes can
// fit and the rest is dropped before measuring.
func fitWidth(f tinyfont.Fonter, s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit && textWidth(f, s) <= limit {
		return s
	}
	if len(rs) > limit {
		rs = rs[:limit]
	}

	// Smallest prefix length whose shortened form no longer fits.
	n := sort.Search(len(rs)+1, func(n int) bool {
		return textWidth(f, string(rs[:n])+"..") > limit
	})
	if n == 0 {
		return ""
	}
	return string(rs[:n-1]) + ".."
}
