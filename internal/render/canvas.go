package render

import (
	"image"
	"image/color"
	"image/draw"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*canvas)(nil)

// canvas adapts an RGBA image to the tinyfont display interface. Coordinates
// are logical; every logical pixel covers scale×scale image pixels.
type canvas struct {
	img   *image.RGBA
	scale int
}

func newCanvas(width, height, scale int, bg color.RGBA) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return &canvas{img: img, scale: scale}
}

func (c *canvas) Size() (x, y int16) {
	b := c.img.Bounds()
	return int16(b.Dx() / c.scale), int16(b.Dy() / c.scale)
}

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	w, h := c.Size()
	if x < 0 || x >= w || y < 0 || y >= h {
		return
	}
	c.fill(int(x), int(y), 1, 1, col)
}

func (c *canvas) Display() error { return nil }

func (c *canvas) FillRectangle(x, y, width, height int16, col color.RGBA) error {
	w, h := c.Size()
	x0 := clampInt(int(x), 0, int(w))
	y0 := clampInt(int(y), 0, int(h))
	x1 := clampInt(int(x)+int(width), 0, int(w))
	y1 := clampInt(int(y)+int(height), 0, int(h))
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	c.fill(x0, y0, x1-x0, y1-y0, col)
	return nil
}

func (c *canvas) fill(x, y, width, height int, col color.RGBA) {
	r := image.Rect(x*c.scale, y*c.scale, (x+width)*c.scale, (y+height)*c.scale)
	draw.Draw(c.img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// drawImage places src with its top-left corner at logical (x, y). src is
// expected at image resolution, not logical resolution.
func (c *canvas) drawImage(x, y int, src image.Image) {
	origin := image.Pt(x*c.scale, y*c.scale)
	r := image.Rectangle{Min: origin, Max: origin.Add(src.Bounds().Size())}
	draw.Draw(c.img, r, src, src.Bounds().Min, draw.Src)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
