// Package mask rasterizes contour polygons into boolean pixel masks.
package mask

import (
	"errors"
	"image"
	"image/color"

	"github.com/llgcode/draw2d/draw2dimg"

	"dcmstream/internal/contour"
)

// Mask is a row-major boolean raster; Mask[y][x] is true inside the polygon.
type Mask [][]bool

// FromPolygon fills poly into a height×width raster. Antialiased edge
// coverage is thresholded at half intensity, matching the usual fill rule
// for hand-drawn contours.
func FromPolygon(poly []contour.Point, height, width int) (Mask, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.New("mask: non-positive raster dimensions")
	}
	if len(poly) < 3 {
		return nil, errors.New("mask: polygon needs at least 3 vertices")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(canvas)
	gc.SetFillColor(color.White)
	gc.MoveTo(poly[0].X, poly[0].Y)
	for _, p := range poly[1:] {
		gc.LineTo(p.X, p.Y)
	}
	gc.Close()
	gc.Fill()

	m := make(Mask, height)
	for y := 0; y < height; y++ {
		row := make([]bool, width)
		for x := 0; x < width; x++ {
			row[x] = canvas.RGBAAt(x, y).R >= 128
		}
		m[y] = row
	}
	return m, nil
}

// Resized returns a nearest-neighbour resample of m. Used when decoded
// images are normalized to a uniform size so pixels and mask keep matching
// spatial dimensions.
func (m Mask) Resized(height, width int) Mask {
	if len(m) == 0 || height <= 0 || width <= 0 {
		return nil
	}
	srcH, srcW := len(m), len(m[0])
	out := make(Mask, height)
	for y := 0; y < height; y++ {
		row := make([]bool, width)
		sy := y * srcH / height
		for x := 0; x < width; x++ {
			row[x] = m[sy][x*srcW/width]
		}
		out[y] = row
	}
	return out
}

// Count returns the number of set pixels.
func (m Mask) Count() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}
