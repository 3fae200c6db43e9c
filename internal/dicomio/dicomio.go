// Package dicomio decodes DICOM files into plain pixel matrices.
//
// Only the first frame is used; the cardiac MRI series this tool targets
// stores one slice per file. Values are the raw 16-bit intensities.
package dicomio

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Image is a decoded slice: row-major intensities with Rows×Cols extent.
type Image struct {
	Rows, Cols int
	Pixels     [][]float64
}

// Decode parses a DICOM file and extracts its first frame.
func Decode(path string) (*Image, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("%s: no pixel data: %w", path, err)
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected pixel data element", path)
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("%s: pixel data holds no frames", path)
	}
	img, err := info.Frames[0].GetImage()
	if err != nil {
		return nil, fmt.Errorf("%s: decode frame: %w", path, err)
	}
	return fromImage(img), nil
}

// Resized returns a size×size bilinear resample of img, round-tripping
// through Gray16 so raw intensities survive. size <= 0 keeps native dims.
func (img *Image) Resized(size int) *Image {
	if size <= 0 || (img.Rows == size && img.Cols == size) {
		return img
	}
	g := image.NewGray16(image.Rect(0, 0, img.Cols, img.Rows))
	for y, row := range img.Pixels {
		for x, v := range row {
			if v < 0 {
				v = 0
			} else if v > 0xffff {
				v = 0xffff
			}
			g.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return fromImage(resize.Resize(uint(size), uint(size), g, resize.Bilinear))
}

// Max returns the largest intensity, used for display normalization.
func (img *Image) Max() float64 {
	max := 0.0
	for _, row := range img.Pixels {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	}
	return max
}

func fromImage(src image.Image) *Image {
	b := src.Bounds()
	rows, cols := b.Dy(), b.Dx()
	px := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		row := make([]float64, cols)
		for x := 0; x < cols; x++ {
			// 16-bit luma; for grayscale sources R carries the raw value.
			r, _, _, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = float64(r)
		}
		px[y] = row
	}
	return &Image{Rows: rows, Cols: cols, Pixels: px}
}
