// Package contour parses manual contour files: one "x y" vertex per line,
// coordinates in pixel space of the matching DICOM slice.
package contour

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Point is one polygon vertex in pixel coordinates.
type Point struct {
	X, Y float64
}

// ParseFile reads a contour file into an ordered vertex list. Blank lines
// are ignored. A polygon needs at least 3 vertices to be rasterizable.
func ParseFile(path string) ([]Point, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	var pts []Point
	sc := bufio.NewScanner(fh)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 2 {
			return nil, fmt.Errorf("%s:%d: want 2 coordinates, got %d fields", path, ln, len(f))
		}
		x, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad x: %v", path, ln, err)
		}
		y, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad y: %v", path, ln, err)
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("%s: polygon needs at least 3 vertices, got %d", path, len(pts))
	}
	return pts, nil
}
