// Package loader turns one matched file pair into a training sample.
//
// Two strategies exist: the production Loader decodes, parses, and
// rasterizes; Passthrough echoes the pair back and exists so the batching
// protocol can be exercised without real imaging files.
package loader

import (
	"fmt"
	"io"

	"dcmstream/internal/cmdutil"
	"dcmstream/internal/contour"
	"dcmstream/internal/dicomio"
	"dcmstream/internal/mask"
	"dcmstream/internal/pairs"
)

// Sample is one loaded (pixels, mask) pair. Pixels and Mask always share
// the same spatial extent; a pair for which that cannot be established is
// dropped during loading, never propagated.
type Sample struct {
	Pixels [][]float64
	Mask   mask.Mask
}

// Config controls the production loader.
type Config struct {
	// Resize normalizes every sample to Resize×Resize so batches stack
	// uniformly. 0 keeps native dimensions.
	Resize int
	// Log receives per-file progress lines; nil discards them.
	Log   io.Writer
	Quiet bool
}

// Loader is the production strategy. The three stages are function fields
// so tests can substitute fakes without touching imaging files.
type Loader struct {
	cfg       Config
	decode    func(path string) (*dicomio.Image, error)
	parse     func(path string) ([]contour.Point, error)
	rasterize func(poly []contour.Point, height, width int) (mask.Mask, error)
}

// New returns a Loader wired to the real decoder, parser, and rasterizer.
func New(cfg Config) *Loader {
	return &Loader{
		cfg:       cfg,
		decode:    dicomio.Decode,
		parse:     contour.ParseFile,
		rasterize: mask.FromPolygon,
	}
}

// Load decodes the DICOM, parses the contour, and rasterizes it at the
// image's native extent. Any stage failing drops the pair: the error is
// reported to the caller (which skips and continues), never retried.
func (l *Loader) Load(p pairs.FilePair) (Sample, error) {
	cmdutil.Logf(l.cfg.Log, l.cfg.Quiet, "loading DICOM %s", p.ImagePath)
	img, err := l.decode(p.ImagePath)
	if err != nil {
		return Sample{}, fmt.Errorf("decode: %w", err)
	}

	cmdutil.Logf(l.cfg.Log, l.cfg.Quiet, "loading contour %s", p.ContourPath)
	poly, err := l.parse(p.ContourPath)
	if err != nil {
		return Sample{}, fmt.Errorf("contour: %w", err)
	}

	m, err := l.rasterize(poly, img.Rows, img.Cols)
	if err != nil {
		return Sample{}, fmt.Errorf("rasterize: %w", err)
	}
	if len(m) != img.Rows || (img.Rows > 0 && len(m[0]) != img.Cols) {
		return Sample{}, fmt.Errorf("rasterize: mask %dx%d does not cover image %dx%d",
			len(m), width(m), img.Rows, img.Cols)
	}

	if l.cfg.Resize > 0 {
		img = img.Resized(l.cfg.Resize)
		m = m.Resized(l.cfg.Resize, l.cfg.Resize)
	}
	return Sample{Pixels: img.Pixels, Mask: m}, nil
}

// Passthrough is the protocol-testing strategy: the pair itself is the
// sample.
func Passthrough(p pairs.FilePair) (pairs.FilePair, error) {
	return p, nil
}

func width(m mask.Mask) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}
