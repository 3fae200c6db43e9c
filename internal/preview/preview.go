// Package preview serves mask overlays for visual inspection of matched
// pairs, one PNG per request.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"

	"github.com/valyala/fasthttp"

	"dcmstream/internal/contour"
	"dcmstream/internal/dicomio"
	"dcmstream/internal/manifest"
	"dcmstream/internal/mask"
	"dcmstream/internal/pairs"
)

// Server resolves pairs under DataRoot on demand. Stateless apart from the
// root path, so safe for concurrent requests.
type Server struct {
	DataRoot string
}

// Handler answers GET /preview?study=<image-subdir>&case=<identifier> with
// an image/png overlay of the contour mask on the DICOM slice.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	study := string(ctx.URI().QueryArgs().Peek("study"))
	caseID := string(ctx.URI().QueryArgs().Peek("case"))
	if study == "" || caseID == "" {
		ctx.Error("study and case query parameters are required", fasthttp.StatusBadRequest)
		return
	}

	p, err := s.findPair(study, caseID)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusNotFound)
		return
	}

	img, err := dicomio.Decode(p.ImagePath)
	if err != nil {
		ctx.Error(fmt.Sprintf("decode: %v", err), fasthttp.StatusInternalServerError)
		return
	}
	poly, err := contour.ParseFile(p.ContourPath)
	if err != nil {
		ctx.Error(fmt.Sprintf("contour: %v", err), fasthttp.StatusInternalServerError)
		return
	}
	m, err := mask.FromPolygon(poly, img.Rows, img.Cols)
	if err != nil {
		ctx.Error(fmt.Sprintf("rasterize: %v", err), fasthttp.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Overlay(img, m)); err != nil {
		ctx.Error(fmt.Sprintf("encode: %v", err), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("image/png")
	_, _ = ctx.Write(buf.Bytes())
}

// findPair matches the named study's directories and picks the pair whose
// DICOM stem equals caseID.
func (s *Server) findPair(study, caseID string) (pairs.FilePair, error) {
	links, err := manifest.Resolve(s.DataRoot)
	if err != nil {
		return pairs.FilePair{}, err
	}
	for _, l := range links {
		if filepath.Base(l.ImageDir) != study {
			continue
		}
		fp, err := pairs.Match(l.ImageDir, l.ContourDir)
		if err != nil {
			return pairs.FilePair{}, err
		}
		for _, p := range fp {
			stem := filepath.Base(p.ImagePath)
			if stem == caseID+".dcm" {
				return p, nil
			}
		}
		return pairs.FilePair{}, fmt.Errorf("no pair for case %s in study %s", caseID, study)
	}
	return pairs.FilePair{}, fmt.Errorf("unknown study %s", study)
}

// Overlay renders the slice as normalized grayscale and tints masked
// pixels red at half opacity.
func Overlay(img *dicomio.Image, m mask.Mask) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Cols, img.Rows))
	max := img.Max()
	if max == 0 {
		max = 1
	}
	for y, row := range img.Pixels {
		for x, v := range row {
			g := uint8(v / max * 255)
			c := color.RGBA{R: g, G: g, B: g, A: 255}
			if y < len(m) && x < len(m[y]) && m[y][x] {
				c.R = uint8((int(g) + 255) / 2)
				c.G = g / 2
				c.B = g / 2
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out
}
