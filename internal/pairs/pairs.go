// Package pairs discovers which DICOM/contour file pairs actually exist.
//
// A case identifier joins the two naming conventions: DICOM files are named
// by a bare numeric stem, contour files embed a zero-padded slice number.
// Only identifiers present in both directories produce a pair.
package pairs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	dicomRe   = regexp.MustCompile(`^(\d+)\.dcm$`)
	contourRe = regexp.MustCompile(`^IM-\d+-(\d+)-[io]contour-manual\.txt$`)
)

// FilePair is one matched (DICOM, contour) path pair. Immutable once built.
type FilePair struct {
	ImagePath   string
	ContourPath string
}

// Match lists both directories and returns one FilePair per identifier
// present in both. Result order is unspecified; callers that need
// determinism must sort or shuffle explicitly.
//
// Inner vs. outer contours are selected by which directory is passed in;
// the filename pattern accepts either variant and file content is never
// inspected.
func Match(imageDir, contourDir string) ([]FilePair, error) {
	images, err := index(imageDir, dicomRe, false)
	if err != nil {
		return nil, fmt.Errorf("list dicoms: %w", err)
	}
	contours, err := index(contourDir, contourRe, true)
	if err != nil {
		return nil, fmt.Errorf("list contours: %w", err)
	}

	var out []FilePair
	for id, imgPath := range images {
		if ctrPath, ok := contours[id]; ok {
			out = append(out, FilePair{ImagePath: imgPath, ContourPath: ctrPath})
		}
	}
	return out, nil
}

// index maps identifier → full path for every directory entry matching re.
// The identifier is the first capture group; stripZeros normalizes padded
// slice numbers so "0007" joins with a DICOM stem of "7".
func index(dir string, re *regexp.Regexp, stripZeros bool) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		sub := re.FindStringSubmatch(e.Name())
		if sub == nil {
			continue
		}
		id := sub[1]
		if stripZeros {
			id = strings.TrimLeft(id, "0")
		}
		m[id] = filepath.Join(dir, e.Name())
	}
	return m, nil
}
