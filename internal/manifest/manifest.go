// Package manifest resolves the study manifest at the root of a data tree.
package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the manifest's fixed location under the data root.
const FileName = "link.csv"

// StudyLink names the two directories of one study: where its DICOM slices
// live and where the matching inner contours live.
type StudyLink struct {
	ImageDir   string
	ContourDir string
}

// Resolve reads <dataRoot>/link.csv and returns one StudyLink per data row.
// The first row is a header and is skipped. A missing or malformed manifest
// is a setup error and aborts the whole pipeline.
func Resolve(dataRoot string) ([]StudyLink, error) {
	path := filepath.Join(dataRoot, FileName)
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = fh.Close() }()

	rd := csv.NewReader(fh)
	rd.FieldsPerRecord = 2
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty manifest", path)
	}

	links := make([]StudyLink, 0, len(rows)-1)
	for _, row := range rows[1:] {
		links = append(links, StudyLink{
			ImageDir:   filepath.Join(dataRoot, "dicoms", row[0]),
			ContourDir: filepath.Join(dataRoot, "contourfiles", row[1], "i-contours"),
		})
	}
	return links, nil
}
