package kml

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/benoitkugler/geomap/geotag"
)

// Source designates where to read a KML document from.
// Exactly one field must be set.
type Source struct {
	Path   string
	Reader io.Reader
	Data   []byte
}

// Load decodes the document designated by `src`.
func Load(src Source, opts DecodeOptions) (*geotag.Document, error) {
	n := 0
	if src.Path != "" {
		n++
	}
	if src.Reader != nil {
		n++
	}
	if src.Data != nil {
		n++
	}
	switch {
	case n == 0:
		return nil, ErrNoSource
	case n > 1:
		return nil, ErrMultipleSources
	}

	switch {
	case src.Reader != nil:
		return Decode(src.Reader, opts)
	case src.Data != nil:
		return Decode(bytes.NewReader(src.Data), opts)
	}
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open KML file: %w", err)
	}
	defer f.Close()
	doc, err := Decode(f, opts)
	if err != nil {
		return nil, fmt.Errorf("KML file %s: %w", src.Path, err)
	}
	return doc, nil
}

// WriteFile encodes `doc` into the named file.
func WriteFile(path string, doc *geotag.Document, opts EncodeOptions) error {
	data, err := Marshal(doc, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
