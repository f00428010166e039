package mapprog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileKind restricts the files FindFile looks for.
type FileKind uint8

const (
	AnyFile FileKind = iota
	MapFile
	KMLFile
)

var (
	mapExtensions = []string{"png", "PNG", "jpg", "JPG", "jpeg", "JPEG", "bmp", "tif", "tiff", "webp"}
	kmlExtensions = []string{"kml", "KML"}
)

func (k FileKind) catalogs() []string {
	switch k {
	case MapFile:
		return []string{"maps.csv"}
	case KMLFile:
		return []string{"kmls.csv"}
	default:
		return []string{"maps.csv", "kmls.csv"}
	}
}

func (k FileKind) extensions() []string {
	switch k {
	case MapFile:
		return mapExtensions
	case KMLFile:
		return kmlExtensions
	default:
		return append(append([]string(nil), mapExtensions...), kmlExtensions...)
	}
}

var bareWord = regexp.MustCompile(`^\w+$`)

// FindFile resolves `name` into an existing file path.
// A bare word is first looked up in the catalogs of `catalogDir`
// (two columns csv files: name, path), then completed with the usual
// extensions of `kind`. Other names are used as paths.
// An empty name resolves to an empty path.
func FindFile(name string, kind FileKind, catalogDir string) (string, error) {
	if name == "" {
		return "", nil
	}
	path := name
	if bareWord.MatchString(name) {
		found, err := lookupCatalogs(name, kind, catalogDir)
		if err != nil {
			return "", err
		}
		if found == "" {
			for _, ext := range kind.extensions() {
				if candidate := name + "." + ext; isFile(candidate) {
					found = candidate
					break
				}
			}
		}
		if found != "" {
			path = found
		}
	}
	if !isFile(path) {
		return "", fmt.Errorf("file not found: %s: %w", path, fs.ErrNotExist)
	}
	return path, nil
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// lookupCatalogs returns an empty string when `name` is not indexed.
// Missing catalogs are skipped.
func lookupCatalogs(name string, kind FileKind, dir string) (string, error) {
	for _, catalog := range kind.catalogs() {
		f, err := os.Open(filepath.Join(dir, catalog))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return "", err
		}
		path, err := lookupCatalog(f, name)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("catalog %s: %w", catalog, err)
		}
		if path != "" {
			return path, nil
		}
	}
	return "", nil
}

func lookupCatalog(r io.Reader, name string) (string, error) {
	records := csv.NewReader(r)
	records.FieldsPerRecord = -1
	records.TrimLeadingSpace = true
	for {
		record, err := records.Read()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if len(record) >= 2 && record[0] == name {
			return strings.TrimSpace(record[1]), nil
		}
	}
}
