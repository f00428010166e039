package georaster

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatFromPath returns the image format implied by the
// file extension, lower cased and without the dot.
func FormatFromPath(path string) string {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "tif" {
		format = "tiff"
	}
	return format
}

// Supported reports whether Encode handles `format`.
func Supported(format string) bool {
	return format == "png" || format == "bmp" || format == "tiff"
}

// Encode writes `img` in the given format: png, bmp or tiff.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}

// EncodePNG writes `img` as a PNG image.
func EncodePNG(w io.Writer, img image.Image) error { return Encode(w, img, "png") }

// WriteFile saves `img` to `path`, in the format given by its extension.
func WriteFile(path string, img image.Image) error {
	format := FormatFromPath(path)
	if !Supported(format) {
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
