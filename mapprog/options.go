// Package mapprog builds map images from a raster base map
// and a KML document, in a given projection.
package mapprog

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/benoitkugler/geomap/projection"
)

var (
	ErrNoInput  = errors.New("no map or KML file")
	ErrNoOutput = errors.New("no output file")
)

// Options are the settings of one map build. Sizes are given
// as "W,H", "WxH" or "N" for a square, coordinates as "lon,lat"
// or "lon".
type Options struct {
	Projection string `mapstructure:"projection"`

	MapFile    string `mapstructure:"map"`
	KMLFile    string `mapstructure:"kml"`
	Output     string `mapstructure:"output"`
	SVGFile    string `mapstructure:"svg"`
	PDFFile    string `mapstructure:"pdf"`
	KMLOutput  string `mapstructure:"kml_output"`
	GroupsFile string `mapstructure:"groups"`

	CentralMeridian float64 `mapstructure:"central_meridian"`
	CentralPoint    string  `mapstructure:"central_point"`
	Azimuth         float64 `mapstructure:"azimuth"`

	Size   string `mapstructure:"size"`
	Window string `mapstructure:"window"`
	Shift  string `mapstructure:"shift"`

	// MapCentralMeridian is the longitude at the center of the base map.
	MapCentralMeridian float64 `mapstructure:"map_central_meridian"`
	Interpolation      string  `mapstructure:"interpolation"`
	ErrorMode          string  `mapstructure:"error_mode"`

	// CatalogDir holds the maps.csv and kmls.csv name indexes.
	CatalogDir  string `mapstructure:"catalog"`
	MetricsFile string `mapstructure:"metrics_file"`
}

// DefaultOptions uses the whole globe at four pixels per degree.
var DefaultOptions = Options{
	Projection:    "equirectangular",
	Size:          "1440,720",
	Interpolation: "nearest",
	ErrorMode:     "warn",
	CatalogDir:    "objects",
}

// ParseCoord reads "lon,lat"; a single value is a longitude on the equator.
func ParseCoord(s string) (lon, lat float64, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("invalid coordinates %q", s)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in %q", s)
	}
	if len(parts) == 2 {
		lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return 0, 0, fmt.Errorf("invalid latitude in %q", s)
		}
	}
	return lon, lat, nil
}

// ParseSize reads "W,H" or "WxH"; a single value is a square.
func ParseSize(s string) (image.Point, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool { return r == ',' || r == 'x' || r == 'X' })
	if len(parts) == 0 || len(parts) > 2 {
		return image.Point{}, fmt.Errorf("invalid size %q", s)
	}
	var dims [2]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, fmt.Errorf("invalid size %q", s)
		}
		dims[i] = v
	}
	if len(parts) == 1 {
		dims[1] = dims[0]
	}
	return image.Pt(dims[0], dims[1]), nil
}

// Params returns the projection settings. The central point takes
// precedence over the central meridian.
func (o Options) Params() (projection.Params, error) {
	params := projection.DefaultParams
	params.CentralMeridian = o.CentralMeridian
	if o.CentralPoint != "" {
		lon, lat, err := ParseCoord(o.CentralPoint)
		if err != nil {
			return params, err
		}
		params.CentralMeridian, params.CentralLatitude = lon, lat
	}
	params.ViewpointAzimuth = o.Azimuth

	for _, field := range []struct {
		value string
		dst   *image.Point
	}{
		{o.Size, &params.MapSize},
		{o.Window, &params.WindowSize},
		{o.Shift, &params.WindowOffset},
	} {
		if field.value == "" {
			continue
		}
		size, err := ParseSize(field.value)
		if err != nil {
			return params, err
		}
		*field.dst = size
	}
	return params, params.Validate()
}
