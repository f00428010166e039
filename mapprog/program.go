package mapprog

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/benoitkugler/geomap/basemap"
	"github.com/benoitkugler/geomap/geodraw"
	"github.com/benoitkugler/geomap/geopdf"
	"github.com/benoitkugler/geomap/georaster"
	"github.com/benoitkugler/geomap/geosvg"
	"github.com/benoitkugler/geomap/geotag"
	"github.com/benoitkugler/geomap/kml"
	"github.com/benoitkugler/geomap/metrics"
	"github.com/benoitkugler/geomap/projection"
	"golang.org/x/sync/errgroup"
)

// Program builds the outputs requested by its options.
type Program struct {
	Options Options

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
	// Projections defaults to projection.Default().
	Projections *projection.Registry
	// Metrics may be nil.
	Metrics *metrics.Collector
}

// Result holds the intermediate products of a run.
type Result struct {
	Projection projection.Projection
	// Raster is the base map resampled in the window, nil without map file.
	Raster *image.RGBA
	// Document is the loaded KML document, or an empty document
	// named after the projection.
	Document *geotag.Document
	Scene    *geodraw.Scene
}

func (o Options) hasOutput() bool {
	return o.Output != "" || o.SVGFile != "" || o.PDFFile != "" || o.KMLOutput != "" || o.GroupsFile != ""
}

// Run loads the inputs, projects them, and writes every requested output.
// The base map and the KML document are loaded concurrently, and so are
// the outputs.
func (p *Program) Run(ctx context.Context) (*Result, error) {
	o := p.Options
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	registry := p.Projections
	if registry == nil {
		registry = projection.Default()
	}

	mapPath, err := FindFile(o.MapFile, MapFile, o.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("map file: %w", err)
	}
	kmlPath, err := FindFile(o.KMLFile, KMLFile, o.CatalogDir)
	if err != nil {
		return nil, fmt.Errorf("KML file: %w", err)
	}
	params, err := o.Params()
	if err != nil {
		return nil, err
	}
	pr, err := registry.New(o.Projection, params)
	if err != nil {
		return nil, err
	}
	if mapPath == "" && kmlPath == "" && !pr.Mapless() {
		return nil, ErrNoInput
	}
	if !o.hasOutput() && !pr.Mapless() {
		return nil, ErrNoOutput
	}
	interpolation := basemap.Nearest
	if o.Interpolation != "" {
		if interpolation, err = basemap.ParseInterpolation(o.Interpolation); err != nil {
			return nil, err
		}
	}
	errorMode, err := kml.ParseErrorMode(o.ErrorMode)
	if err != nil {
		return nil, err
	}
	if o.Output != "" && !georaster.Supported(georaster.FormatFromPath(o.Output)) {
		return nil, fmt.Errorf("output %s: %w", o.Output, georaster.ErrUnsupportedFormat)
	}

	res := &Result{Projection: pr}
	loaders, lctx := errgroup.WithContext(ctx)
	if mapPath != "" {
		loaders.Go(func() error {
			if err := lctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			m, err := basemap.Open(mapPath)
			if err != nil {
				return err
			}
			if err := lctx.Err(); err != nil {
				return err
			}
			m.CentralMeridian = o.MapCentralMeridian
			m.Interpolation = interpolation
			res.Raster = m.Project(pr)
			logger.Info("projected base map", "path", mapPath, "interpolation", interpolation, "elapsed", time.Since(start))
			return nil
		})
	}
	if kmlPath != "" {
		loaders.Go(func() error {
			if err := lctx.Err(); err != nil {
				return err
			}
			doc, err := kml.Load(kml.Source{Path: kmlPath}, kml.DecodeOptions{
				ErrorMode: errorMode,
				Logger:    logger,
				Observer:  p.Metrics,
			})
			if err != nil {
				return err
			}
			res.Document = doc
			logger.Info("loaded KML document", "path", kmlPath, "elements", doc.Len())
			return nil
		})
	}
	if err := loaders.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.Document == nil {
		res.Document = geotag.NewDocument(geotag.NewIDRegistry().NewTag(pr.Name(), ""))
	}
	res.Scene = geodraw.Compile(res.Document, pr, logger)

	// a nil *image.RGBA must not become a non nil image.Image
	var base image.Image
	if res.Raster != nil {
		base = res.Raster
	}
	writers, wctx := errgroup.WithContext(ctx)
	output := func(path, format string, write func(w io.Writer) error) {
		if path == "" {
			return
		}
		writers.Go(func() error {
			if err := wctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := writeFile(path, write); err != nil {
				return fmt.Errorf("writing %s output: %w", format, err)
			}
			p.Metrics.OutputWritten(format, start)
			logger.Info("wrote output", "format", format, "path", path, "elapsed", time.Since(start))
			return nil
		})
	}
	output(o.Output, georaster.FormatFromPath(o.Output), func(w io.Writer) error {
		img := georaster.RenderScene(res.Scene, rasterBackground(base, res.Scene))
		return georaster.Encode(w, img, georaster.FormatFromPath(o.Output))
	})
	output(o.SVGFile, "svg", func(w io.Writer) error {
		return geosvg.Encode(w, res.Document, pr, geosvg.Options{BaseMap: base, Indent: " ", Logger: logger})
	})
	output(o.PDFFile, "pdf", func(w io.Writer) error {
		return geopdf.RenderScene(res.Scene, base, w)
	})
	output(o.KMLOutput, "kml", func(w io.Writer) error {
		return kml.Encode(w, res.Document, kml.DefaultEncodeOptions)
	})
	output(o.GroupsFile, "groups", func(w io.Writer) error {
		return WriteGroups(w, res.Document)
	})
	if err := writers.Wait(); err != nil {
		return nil, err
	}

	if o.MetricsFile != "" {
		if err := p.Metrics.WriteTextfile(o.MetricsFile); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
	}
	return res, nil
}

// rasterBackground returns `base`, or an opaque black image
// of the scene size.
func rasterBackground(base image.Image, scene *geodraw.Scene) image.Image {
	if base != nil {
		return base
	}
	img := image.NewRGBA(image.Rect(0, 0, scene.Width, scene.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

// WriteGroups writes the names of the top level groups of `doc`,
// one per line. Unnamed groups are written by id.
func WriteGroups(w io.Writer, doc *geotag.Document) error {
	bw := bufio.NewWriter(w)
	for _, f := range doc.Elements() {
		switch f.Kind() {
		case geotag.KindGroup, geotag.KindDocument:
		default:
			continue
		}
		name := f.Tag().Name
		if name == "" {
			name = f.Tag().ID()
		}
		if _, err := fmt.Fprintln(bw, name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
