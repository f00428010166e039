// Command geomap projects a raster map and a KML document,
// and writes the result as PNG, SVG or PDF images.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/benoitkugler/geomap/mapprog"
	"github.com/benoitkugler/geomap/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "1.0"

// binding associates a configuration key with its command line flag.
type binding struct {
	key, flag string
}

var bindings = []binding{
	{"map", "map-file"},
	{"kml", "kml-file"},
	{"output", "output"},
	{"svg", "svg-file"},
	{"pdf", "pdf-file"},
	{"kml_output", "kml-output"},
	{"groups", "groups"},
	{"central_meridian", "central-meridian"},
	{"central_point", "central-point"},
	{"azimuth", "azimuth"},
	{"size", "size"},
	{"window", "window"},
	{"shift", "shift"},
	{"map_central_meridian", "map-central-meridian"},
	{"interpolation", "interpolation"},
	{"error_mode", "error-mode"},
	{"catalog", "catalog"},
	{"metrics_file", "metrics-file"},
}

func newRootCommand(v *viper.Viper, stderr io.Writer) *cobra.Command {
	var (
		configFile string
		envFile    string
		verbosity  int
		quiet      bool
		debug      bool
	)
	d := mapprog.DefaultOptions
	cmd := &cobra.Command{
		Use:   "geomap [projection]",
		Short: "Project raster maps and KML documents",
		Long: `geomap resamples a global raster map into the window of a map
projection, draws the features of a KML document over it, and writes
the result as a raster image, an SVG document or a PDF document.

Map and KML files given as bare words are looked up in the maps.csv
and kmls.csv catalogs, then completed with the usual extensions.
Every option may also be set in a geomap.yaml configuration file or
in GEOMAP_ prefixed environment variables.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(envFile); err != nil {
				return err
			}
			if err := initConfig(v, configFile); err != nil {
				return err
			}
			if len(args) == 1 {
				v.Set("projection", args[0])
			}
			if quiet {
				verbosity = -1
			}
			logger := newLogger(stderr, verbosity, debug)

			opts := mapprog.DefaultOptions
			if err := v.Unmarshal(&opts); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			prog := &mapprog.Program{Options: opts, Logger: logger}
			if opts.MetricsFile != "" {
				collector, err := metrics.NewCollector(prometheus.NewRegistry())
				if err != nil {
					return err
				}
				prog.Metrics = collector
			}
			logger.Debug("starting", "projection", opts.Projection, "config", v.ConfigFileUsed())
			_, err := prog.Run(cmd.Context())
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringP("map-file", "m", "", "input raster map file")
	flags.StringP("kml-file", "k", "", "input kml file")
	flags.StringP("output", "o", "", "output raster map file (png, bmp or tiff)")
	flags.StringP("svg-file", "s", "", "output svg file")
	flags.String("pdf-file", "", "output pdf file")
	flags.String("kml-output", "", "output kml file")
	flags.StringP("groups", "g", "", "output groups file")
	flags.Float64P("central-meridian", "c", d.CentralMeridian, "central meridian")
	flags.StringP("central-point", "p", "", "central point, as lon,lat")
	flags.Float64P("azimuth", "a", d.Azimuth, "viewpoint azimuth")
	flags.StringP("size", "z", d.Size, "output map size, as W,H")
	flags.StringP("window", "w", "", "output image window size, as W,H")
	flags.StringP("shift", "i", "", "output image shift, as X,Y")
	flags.Float64("map-central-meridian", d.MapCentralMeridian, "central meridian of the input map")
	flags.String("interpolation", d.Interpolation, "map resampling: nearest, bilinear or bicubic")
	flags.String("error-mode", d.ErrorMode, "unsupported KML content: ignore, warn or strict")
	flags.String("catalog", d.CatalogDir, "directory of the maps.csv and kmls.csv catalogs")
	flags.String("metrics-file", "", "write Prometheus metrics to this file")

	flags.StringVar(&configFile, "config", "", "config file (default is ./geomap.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "environment file")
	flags.CountVarP(&verbosity, "verbose", "v", "increases verbosity level")
	flags.BoolVarP(&quiet, "quiet", "q", false, "quiet mode")
	flags.BoolVar(&debug, "debug", false, "show debugging information")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	v.SetDefault("projection", d.Projection)
	for _, b := range bindings {
		if err := v.BindPFlag(b.key, flags.Lookup(b.flag)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// loadEnv reads `path` into the environment. A missing file is ignored.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func initConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix("GEOMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("geomap")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCommand(viper.New(), os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "geomap:", err)
		stop()
		os.Exit(1)
	}
}
