package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
	"github.com/df07/go-sphere-raytracer/web/server"
)

const envPrefix = "RAYTRACER"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	if err := newRootCommand(log, os.Stdout).ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}

// newRootCommand wires the CLI. Settings come from flags, then RAYTRACER_*
// environment variables, then the optional config file.
func newRootCommand(log *logrus.Logger, stdout io.Writer) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "raytracer",
		Short:         "Path trace scenes of spheres",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return errors.Wrap(err, "binding flags")
			}
			if path := v.GetString("config"); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "reading config %s", path)
				}
			}
			return configureLogger(log, v.GetString("log-level"), v.GetString("log-format"))
		},
	}
	root.SetOut(stdout)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (YAML, TOML or JSON) holding flag values")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	root.AddCommand(newRenderCommand(v, log), newScenesCommand(v, stdout), newServeCommand(v, log))
	return root
}

// configureLogger applies the level and formatter settings to log
func configureLogger(log *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(lvl)

	switch format {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("invalid log format %q", format)
	}
	return nil
}

// renderOptions holds the resolved render settings
type renderOptions struct {
	Scene       string
	SceneFile   string
	Width       int
	AspectRatio float64
	Samples     int
	MaxDepth    int
	Seed        uint64
	Workers     int
	TileSize    int
	Passes      int
	Output      string
	Format      string
	MetricsFile string
}

func renderFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flags.String("scene", "random", "Built-in scene name or path to a scene descriptor")
	flags.String("scene-file", "", "Scene descriptor file (overrides --scene)")
	flags.Int("width", 0, "Image width in pixels (0 = scene default)")
	flags.Float64("aspect-ratio", 0, "Image aspect ratio (0 = scene default)")
	flags.Int("samples", 0, "Samples per pixel (0 = scene default)")
	flags.Int("max-depth", 0, "Maximum ray bounces (0 = scene default)")
	flags.Uint64("seed", renderer.DefaultConfig().Seed, "Random seed for scene generation and sampling")
	flags.Int("workers", 0, "Parallel workers (0 = number of CPUs, 1 = single threaded)")
	flags.Int("tile-size", renderer.DefaultTileSize, "Tile edge length in pixels")
	flags.Int("passes", 1, "Progressive passes; the output file is rewritten after each pass")
	flags.StringP("output", "o", output.Stdout, "Output path (.ppm, .png, optionally .gz); - writes PPM to stdout")
	flags.String("format", "", "Image format: ppm or png (default from the output extension)")
	flags.String("metrics-file", "", "Write render metrics in prometheus textfile format to this path")
	return flags
}

func loadRenderOptions(v *viper.Viper) renderOptions {
	return renderOptions{
		Scene:       v.GetString("scene"),
		SceneFile:   v.GetString("scene-file"),
		Width:       v.GetInt("width"),
		AspectRatio: v.GetFloat64("aspect-ratio"),
		Samples:     v.GetInt("samples"),
		MaxDepth:    v.GetInt("max-depth"),
		Seed:        v.GetUint64("seed"),
		Workers:     v.GetInt("workers"),
		TileSize:    v.GetInt("tile-size"),
		Passes:      v.GetInt("passes"),
		Output:      v.GetString("output"),
		Format:      v.GetString("format"),
		MetricsFile: v.GetString("metrics-file"),
	}
}

func newRenderCommand(v *viper.Viper, log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), loadRenderOptions(v), log)
		},
	}
	cmd.Flags().AddFlagSet(renderFlags())
	return cmd
}

func runRender(ctx context.Context, opts renderOptions, log logrus.FieldLogger) error {
	s, err := createScene(opts)
	if err != nil {
		return err
	}

	rendererOpts := []renderer.Option{renderer.WithLogger(log)}
	var metrics *renderer.Metrics
	if opts.MetricsFile != "" {
		metrics = renderer.NewMetrics()
		rendererOpts = append(rendererOpts, renderer.WithMetrics(metrics))
	}

	rt := renderer.NewRaytracer(s, renderer.Config{
		Seed:     opts.Seed,
		Workers:  opts.Workers,
		TileSize: opts.TileSize,
	}, rendererOpts...)

	var fb *renderer.Framebuffer
	if opts.Passes > 1 {
		fb, err = renderProgressive(ctx, rt, opts, log)
	} else {
		fb, _, err = rt.Render(ctx)
	}
	if err != nil {
		return errors.Wrap(err, "rendering")
	}

	if err := output.Save(opts.Output, fb, opts.Format); err != nil {
		return err
	}
	if opts.Output != output.Stdout {
		log.WithField("path", opts.Output).Info("Image saved")
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
		log.WithField("path", opts.MetricsFile).Debug("Metrics written")
	}
	return nil
}

// renderProgressive renders in passes and saves every intermediate image to
// the output path, so a long render can be watched while it refines
func renderProgressive(ctx context.Context, rt *renderer.Raytracer, opts renderOptions, log logrus.FieldLogger) (*renderer.Framebuffer, error) {
	passes, errs := rt.RenderProgressive(ctx, renderer.ProgressiveConfig{MaxPasses: opts.Passes})

	var fb *renderer.Framebuffer
	var saveErr error
	for result := range passes {
		fb = result.Framebuffer
		if opts.Output == output.Stdout || result.IsLast || saveErr != nil {
			continue
		}
		if saveErr = output.Save(opts.Output, fb, opts.Format); saveErr == nil {
			log.WithFields(logrus.Fields{
				"pass":            result.Pass,
				"samplesPerPixel": result.Stats.SamplesPerPixel,
			}).Debug("Intermediate image saved")
		}
	}
	if err := <-errs; err != nil {
		return nil, err
	}
	return fb, saveErr
}

// createScene resolves the scene named by opts and applies the size and
// sampling overrides
func createScene(opts renderOptions) (*scene.Scene, error) {
	var s *scene.Scene
	var err error

	switch {
	case opts.SceneFile != "":
		s, err = scene.LoadFile(opts.SceneFile)
	case scene.IsDescriptorFile(opts.Scene):
		s, err = scene.LoadFile(opts.Scene)
	default:
		s, err = scene.New(opts.Scene, core.NewRandom(opts.Seed))
	}
	if err != nil {
		return nil, err
	}

	s.ApplyOverrides(
		geometry.CameraConfig{AspectRatio: opts.AspectRatio},
		scene.SamplingConfig{
			Width:           opts.Width,
			SamplesPerPixel: opts.Samples,
			MaxDepth:        opts.MaxDepth,
		},
	)
	return s, nil
}

func newScenesCommand(v *viper.Viper, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scenes and scene descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScenes(stdout, v.GetString("dir"))
		},
	}
	cmd.Flags().String("dir", "scenes", "Directory to search for scene descriptors")
	return cmd
}

func listScenes(w io.Writer, dir string) error {
	discovered, err := scene.Discover(dir)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tDESCRIPTION")
	for _, info := range scene.Builtins() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Type, info.Description)
	}
	for _, info := range discovered {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Type, info.FilePath)
	}
	return tw.Flush()
}

func newServeCommand(v *viper.Viper, log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve preview renders, pixel inspection and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.NewServer(v.GetString("dir"), log)
			return srv.ListenAndServe(cmd.Context(), v.GetString("addr"))
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().String("dir", "scenes", "Directory to search for scene descriptors")
	return cmd
}
