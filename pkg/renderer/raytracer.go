package renderer

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Config controls how a render is scheduled
type Config struct {
	Seed     uint64 // Render seed; each tile derives its own generator from it
	Workers  int    // Parallel workers (0 = use CPU count, 1 = calling goroutine)
	TileSize int    // Edge length of square tiles in pixels
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Seed:     42,
		Workers:  0,
		TileSize: DefaultTileSize,
	}
}

// Raytracer renders a scene into a framebuffer
type Raytracer struct {
	scene   *scene.Scene
	config  Config
	logger  logrus.FieldLogger
	metrics *Metrics
}

// Option configures a Raytracer
type Option func(*Raytracer)

// WithLogger sets the progress logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(rt *Raytracer) { rt.logger = logger }
}

// WithMetrics records samples, tiles and path terminations into m
func WithMetrics(m *Metrics) Option {
	return func(rt *Raytracer) { rt.metrics = m }
}

// NewRaytracer creates a new raytracer
func NewRaytracer(s *scene.Scene, config Config, opts ...Option) *Raytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultTileSize
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	rt := &Raytracer{scene: s, config: config, logger: discard}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// renderJob holds what every pass of one render shares
type renderJob struct {
	fb       *Framebuffer
	tiles    []Tile
	renderer *TileRenderer
	pool     *WorkerPool // nil when rendering on the calling goroutine
	workers  int
	log      logrus.FieldLogger
}

// startJob sets up the framebuffer, tiles and workers of a render
func (rt *Raytracer) startJob(ctx context.Context, passes int) *renderJob {
	width, height := rt.scene.ImageSize()
	sampling := rt.scene.SamplingConfig
	tiles := NewTileGrid(width, height, rt.config.TileSize)

	integratorOpts := []integrator.Option{integrator.WithBackground(rt.scene.Background)}
	if rt.metrics != nil {
		integratorOpts = append(integratorOpts, integrator.WithTerminationRecorder(rt.metrics))
	}
	pt := integrator.NewPathTracingIntegrator(sampling.MaxDepth, integratorOpts...)

	job := &renderJob{
		fb:       NewFramebuffer(width, height),
		tiles:    tiles,
		renderer: NewTileRenderer(rt.scene.Camera, rt.scene.World, pt, width, height),
		workers:  min(rt.config.Workers, max(len(tiles), 1)),
	}
	job.log = rt.logger.WithFields(logrus.Fields{
		"scene":   rt.scene.Name,
		"width":   width,
		"height":  height,
		"samples": sampling.SamplesPerPixel,
		"depth":   sampling.MaxDepth,
		"tiles":   len(tiles),
		"workers": job.workers,
		"passes":  passes,
	})
	job.log.Info("Rendering")

	if job.workers > 1 {
		job.pool = NewWorkerPool(job.renderer, rt.config.Seed, job.workers, len(tiles))
		job.pool.Start(ctx)
	}
	return job
}

func (job *renderJob) stop() {
	if job.pool != nil {
		job.pool.Stop()
	}
}

// Render traces every pixel of the scene in a single pass. On cancellation
// it returns the partially filled framebuffer together with ctx.Err().
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	job := rt.startJob(ctx, 1)
	defer job.stop()

	stats := RenderStats{Workers: job.workers}
	passStats, err := rt.renderPass(ctx, job, 0, rt.scene.SamplingConfig.SamplesPerPixel)
	if err != nil {
		stats.Add(passStats)
		stats.Duration = time.Since(start)
		rt.stopped(job, stats, err)
		return job.fb, stats, err
	}

	stats.AddPass(passStats)
	stats.Duration = time.Since(start)
	rt.finished(job, stats)
	return job.fb, stats, nil
}

// renderPass adds samples samples to every pixel, tile by tile
func (rt *Raytracer) renderPass(ctx context.Context, job *renderJob, pass, samples int) (RenderStats, error) {
	stats := RenderStats{SamplesPerPixel: samples}
	log := job.log.WithField("pass", pass+1)

	if job.pool == nil {
		for _, tile := range job.tiles {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			random := core.NewRandom(tile.PassSeed(rt.config.Seed, pass))
			tileStats, err := job.renderer.RenderTile(ctx, tile, job.fb, samples, random)
			rt.completeTile(&stats, tileStats, len(job.tiles), log)
			if err != nil {
				return stats, err
			}
		}
		return stats, nil
	}

	for _, tile := range job.tiles {
		job.pool.SubmitTask(TileTask{Tile: tile, Pass: pass, Samples: samples, Framebuffer: job.fb})
	}

	var firstErr error
	for range job.tiles {
		result, ok := job.pool.GetResult()
		if !ok {
			return stats, errors.New("worker pool closed unexpectedly")
		}
		rt.completeTile(&stats, result.Stats, len(job.tiles), log)
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
	}
	return stats, firstErr
}

// completeTile folds a tile's statistics into the pass totals
func (rt *Raytracer) completeTile(stats *RenderStats, tileStats RenderStats, total int, log logrus.FieldLogger) {
	if tileStats.TotalPixels == 0 {
		return
	}
	stats.Add(tileStats)
	if rt.metrics != nil {
		rt.metrics.ObserveTile(tileStats)
	}
	log.WithField("completed", stats.Tiles).Debugf("Tile %d/%d done", stats.Tiles, total)
}

func (rt *Raytracer) stopped(job *renderJob, stats RenderStats, err error) {
	job.log.WithError(err).WithFields(logrus.Fields{
		"completed":       stats.Tiles,
		"completedPasses": stats.Passes,
	}).Warn("Render stopped")
}

func (rt *Raytracer) finished(job *renderJob, stats RenderStats) {
	if rt.metrics != nil {
		rt.metrics.ObserveRender(stats)
	}
	job.log.WithFields(logrus.Fields{
		"duration":       stats.Duration.Round(time.Millisecond),
		"totalSamples":   stats.TotalSamples,
		"averageSamples": stats.AverageSamples(),
	}).Info("Render complete")
}
