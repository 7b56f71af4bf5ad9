package renderer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	MaxPasses int // Maximum number of passes (0 = no limit)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		MaxPasses: 7, // 1, 2, 4, 8, 16, 32, then the remainder
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	Pass        int          // 1-based pass number
	TotalPasses int          // Number of passes planned
	Framebuffer *Framebuffer // Snapshot of every sample accumulated so far
	Stats       RenderStats  // Totals up to and including this pass
	IsLast      bool
}

// PassSchedule splits samplesPerPixel into per-pass sample counts. Passes
// double in size starting from one sample; the last pass takes whatever
// remains. The counts always sum to samplesPerPixel.
func PassSchedule(samplesPerPixel, maxPasses int) []int {
	var schedule []int
	remaining := samplesPerPixel
	for next := 1; remaining > 0; next *= 2 {
		if next >= remaining || (maxPasses > 0 && len(schedule) == maxPasses-1) {
			next = remaining
		}
		schedule = append(schedule, next)
		remaining -= next
	}
	return schedule
}

// RenderProgressive renders the scene in passes of increasing sample counts,
// each refining the same framebuffer. Every completed pass is sent on the
// pass channel. The error channel receives ctx.Err() or a render failure and
// is closed once rendering ends; it is closed without a value on success.
// The caller must drain the pass channel or cancel ctx.
func (rt *Raytracer) RenderProgressive(ctx context.Context, config ProgressiveConfig) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		start := time.Now()
		schedule := PassSchedule(rt.scene.SamplingConfig.SamplesPerPixel, config.MaxPasses)
		job := rt.startJob(ctx, len(schedule))
		defer job.stop()

		stats := RenderStats{Workers: job.workers}
		for pass, samples := range schedule {
			passStart := time.Now()
			passStats, err := rt.renderPass(ctx, job, pass, samples)
			if err != nil {
				stats.Add(passStats)
				stats.Duration = time.Since(start)
				rt.stopped(job, stats, err)
				errChan <- err
				return
			}

			stats.AddPass(passStats)
			stats.Duration = time.Since(start)
			job.log.WithFields(logrus.Fields{
				"pass":            pass + 1,
				"samplesPerPixel": stats.SamplesPerPixel,
				"duration":        time.Since(passStart).Round(time.Millisecond),
			}).Info("Pass complete")

			result := PassResult{
				Pass:        pass + 1,
				TotalPasses: len(schedule),
				Framebuffer: job.fb.Clone(),
				Stats:       stats,
				IsLast:      pass == len(schedule)-1,
			}
			select {
			case passChan <- result:
			case <-ctx.Done():
				rt.stopped(job, stats, ctx.Err())
				errChan <- ctx.Err()
				return
			}
		}

		rt.finished(job, stats)
	}()

	return passChan, errChan
}
