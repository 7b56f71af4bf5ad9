package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string // Built-in scene or descriptor ID
	Width    int    // Image width; height follows the scene aspect ratio
	Samples  int    // Samples per pixel
	MaxDepth int    // Maximum bounces, 0 = scene default
	Seed     uint64 // Render seed
	Passes   int    // Progressive passes (progressive endpoint only)
	Format   string // ppm or png
}

// PassUpdate is sent as an SSE "pass" event after every progressive pass
type PassUpdate struct {
	Pass            int    `json:"pass"`
	TotalPasses     int    `json:"totalPasses"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"samplesPerPixel"`
	TotalSamples    int    `json:"totalSamples"`
	ElapsedMs       int64  `json:"elapsedMs"`
	IsLast          bool   `json:"isLast"`
	Image           string `json:"image"` // Base64 encoded image in the requested format
}

var contentTypes = map[string]string{
	output.FormatPNG: "image/png",
	output.FormatPPM: "image/x-portable-pixmap",
}

// handleRender renders a preview image for the request. The render stops
// when the client goes away.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, ok := s.prepareRender(w, r)
	if !ok {
		return
	}

	rt := s.newRaytracer(req, sceneObj, r)
	fb, stats, err := rt.Render(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.Wrap(err, "rendering"))
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, fb, req.Format); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.Header().Set("X-Render-Width", strconv.Itoa(fb.Width))
	w.Header().Set("X-Render-Height", strconv.Itoa(fb.Height))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRenderProgressive streams one image per progressive pass as
// Server-Sent Events, followed by a "complete" or "error" event
func (s *Server) handleRenderProgressive(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	req, sceneObj, ok := s.prepareRender(w, r)
	if !ok {
		return
	}

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	rt := s.newRaytracer(req, sceneObj, r)
	passes, errs := rt.RenderProgressive(r.Context(), renderer.ProgressiveConfig{MaxPasses: req.Passes})

	// keep draining after a failed write so the render goroutine can finish
	var writeErr error
	for result := range passes {
		if writeErr != nil {
			continue
		}
		var buf bytes.Buffer
		if writeErr = output.Encode(&buf, result.Framebuffer, req.Format); writeErr != nil {
			continue
		}
		writeErr = writeSSEEvent(w, flusher, "pass", PassUpdate{
			Pass:            result.Pass,
			TotalPasses:     result.TotalPasses,
			Width:           result.Framebuffer.Width,
			Height:          result.Framebuffer.Height,
			SamplesPerPixel: result.Stats.SamplesPerPixel,
			TotalSamples:    result.Stats.TotalSamples,
			ElapsedMs:       time.Since(start).Milliseconds(),
			IsLast:          result.IsLast,
			Image:           base64.StdEncoding.EncodeToString(buf.Bytes()),
		})
	}

	if err := <-errs; err != nil {
		s.log.WithError(err).Warn("Progressive render failed")
		writeSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return
	}
	if writeErr != nil {
		s.log.WithError(writeErr).Warn("Progressive stream interrupted")
		return
	}
	writeSSEEvent(w, flusher, "complete", map[string]int64{"elapsedMs": time.Since(start).Milliseconds()})
}

// prepareRender parses the request and builds its scene. On failure the
// error response has already been written.
func (s *Server) prepareRender(w http.ResponseWriter, r *http.Request) (*RenderRequest, *scene.Scene, bool) {
	req, err := parseRenderRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid request"))
		return nil, nil, false
	}

	sceneObj, err := s.createScene(req.Scene, req.Seed)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, nil, false
	}
	sceneObj.ApplyOverrides(geometry.CameraConfig{}, scene.SamplingConfig{
		Width:           req.Width,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.MaxDepth,
	})

	width, height := sceneObj.ImageSize()
	if budget := width * height * req.Samples; budget > maxSampleBudget {
		s.writeError(w, http.StatusBadRequest, errors.Errorf(
			"invalid request: %dx%d pixels at %d samples is %d samples, limit is %d",
			width, height, req.Samples, budget, maxSampleBudget))
		return nil, nil, false
	}
	return req, sceneObj, true
}

func (s *Server) newRaytracer(req *RenderRequest, sceneObj *scene.Scene, r *http.Request) *renderer.Raytracer {
	return renderer.NewRaytracer(sceneObj, renderer.Config{Seed: req.Seed},
		renderer.WithLogger(s.log.WithField("remote", r.RemoteAddr)),
		renderer.WithMetrics(s.metrics))
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: sceneParam(query)}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 10, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 0, maxDepth); err != nil {
		return nil, err
	}
	if req.Seed, err = parseUintParam(query, "seed", renderer.DefaultConfig().Seed); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(query, "passes", renderer.DefaultProgressiveConfig().MaxPasses, 1, maxPasses); err != nil {
		return nil, err
	}

	req.Format = query.Get("format")
	if req.Format == "" {
		req.Format = output.FormatPNG
	}
	if _, ok := contentTypes[req.Format]; !ok {
		return nil, errors.Wrapf(output.ErrUnsupportedFormat, "%q", req.Format)
	}
	return req, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// writeSSEEvent writes one JSON encoded event and flushes it to the client
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "encoding %s event", event)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return errors.Wrapf(err, "writing %s event", event)
	}
	flusher.Flush()
	return nil
}
