package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Server serves preview renders, scene listings and render metrics
type Server struct {
	sceneDir string
	log      logrus.FieldLogger
	metrics  *renderer.Metrics
}

// NewServer creates a preview server that also offers the descriptors in sceneDir
func NewServer(sceneDir string, log logrus.FieldLogger) *Server {
	return &Server{
		sceneDir: sceneDir,
		log:      log,
		metrics:  renderer.NewMetrics(),
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/progressive", s.handleRenderProgressive)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Starting preview server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and the descriptors in the scene directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	discovered, err := scene.Discover(s.sceneDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, append(scene.Builtins(), discovered...))
}

// SceneConfig is the response of the scene-config endpoint
type SceneConfig struct {
	Scene    string                `json:"scene"`
	Width    int                   `json:"width"`
	Height   int                   `json:"height"`
	Sampling scene.SamplingConfig  `json:"sampling"`
	Camera   geometry.CameraConfig `json:"camera"`
	Limits   map[string][2]float64 `json:"limits"`
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	name := sceneParam(r.URL.Query())
	sceneObj, err := s.createScene(name, 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	width, height := sceneObj.ImageSize()
	writeJSON(w, http.StatusOK, SceneConfig{
		Scene:    name,
		Width:    width,
		Height:   height,
		Sampling: sceneObj.SamplingConfig,
		Camera:   sceneObj.CameraConfig,
		Limits: map[string][2]float64{
			"width":        {minWidth, maxWidth},
			"samples":      {1, maxSamples},
			"maxDepth":     {1, maxDepth},
			"passes":       {1, maxPasses},
			"sampleBudget": {1, maxSampleBudget},
		},
	})
}

const (
	defaultScene = "default"
	minWidth     = 1
	maxWidth     = 2000
	maxSamples   = 1000
	maxDepth     = 100
	maxPasses    = 16

	// maxSampleBudget bounds width x height x samples of a single request
	maxSampleBudget = 20_000_000
)

// createScene resolves name against the built-in scenes first, then the
// discovered descriptors. Clients can only reach files in the scene directory.
func (s *Server) createScene(name string, seed uint64) (*scene.Scene, error) {
	sceneObj, err := scene.New(name, core.NewRandom(seed))
	if err == nil {
		return sceneObj, nil
	}
	if !errors.Is(err, scene.ErrUnknownScene) {
		return nil, err
	}

	discovered, derr := scene.Discover(s.sceneDir)
	if derr != nil {
		return nil, derr
	}
	for _, info := range discovered {
		if info.ID == name {
			return scene.LoadFile(info.FilePath)
		}
	}
	return nil, err
}

func sceneParam(values url.Values) string {
	if name := values.Get("scene"); name != "" {
		return name
	}
	return defaultScene
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseUintParam parses an unsigned integer parameter from URL query
func parseUintParam(values url.Values, key string, defaultValue uint64) (uint64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.WithError(err).WithField("status", status).Warn("Request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
