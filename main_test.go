package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		opts        renderOptions
		expectError bool
	}{
		// Built-in scenes
		{"random scene", renderOptions{Scene: "random", Seed: 1}, false},
		{"default scene", renderOptions{Scene: "default"}, false},
		{"sphere-grid scene", renderOptions{Scene: "sphere-grid"}, false},
		{"mirrors scene", renderOptions{Scene: "mirrors"}, false},

		// Descriptor files
		{"descriptor by path", renderOptions{Scene: "scenes/three-spheres.yaml"}, false},
		{"descriptor flag", renderOptions{Scene: "random", SceneFile: "scenes/three-spheres.yaml"}, false},

		// Invalid scenes
		{"unknown scene", renderOptions{Scene: "cornell"}, true},
		{"missing descriptor", renderOptions{Scene: "scenes/nonexistent.yaml"}, true},
		{"empty scene name", renderOptions{Scene: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := createScene(tt.opts)
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, s)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, s)
			assert.NotNil(t, s.Camera)
			assert.Positive(t, s.World.Len())

			width, height := s.ImageSize()
			assert.Positive(t, width)
			assert.Positive(t, height)
			assert.Positive(t, s.SamplingConfig.SamplesPerPixel)
			assert.Positive(t, s.SamplingConfig.MaxDepth)
		})
	}
}

func TestCreateScene_UnknownIsSentinel(t *testing.T) {
	_, err := createScene(renderOptions{Scene: "nonexistent"})
	assert.ErrorIs(t, err, scene.ErrUnknownScene)
}

func TestCreateScene_Overrides(t *testing.T) {
	s, err := createScene(renderOptions{
		Scene:       "random",
		Seed:        1,
		Width:       300,
		AspectRatio: 2,
		Samples:     7,
		MaxDepth:    9,
	})
	require.NoError(t, err)

	width, height := s.ImageSize()
	assert.Equal(t, 300, width)
	assert.Equal(t, 150, height)
	assert.Equal(t, 7, s.SamplingConfig.SamplesPerPixel)
	assert.Equal(t, 9, s.SamplingConfig.MaxDepth)
}

func TestConfigureLogger(t *testing.T) {
	log := logrus.New()
	require.NoError(t, configureLogger(log, "debug", "json"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	assert.Error(t, configureLogger(log, "loud", "text"))
	assert.Error(t, configureLogger(log, "info", "xml"))
}

func TestListScenes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listScenes(&buf, "scenes"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "NAME"))
	for _, name := range []string{"random", "default", "sphere-grid", "mirrors", "three-spheres"} {
		assert.Contains(t, out, name)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "default.ppm")
	metricsPath := filepath.Join(dir, "render.prom")

	log, hook := logtest.NewNullLogger()
	root := newRootCommand(log, &bytes.Buffer{})
	root.SetArgs([]string{
		"render",
		"--scene", "default",
		"--width", "8",
		"--samples", "1",
		"--max-depth", "3",
		"--workers", "2",
		"--tile-size", "4",
		"--output", imagePath,
		"--metrics-file", metricsPath,
		"--log-level", "debug",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	image, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(image)), "\n")
	require.Len(t, lines, 3+8*4)
	assert.Equal(t, []string{"P3", "8 4", "255"}, lines[:3])

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "raytracer_samples_total 32")

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.Equal(t, "Metrics written", hook.LastEntry().Message)
}

func TestRenderCommand_Progressive(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "progressive.ppm")
	metricsPath := filepath.Join(dir, "render.prom")

	log, hook := logtest.NewNullLogger()
	root := newRootCommand(log, &bytes.Buffer{})
	root.SetArgs([]string{
		"render",
		"--scene", "default",
		"--width", "8",
		"--samples", "4",
		"--max-depth", "3",
		"--passes", "3",
		"--workers", "2",
		"--output", imagePath,
		"--metrics-file", metricsPath,
		"--log-level", "debug",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	image, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(image), "P3\n8 4\n255\n"))

	// 1 + 2 + 1 samples per pixel over three passes
	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "raytracer_samples_total 128")

	var intermediate, passLines int
	for _, entry := range hook.AllEntries() {
		switch entry.Message {
		case "Intermediate image saved":
			intermediate++
		case "Pass complete":
			passLines++
		}
	}
	assert.Equal(t, 2, intermediate)
	assert.Equal(t, 3, passLines)
}

func TestRenderCommand_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "mirrors.png")
	t.Setenv("RAYTRACER_SCENE", "mirrors")
	t.Setenv("RAYTRACER_WIDTH", "6")
	t.Setenv("RAYTRACER_SAMPLES", "1")

	log, _ := logtest.NewNullLogger()
	root := newRootCommand(log, &bytes.Buffer{})
	root.SetArgs([]string{"render", "--workers", "1", "--output", imagePath})
	require.NoError(t, root.ExecuteContext(context.Background()))

	info, err := os.Stat(imagePath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRenderCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "out.ppm.gz")
	configPath := filepath.Join(dir, "raytracer.yaml")
	config := "scene: default\nwidth: 4\nsamples: 1\nmax-depth: 2\noutput: " + imagePath + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	log, _ := logtest.NewNullLogger()
	root := newRootCommand(log, &bytes.Buffer{})
	root.SetArgs([]string{"render", "--config", configPath})
	require.NoError(t, root.ExecuteContext(context.Background()))

	_, err := os.Stat(imagePath)
	assert.NoError(t, err)
}

func TestRenderCommand_UnknownScene(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	root := newRootCommand(log, &bytes.Buffer{})
	root.SetArgs([]string{"render", "--scene", "nonexistent", "--output", filepath.Join(t.TempDir(), "x.ppm")})

	err := root.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, scene.ErrUnknownScene)
}

func TestScenesCommand(t *testing.T) {
	var out bytes.Buffer
	log, _ := logtest.NewNullLogger()
	root := newRootCommand(log, &out)
	root.SetArgs([]string{"scenes", "--dir", filepath.Join("pkg", "scene", "testdata")})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "shared")
	assert.Contains(t, out.String(), "three-spheres")
	assert.Contains(t, out.String(), "mirrors")
}

func TestServeCommand_Flags(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	root := newRootCommand(log, &bytes.Buffer{})

	cmd, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())

	addr := cmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, ":8080", addr.DefValue)
	assert.Equal(t, "scenes", cmd.Flags().Lookup("dir").DefValue)
}
