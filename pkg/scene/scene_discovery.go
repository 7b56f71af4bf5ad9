package scene

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ErrUnknownScene is returned for a scene name that is neither built in nor a file
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Descriptor path (file type only)
}

type builtinScene struct {
	info  SceneInfo
	build func(random core.Random) *Scene
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{ID: "random", Type: "builtin",
			Description: "Cover scene: hundreds of random small spheres around three large ones"},
		build: NewRandomScene,
	},
	{
		info: SceneInfo{ID: "default", Type: "builtin",
			Description: "Diffuse, hollow glass and fuzzy gold spheres on a ground sphere"},
		build: func(core.Random) *Scene { return NewDefaultScene() },
	},
	{
		info: SceneInfo{ID: "sphere-grid", Type: "builtin",
			Description: "Grid of rainbow-colored metallic spheres"},
		build: func(core.Random) *Scene { return NewSphereGridScene() },
	},
	{
		info: SceneInfo{ID: "mirrors", Type: "builtin",
			Description: "Two perfect mirrors facing each other"},
		build: func(core.Random) *Scene { return NewMirrorsScene() },
	},
}

// Builtins lists the built-in scenes
func Builtins() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		infos = append(infos, b.info)
	}
	return infos
}

// New builds the named built-in scene. random is only consumed by scenes
// with a randomly generated layout.
func New(name string, random core.Random) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.build(random), nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownScene, "%q", name)
}

// Discover scans dir for YAML and JSON scene descriptors. A missing
// directory yields an empty list.
func Discover(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []SceneInfo{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "scanning scenes directory %s", dir)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !IsDescriptorFile(entry.Name()) {
			continue
		}
		name := entry.Name()
		scenes = append(scenes, SceneInfo{
			ID:       strings.TrimSuffix(name, filepath.Ext(name)),
			Type:     "file",
			FilePath: filepath.Join(dir, name),
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes, nil
}

// IsDescriptorFile reports whether path has a scene descriptor extension
func IsDescriptorFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
