package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	scenes, err := Discover("testdata")
	require.NoError(t, err)

	require.Len(t, scenes, 2)
	assert.Equal(t, "shared", scenes[0].ID)
	assert.Equal(t, "file", scenes[0].Type)
	assert.Equal(t, filepath.Join("testdata", "shared.json"), scenes[0].FilePath)
	assert.Equal(t, "three-spheres", scenes[1].ID)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	scenes, err := Discover(filepath.Join("testdata", "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, scenes)
}

func TestBuiltins(t *testing.T) {
	ids := []string{}
	for _, info := range Builtins() {
		assert.Equal(t, "builtin", info.Type)
		assert.NotEmpty(t, info.Description)
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []string{"random", "default", "sphere-grid", "mirrors"}, ids)
}

func TestIsDescriptorFile(t *testing.T) {
	assert.True(t, IsDescriptorFile("a.yaml"))
	assert.True(t, IsDescriptorFile("dir/a.YML"))
	assert.True(t, IsDescriptorFile("a.json"))
	assert.False(t, IsDescriptorFile("a.pbrt"))
	assert.False(t, IsDescriptorFile("random"))
}
