package apps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition(name string, version string) AppDefinition {
	return AppDefinition{
		Name:              name,
		RequestorEnv:      "blender",
		MarketStrategy:    "brass",
		MaxBenchmarkScore: 10000,
		Version:           version,
		Description:       "render tasks",
		Author:            "dev",
		License:           "GPL-3.0",
		BundleCID:         "bafy-bundle",
	}
}

func TestAppDefinitionID(t *testing.T) {
	a := testDefinition("Blender", "1.0")
	b := testDefinition("Blender", "1.0")
	c := testDefinition("Blender", "1.1")

	require.NotEmpty(t, a.ID())
	assert.Equal(t, a.ID(), b.ID(), "identical definitions share an id")
	assert.NotEqual(t, a.ID(), c.ID(), "any field change yields a new id")

	_, err := cid.Decode(string(a.ID()))
	assert.NoError(t, err, "the id is a valid content id")
}

func TestJSONFileName(t *testing.T) {
	def := testDefinition("Blender Render", "1.0")
	assert.Equal(t, "blender_render_1.0.json", def.JSONFileName())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	def := testDefinition("Blender", "1.0")

	path, err := SaveAppToDir(dir, def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "blender_1.0.json"), path)

	loaded, err := LoadAppsFromDir(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, def, loaded[0].Definition)
	assert.Equal(t, path, loaded[0].Path)
}

func TestLoadSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := SaveAppToDir(dir, testDefinition("Blender", "1.0"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))

	loaded, err := LoadAppsFromDir(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 1, "the malformed file is skipped, not fatal")
}
