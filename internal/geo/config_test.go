package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "campus.yaml")

	cfg, err := LoadCampusConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Anna University", cfg.Name)
	assert.Equal(t, DefaultCampusRect, cfg.Bounds)
	assert.InDelta(t, DefaultBufferFactor, cfg.BufferFactor, 1e-9)

	// First run leaves an editable file behind.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := LoadCampusConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := LoadCampusConfig("")
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bounds: [not a map"), 0o644))

	_, err := LoadCampusConfig(path)
	require.Error(t, err)
}

func TestLoadPartialConfigNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.yaml")
	partial := `name: Test Campus
bounds:
  min_lat: 13.0
  max_lat: 13.1
  min_lon: 80.2
  max_lon: 80.3
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := LoadCampusConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Campus", cfg.Name)
	assert.InDelta(t, 13.0, cfg.Bounds.MinLat, 1e-9)
	assert.InDelta(t, DefaultBufferFactor, cfg.BufferFactor, 1e-9)
	assert.Equal(t, DefaultMinZoom, cfg.MinZoom)
	assert.Equal(t, DefaultMaxZoom, cfg.MaxZoom)
}

func TestNormalizeSwappedCorners(t *testing.T) {
	cfg := &CampusConfig{
		Bounds: Rect{MinLat: 13.1, MaxLat: 13.0, MinLon: 80.3, MaxLon: 80.2},
	}
	cfg.Normalize()

	assert.Less(t, cfg.Bounds.MinLat, cfg.Bounds.MaxLat)
	assert.Less(t, cfg.Bounds.MinLon, cfg.Bounds.MaxLon)
	assert.True(t, cfg.Bounds.Contains(Coordinate{Latitude: 13.05, Longitude: 80.25}))
}

func TestNormalizeZeroBounds(t *testing.T) {
	cfg := &CampusConfig{}
	cfg.Normalize()

	assert.Equal(t, DefaultCampusRect, cfg.Bounds)
	assert.Equal(t, "Anna University", cfg.Name)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.yaml")

	want := &CampusConfig{
		Name:         "Satellite Campus",
		Bounds:       Rect{MinLat: 12.8, MaxLat: 12.9, MinLon: 80.0, MaxLon: 80.1},
		BufferFactor: 1.5,
		MinZoom:      14,
		MaxZoom:      19,
	}
	require.NoError(t, SaveCampusConfig(path, want))

	got, err := LoadCampusConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveNilConfig(t *testing.T) {
	require.Error(t, SaveCampusConfig(filepath.Join(t.TempDir(), "campus.yaml"), nil))
}

func TestGuardFromConfig(t *testing.T) {
	cfg := DefaultCampusConfig()
	guard := cfg.Guard()

	region := guard.InitialRegion()
	assert.True(t, cfg.Bounds.Contains(region.Center()))
}
