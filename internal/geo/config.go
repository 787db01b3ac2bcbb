package geo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults describe the Anna University campus, the deployment this
// application was built for.
const (
	DefaultBufferFactor = 1.2
	DefaultMinZoom      = 15
	DefaultMaxZoom      = 20
)

// DefaultCampusRect is the fallback bounding rectangle.
var DefaultCampusRect = Rect{
	MinLat: 13.007222,
	MaxLat: 13.015944,
	MinLon: 80.230278,
	MaxLon: 80.240351,
}

// CampusConfig is the campus geometry loaded from YAML.
type CampusConfig struct {
	// Name is a human-friendly campus label.
	Name string `yaml:"name" json:"name"`

	// Bounds is the rectangle the viewport is pinned to.
	Bounds Rect `yaml:"bounds" json:"bounds"`

	// BufferFactor scales the initial viewport spans so the whole campus is
	// visible with margin on first render.
	BufferFactor float64 `yaml:"buffer_factor" json:"buffer_factor"`

	// MinZoom and MaxZoom bound the map display's zoom range.
	MinZoom int `yaml:"min_zoom" json:"min_zoom"`
	MaxZoom int `yaml:"max_zoom" json:"max_zoom"`
}

// DefaultCampusConfig returns an in-memory default configuration.
func DefaultCampusConfig() *CampusConfig {
	return &CampusConfig{
		Name:         "Anna University",
		Bounds:       DefaultCampusRect,
		BufferFactor: DefaultBufferFactor,
		MinZoom:      DefaultMinZoom,
		MaxZoom:      DefaultMaxZoom,
	}
}

// Normalize fills in missing/zero values so partially-filled configs still
// behave correctly.
func (c *CampusConfig) Normalize() {
	if c.Name == "" {
		c.Name = "Anna University"
	}
	if c.Bounds.MinLat == 0 && c.Bounds.MaxLat == 0 {
		c.Bounds = DefaultCampusRect
	}
	// Swapped corners would make Contains reject everything.
	if c.Bounds.MinLat > c.Bounds.MaxLat {
		c.Bounds.MinLat, c.Bounds.MaxLat = c.Bounds.MaxLat, c.Bounds.MinLat
	}
	if c.Bounds.MinLon > c.Bounds.MaxLon {
		c.Bounds.MinLon, c.Bounds.MaxLon = c.Bounds.MaxLon, c.Bounds.MinLon
	}
	if c.BufferFactor <= 0 {
		c.BufferFactor = DefaultBufferFactor
	}
	if c.MinZoom <= 0 {
		c.MinZoom = DefaultMinZoom
	}
	if c.MaxZoom <= c.MinZoom {
		c.MaxZoom = DefaultMaxZoom
	}
}

// Guard builds a bounds guard from this configuration.
func (c *CampusConfig) Guard() *Guard {
	return NewGuard(c.Bounds, c.BufferFactor)
}

// LoadCampusConfig loads the campus geometry from the given YAML path.
//
// If the file does not exist, a default config is written there and returned,
// so a first run produces an editable file. If it exists, it is unmarshaled
// and normalized.
func LoadCampusConfig(path string) (*CampusConfig, error) {
	if path == "" {
		return nil, errors.New("campus config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultCampusConfig()
			if err := SaveCampusConfig(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg CampusConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// SaveCampusConfig writes the configuration atomically via a temp file + rename.
func SaveCampusConfig(path string, cfg *CampusConfig) error {
	if cfg == nil {
		return errors.New("campus config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".campus-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
