package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1.0, cfg.Transform.AngleStep)
	assert.Equal(t, []string{"radon"}, cfg.Transform.TFunctionals)
	assert.Equal(t, "features.csv", cfg.Output.FeaturesFile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Positive(t, cfg.Backend.Workers)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, int64(0), cfg.MemoryLimit())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Transform, cfg.Transform)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Transform.AngleStep = 0.5
	cfg.Transform.PFunctionals = []string{"H1", "H4"}
	cfg.Backend.MemoryLimitMB = 64
	cfg.Logging.Level = "debug"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, int64(64<<20), loaded.MemoryLimit())
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "transform:\n  tFunctionals: [T1, T2]\n  parallel: true\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, cfg.Transform.TFunctionals)
	assert.True(t, cfg.Transform.Parallel)
	// untouched sections keep their defaults
	assert.Equal(t, 1.0, cfg.Transform.AngleStep)
	assert.Equal(t, "features.csv", cfg.Output.FeaturesFile)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("transform: [unterminated"), 0644))
	_, err := LoadConfig(broken)
	assert.Error(t, err)

	outOfRange := filepath.Join(dir, "range.yaml")
	require.NoError(t, os.WriteFile(outOfRange, []byte("transform:\n  angleStep: 400\n"), 0644))
	_, err = LoadConfig(outOfRange)
	assert.ErrorContains(t, err, "angleStep")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero angle step":   func(c *Config) { c.Transform.AngleStep = 0 },
		"negative workers":  func(c *Config) { c.Backend.Workers = -1 },
		"negative memory":   func(c *Config) { c.Backend.MemoryLimitMB = -5 },
		"unknown log level": func(c *Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "angleStep: 1")
	assert.Contains(t, string(data), "featuresFile: features.csv")
}
