package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ".", cfg.Settings.MetaDir)
	assert.Equal(t, DefaultArchiveDir, cfg.Settings.ArchiveDir)
	assert.Equal(t, DefaultUnpackDir, cfg.Settings.UnpackDir)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultDownloadTries, cfg.Settings.DownloadTries)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigFromReader(t *testing.T) {
	yaml := `
settings:
  meta_dir: packages
  archive_dir: downloads
  unpack_dir: staging
  http_timeout: 10s
  download_tries: 3
  validator: ["gap", "_tools/validate_package.g"]
  log_level: debug
`
	cfg, err := LoadConfigFromReader(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "packages", cfg.Settings.MetaDir)
	assert.Equal(t, "downloads", cfg.Settings.ArchiveDir)
	assert.Equal(t, "staging", cfg.Settings.UnpackDir)
	assert.Equal(t, 10*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 3, cfg.Settings.DownloadTries)
	assert.Equal(t, []string{"gap", "_tools/validate_package.g"}, cfg.Settings.Validator)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
}

func TestLoadConfigFromReader_PartialGetsDefaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader("settings:\n  meta_dir: pkgs\n"))
	require.NoError(t, err)

	assert.Equal(t, "pkgs", cfg.Settings.MetaDir)
	assert.Equal(t, DefaultArchiveDir, cfg.Settings.ArchiveDir)
	assert.Equal(t, DefaultDownloadTries, cfg.Settings.DownloadTries)
}

func TestLoadConfigFromReader_InvalidYAML(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("settings: [not a map"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Settings.HTTPTimeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "zero download tries",
			mutate:  func(c *Config) { c.Settings.DownloadTries = 0 },
			wantErr: true,
		},
		{
			name:    "empty archive dir",
			mutate:  func(c *Config) { c.Settings.ArchiveDir = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Settings.MetaDir = "packages"
	cfg.Settings.DownloadTries = 2
	cfg.Settings.Validator = []string{"true"}

	require.NoError(t, cfg.SaveConfig(path))

	// Temp file must not be left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
