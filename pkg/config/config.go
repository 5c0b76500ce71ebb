// Package config provides configuration management for the pkgvet validator.
// It handles loading, validating, and saving application settings. The package
// supports YAML configuration files and provides sensible defaults so the tool
// works out of the box inside a package distribution checkout.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/pkgvet/pkg/errors"
	"github.com/glorpus-work/pkgvet/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// MetaDir is the root of the package metadata tree; each package has
	// <meta_dir>/<name>/meta.json and <meta_dir>/<name>/meta.json.old.
	MetaDir string `yaml:"meta_dir,omitempty"`

	// ArchiveDir is where downloaded package archives are stored.
	ArchiveDir string `yaml:"archive_dir,omitempty"`

	// UnpackDir is the shared staging directory archives are extracted into.
	UnpackDir string `yaml:"unpack_dir,omitempty"`

	// Network settings.
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	DownloadTries int           `yaml:"download_tries"`

	// Validator is the external validator command prefix; the unpacked
	// directory and package name are appended as arguments.
	Validator []string `yaml:"validator,omitempty"`

	// Output settings.
	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultArchiveDir is where downloaded archives land.
	DefaultArchiveDir = "_archives"

	// DefaultUnpackDir is the shared extraction staging directory.
	DefaultUnpackDir = "_unpacked_archives"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultDownloadTries is the download retry budget per archive.
	DefaultDownloadTries = 5

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			MetaDir:       ".",
			ArchiveDir:    DefaultArchiveDir,
			UnpackDir:     DefaultUnpackDir,
			HTTPTimeout:   DefaultHTTPTimeout,
			DownloadTries: DefaultDownloadTries,
			LogLevel:      "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// Write to a temp file first so a failed encode never clobbers the
	// existing config.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(err, "failed to replace config file")
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if c.Settings.HTTPTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "http_timeout cannot be negative")
	}
	if c.Settings.DownloadTries < 1 {
		return errors.Wrap(errors.ErrConfigValidation, "download_tries must be at least 1")
	}
	if c.Settings.ArchiveDir == "" || c.Settings.UnpackDir == "" {
		return errors.Wrap(errors.ErrConfigValidation, "archive_dir and unpack_dir cannot be empty")
	}
	return nil
}

// applyDefaults fills in zero-valued settings with their defaults.
func (c *Config) applyDefaults() {
	if c.Settings.MetaDir == "" {
		c.Settings.MetaDir = "."
	}
	if c.Settings.ArchiveDir == "" {
		c.Settings.ArchiveDir = DefaultArchiveDir
	}
	if c.Settings.UnpackDir == "" {
		c.Settings.UnpackDir = DefaultUnpackDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Settings.DownloadTries == 0 {
		c.Settings.DownloadTries = DefaultDownloadTries
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = "info"
	}
}
