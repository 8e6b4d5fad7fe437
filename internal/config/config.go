// Package config loads settings for the keyenvelope command.
//
// Values come from defaults, then an optional YAML file, then environment
// variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	keyenvelope "github.com/vaultsandbox/keyenvelope"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvBundlePath   = "KEYENVELOPE_BUNDLE"
	EnvMnemonicBits = "KEYENVELOPE_MNEMONIC_BITS"
)

// DefaultBundleFile is the bundle file name inside the user config directory.
const DefaultBundleFile = "bundle.json"

// ErrInvalid is returned for a configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration.
type Config struct {
	BundlePath   string
	KDF          keyenvelope.KDFParams
	MnemonicBits int
}

// FileConfig is the YAML document. Zero values leave defaults untouched.
type FileConfig struct {
	BundlePath   string        `yaml:"bundle_path"`
	KDF          FileKDFConfig `yaml:"kdf"`
	MnemonicBits int           `yaml:"mnemonic_bits"`
}

// FileKDFConfig holds Argon2id costs used when a new bundle is created.
type FileKDFConfig struct {
	Time     uint32 `yaml:"time"`
	MemoryKB uint32 `yaml:"memory_kb"`
	Threads  uint8  `yaml:"threads"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BundlePath:   defaultBundlePath(),
		KDF:          keyenvelope.DefaultKDFParams(),
		MnemonicBits: keyenvelope.DefaultMnemonicStrength,
	}
}

func defaultBundlePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultBundleFile
	}
	return filepath.Join(dir, "keyenvelope", DefaultBundleFile)
}

// Load resolves the configuration. An empty path skips the file; a missing
// file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: config file %s not found", ErrInvalid, path)
		}
		if err != nil {
			return cfg, err
		}

		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		Merge(&cfg, parsed)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Merge copies the non-zero values of src into dst.
func Merge(dst *Config, src FileConfig) {
	if src.BundlePath != "" {
		dst.BundlePath = src.BundlePath
	}
	if src.KDF.Time != 0 {
		dst.KDF.Time = src.KDF.Time
	}
	if src.KDF.MemoryKB != 0 {
		dst.KDF.MemoryKB = src.KDF.MemoryKB
	}
	if src.KDF.Threads != 0 {
		dst.KDF.Threads = src.KDF.Threads
	}
	if src.MnemonicBits != 0 {
		dst.MnemonicBits = src.MnemonicBits
	}
}

// ApplyEnvOverrides applies KEYENVELOPE_* environment variables.
func ApplyEnvOverrides(cfg *Config) error {
	if path := strings.TrimSpace(os.Getenv(EnvBundlePath)); path != "" {
		cfg.BundlePath = path
	}

	raw := strings.TrimSpace(os.Getenv(EnvMnemonicBits))
	if raw == "" {
		return nil
	}
	bits, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvMnemonicBits, raw)
	}
	cfg.MnemonicBits = bits
	return nil
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BundlePath) == "" {
		return fmt.Errorf("%w: bundle path is empty", ErrInvalid)
	}
	if err := c.KDF.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.MnemonicBits < 128 || c.MnemonicBits > 256 || c.MnemonicBits%32 != 0 {
		return fmt.Errorf("%w: mnemonic_bits must be 128, 160, 192, 224 or 256, got %d", ErrInvalid, c.MnemonicBits)
	}
	return nil
}
