package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds defaults loaded from envsync.yaml. Flags set explicitly on
// the command line always win over config values.
type Config struct {
	// Vault is the default vault target (URL, SQLite path, or env:VAR).
	Vault string `yaml:"vault"`

	// Mode is the default sync mode.
	Mode string `yaml:"mode"`

	// EnvFile is the default dotenv file path.
	EnvFile string `yaml:"env_file"`

	// TemplateFile is the default dotenv template path.
	TemplateFile string `yaml:"template_file"`

	// BlobName is the default blob name template for file sync.
	BlobName string `yaml:"blob_name"`

	// Tolerance is the unchanged window, in time.ParseDuration form.
	Tolerance string `yaml:"tolerance"`
}

// LoadConfig reads the config file at path. A missing file is not an
// error: it yields an empty config so every default comes from flags.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// tolerance parses the config's tolerance value; empty means zero (the
// caller falls back to the built-in default).
func (c Config) tolerance() (time.Duration, error) {
	if c.Tolerance == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Tolerance)
	if err != nil {
		return 0, fmt.Errorf("config tolerance %q: %w", c.Tolerance, err)
	}
	return d, nil
}
