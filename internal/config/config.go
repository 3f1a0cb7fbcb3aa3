// Package config loads optional CLI defaults for the atomictx command
// from a small TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Defaults holds CLI flag defaults. Unset fields keep Go's zero value,
// which is also the CLI's own flag default, so a missing or partial
// config file is never an error.
type Defaults struct {
	NonBlocking       bool `toml:"nonblocking,omitempty"`
	PreserveImmutable bool `toml:"preserve_immutable,omitempty"`
	BufferSize        int  `toml:"buffer_size,omitempty"`
	Verbose           bool `toml:"verbose,omitempty"`
}

// Load reads and parses the defaults file at path. A missing file is not
// an error: it returns the zero Defaults.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults{}, nil
		}
		return Defaults{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var d Defaults
	if err := toml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return d, nil
}

// DefaultPath returns the conventional location of the defaults file:
// $XDG_CONFIG_HOME/atomictx/config.toml, falling back to
// ~/.config/atomictx/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "atomictx", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "atomictx", "config.toml"), nil
}
