// Package config holds the compiler's optional project-wide settings:
// build-wide defaults that aren't worth a command-line flag on every
// invocation. A project with no minic.toml compiles identically to one
// with the default config - this is additive tooling, not a language
// feature.
//
// Grounded on _examples/lookbusy1344-arm_emulator/config/config.go: a
// struct of struct-valued sections tagged for github.com/BurntSushi/toml,
// a DefaultConfig constructor, and a Load that falls back to the
// defaults when no file is present.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is minic's project-wide configuration.
type Config struct {
	Output struct {
		Dir string `toml:"dir"`
	} `toml:"output"`

	Linkage struct {
		// StrictExtern makes an `extern` global that this translation
		// unit never defines a hard semantic error, raised by Analyze,
		// rather than a symbol left for the linker to resolve.
		StrictExtern bool `toml:"strict_extern"`
	} `toml:"linkage"`

	Target struct {
		// SDKVersion feeds the assembler preamble's .build_version
		// line (e.g. "11.0" for macOS Big Sur).
		SDKVersion string `toml:"sdk_version"`
	} `toml:"target"`
}

// DefaultConfig returns the configuration a project with no minic.toml
// builds under.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Output.Dir = "."
	cfg.Linkage.StrictExtern = false
	cfg.Target.SDKVersion = "11.0"
	return cfg
}

// Load reads path and overlays it onto DefaultConfig; a missing file
// is not an error, since no config file is the common case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	return cfg, nil
}
