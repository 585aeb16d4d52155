// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Device     DeviceConfig     `toml:"device"`
	Report     ReportConfig     `toml:"report"`
	Acceptance AcceptanceConfig `toml:"acceptance"`
	Register   RegisterConfig   `toml:"register"`
}

// DeviceConfig maps the instrument identity.
type DeviceConfig struct {
	Serial     *int    `toml:"serial"`
	Model      *string `toml:"model"`
	Type       *string `toml:"type"`
	Wavelength *string `toml:"wavelength"`
}

// ReportConfig maps run parameters and output paths.
type ReportConfig struct {
	Operator *string `toml:"operator"`
	Source   *string `toml:"source"`
	Logo     *string `toml:"logo"`
	Output   *string `toml:"output"`
	Chart    *string `toml:"chart"`
	Data     *string `toml:"data"`
}

// AcceptanceConfig maps the pass criteria.
type AcceptanceConfig struct {
	PeakPosition  *float64 `toml:"peak-position"`
	PeakTolerance *float64 `toml:"peak-tolerance"`
	MinIntensity  *float64 `toml:"min-intensity"`
}

// RegisterConfig maps the certificate register settings.
type RegisterConfig struct {
	Enabled *bool   `toml:"enabled"`
	Path    *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
