// Package config loads the optional TOML configuration file for the c8
// binary. An absent file means defaults; an unknown key is an error so
// typos don't silently fall back.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/bradford-hamilton/c8/internal/chip8"
)

// Config holds everything a user can set from a file. CLI flags override
// these values field by field.
type Config struct {
	// Speed is the number of instructions executed per cycle, 1..100.
	Speed uint `toml:"speed"`

	// Fg and Bg are RRGGBB hex colors for lit and unlit pixels.
	Fg string `toml:"fg"`
	Bg string `toml:"bg"`

	Quirks Quirks `toml:"quirks"`
}

// Quirks mirrors chip8.Quirks with TOML field names.
type Quirks struct {
	ShiftSourceY   bool `toml:"shift-source-y"`
	IndexIncrement bool `toml:"index-increment"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Speed: chip8.DefaultSpeed,
		Fg:    "FFFFFF",
		Bg:    "000000",
	}
}

// Load reads a TOML file over the defaults. Keys the schema doesn't know
// and speeds outside 1..100 are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q in config file %s", undecoded[0].String(), path)
	}
	if cfg.Speed < chip8.MinSpeed || cfg.Speed > chip8.MaxSpeed {
		return Config{}, fmt.Errorf("speed %d out of range [%d, %d]", cfg.Speed, chip8.MinSpeed, chip8.MaxSpeed)
	}

	return cfg, nil
}

// VMQuirks converts the file representation to the VM's quirk flags.
func (c Config) VMQuirks() chip8.Quirks {
	return chip8.Quirks{
		ShiftSourceY:   c.Quirks.ShiftSourceY,
		IndexIncrement: c.Quirks.IndexIncrement,
	}
}
