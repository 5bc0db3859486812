// Package config loads checkrc.toml, the user and project settings of the
// checkr CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the settings file looked up from the working directory.
const FileName = "checkrc.toml"

// Accepted values of the [output] keys.
var (
	Formats    = []string{"pretty", "short", "json", "sarif"}
	ColorModes = []string{"auto", "on", "off"}
	PathModes  = []string{"auto", "absolute", "relative", "basename"}
)

// Config is the decoded checkrc.toml with defaults filled in.
type Config struct {
	Path   string `toml:"-"` // file it was read from; empty for defaults
	Output Output `toml:"output"`
	Run    Run    `toml:"run"`
	Rules  Rules  `toml:"rules"`
}

// Output selects how diagnostics are rendered.
type Output struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
	Paths  string `toml:"paths"`
}

// Run tunes checking.
type Run struct {
	Jobs         int      `toml:"jobs"` // 0 = GOMAXPROCS
	MaxMatches   int      `toml:"max-matches"`
	MatchTimeout Duration `toml:"match-timeout"`
	Cache        bool     `toml:"cache"`
}

// Rules filters discovered rules.
type Rules struct {
	Disable []string `toml:"disable"`
}

// Duration decodes TOML strings such as "2s" or "150ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Output: Output{Format: "pretty", Color: "auto", Paths: "auto"},
		Run: Run{
			MaxMatches:   50,
			MatchTimeout: Duration{2 * time.Second},
		},
	}
}

// Disabled reports whether rule name is switched off.
func (c *Config) Disabled(name string) bool {
	return slices.Contains(c.Rules.Disable, name)
}

// Find walks up from startDir to locate checkrc.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// UserPath returns $XDG_CONFIG_HOME/checkr/checkrc.toml, falling back to
// ~/.config when the variable is unset.
func UserPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "checkr", FileName), nil
}

// Load returns the project settings nearest to startDir, else the user
// settings, else Default.
func Load(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		user, err := UserPath()
		if err != nil {
			return Default(), nil
		}
		if _, err := os.Stat(user); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Default(), nil
			}
			return nil, fmt.Errorf("failed to stat %q: %w", user, err)
		}
		path = user
	}
	return LoadFile(path)
}

// LoadFile decodes one settings file on top of Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(names, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("invalid [output].format %q: want one of %s", c.Output.Format, strings.Join(Formats, ", "))
	}
	if !slices.Contains(ColorModes, c.Output.Color) {
		return fmt.Errorf("invalid [output].color %q: want one of %s", c.Output.Color, strings.Join(ColorModes, ", "))
	}
	if !slices.Contains(PathModes, c.Output.Paths) {
		return fmt.Errorf("invalid [output].paths %q: want one of %s", c.Output.Paths, strings.Join(PathModes, ", "))
	}
	if c.Run.Jobs < 0 {
		return fmt.Errorf("invalid [run].jobs %d: must not be negative", c.Run.Jobs)
	}
	if c.Run.MaxMatches < 0 {
		return fmt.Errorf("invalid [run].max-matches %d: must not be negative", c.Run.MaxMatches)
	}
	if c.Run.MatchTimeout.Duration < 0 {
		return fmt.Errorf("invalid [run].match-timeout %s: must not be negative", c.Run.MatchTimeout)
	}
	return nil
}
