// Package config loads nodal.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
)

// FileName is the configuration file looked up when no path is given.
const FileName = "nodal.toml"

const (
	defaultWorkers = 4
	defaultAddr    = ":8420"
	defaultTimeout = 5 * time.Second
)

// Config holds every setting of the command-line front end.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Render RenderConfig `toml:"render"`
	Lisp   LispConfig   `toml:"lisp"`
	Server ServerConfig `toml:"server"`

	dir string
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type RenderConfig struct {
	Frame   float64 `toml:"frame"`
	Workers int     `toml:"workers"`
}

type LispConfig struct {
	Timeout   Duration      `toml:"timeout"`
	Libraries []LispLibrary `toml:"library"`
}

// LispLibrary names a Lisp source file loaded into a function namespace.
type LispLibrary struct {
	Namespace string `toml:"namespace"`
	Path      string `toml:"path"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Render: RenderConfig{Frame: 1, Workers: defaultWorkers},
		Lisp:   LispConfig{Timeout: Duration{defaultTimeout}},
		Server: ServerConfig{Addr: defaultAddr},
	}
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults unchanged. Relative library paths are resolved against the
// directory holding the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = FileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.dir = filepath.Dir(abs)

	if _, err := toml.DecodeFile(abs, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	for i, lib := range cfg.Lisp.Libraries {
		if lib.Path != "" && !filepath.IsAbs(lib.Path) {
			cfg.Lisp.Libraries[i].Path = filepath.Join(cfg.dir, lib.Path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if _, ok := formatters[c.Log.Format]; !ok {
		result = multierror.Append(result, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Render.Workers <= 0 {
		result = multierror.Append(result, fmt.Errorf("render.workers: must be positive, got %d", c.Render.Workers))
	}
	if c.Lisp.Timeout.Duration <= 0 {
		result = multierror.Append(result, fmt.Errorf("lisp.timeout: must be positive, got %s", c.Lisp.Timeout))
	}
	seen := make(map[string]bool)
	for _, lib := range c.Lisp.Libraries {
		switch {
		case lib.Namespace == "":
			result = multierror.Append(result, fmt.Errorf("lisp.library: missing namespace for %q", lib.Path))
		case seen[lib.Namespace]:
			result = multierror.Append(result, fmt.Errorf("lisp.library: duplicate namespace %q", lib.Namespace))
		}
		if lib.Path == "" {
			result = multierror.Append(result, fmt.Errorf("lisp.library %q: missing path", lib.Namespace))
		}
		seen[lib.Namespace] = true
	}
	return result.ErrorOrNil()
}

var formatters = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// LogLevel returns the configured level. Validate must have passed.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// LogFormatter returns the configured log formatter.
func (c *Config) LogFormatter() log.Formatter {
	return formatters[c.Log.Format]
}
