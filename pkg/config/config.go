// Package config loads flowsheet configuration from TOML files.
//
// Configuration is optional: every field has a working default, and the CLI
// runs without any file present. When a path is given (or flowsheet.toml
// exists in the working directory), values from the file override defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fluxlab/flowsheet/pkg/errors"
	"github.com/fluxlab/flowsheet/pkg/flow"
)

// DefaultFilename is looked up in the working directory when no explicit
// config path is given.
const DefaultFilename = "flowsheet.toml"

// Config is the root configuration document.
type Config struct {
	Layout   Layout            `toml:"layout"`
	Diagram  Diagram           `toml:"diagram"`
	Carriers map[string]string `toml:"carriers"`
	Cache    Cache             `toml:"cache"`
	Store    Store             `toml:"store"`
	Serve    Serve             `toml:"serve"`
}

// Layout tunes the automatic layout.
type Layout struct {
	XSpacing float64 `toml:"x_spacing"`
	YSpacing float64 `toml:"y_spacing"`
}

// Diagram tunes the draw.io output.
type Diagram struct {
	PageName string `toml:"page_name"`
	Animate  bool   `toml:"animate"`
}

// Cache configures result caching. An empty RedisURL selects the file
// backend; "off" as Dir disables caching entirely.
type Cache struct {
	Dir      string   `toml:"dir"`
	TTL      duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// Store configures the optional layout archive.
type Store struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Serve configures the HTTP API.
type Serve struct {
	Addr string `toml:"addr"`
}

// duration wraps time.Duration so TTLs read naturally in TOML ("24h", "30m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the TTL as a time.Duration.
func (c Cache) Duration() time.Duration {
	return time.Duration(c.TTL)
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout: Layout{
			XSpacing: flow.DefaultXSpacing,
			YSpacing: flow.DefaultYSpacing,
		},
		Diagram: Diagram{
			PageName: "sheet_1",
		},
		Cache: Cache{
			TTL: duration(24 * time.Hour),
		},
		Store: Store{
			Database: "flowsheet",
		},
		Serve: Serve{
			Addr: ":8080",
		},
	}
}

// Load reads configuration from path. An empty path falls back to
// [DefaultFilename] in the working directory; if neither exists the defaults
// are returned without error. An explicit path that does not exist is an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFilename
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Layout.XSpacing < 0 || c.Layout.YSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout spacing must be non-negative")
	}
	for name, color := range c.Carriers {
		if err := errors.ValidateHexColor(color); err != nil {
			return fmt.Errorf("carrier %q: %w", name, err)
		}
	}
	if c.Cache.Duration() < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must be non-negative")
	}
	if c.Cache.RedisURL != "" {
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return fmt.Errorf("cache redis_url: %w", err)
		}
	}
	if c.Store.MongoURI != "" {
		if err := errors.ValidateURL(c.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return fmt.Errorf("store mongo_uri: %w", err)
		}
	}
	return nil
}
