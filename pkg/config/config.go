// Package config loads the optional wahl configuration file.
//
// The file is TOML and every section is optional:
//
//	[summary]
//	nef = true
//	chern = true
//	fraction = true
//	base = false
//
//	[cache]
//	backend = "redis"          # file | redis | none
//	redis_addr = "localhost:6379"
//	ttl = "720h"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[analysis]
//	workers = 8
//
//	[serve]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

const appName = "wahl"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Summary  Summary  `toml:"summary"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Analysis Analysis `toml:"analysis"`
	Serve    Serve    `toml:"serve"`
}

// Summary selects the columns and grouping of the LaTeX summary.
type Summary struct {
	Nef         bool `toml:"nef"`
	Obstruction bool `toml:"obstruction"`
	Effective   bool `toml:"effective"`
	GCD         bool `toml:"gcd"`
	Chern       bool `toml:"chern"`
	PK          bool `toml:"pk"`
	Determinant bool `toml:"determinant"`
	Fraction    bool `toml:"fraction"`
	LengthSort  bool `toml:"length_sort"`
	Base        bool `toml:"base"`
	Subsection  bool `toml:"subsection"`
	Precision   int  `toml:"precision"`
}

// Cache configures the analysis cache.
type Cache struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Namespace     string        `toml:"namespace"`
	TTL           time.Duration `toml:"ttl"`
}

// Store configures persistence of batch results. An empty MongoURI
// disables it.
type Store struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Analysis configures the batch runner.
type Analysis struct {
	Workers int  `toml:"workers"`
	Verify  bool `toml:"verify"`
}

// Serve configures the HTTP API.
type Serve struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxCurves    int           `toml:"max_curves"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Summary: Summary{Chern: true, Precision: 2},
		Cache: Cache{
			Backend:   BackendFile,
			Namespace: appName + ":",
			TTL:       30 * 24 * time.Hour,
		},
		Store: Store{Database: appName, Collection: "results"},
		Serve: Serve{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxCurves:    2048,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/wahl/config.toml, falling back to
// the platform config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads the file at path on top of [Default]. An empty path means
// [DefaultPath], which may be absent; an explicit path must exist.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend-specific requirements.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if err := errors.ValidateRedisAddr(c.Cache.RedisAddr); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Serve.MaxCurves < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "serve max_curves must not be negative")
	}
	if c.Store.MongoURI != "" {
		if err := errors.ValidateMongoURI(c.Store.MongoURI); err != nil {
			return err
		}
	}
	if c.Analysis.Workers != 0 {
		if err := errors.ValidateWorkers(c.Analysis.Workers); err != nil {
			return err
		}
	}
	return errors.ValidatePrecision(c.Summary.Precision)
}

// Write encodes c as TOML to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
