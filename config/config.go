// Package config loads filamentcolors settings from a TOML or YAML file,
// an optional .env file next to it and FILAMENTCOLORS_* environment
// variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FILAMENTCOLORS_"

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// ErrUnsupportedFormat indicates a config file extension other than
// .toml, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

type ServiceConfig struct {
	Origin string `yaml:"origin" toml:"origin" validate:"required,url"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver" validate:"oneof=badger sqlite"`
	Path   string `yaml:"path" toml:"path" validate:"required"`
}

type SyncConfig struct {
	MaxRetries     int           `yaml:"max_retries" toml:"max_retries" validate:"min=1"`
	RetryDelay     time.Duration `yaml:"retry_delay" toml:"retry_delay" validate:"min=0"`
	PoolSize       int           `yaml:"pool_size" toml:"pool_size" validate:"min=1"`
	ReportInterval int           `yaml:"report_interval" toml:"report_interval" validate:"min=1"`
	Timeout        time.Duration `yaml:"timeout" toml:"timeout" validate:"min=0"` // per HTTP request
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr" validate:"required,hostname_port"`
}

type Config struct {
	Service ServiceConfig `yaml:"service" toml:"service"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Sync    SyncConfig    `yaml:"sync" toml:"sync"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
}

// DefaultStorePath returns the store location used when none is configured.
func DefaultStorePath(driver string) string {
	if driver == DriverSQLite {
		return "~/.filamentcolors/filamentcolors.sqlite3"
	}
	return "~/.filamentcolors/catalog"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{Origin: "https://filamentcolors.xyz"},
		Store: StoreConfig{
			Driver: DriverBadger,
			Path:   DefaultStorePath(DriverBadger),
		},
		Sync: SyncConfig{
			MaxRetries:     3,
			RetryDelay:     500 * time.Millisecond,
			PoolSize:       4,
			ReportInterval: 50,
			Timeout:        30 * time.Second,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load builds a Config from the defaults, the file at configPath (if not
// empty), the environment, and validates it. A .env file in the config
// file's directory, or the working directory without a config file, is
// loaded first; variables already set are not overridden by it.
func Load(configPath string) (*Config, error) {
	envPath := ".env"
	if configPath != "" {
		envPath = filepath.Join(filepath.Dir(configPath), ".env")
	}
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()
	if configPath != "" {
		if err := cfg.decodeFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// applyEnv overlays FILAMENTCOLORS_* variables read through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("ORIGIN", &c.Service.Origin)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_PATH", &c.Store.Path)
	str("SERVER_ADDR", &c.Server.Addr)
	return errors.Join(
		num("SYNC_MAX_RETRIES", &c.Sync.MaxRetries),
		dur("SYNC_RETRY_DELAY", &c.Sync.RetryDelay),
		num("SYNC_POOL_SIZE", &c.Sync.PoolSize),
		num("SYNC_REPORT_INTERVAL", &c.Sync.ReportInterval),
		dur("SYNC_TIMEOUT", &c.Sync.Timeout),
	)
}

// Expand resolves a leading ~ in the store path.
func (c *Config) Expand() error {
	path, err := homedir.Expand(c.Store.Path)
	if err != nil {
		return fmt.Errorf("expanding store path: %w", err)
	}
	c.Store.Path = path
	return nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	problems := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(problems...)
}
