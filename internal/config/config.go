// Package config loads liveboard server settings from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LIVEBOARD_"

// HTTP holds listener settings.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Config is the resolved server configuration.
type Config struct {
	HTTP        HTTP          `yaml:"http"`
	StorageDir  string        `yaml:"storage_dir"`
	Latency     time.Duration `yaml:"latency"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	CatalogPath string        `yaml:"catalog_path"`
	Charts      Charts        `yaml:"charts"`
}

// Charts tunes the preview renderer. An empty AssetsHost keeps the
// go-echarts CDN default.
type Charts struct {
	Theme      string        `yaml:"theme"`
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTP:       HTTP{Addr: ":8080"},
		StorageDir: ".liveboard",
		LogLevel:   "info",
		LogFormat:  "json",
		Charts:     Charts{CacheTTL: 5 * time.Minute},
	}
}

// Load reads path (optional) over the defaults, then applies LIVEBOARD_*
// variables from lookup. A nil lookup uses os.LookupEnv.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return cfg, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("HTTP_ADDR", &cfg.HTTP.Addr)
	str("STORAGE_DIR", &cfg.StorageDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("CATALOG_PATH", &cfg.CatalogPath)
	str("CHART_THEME", &cfg.Charts.Theme)
	str("CHART_ASSETS_HOST", &cfg.Charts.AssetsHost)

	if v, ok := lookup(EnvPrefix + "LATENCY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sLATENCY: %w", EnvPrefix, err)
		}
		cfg.Latency = d
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("config: http.addr is required"))
	}
	if c.Latency < 0 {
		errs = append(errs, errors.New("config: latency must not be negative"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("config: unsupported log_format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
