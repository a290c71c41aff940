package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	Poloniex    = "poloniex"
	CoinbasePro = "coinbasepro"
)

/*
YAML config example:

venue: poloniex
confirm: true
poloniex:
  key: "${POLONIEX_KEY}"
  secret: "${POLONIEX_SECRET}"
  interval: 250ms
coinbasepro:
  key: "${COINBASE_PRO_KEY}"
  secret: "${COINBASE_PRO_SECRET}"
  passphrase: "${COINBASE_PRO_PASSPHRASE}"
log:
  file: bourse.log
  max_size_mb: 10
*/

//
// Config is the command line tool's configuration. Flags given on the command line override it.
//
type Config struct {
	Venue       string         `yaml:"venue"`
	Confirm     bool           `yaml:"confirm"`
	Verbose     bool           `yaml:"verbose"`
	Poloniex    PoloniexConfig `yaml:"poloniex"`
	CoinbasePro CoinbaseConfig `yaml:"coinbasepro"`
	Log         LogConfig      `yaml:"log"`
}

type PoloniexConfig struct {
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`

	//
	// Interval overrides the minimum spacing between requests. Zero keeps the facade's default.
	//
	Interval time.Duration `yaml:"interval"`
}

type CoinbaseConfig struct {
	Key        string        `yaml:"key"`
	Secret     string        `yaml:"secret"`
	Passphrase string        `yaml:"passphrase"`
	BaseURL    string        `yaml:"base_url"`
	FeedURL    string        `yaml:"feed_url"`
	Interval   time.Duration `yaml:"interval"`
}

//
// LogConfig routes log output to a rotating file. An empty File keeps logging on stderr.
//
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

//
// Default returns the configuration used when no file is given.
//
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

//
// Load reads a YAML config file, expanding ${VAR} references from the environment, then applies
// defaults and validates the result. An empty path yields Default().
//
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

//
// Parse decodes YAML config data. Unknown keys are rejected so that typos do not go unnoticed.
//
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config

	decoder := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (o *Config) applyDefaults() {
	if o.Venue == "" {
		o.Venue = Poloniex
	}

	if o.Log.MaxSizeMB == 0 {
		o.Log.MaxSizeMB = 10
	}

	if o.Log.MaxBackups == 0 {
		o.Log.MaxBackups = 3
	}

	if o.Log.MaxAgeDays == 0 {
		o.Log.MaxAgeDays = 28
	}
}

func (o *Config) Validate() error {
	switch o.Venue {
	case Poloniex, CoinbasePro:
	default:
		return fmt.Errorf("unknown venue %q (expected %q or %q)", o.Venue, Poloniex, CoinbasePro)
	}

	if o.Poloniex.Interval < 0 || o.CoinbasePro.Interval < 0 {
		return errors.New("request intervals cannot be negative")
	}

	if o.Log.MaxSizeMB < 0 || o.Log.MaxBackups < 0 || o.Log.MaxAgeDays < 0 {
		return errors.New("log rotation limits cannot be negative")
	}

	return nil
}
