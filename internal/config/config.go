// Package config loads wgs settings from defaults, an optional config file,
// a .env file and WGS_-prefixed environment variables, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/wg-scraper/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "WGS"
	configName = "config"
	configType = "toml"
	configDir  = "wgs"
)

type StoreDriver string

const (
	StoreTOML     StoreDriver = "toml"
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

type Config struct {
	Website   domain.Website
	Scheduler SchedulerConfig
	Source    SourceConfig
	Store     StoreConfig
	HTTP      HTTPConfig
	Log       LogConfig
	// File is the config file that was read, empty when none was found.
	File string
}

type SchedulerConfig struct {
	Interval      time.Duration
	Freshness     time.Duration
	MaxConcurrent int
	HistorySize   int
}

type SourceConfig struct {
	BaseURL    string
	ListingURL string
	Timeout    time.Duration
	// ProxyURL is the proxy base an account's proxy port is appended to as a
	// plain suffix; a base ending in a bare host gets a ":" in between.
	ProxyURL string
}

type StoreConfig struct {
	Driver         StoreDriver
	Path           string
	DSN            string
	MaxConns       int
	SimpleProtocol bool
	Timeout        time.Duration
}

type HTTPConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type LoadOptions struct {
	// ConfigFile overrides the config file search.
	ConfigFile string
	// EnvFile is loaded with godotenv when present; defaults to ".env".
	EnvFile string
	// HomeDir overrides os.UserHomeDir for default paths.
	HomeDir string
}

func Load(opts LoadOptions) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	homeDir := opts.HomeDir
	if homeDir == "" {
		var err error
		homeDir, err = os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, configDir))
		}
		v.AddConfigPath(filepath.Join(homeDir, ".config", configDir))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Website: domain.Website(v.GetString("website")),
		Scheduler: SchedulerConfig{
			Interval:      v.GetDuration("scheduler.interval"),
			Freshness:     v.GetDuration("scheduler.freshness"),
			MaxConcurrent: v.GetInt("scheduler.max_concurrent"),
			HistorySize:   v.GetInt("scheduler.history_size"),
		},
		Source: SourceConfig{
			BaseURL:    v.GetString("source.base_url"),
			ListingURL: v.GetString("source.listing_url"),
			Timeout:    v.GetDuration("source.timeout"),
			ProxyURL:   v.GetString("source.proxy_url"),
		},
		Store: StoreConfig{
			Driver:         StoreDriver(strings.ToLower(v.GetString("store.driver"))),
			Path:           expandHome(v.GetString("store.path"), homeDir),
			DSN:            v.GetString("store.dsn"),
			MaxConns:       v.GetInt("store.max_conns"),
			SimpleProtocol: v.GetBool("store.simple_protocol"),
			Timeout:        v.GetDuration("store.timeout"),
		},
		HTTP: HTTPConfig{Addr: v.GetString("http.addr")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   expandHome(v.GetString("log.file"), homeDir),
		},
		File: v.ConfigFileUsed(),
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = inferDriver(cfg.Store)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.Store.Driver, homeDir)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Website == "" {
		errs = append(errs, errors.New("website cannot be empty"))
	}
	if c.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("scheduler.interval must be > 0"))
	}
	if c.Scheduler.Freshness <= 0 {
		errs = append(errs, errors.New("scheduler.freshness must be > 0"))
	}
	if c.Scheduler.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("scheduler.max_concurrent must be > 0"))
	}
	if c.Scheduler.HistorySize <= 0 {
		errs = append(errs, errors.New("scheduler.history_size must be > 0"))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source.timeout must be > 0"))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("store.timeout must be > 0"))
	}

	switch c.Store.Driver {
	case StoreTOML, StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for the %s driver", c.Store.Driver))
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn (or DATABASE_URL) is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q (want toml, sqlite or postgres)", c.Store.Driver))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("website", string(domain.WebsiteWGGesucht))
	v.SetDefault("scheduler.interval", 2*time.Minute)
	v.SetDefault("scheduler.freshness", 5*time.Minute)
	v.SetDefault("scheduler.max_concurrent", 10)
	v.SetDefault("scheduler.history_size", 50)
	v.SetDefault("source.base_url", "https://www.wg-gesucht.de/api/")
	v.SetDefault("source.listing_url", "https://www.wg-gesucht.de")
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.proxy_url", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.path", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.simple_protocol", false)
	v.SetDefault("store.timeout", 10*time.Second)
	v.SetDefault("http.addr", ":5001")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// bindLegacyEnv accepts the unprefixed variable names of older deployments
// next to their WGS_ equivalents.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"store.dsn":        {"WGS_STORE_DSN", "DATABASE_URL"},
		"source.proxy_url": {"WGS_SOURCE_PROXY_URL", "PROXY_URL"},
		"log.level":        {"WGS_LOG_LEVEL", "LOG_LEVEL"},
	}

	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

func inferDriver(store StoreConfig) StoreDriver {
	if store.DSN != "" {
		return StorePostgres
	}

	switch strings.ToLower(filepath.Ext(store.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return StoreSQLite
	default:
		return StoreTOML
	}
}

func defaultStorePath(driver StoreDriver, homeDir string) string {
	switch driver {
	case StoreSQLite:
		return filepath.Join(homeDir, ".local", "share", configDir, "wgs.db")
	case StoreTOML:
		return filepath.Join(homeDir, ".config", configDir, "accounts.toml")
	default:
		return ""
	}
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
