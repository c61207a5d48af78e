package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache backend names accepted in config files.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Store backend names accepted in config files.
const (
	storeBackendMemory = "memory"
	storeBackendFile   = "file"
	storeBackendMongo  = "mongo"
)

// duration wraps time.Duration for TOML decoding of strings like "15m".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Duration returns the wrapped time.Duration.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Config is the canopy configuration file layout.
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "file"     # file, redis, none
//	ttl = "15m"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "file"     # memory, file, mongo
//	path = "~/.local/share/canopy/diagrams"
//
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//	database = "canopy"
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig configures the geometry result cache.
type CacheConfig struct {
	Backend string           `toml:"backend"`
	Dir     string           `toml:"dir"`
	TTL     duration         `toml:"ttl"`
	Redis   RedisCacheConfig `toml:"redis"`
}

// RedisCacheConfig configures the Redis cache backend.
type RedisCacheConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig configures the diagram store.
type StoreConfig struct {
	Backend string           `toml:"backend"`
	Path    string           `toml:"path"`
	Mongo   MongoStoreConfig `toml:"mongo"`
}

// MongoStoreConfig configures the MongoDB store backend.
type MongoStoreConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Cache:  CacheConfig{Backend: cacheBackendFile},
		Store:  StoreConfig{Backend: storeBackendMemory},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file is not an error: defaults apply.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return cfg, nil
		}
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "", cacheBackendFile, cacheBackendRedis, cacheBackendNone:
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	switch cfg.Store.Backend {
	case "", storeBackendMemory, storeBackendFile, storeBackendMongo:
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return nil
}

// configPath returns the config file location using XDG standard
// (~/.config/canopy/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
