// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the session itself goes to the store.
//
// Values are layered: defaults, then config.json, then a .env file in the working
// directory, then SHIPSTER_* environment variables. Command-line flags are applied
// on top by the cmd package.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "shipster/cli/internal/errors"
	"shipster/cli/internal/xdg"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Transports understood by the backend package.
const (
	TransportHTTP   = "http"
	TransportSocket = "socket"
	TransportGRPC   = "grpc"
)

// Store kinds understood by the cmd wiring.
const (
	StoreKeyring  = "keyring"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	BackendURL     string      `json:"backend_url" env:"SHIPSTER_BACKEND_URL"`
	Transport      string      `json:"transport" env:"SHIPSTER_TRANSPORT"`
	GRPCAddr       string      `json:"grpc_addr" env:"SHIPSTER_GRPC_ADDR"`
	JoinPath       string      `json:"join_path" env:"SHIPSTER_JOIN_PATH"`
	TimeoutSeconds int         `json:"timeout_seconds" env:"SHIPSTER_TIMEOUT_SECONDS"`
	LogLevel       string      `json:"log_level" env:"SHIPSTER_LOG_LEVEL"`
	LogFile        string      `json:"log_file" env:"SHIPSTER_LOG_FILE"`
	Store          StoreConfig `json:"store" envPrefix:"SHIPSTER_STORE_"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	Kind        string `json:"kind" env:"KIND"`
	RedisAddr   string `json:"redis_addr" env:"REDIS_ADDR"`
	RedisPrefix string `json:"redis_prefix" env:"REDIS_PREFIX"`
	SQLitePath  string `json:"sqlite_path" env:"SQLITE_PATH"`
	PostgresDSN string `json:"postgres_dsn" env:"POSTGRES_DSN"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BackendURL:     "http://localhost:1337",
		Transport:      TransportHTTP,
		GRPCAddr:       "localhost:50051",
		JoinPath:       "/game/joinLobby",
		TimeoutSeconds: 15,
		LogLevel:       "info",
		Store:          StoreConfig{Kind: StoreKeyring},
	}
}

// Timeout returns the join timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from the XDG config file, .env and the environment.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p, ".env")
}

// LoadFile is Load with explicit file locations. A missing file at either path is
// not an error.
func LoadFile(configPath, dotenvPath string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return c, err
	}

	if dotenvPath != "" {
		// godotenv never overrides variables already present in the environment.
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Validate rejects unknown transports or store kinds and missing backend settings.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportSocket:
		if c.BackendURL == "" {
			return apperrors.New(apperrors.ConfigInvalid, "backend_url is required for the "+c.Transport+" transport")
		}
	case TransportGRPC:
		if c.GRPCAddr == "" {
			return apperrors.New(apperrors.ConfigInvalid, "grpc_addr is required for the grpc transport")
		}
	default:
		return apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("unknown transport %q (use http, socket or grpc)", c.Transport))
	}

	switch c.Store.Kind {
	case StoreKeyring, StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return apperrors.New(apperrors.ConfigInvalid, "store.redis_addr is required for the redis store")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return apperrors.New(apperrors.ConfigInvalid, "store.postgres_dsn is required for the postgres store")
		}
	default:
		return apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("unknown store %q (use keyring, memory, redis, sqlite or postgres)", c.Store.Kind))
	}

	if c.TimeoutSeconds <= 0 {
		return apperrors.New(apperrors.ConfigInvalid, "timeout_seconds must be positive")
	}
	return nil
}
