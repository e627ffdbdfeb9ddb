// Package config loads server configuration from defaults, an optional
// tilekeeper.yaml file and TILEKEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/tilekeeper/internal/api"
	"github.com/mcoot/tilekeeper/internal/factory"
	"github.com/mcoot/tilekeeper/internal/services/auth"
	"github.com/mcoot/tilekeeper/internal/services/scoring"
	redisstorage "github.com/mcoot/tilekeeper/internal/storage/redis"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "TILEKEEPER"

// Config is the full server configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Letters    LettersConfig    `mapstructure:"letters"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Rules      RulesConfig      `mapstructure:"rules"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Type string `mapstructure:"type"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	GameTTL      time.Duration `mapstructure:"game_ttl"`
}

type ArchiveConfig struct {
	// Path is the sqlite file; empty keeps the archive in memory
	Path string `mapstructure:"path"`
}

type DictionaryConfig struct {
	// Path is a word list file; empty loads words from storage
	Path string `mapstructure:"path"`
}

type LettersConfig struct {
	Dir string `mapstructure:"dir"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type RulesConfig struct {
	RackSize   int `mapstructure:"rack_size"`
	BingoBonus int `mapstructure:"bingo_bonus"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	v.SetDefault("storage.type", factory.StorageTypeMemory)

	redis := redisstorage.DefaultConfig()
	v.SetDefault("redis.url", redis.URL)
	v.SetDefault("redis.pool_size", redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", redis.MinIdleConns)
	v.SetDefault("redis.game_ttl", redis.GameTTL)

	v.SetDefault("archive.path", "data/archive.db")
	v.SetDefault("dictionary.path", "")
	v.SetDefault("letters.dir", "")

	v.SetDefault("auth.bcrypt_cost", auth.DefaultConfig().BcryptCost)

	rules := scoring.DefaultRules()
	v.SetDefault("rules.rack_size", rules.RackSize)
	v.SetDefault("rules.bingo_bonus", rules.BingoBonus)

	v.SetDefault("log.level", "info")
	v.SetDefault("config", "")
}

// Flags returns the server command line. Each flag overrides the matching
// setting; --config names the YAML file.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tilekeeper-server", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a tilekeeper.yaml config file")
	fs.IntP("port", "p", 0, "listen port")
	fs.String("storage", "", "live game storage: memory or redis")
	fs.String("log-level", "", "debug, info, warn or error")
	return fs
}

var flagKeys = map[string]string{
	"config":       "config",
	"server.port":  "port",
	"storage.type": "storage",
	"log.level":    "log-level",
}

// Load reads configuration. Precedence is flags, then TILEKEEPER_* env, then
// the config file, then defaults. A file named by --config or
// TILEKEEPER_CONFIG must exist; otherwise tilekeeper.yaml is looked up in
// the working directory and skipped if absent. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	path := v.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tilekeeper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	switch c.Storage.Type {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when storage.type is redis")
		}
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level ("debug", "info", "warn", "error")
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ServerConfig converts to the HTTP server settings
func (c Config) ServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

// FactoryConfig converts to the application factory settings
func (c Config) FactoryConfig(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		LettersDir:  c.Letters.Dir,
		ArchivePath: c.Archive.Path,
		AuthConfig:  auth.Config{BcryptCost: c.Auth.BcryptCost},
		Rules: scoring.Rules{
			RackSize:   c.Rules.RackSize,
			BingoBonus: c.Rules.BingoBonus,
		},
		Logger:      logger,
		StorageType: c.Storage.Type,
	}
	if c.Storage.Type == factory.StorageTypeRedis {
		cfg.RedisConfig = &redisstorage.Config{
			URL:          c.Redis.URL,
			PoolSize:     c.Redis.PoolSize,
			MinIdleConns: c.Redis.MinIdleConns,
			GameTTL:      c.Redis.GameTTL,
		}
	}
	return cfg
}
