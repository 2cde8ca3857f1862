package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	routererrors "github.com/lugondev/go-dexterity/internal/errors"
	"github.com/lugondev/go-dexterity/internal/graph"
)

// Config holds all configuration for the application
type Config struct {
	Router   RouterConfig   `mapstructure:"router"`
	Vaults   VaultsConfig   `mapstructure:"vaults"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Journal  JournalConfig  `mapstructure:"journal"`
}

// RouterConfig holds route search and evaluation settings
type RouterConfig struct {
	MaxHops        int           `mapstructure:"max_hops"`
	Strategy       string        `mapstructure:"strategy"` // vault-sequence or asset-sequence
	QuoteTimeout   time.Duration `mapstructure:"quote_timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency"` // 0 = unbounded
	QuoteCacheTTL  time.Duration `mapstructure:"quote_cache_ttl"`
	RouteCacheTTL  time.Duration `mapstructure:"route_cache_ttl"`
}

// VaultsConfig describes where the vault set comes from
type VaultsConfig struct {
	Manifest        string        `mapstructure:"manifest"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"` // log or prometheus
	Addr    string `mapstructure:"addr"`
}

// LedgerConfig throttles quote calls sent to on-chain pool contracts
type LedgerConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"` // calls per second, 0 = unlimited
	Burst     int     `mapstructure:"burst"`
}

// JournalConfig controls which answered route queries are recorded. It only
// takes effect when the database is enabled.
type JournalConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MinAmountIn uint64 `mapstructure:"min_amount_in"`
}

// DatabaseConfig selects and configures the storage backend
type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Type     string         `mapstructure:"type"` // postgres, mongodb, mysql or sqlite
	Postgres PostgresConfig `mapstructure:"postgres"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in seconds
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	MaxPoolSize    uint64 `mapstructure:"max_pool_size"`
	MinPoolSize    uint64 `mapstructure:"min_pool_size"`
	ConnectTimeout int    `mapstructure:"connect_timeout"` // in seconds
}

// MySQLConfig holds MySQL connection settings
type MySQLConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in seconds
}

// SQLiteConfig holds SQLite settings
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Router: RouterConfig{
			MaxHops:       3,
			Strategy:      string(graph.StrategyVaultSequence),
			QuoteTimeout:  5 * time.Second,
			QuoteCacheTTL: 30 * time.Second,
		},
		Vaults: VaultsConfig{
			Manifest:        "vaults.yaml",
			RefreshInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Backend: "log",
			Addr:    ":9090",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			Postgres: PostgresConfig{
				Host:         "localhost",
				Port:         5432,
				User:         "postgres",
				Database:     "dexterity",
				SSLMode:      "disable",
				MaxOpenConns: 10,
				MaxIdleConns: 2,
			},
			MongoDB: MongoDBConfig{
				URI:            "mongodb://localhost:27017",
				Database:       "dexterity",
				MaxPoolSize:    10,
				ConnectTimeout: 10,
			},
			MySQL: MySQLConfig{
				Host:         "localhost",
				Port:         3306,
				User:         "root",
				Database:     "dexterity",
				MaxOpenConns: 10,
				MaxIdleConns: 2,
			},
			SQLite: SQLiteConfig{
				Path: "dexterity.db",
			},
		},
	}
}

// Load loads configuration from file and environment. A .env file in the
// working directory is applied to the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()
	v := viper.GetViper()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".dexterity")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	// Environment variables
	v.SetEnvPrefix("DEXTERITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("router.max_hops", cfg.Router.MaxHops)
	v.SetDefault("router.strategy", cfg.Router.Strategy)
	v.SetDefault("router.quote_timeout", cfg.Router.QuoteTimeout)
	v.SetDefault("router.max_concurrency", cfg.Router.MaxConcurrency)
	v.SetDefault("router.quote_cache_ttl", cfg.Router.QuoteCacheTTL)
	v.SetDefault("router.route_cache_ttl", cfg.Router.RouteCacheTTL)

	v.SetDefault("vaults.manifest", cfg.Vaults.Manifest)
	v.SetDefault("vaults.refresh_interval", cfg.Vaults.RefreshInterval)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.backend", cfg.Metrics.Backend)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)

	v.SetDefault("ledger.rate_limit", cfg.Ledger.RateLimit)
	v.SetDefault("ledger.burst", cfg.Ledger.Burst)

	v.SetDefault("journal.enabled", cfg.Journal.Enabled)
	v.SetDefault("journal.min_amount_in", cfg.Journal.MinAmountIn)

	v.SetDefault("database.enabled", cfg.Database.Enabled)
	v.SetDefault("database.type", cfg.Database.Type)
	v.SetDefault("database.postgres.host", cfg.Database.Postgres.Host)
	v.SetDefault("database.postgres.port", cfg.Database.Postgres.Port)
	v.SetDefault("database.postgres.user", cfg.Database.Postgres.User)
	v.SetDefault("database.postgres.password", cfg.Database.Postgres.Password)
	v.SetDefault("database.postgres.database", cfg.Database.Postgres.Database)
	v.SetDefault("database.postgres.ssl_mode", cfg.Database.Postgres.SSLMode)
	v.SetDefault("database.mongodb.uri", cfg.Database.MongoDB.URI)
	v.SetDefault("database.mongodb.database", cfg.Database.MongoDB.Database)
	v.SetDefault("database.mysql.host", cfg.Database.MySQL.Host)
	v.SetDefault("database.mysql.port", cfg.Database.MySQL.Port)
	v.SetDefault("database.mysql.user", cfg.Database.MySQL.User)
	v.SetDefault("database.mysql.password", cfg.Database.MySQL.Password)
	v.SetDefault("database.mysql.database", cfg.Database.MySQL.Database)
	v.SetDefault("database.sqlite.path", cfg.Database.SQLite.Path)
}

// Validate checks the configuration for values the router cannot run with.
func (c *Config) Validate() error {
	if c.Router.MaxHops < 1 || c.Router.MaxHops > 9 {
		return routererrors.ConfigInvalid(fmt.Sprintf("router.max_hops must be between 1 and 9, got %d", c.Router.MaxHops))
	}
	if _, err := graph.ParseStrategy(c.Router.Strategy); err != nil {
		return routererrors.ConfigInvalid(err.Error())
	}
	if c.Router.QuoteTimeout < 0 {
		return routererrors.ConfigInvalid("router.quote_timeout must not be negative")
	}
	if c.Router.MaxConcurrency < 0 {
		return routererrors.ConfigInvalid("router.max_concurrency must not be negative")
	}
	switch c.Metrics.Backend {
	case "", "log", "prometheus":
	default:
		return routererrors.ConfigInvalid(fmt.Sprintf("unknown metrics backend %q", c.Metrics.Backend))
	}
	if c.Database.Enabled {
		switch c.Database.Type {
		case "postgres", "mongodb", "mysql", "sqlite":
		default:
			return routererrors.ConfigInvalid(fmt.Sprintf("unknown database type %q", c.Database.Type))
		}
	}
	return nil
}

// PathStrategy returns the parsed path strategy.
func (c *RouterConfig) PathStrategy() graph.Strategy {
	s, err := graph.ParseStrategy(c.Strategy)
	if err != nil {
		return graph.StrategyVaultSequence
	}
	return s
}
