// Package config loads the case-study settings from an optional file and CST_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aveongye/cst-case-study/internal/domain"
)

// Storage backends accepted by the storage key.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// EnvPrefix prefixes every environment variable, e.g. CST_STORAGE.
const EnvPrefix = "CST"

type Config struct {
	BaseCurrency      string   `mapstructure:"base_currency"`
	AllowedCurrencies []string `mapstructure:"allowed_currencies"`
	DefaultFund       string   `mapstructure:"default_fund"`
	OutputDir         string   `mapstructure:"output_dir"`
	GRPCAddress       string   `mapstructure:"grpc_address"`
	APIToken          string   `mapstructure:"api_token"`
	Storage           string   `mapstructure:"storage"`
	PostgresURL       string   `mapstructure:"postgres_url"`
	SQLitePath        string   `mapstructure:"sqlite_path"`
	ConnectRetries    int      `mapstructure:"connect_retries"`
	SeedDemo          bool     `mapstructure:"seed_demo"`
	DebugLogging      bool     `mapstructure:"debug_logging"`
}

const (
	DefaultBaseCurrency   = "EUR"
	DefaultFund           = "Fund I"
	DefaultOutputDir      = "outputs"
	DefaultGRPCAddress    = ":8080"
	DefaultAPIToken       = "dev-token"
	DefaultSQLitePath     = "cashflows.db"
	DefaultConnectRetries = 5
)

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"base_currency":      DefaultBaseCurrency,
		"allowed_currencies": []string{"GBP", "EUR", "USD"},
		"default_fund":       DefaultFund,
		"output_dir":         DefaultOutputDir,
		"grpc_address":       DefaultGRPCAddress,
		"api_token":          DefaultAPIToken,
		"storage":            StorageMemory,
		"postgres_url":       "",
		"sqlite_path":        DefaultSQLitePath,
		"connect_retries":    DefaultConnectRetries,
		"seed_demo":          false,
		"debug_logging":      false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.normalize()
	return &cfg, cfg.Validate()
}

func (c *Config) normalize() {
	c.BaseCurrency = strings.ToUpper(strings.TrimSpace(c.BaseCurrency))
	for i, code := range c.AllowedCurrencies {
		c.AllowedCurrencies[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if _, err := domain.NormalizeCurrency(c.BaseCurrency); err != nil {
		return fmt.Errorf("invalid base_currency: %w", err)
	}
	for _, code := range c.AllowedCurrencies {
		if _, err := domain.NormalizeCurrency(code); err != nil {
			return fmt.Errorf("invalid allowed_currencies: %w", err)
		}
	}

	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for sqlite storage")
		}
	case StoragePostgres:
		if c.PostgresURL == "" {
			return errors.New("postgres_url is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}

	if c.ConnectRetries < 0 {
		return errors.New("invalid connect_retries")
	}
	if c.APIToken == "" {
		return errors.New("api_token cannot be empty")
	}
	return nil
}

// CurrencyPolicy returns the record validation policy of this configuration.
func (c *Config) CurrencyPolicy() domain.CurrencyPolicy {
	return domain.CurrencyPolicy{
		Allowed: c.AllowedCurrencies,
		Base:    c.BaseCurrency,
	}
}
