package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "GQLAPI"

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Addr     string         `mapstructure:"addr"`
	Storage  string         `mapstructure:"storage"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Log      LogConfig      `mapstructure:"log"`
	Count    CountConfig    `mapstructure:"count"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Dev   bool   `mapstructure:"dev"`
	SQL   bool   `mapstructure:"sql"`
}

type CountConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// DSN returns the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode,
	)
}

// LoadEnv loads a .env file into the process environment when one exists.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// NewViper returns a viper instance with every key defaulted and bound to
// GQLAPI_* environment variables. The postgres keys also accept the plain
// DB_* names.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("addr", ":8000")
	v.SetDefault("storage", StorageSQLite)
	v.SetDefault("sqlite.path", "./test.db")
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "postgres")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("log.sql", false)
	v.SetDefault("count.interval", time.Second)
	v.SetDefault("shutdown.timeout", 10*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	legacy := map[string]string{
		"host":     "DB_HOST",
		"port":     "DB_PORT",
		"user":     "DB_USER",
		"password": "DB_PASSWORD",
		"dbname":   "DB_NAME",
		"sslmode":  "DB_SSLMODE",
	}
	for key, env := range legacy {
		_ = v.BindEnv("postgres."+key, envPrefix+"_POSTGRES_"+strings.ToUpper(key), env)
	}

	return v
}

func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path must be set")
		}
	case StoragePostgres:
		if c.Postgres.Host == "" {
			return errors.New("postgres.host must be set")
		}
	case StorageMemory:
	default:
		return errors.Errorf("unknown storage type: %s", c.Storage)
	}

	if c.Count.Interval <= 0 {
		return errors.New("count.interval must be positive")
	}
	return nil
}
