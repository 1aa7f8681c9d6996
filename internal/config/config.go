// Package config loads the server configuration once at start-up.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file (--config or BANKO_CONFIG), a .env file, the process
// environment, and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`

	Store StoreConfig `yaml:"store"`

	// RedisAddr enables the cross-process draw lock and shared sessions.
	// Empty means a process-local lock and in-memory sessions.
	RedisAddr string `yaml:"redis_addr"`

	Admin AdminConfig `yaml:"admin"`
	SMTP  SMTPConfig  `yaml:"smtp"`

	// ClaimAllowAddr is the only source address allowed to submit claims.
	ClaimAllowAddr string `yaml:"claim_allow_addr"`

	SessionTTL time.Duration `yaml:"session_ttl"`

	Log LogConfig `yaml:"log"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// NotifyAddress receives claim verification requests.
	NotifyAddress string `yaml:"notify_address"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "banko.db",
		},
		SMTP:       SMTPConfig{Port: 587},
		SessionTTL: 12 * time.Hour,
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load builds the configuration from args (without the program name).
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	configPath, _ := lookupEnv("BANKO_CONFIG")

	flags := pflag.NewFlagSet("banko", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", configPath, "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a .env file; missing files are ignored")
	httpAddr := flags.String("http-addr", "", "HTTP listen address")
	grpcAddr := flags.String("grpc-addr", "", "gRPC listen address")
	storeDriver := flags.String("store-driver", "", "number store driver (sqlite or mysql)")
	storeDSN := flags.String("store-dsn", "", "number store DSN or SQLite path")
	redisAddr := flags.String("redis-addr", "", "Redis address for the shared draw lock and sessions")
	logLevel := flags.String("log-level", "", "log level (debug, info, warn, error)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if configPath != "" {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, err
		}
	}

	dotenv, err := godotenv.Read(*envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", *envFile, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if flags.Changed("http-addr") {
		cfg.HTTPAddr = *httpAddr
	}
	if flags.Changed("grpc-addr") {
		cfg.GRPCAddr = *grpcAddr
	}
	if flags.Changed("store-driver") {
		cfg.Store.Driver = *storeDriver
	}
	if flags.Changed("store-dsn") {
		cfg.Store.DSN = *storeDSN
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = *redisAddr
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	stringVars := map[string]*string{
		"BANKO_HTTP_ADDR":        &c.HTTPAddr,
		"BANKO_GRPC_ADDR":        &c.GRPCAddr,
		"BANKO_STORE_DRIVER":     &c.Store.Driver,
		"BANKO_STORE_DSN":        &c.Store.DSN,
		"BANKO_REDIS_ADDR":       &c.RedisAddr,
		"BANKO_ADMIN_USER":       &c.Admin.Username,
		"BANKO_ADMIN_PASSWORD":   &c.Admin.Password,
		"BANKO_CLAIM_ALLOW_ADDR": &c.ClaimAllowAddr,
		"BANKO_NOTIFY_ADDRESS":   &c.SMTP.NotifyAddress,
		"BANKO_LOG_LEVEL":        &c.Log.Level,
		"BANKO_LOG_ENCODING":     &c.Log.Encoding,
		"SMTP_HOST":              &c.SMTP.Host,
		"SMTP_USER":              &c.SMTP.User,
		"SMTP_PASS":              &c.SMTP.Password,
		"SMTP_FROM":              &c.SMTP.From,
	}
	for key, dst := range stringVars {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.SMTP.Port = port
	}
	if v, ok := lookup("BANKO_SESSION_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BANKO_SESSION_TTL: %w", err)
		}
		c.SessionTTL = ttl
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return errors.New("store DSN is required")
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin username and password are required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	return nil
}
