// Package config is used to configure the application settings.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"redirector/internal/domain/models"

	"github.com/joho/godotenv"
)

// Config - application configuration structure.
type Config struct {
	// Addr: address the HTTP server listens on (e.g., "localhost:8080").
	Addr string `json:"server_address"`
	// DBConnection: destination table DSN. postgres://, libsql:// or a SQLite path; empty means in-memory.
	DBConnection string `json:"database_dsn"`
	// RateLimit: admitted requests per client per window.
	RateLimit int `json:"rate_limit"`
	// RateWindow: admission window in seconds.
	RateWindow int `json:"rate_window"`
	// RateGlobalRPS: process-wide ceiling in requests per second, 0 disables it.
	RateGlobalRPS float64 `json:"rate_global_rps"`
	// RateGlobalBurst: burst of the process-wide ceiling.
	RateGlobalBurst int `json:"rate_global_burst"`
	// TrustXFF: take the client key from X-Forwarded-For. Enable only behind a proxy that sets it.
	TrustXFF bool `json:"trust_xff"`
	// TokenTTL: handoff token lifetime in seconds.
	TokenTTL int `json:"token_ttl"`
	// BindTokens: tie tokens to the session cookie of the browser that created them.
	BindTokens bool `json:"bind_tokens"`
	// CookieHashKey, CookieBlockKey: securecookie keys; random per process when empty.
	CookieHashKey  string `json:"cookie_hash_key"`
	CookieBlockKey string `json:"cookie_block_key"`
	// StatsRedisAddr: Redis address for admission stats, empty keeps stats in memory only.
	StatsRedisAddr string `json:"stats_redis_addr"`
	// AllowedDomains: hosts a destination may point at (used when seeding targets).
	AllowedDomains []string `json:"allowed_domains"`
	// Timeout: request processing timeout in seconds.
	Timeout int `json:"timeout"`
	// ConfigPath: path to configuration file.
	ConfigPath string `json:"-"`
	// EnvFile: dotenv file loaded before reading the environment.
	EnvFile string `json:"-"`
}

var cfgDefault = Config{
	Addr:            "localhost:8080",
	DBConnection:    "",
	RateLimit:       5,
	RateWindow:      60,
	RateGlobalRPS:   0,
	RateGlobalBurst: 0,
	TrustXFF:        false,
	TokenTTL:        300,
	BindTokens:      false,
	Timeout:         15,
	EnvFile:         ".env",
}

// NewConfig creates and returns a new instance of the Config structure with predefined values.
func NewConfig() *Config {
	c := cfgDefault
	c.AllowedDomains = append([]string(nil), models.DefaultAllowedDomains...)
	return &c
}

var (
	// ErrReadConfig - error reading json config.
	ErrReadConfig = errors.New("reading json config")
	// ErrParseConfig - error parsing json config.
	ErrParseConfig = errors.New("parse json config")
	// ErrInvalidConfig - a value is out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// RateWindowDuration returns RateWindow as a duration.
func (c *Config) RateWindowDuration() time.Duration {
	return time.Duration(c.RateWindow) * time.Second
}

// TokenTTLDuration returns TokenTTL as a duration.
func (c *Config) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// RequestTimeout returns Timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Init initializes the configuration from the dotenv file, environment variables,
// the JSON config file and command-line flags, in that order of precedence (flags win).
func Init(c *Config) error {
	return Parse(c, os.Args[1:])
}

// Parse is Init with explicit arguments.
func Parse(c *Config, args []string) error {
	var flagCfg Config
	fset := flag.NewFlagSet("redirector", flag.ContinueOnError)
	fset.StringVar(&flagCfg.Addr, "a", "", "HTTP-server startup address")
	fset.StringVar(&flagCfg.DBConnection, "d", "", "database connection address")
	fset.IntVar(&flagCfg.RateLimit, "l", 0, "admitted requests per client per window")
	fset.IntVar(&flagCfg.RateWindow, "w", 0, "admission window in seconds")
	fset.IntVar(&flagCfg.TokenTTL, "t", 0, "token lifetime in seconds")
	fset.BoolVar(&flagCfg.TrustXFF, "x", false, "trust X-Forwarded-For")
	fset.BoolVar(&flagCfg.BindTokens, "bind", false, "bind tokens to the session cookie")
	fset.StringVar(&flagCfg.StatsRedisAddr, "r", "", "Redis address for admission stats")
	fset.StringVar(&flagCfg.ConfigPath, "c", "", "path to config file (json)")
	fset.StringVar(&flagCfg.EnvFile, "e", c.EnvFile, "dotenv file")

	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := loadDotEnv(flagCfg.EnvFile); err != nil {
		return err
	}
	if err := applyEnv(c); err != nil {
		return err
	}

	if flagCfg.ConfigPath != "" {
		file, err := os.ReadFile(flagCfg.ConfigPath)
		if err != nil {
			return ErrReadConfig
		}
		if err := json.Unmarshal(file, c); err != nil {
			return ErrParseConfig
		}
		c.ConfigPath = flagCfg.ConfigPath
	}

	// override
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			c.Addr = flagCfg.Addr
		case "d":
			c.DBConnection = flagCfg.DBConnection
		case "l":
			c.RateLimit = flagCfg.RateLimit
		case "w":
			c.RateWindow = flagCfg.RateWindow
		case "t":
			c.TokenTTL = flagCfg.TokenTTL
		case "x":
			c.TrustXFF = flagCfg.TrustXFF
		case "bind":
			c.BindTokens = flagCfg.BindTokens
		case "r":
			c.StatsRedisAddr = flagCfg.StatsRedisAddr
		case "e":
			c.EnvFile = flagCfg.EnvFile
		}
	})

	return c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.RateLimit <= 0:
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	case c.RateWindow <= 0:
		return fmt.Errorf("%w: rate window must be positive", ErrInvalidConfig)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	switch len(c.CookieBlockKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("%w: cookie block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
	return nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func applyEnv(c *Config) error {
	if val, exist := os.LookupEnv("SERVER_ADDRESS"); exist {
		c.Addr = val
	}
	if val, exist := os.LookupEnv("DATABASE_DSN"); exist {
		c.DBConnection = val
	}
	if val, exist := os.LookupEnv("STATS_REDIS_ADDR"); exist {
		c.StatsRedisAddr = val
	}
	if val, exist := os.LookupEnv("COOKIE_HASH_KEY"); exist {
		c.CookieHashKey = val
	}
	if val, exist := os.LookupEnv("COOKIE_BLOCK_KEY"); exist {
		c.CookieBlockKey = val
	}
	if val, exist := os.LookupEnv("ALLOWED_DOMAINS"); exist {
		c.AllowedDomains = splitList(val)
	}

	ints := []struct {
		name    string
		dst     *int
		seconds bool
	}{
		{"RATE_LIMIT", &c.RateLimit, false},
		{"RATE_GLOBAL_BURST", &c.RateGlobalBurst, false},
		{"RATE_WINDOW", &c.RateWindow, true},
		{"TOKEN_TTL", &c.TokenTTL, true},
		{"TIMEOUT", &c.Timeout, true},
	}
	for _, e := range ints {
		val, exist := os.LookupEnv(e.name)
		if !exist {
			continue
		}
		n, err := parseInt(val, e.seconds)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, e.name, val)
		}
		*e.dst = n
	}

	if val, exist := os.LookupEnv("RATE_GLOBAL_RPS"); exist {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%w: RATE_GLOBAL_RPS=%q", ErrInvalidConfig, val)
		}
		c.RateGlobalRPS = f
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"TRUST_XFF", &c.TrustXFF},
		{"BIND_TOKENS", &c.BindTokens},
	}
	for _, e := range bools {
		val, exist := os.LookupEnv(e.name)
		if !exist {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, e.name, val)
		}
		*e.dst = b
	}
	return nil
}

// parseInt accepts a plain integer or, when seconds is set, a Go duration such as "90s".
func parseInt(val string, seconds bool) (int, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
		return n, nil
	}
	if !seconds {
		return 0, strconv.ErrSyntax
	}
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return 0, err
	}
	return int(d / time.Second), nil
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
