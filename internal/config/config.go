package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store selects and configures the persistent key-value backend.
type Store struct {
	Driver      string // sqlite, mysql, redis or memory
	DSN         string // mysql DSN
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
	Verbose     bool // gorm query logging
}

type Config struct {
	Port              string
	BaseURL           string
	CORSOrigins       []string
	LogMode           string
	Store             Store
	EnforceStockFloor bool
	SeedDemoData      bool
	JWTSecret         string
	GeminiAPIKey      string
	Location          *time.Location
}

// Load reads .env (if present) and then the process environment.
// A missing .env is not an error; the bool reports whether one was found.
func Load() (*Config, bool, error) {
	envFound := godotenv.Load() == nil

	cfg := &Config{
		Port:              String("PORT", "8080"),
		BaseURL:           String("BASE_URL", ""),
		CORSOrigins:       List("CORS_ORIGINS", []string{"http://localhost:5173"}),
		LogMode:           String("LOG_MODE", "dev"),
		EnforceStockFloor: Bool("ENFORCE_STOCK_FLOOR", true),
		SeedDemoData:      Bool("SEED_DEMO_DATA", true),
		JWTSecret:         String("JWT_SECRET", ""),
		GeminiAPIKey:      String("GEMINI_API_KEY", ""),
		Store: Store{
			Driver:      strings.ToLower(String("STORE_DRIVER", "sqlite")),
			DSN:         String("DB_DSN", ""),
			SQLitePath:  String("SQLITE_PATH", "smartstock.db"),
			RedisAddr:   String("REDIS_ADDR", ""),
			RedisPrefix: String("REDIS_PREFIX", ""),
			Verbose:     Bool("DB_VERBOSE", false),
		},
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	tz := String("TIMEZONE", "")
	if tz == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, envFound, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	if err := cfg.Validate(); err != nil {
		return nil, envFound, err
	}
	return cfg, envFound, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "memory":
	case "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DRIVER=mysql requires DB_DSN")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("STORE_DRIVER=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Bool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// List splits a comma-separated variable, dropping empty entries.
func List(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
