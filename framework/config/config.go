package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig
	Log     LogConfig
	Routing RoutingConfig
	View    ViewConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	URL   string
	Port  string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

type RoutingConfig struct {
	// File is an optional YAML route file loaded at boot.
	File    string
	Metrics bool
}

type ViewConfig struct {
	Dir string
	Ext string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	env := Get("APP_ENV", "local")
	return &Config{
		App: AppConfig{
			Name:  Get("APP_NAME", "Branch"),
			Env:   env,
			Debug: GetBool("APP_DEBUG", env == "local"),
			URL:   Get("APP_URL", "http://localhost"),
			Port:  Get("APP_PORT", "8000"),
		},
		Log: LogConfig{
			Level:  Get("LOG_LEVEL", "info"),
			Format: Get("LOG_FORMAT", "json"),
		},
		Routing: RoutingConfig{
			File:    Get("ROUTES_FILE", ""),
			Metrics: GetBool("ROUTES_METRICS", true),
		},
		View: ViewConfig{
			Dir: Get("VIEW_DIR", "./views"),
			Ext: Get("VIEW_EXT", ".html"),
		},
	}
}

// Addr is the listen address derived from App.Port.
func (c *Config) Addr() string { return ":" + c.App.Port }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return defaultVal
	}
	return b
}
