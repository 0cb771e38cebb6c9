package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Values come from environment
// variables, optionally seeded from a .env file during development.
type Config struct {
	Port       string
	Env        string // "development" or "production"
	DBPath     string
	MediaDir   string
	AuthSecret []byte

	// Used to seed the first admin user when the users table is empty.
	DefaultAdminEmail    string
	DefaultAdminPassword string

	MaxUploadBytes int64
}

// Load reads configuration from the environment. The auth secret is required
// in production; in development it falls back to a value derived from the
// default admin password so local setups work without extra wiring.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getenv("NOMOD_PORT", "8080"),
		Env:                  getenv("NOMOD_ENV", "development"),
		DBPath:               getenv("NOMOD_DB_PATH", "./nomod.db"),
		MediaDir:             getenv("NOMOD_MEDIA_DIR", "./media"),
		DefaultAdminEmail:    getenv("NOMOD_ADMIN_EMAIL", "admin@localhost"),
		DefaultAdminPassword: os.Getenv("NOMOD_ADMIN_PASSWORD"),
		MaxUploadBytes:       getenvInt64("NOMOD_MAX_UPLOAD_BYTES", 10*1024*1024),
	}

	secret := os.Getenv("NOMOD_AUTH_SECRET")
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("NOMOD_AUTH_SECRET is required in production")
		}
		// Development fallback keeps tokens stable across restarts.
		secret = "nomod-dev-secret:" + cfg.DefaultAdminPassword
	}
	cfg.AuthSecret = []byte(secret)

	return cfg, nil
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies, mandatory secret).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
