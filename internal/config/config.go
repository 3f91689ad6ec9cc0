package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file.
type Config struct {
	DatabasePath string
	FlowTTL      time.Duration
	Debug        bool
}

// Load reads configuration. Defaults: ~/.kintai/kintai.db, a five minute
// correction-flow window, quiet logging.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		FlowTTL: 5 * time.Minute,
		Debug:   os.Getenv("KINTAI_DEBUG") != "",
	}

	if p := os.Getenv("KINTAI_DB_PATH"); p != "" {
		cfg.DatabasePath = p
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DatabasePath = filepath.Join(home, ".kintai", "kintai.db")
	}

	if ttl := os.Getenv("KINTAI_FLOW_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err == nil && d > 0 {
			cfg.FlowTTL = d
		}
	}

	return cfg, nil
}
