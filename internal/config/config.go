package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Port            string
	DBDriver        string
	DBPath          string
	FrontendURL     string
	StartingBalance int
	Debug           bool
}

// Load reads the .env file when present, then parses args. Environment
// variables provide the flag defaults.
func Load(args []string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	balance, err := envInt("STARTING_BALANCE", 500)
	if err != nil {
		return nil, err
	}
	debug, err := envBool("DEBUG", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", envString("PORT", "8080"), "Server port")
	fs.StringVar(&cfg.DBDriver, "db-driver", envString("DB_DRIVER", "sqlite3"), "Database driver (sqlite3 or postgres)")
	fs.StringVar(&cfg.DBPath, "db", envString("DB_DSN", "./data/blackjack.db"), "Database path or DSN, empty to disable the round journal")
	fs.StringVar(&cfg.FrontendURL, "frontend", envString("FRONTEND_URL", "http://localhost:5173"), "Frontend URL for CORS")
	fs.IntVar(&cfg.StartingBalance, "balance", balance, "Starting balance of a new player")
	fs.BoolVar(&cfg.Debug, "debug", debug, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.StartingBalance <= 0 {
		return nil, errors.Errorf("starting balance must be positive, got %d", cfg.StartingBalance)
	}
	switch cfg.DBDriver {
	case "sqlite3", "postgres":
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s", key)
	}
	return b, nil
}
