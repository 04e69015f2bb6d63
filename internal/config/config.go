// Package config loads process configuration from the environment.  A .env
// file in the working directory is loaded first when present, so dev boxes
// do not need exported variables.  Malformed values are fatal at startup
// rather than silently replaced: a misconfigured door controller must not
// come up with guessed settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/janus.db"

	// Attendance retention
	RetentionDays      int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)

	// Agent side
	ServiceURL      string // base URL of the decision API
	SerialPort      string // empty = null sink
	SerialBaud      int
	DoorOpenSeconds int
	StabilityFrames int
	CooldownSeconds int
}

// Load reads the environment (plus an optional .env file) into a Config.
func Load() (Config, error) {
	// Missing .env is the normal case outside dev.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:   getenvDefault("JANUS_HTTP_ADDR", ":8080"),
		DBPath:     getenvDefault("JANUS_DB_PATH", "./data/janus.db"),
		ServiceURL: getenvDefault("JANUS_SERVICE_URL", "http://127.0.0.1:8080"),
		SerialPort: strings.TrimSpace(os.Getenv("JANUS_SERIAL_PORT")),
	}

	cfg.Env = strings.ToLower(getenvDefault("JANUS_ENV", "dev"))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return Config{}, fmt.Errorf("JANUS_ENV must be dev or prod, got %q", cfg.Env)
	}

	var err error
	if cfg.RetentionDays, err = getenvInt("JANUS_RETENTION_DAYS", 30); err != nil {
		return Config{}, err
	}
	if cfg.PruneIntervalHours, err = getenvInt("JANUS_PRUNE_INTERVAL_HOURS", 6); err != nil {
		return Config{}, err
	}
	if cfg.SerialBaud, err = getenvInt("JANUS_SERIAL_BAUD", 115200); err != nil {
		return Config{}, err
	}
	if cfg.DoorOpenSeconds, err = getenvInt("JANUS_DOOR_OPEN_SECONDS", 5); err != nil {
		return Config{}, err
	}
	if cfg.StabilityFrames, err = getenvInt("JANUS_STABILITY_FRAMES", 3); err != nil {
		return Config{}, err
	}
	if cfg.CooldownSeconds, err = getenvInt("JANUS_COOLDOWN_SECONDS", 5); err != nil {
		return Config{}, err
	}

	if cfg.SerialBaud == 0 {
		return Config{}, fmt.Errorf("JANUS_SERIAL_BAUD must be positive")
	}
	if cfg.DoorOpenSeconds == 0 {
		return Config{}, fmt.Errorf("JANUS_DOOR_OPEN_SECONDS must be positive")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}
