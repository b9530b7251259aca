package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the user-tunable collection and display knobs.
type Config struct {
	IntervalSec       int  `json:"interval_sec"`        // refresh period for watch/TUI modes
	ProcessLimit      int  `json:"process_limit"`       // -1 means unlimited
	PageSize          int  `json:"page_size"`           // process table rows per page
	AdapterTimeoutMS  int  `json:"adapter_timeout_ms"`  // per-source collection budget
	CPUSampleMS       int  `json:"cpu_sample_ms"`       // cpu usage sampling window
	DisableRichSource bool `json:"disable_rich_source"` // force the command/procfs path
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		IntervalSec:      2,
		ProcessLimit:     -1,
		PageSize:         50,
		AdapterTimeoutMS: 3000,
		CPUSampleMS:      200,
	}
}

// Interval returns the refresh period, never below one second.
func (c Config) Interval() time.Duration {
	if c.IntervalSec < 1 {
		return time.Second
	}
	return time.Duration(c.IntervalSec) * time.Second
}

// AdapterTimeout returns the per-source collection budget.
func (c Config) AdapterTimeout() time.Duration {
	if c.AdapterTimeoutMS < 1 {
		return 3 * time.Second
	}
	return time.Duration(c.AdapterTimeoutMS) * time.Millisecond
}

// CPUSampleWindow returns the blocking window used for cpu usage sampling.
func (c Config) CPUSampleWindow() time.Duration {
	if c.CPUSampleMS < 1 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.CPUSampleMS) * time.Millisecond
}

// Path returns ~/.config/vitals/config.json (or XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "" // refuse to fall back to /tmp (security risk)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "vitals", "config.json")
}

// Load builds the effective config: defaults, then the optional JSON file,
// then environment variables (a .env file in the working directory is
// folded into the environment first). Invalid values keep the previous
// layer's setting with a warning.
func Load() Config {
	cfg := Default()
	if p := Path(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			if err := json.Unmarshal(data, &cfg); err != nil {
				log.Printf("vitals: warning: config parse error: %v", err)
			}
		}
	}
	cfg.applyEnv()
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnv() {
	if _, err := os.Stat(".env"); err == nil {
		// godotenv never overrides variables already set, so real
		// environment beats .env beats file beats defaults.
		if err := godotenv.Load(); err != nil {
			log.Printf("vitals: warning: .env load error: %v", err)
		}
	}
	envInt("VITALS_INTERVAL", &c.IntervalSec, 1)
	envInt("VITALS_LIMIT", &c.ProcessLimit, -1)
	envInt("VITALS_PAGE_SIZE", &c.PageSize, 1)
	envInt("VITALS_ADAPTER_TIMEOUT_MS", &c.AdapterTimeoutMS, 1)
	envInt("VITALS_CPU_SAMPLE_MS", &c.CPUSampleMS, 1)
	envBool("VITALS_NO_RICH", &c.DisableRichSource)
}

func envInt(key string, dst *int, floor int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < floor {
		log.Printf("vitals: warning: ignoring %s=%q", key, raw)
		return
	}
	*dst = v
}

func envBool(key string, dst *bool) {
	switch os.Getenv(key) {
	case "":
	case "0", "false", "no":
		*dst = false
	default:
		*dst = true
	}
}
