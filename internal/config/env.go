package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides file settings with environment variables. Environment
// always wins over the config file.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("ROTCURVE_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ROTCURVE_BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ROTCURVE_BACKEND_TIMEOUT: %w", err)
		}
		cfg.Backend.Timeout = Duration(d)
	}
	if v := os.Getenv("ROTCURVE_BACKEND_RETRY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROTCURVE_BACKEND_RETRY_MAX: %w", err)
		}
		cfg.Backend.RetryMax = n
	}
	if v := os.Getenv("ROTCURVE_ARCHIVE_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		cfg.Archive.Extensions = exts
	}
	if v := os.Getenv("ROTCURVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ROTCURVE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}
	return nil
}

// LoadOrDefault loads path when it exists, falls back to Default() when it
// does not, and applies the environment on top.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config '%s': %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
