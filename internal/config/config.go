package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type BackendConfig struct {
	BaseURL      string   `toml:"base_url" yaml:"base_url"`
	Timeout      Duration `toml:"timeout" yaml:"timeout"`
	RetryMax     int      `toml:"retry_max" yaml:"retry_max"`
	MaxErrorBody int      `toml:"max_error_body" yaml:"max_error_body"`
}

type ArchiveConfig struct {
	Extensions     []string `toml:"extensions" yaml:"extensions"`
	RequireSuffix  string   `toml:"require_suffix" yaml:"require_suffix"`
	MaxMemberBytes int64    `toml:"max_member_bytes" yaml:"max_member_bytes"`
	Autoload       []string `toml:"autoload" yaml:"autoload"`
}

// AliasConfig overrides the header aliases of one canonical column.
type AliasConfig struct {
	Exact    []string `toml:"exact" yaml:"exact"`
	Contains []string `toml:"contains" yaml:"contains"`
}

type ParserConfig struct {
	// Keyed by column name: radius, vobs, evobs, vgas, vdisk, vbul.
	Aliases map[string]AliasConfig `toml:"aliases" yaml:"aliases"`
}

type ConcurrencyConfig struct {
	BulkIngest int `toml:"bulk_ingest" yaml:"bulk_ingest"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr" yaml:"addr"`
	MaxUploadBytes int64    `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
	SessionTTL     Duration `toml:"session_ttl" yaml:"session_ttl"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri" yaml:"uri"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type Config struct {
	Backend     BackendConfig     `toml:"backend" yaml:"backend"`
	Archive     ArchiveConfig     `toml:"archive" yaml:"archive"`
	Parser      ParserConfig      `toml:"parser" yaml:"parser"`
	Concurrency ConcurrencyConfig `toml:"concurrency" yaml:"concurrency"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Memgraph    MemgraphConfig    `toml:"memgraph" yaml:"memgraph"`
	Log         LogConfig         `toml:"log" yaml:"log"`
}

const DefaultBackendURL = "https://thot-engine.onrender.com"

func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:      DefaultBackendURL,
			Timeout:      Duration(60 * time.Second),
			MaxErrorBody: 300,
		},
		Archive: ArchiveConfig{
			Extensions:     []string{".csv", ".dat", ".txt"},
			MaxMemberBytes: 32 << 20,
		},
		Concurrency: ConcurrencyConfig{BulkIngest: 4},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 64 << 20,
			SessionTTL:     Duration(2 * time.Hour),
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a TOML (or, by extension, YAML) file on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	return cfg, nil
}

// Validate reports the first setting that would make the pipeline unusable.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is empty")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must be http or https, got %q", c.Backend.BaseURL)
	}
	if c.Backend.RetryMax < 0 {
		return fmt.Errorf("backend.retry_max must not be negative")
	}
	if c.Backend.MaxErrorBody < 1 {
		return fmt.Errorf("backend.max_error_body must be at least 1")
	}
	if len(c.Archive.Extensions) == 0 {
		return fmt.Errorf("archive.extensions is empty")
	}
	if c.Concurrency.BulkIngest < 1 {
		return fmt.Errorf("concurrency.bulk_ingest must be positive")
	}
	return nil
}

// Duration decodes from strings such as "30s" in both TOML and YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
