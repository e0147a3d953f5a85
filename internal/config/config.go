// Package config loads TaskVision MCP's configuration from a TOML file,
// environment variables, and built-in defaults, and can watch the file for
// changes so the engine's tuning values can be hot-reloaded without a
// restart.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"

	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

// Config holds all configuration for the TaskVision MCP server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
	Engine    EngineConfig    `toml:"engine"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port. Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address. Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins.
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// EngineConfig maps onto usecase.Config: the orchestrator's tuning values.
type EngineConfig struct {
	StalenessThresholdMinutes int  `toml:"staleness_threshold_minutes"`
	EnrichmentDefault         bool `toml:"enrichment_default"`
	AlignmentCacheTTLMinutes  int  `toml:"alignment_cache_ttl_minutes"`
	MaxHints                  int  `toml:"max_hints"`
	CascadeDepthLimit         int  `toml:"cascade_depth_limit"`
	ToolDeadlineSeconds       int  `toml:"tool_deadline_seconds"`
	OverheadBudgetMillis      int  `toml:"overhead_budget_millis"`
}

// ToUsecaseConfig converts the TOML-shaped EngineConfig into usecase.Config.
func (e EngineConfig) ToUsecaseConfig() usecase.Config {
	return usecase.Config{
		StalenessThreshold: time.Duration(e.StalenessThresholdMinutes) * time.Minute,
		EnrichmentDefault:  e.EnrichmentDefault,
		AlignmentCacheTTL:  time.Duration(e.AlignmentCacheTTLMinutes) * time.Minute,
		MaxHints:           e.MaxHints,
		CascadeDepthLimit:  e.CascadeDepthLimit,
		ToolDeadline:       time.Duration(e.ToolDeadlineSeconds) * time.Second,
		OverheadBudget:     time.Duration(e.OverheadBudgetMillis) * time.Millisecond,
	}
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. VISIONMCP_CONFIG environment variable
//  3. ./visionmcp.toml (current directory)
//  4. ~/.config/visionmcp/visionmcp.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	def := usecase.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Name:    "taskvision-mcp",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "8831",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			StalenessThresholdMinutes: int(def.StalenessThreshold / time.Minute),
			EnrichmentDefault:         def.EnrichmentDefault,
			AlignmentCacheTTLMinutes:  int(def.AlignmentCacheTTL / time.Minute),
			MaxHints:                  def.MaxHints,
			CascadeDepthLimit:         def.CascadeDepthLimit,
			ToolDeadlineSeconds:       int(def.ToolDeadline / time.Second),
			OverheadBudgetMillis:      int(def.OverheadBudget / time.Millisecond),
		},
	}
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if p := os.Getenv("VISIONMCP_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("visionmcp.toml"); err == nil {
		return "visionmcp.toml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/visionmcp/visionmcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("VISIONMCP_SERVER_NAME", &c.Server.Name)
	envOverride("VISIONMCP_SERVER_VERSION", &c.Server.Version)

	envOverride("VISIONMCP_TRANSPORT", &c.Transport.Mode)
	envOverride("VISIONMCP_PORT", &c.Transport.Port)
	envOverride("VISIONMCP_HOST", &c.Transport.Host)
	envOverride("VISIONMCP_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("VISIONMCP_LOG_LEVEL", &c.Log.Level)

	envOverrideInt("VISIONMCP_STALENESS_THRESHOLD_MINUTES", &c.Engine.StalenessThresholdMinutes)
	envOverrideBool("VISIONMCP_ENRICHMENT_DEFAULT", &c.Engine.EnrichmentDefault)
	envOverrideInt("VISIONMCP_ALIGNMENT_CACHE_TTL_MINUTES", &c.Engine.AlignmentCacheTTLMinutes)
	envOverrideInt("VISIONMCP_MAX_HINTS", &c.Engine.MaxHints)
	envOverrideInt("VISIONMCP_CASCADE_DEPTH_LIMIT", &c.Engine.CascadeDepthLimit)
	envOverrideInt("VISIONMCP_TOOL_DEADLINE_SECONDS", &c.Engine.ToolDeadlineSeconds)
	envOverrideInt("VISIONMCP_OVERHEAD_BUDGET_MILLIS", &c.Engine.OverheadBudgetMillis)
}

// Validate checks that required fields are present and internally consistent.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}

	if c.Engine.MaxHints < 0 {
		return fmt.Errorf("engine.max_hints must be >= 0, got %d", c.Engine.MaxHints)
	}
	if c.Engine.CascadeDepthLimit < 1 {
		return fmt.Errorf("engine.cascade_depth_limit must be >= 1, got %d", c.Engine.CascadeDepthLimit)
	}

	return nil
}

// Watch starts an fsnotify watcher on the resolved config file and invokes
// onChange with the freshly reloaded Config each time the file is written.
// If no config file is in use (the process is running on defaults and env
// vars alone), it watches nothing and returns a non-nil closer that does
// nothing. The caller owns the
// returned closer's lifetime and should call it on shutdown.
func Watch(configPath string, onChange func(*Config)) (closer func() error, err error) {
	path := resolveConfigPath(configPath)
	if path == "" {
		return func() error { return nil }, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting config watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config file %s: %w", path, err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, loadErr := Load(configPath)
				if loadErr != nil {
					continue // keep running on the last good config
				}
				onChange(cfg)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}

func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
		*dst = n
	}
}

func envOverrideBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
