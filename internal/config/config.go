package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Base URL policies for a source.
const (
	BaseServer = "server"
	BaseRegion = "region"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Loader   LoaderConfig   `toml:"loader"`
	MCP      MCPConfig      `toml:"mcp"`
	Logging  LoggingConfig  `toml:"logging"`
	Sources  []SourceConfig `toml:"sources"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `toml:"port"`
	Host         string `toml:"host"`
	EnableReload bool   `toml:"enable_reload"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// DispatchConfig controls outbound tool invocations.
type DispatchConfig struct {
	Timeout          string `toml:"timeout"`
	DefaultRegion    string `toml:"default_region"`
	MaxResponseBytes int64  `toml:"max_response_bytes"`
}

// GetTimeout parses the outbound call timeout, falling back to 30s.
func (c *DispatchConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// LoaderConfig controls fetching and compiling source documents.
type LoaderConfig struct {
	FetchTimeout     string `toml:"fetch_timeout"`
	Concurrency      int    `toml:"concurrency"`
	CacheTTL         string `toml:"cache_ttl"`
	MaxDocumentBytes int64  `toml:"max_document_bytes"`
}

// GetFetchTimeout parses the per-source fetch timeout, falling back to 30s.
func (c *LoaderConfig) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses the document cache TTL. Zero disables the cache.
func (c *LoaderConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// MCPConfig controls the /mcp endpoint.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// SourceConfig names one OpenAPI document to compile into tools.
type SourceConfig struct {
	Name string `toml:"name"`
	// Prefix is prepended to operation IDs. Nil means "use Name"; an explicit
	// empty string registers bare operation IDs.
	Prefix         *string `toml:"prefix"`
	URL            string  `toml:"url"`
	File           string  `toml:"file"`
	Version        string  `toml:"version"`
	Base           string  `toml:"base"`
	RegionTemplate string  `toml:"region_template"`
}

// ToolPrefix returns the effective naming prefix for the source.
func (s SourceConfig) ToolPrefix() string {
	if s.Prefix != nil {
		return *s.Prefix
	}
	return s.Name
}

// Location returns the URL or file path the source is read from.
func (s SourceConfig) Location() string {
	if s.URL != "" {
		return s.URL
	}
	return s.File
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files; a later file that declares [[sources]]
// replaces the source list entirely.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	normalizeSources(config)

	return config, nil
}

// applyEnvOverrides applies TOOLPROXY_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("TOOLPROXY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TOOLPROXY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if reload := os.Getenv("TOOLPROXY_ENABLE_RELOAD"); reload != "" {
		if b, err := strconv.ParseBool(reload); err == nil {
			config.Server.EnableReload = b
		}
	}
	if timeout := os.Getenv("TOOLPROXY_DISPATCH_TIMEOUT"); timeout != "" {
		config.Dispatch.Timeout = timeout
	}
	if region := os.Getenv("TOOLPROXY_DEFAULT_REGION"); region != "" {
		config.Dispatch.DefaultRegion = region
	}
	if mcp := os.Getenv("TOOLPROXY_MCP_ENABLED"); mcp != "" {
		if b, err := strconv.ParseBool(mcp); err == nil {
			config.MCP.Enabled = b
		}
	}
	if level := os.Getenv("TOOLPROXY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	// TOOLPROXY_SOURCES appends sources as comma-separated name=url pairs.
	if raw := os.Getenv("TOOLPROXY_SOURCES"); raw != "" {
		config.Sources = append(config.Sources, parseSourceList(raw)...)
	}
}

// parseSourceList parses "name=url,name2=url2". Entries without '=' are skipped.
func parseSourceList(raw string) []SourceConfig {
	var sources []SourceConfig
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		name, url, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
			continue
		}
		sources = append(sources, SourceConfig{
			Name: strings.TrimSpace(name),
			URL:  strings.TrimSpace(url),
		})
	}
	return sources
}

// normalizeSources fills per-source defaults.
func normalizeSources(config *Config) {
	for i := range config.Sources {
		s := &config.Sources[i]
		s.Base = strings.ToLower(strings.TrimSpace(s.Base))
		if s.Base == "" {
			s.Base = BaseServer
		}
		if s.Base == BaseRegion && s.RegionTemplate == "" {
			s.RegionTemplate = DefaultRegionTemplate
		}
	}
}

// Validate returns a list of human-readable configuration problems.
func (c *Config) Validate() []string {
	var issues []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.Loader.Concurrency < 0 {
		issues = append(issues, "loader.concurrency must not be negative")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			issues = append(issues, fmt.Sprintf("sources[%d].name is required", i))
		} else if seen[s.Name] {
			issues = append(issues, fmt.Sprintf("source %s is declared more than once", s.Name))
		}
		seen[s.Name] = true

		if s.URL == "" && s.File == "" {
			issues = append(issues, fmt.Sprintf("source %s needs a url or a file", label))
		}
		if s.URL != "" && s.File != "" {
			issues = append(issues, fmt.Sprintf("source %s sets both url and file", label))
		}
		switch s.Base {
		case BaseServer, BaseRegion:
		default:
			issues = append(issues, fmt.Sprintf("source %s has unknown base %q (want %q or %q)", label, s.Base, BaseServer, BaseRegion))
		}
		if s.Base == BaseRegion && !strings.Contains(s.RegionTemplate, "{region}") {
			issues = append(issues, fmt.Sprintf("source %s region_template must contain {region}", label))
		}
	}
	return issues
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
