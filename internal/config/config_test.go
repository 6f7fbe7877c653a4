package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTOML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected default host localhost, got %s", cfg.Server.Host)
	}
	if cfg.Dispatch.DefaultRegion != "us-south" {
		t.Errorf("expected default region us-south, got %s", cfg.Dispatch.DefaultRegion)
	}
	if cfg.Dispatch.GetTimeout() != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.Dispatch.GetTimeout())
	}
	if !cfg.MCP.Enabled {
		t.Error("expected MCP endpoint enabled by default")
	}
	if cfg.Server.EnableReload {
		t.Error("expected reload disabled by default")
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("expected no default sources, got %d", len(cfg.Sources))
	}
}

func TestLoadFromFiles_NoFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles with no files should not error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
}

func TestLoadFromFiles_Sources(t *testing.T) {
	path := writeTOML(t, "sources.toml", `
[server]
port = 9090

[dispatch]
timeout = "5s"

[[sources]]
name = "watsonx-ai"
url = "https://example.test/watsonx-ai.json"

[[sources]]
name = "cos"
prefix = ""
url = "https://example.test/cos.json"
base = "region"
`)

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Dispatch.GetTimeout() != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", cfg.Dispatch.GetTimeout())
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}

	wx := cfg.Sources[0]
	if wx.ToolPrefix() != "watsonx-ai" {
		t.Errorf("expected prefix to default to name, got %q", wx.ToolPrefix())
	}
	if wx.Base != BaseServer {
		t.Errorf("expected base to default to server, got %q", wx.Base)
	}

	cos := cfg.Sources[1]
	if cos.ToolPrefix() != "" {
		t.Errorf("expected explicit empty prefix, got %q", cos.ToolPrefix())
	}
	if cos.RegionTemplate != DefaultRegionTemplate {
		t.Errorf("expected default region template, got %q", cos.RegionTemplate)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("expected valid config, got %v", issues)
	}
}

func TestLoadFromFiles_MultipleFiles(t *testing.T) {
	base := writeTOML(t, "base.toml", `
[server]
port = 3000
host = "base-host"
`)
	override := writeTOML(t, "override.toml", `
[server]
port = 4000
`)

	cfg, err := LoadFromFiles(base, override)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("expected port 4000 from override, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "base-host" {
		t.Errorf("expected host base-host from base, got %s", cfg.Server.Host)
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	path := writeTOML(t, "bad.toml", "[server\nport = ")
	_, err := LoadFromFiles(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TOOLPROXY_SERVER_PORT", "7777")
	t.Setenv("TOOLPROXY_SERVER_HOST", "0.0.0.0")
	t.Setenv("TOOLPROXY_DEFAULT_REGION", "eu-de")
	t.Setenv("TOOLPROXY_DISPATCH_TIMEOUT", "2s")
	t.Setenv("TOOLPROXY_ENABLE_RELOAD", "true")
	t.Setenv("TOOLPROXY_MCP_ENABLED", "false")
	t.Setenv("TOOLPROXY_LOG_LEVEL", "debug")
	t.Setenv("TOOLPROXY_SOURCES", "a=https://a.test/a.json, b=https://b.test/b.json,broken")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Dispatch.DefaultRegion != "eu-de" {
		t.Errorf("expected region eu-de, got %s", cfg.Dispatch.DefaultRegion)
	}
	if cfg.Dispatch.GetTimeout() != 2*time.Second {
		t.Errorf("expected timeout 2s, got %s", cfg.Dispatch.GetTimeout())
	}
	if !cfg.Server.EnableReload {
		t.Error("expected reload enabled")
	}
	if cfg.MCP.Enabled {
		t.Error("expected MCP disabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources from env, got %d", len(cfg.Sources))
	}
	if cfg.Sources[1].Name != "b" || cfg.Sources[1].URL != "https://b.test/b.json" {
		t.Errorf("unexpected second source: %+v", cfg.Sources[1])
	}
	if cfg.Sources[0].Base != BaseServer {
		t.Errorf("expected env sources to default to server base, got %q", cfg.Sources[0].Base)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()
	ApplyFlagOverrides(cfg, 1234, "example.local")
	if cfg.Server.Port != 1234 || cfg.Server.Host != "example.local" {
		t.Errorf("flags not applied: %+v", cfg.Server)
	}

	ApplyFlagOverrides(cfg, 0, "")
	if cfg.Server.Port != 1234 || cfg.Server.Host != "example.local" {
		t.Errorf("zero flags must not override: %+v", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing name", func(c *Config) {
			c.Sources = []SourceConfig{{URL: "https://x.test", Base: BaseServer}}
		}, "sources[0].name is required"},
		{"duplicate name", func(c *Config) {
			c.Sources = []SourceConfig{
				{Name: "a", URL: "https://x.test", Base: BaseServer},
				{Name: "a", URL: "https://y.test", Base: BaseServer},
			}
		}, "declared more than once"},
		{"no location", func(c *Config) {
			c.Sources = []SourceConfig{{Name: "a", Base: BaseServer}}
		}, "needs a url or a file"},
		{"both locations", func(c *Config) {
			c.Sources = []SourceConfig{{Name: "a", URL: "https://x.test", File: "x.json", Base: BaseServer}}
		}, "sets both url and file"},
		{"unknown base", func(c *Config) {
			c.Sources = []SourceConfig{{Name: "a", URL: "https://x.test", Base: "weird"}}
		}, "unknown base"},
		{"region template without placeholder", func(c *Config) {
			c.Sources = []SourceConfig{{Name: "a", URL: "https://x.test", Base: BaseRegion, RegionTemplate: "https://fixed.test"}}
		}, "must contain {region}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			issues := cfg.Validate()
			found := false
			for _, issue := range issues {
				if strings.Contains(issue, tt.wantSub) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an issue containing %q, got %v", tt.wantSub, issues)
			}
		})
	}
}

func TestLoaderDurations_Fallbacks(t *testing.T) {
	lc := LoaderConfig{FetchTimeout: "garbage", CacheTTL: "-5s"}
	if lc.GetFetchTimeout() != 30*time.Second {
		t.Errorf("expected fallback fetch timeout, got %s", lc.GetFetchTimeout())
	}
	if lc.GetCacheTTL() != 0 {
		t.Errorf("expected negative TTL to disable cache, got %s", lc.GetCacheTTL())
	}
	lc.CacheTTL = "90s"
	if lc.GetCacheTTL() != 90*time.Second {
		t.Errorf("expected 90s TTL, got %s", lc.GetCacheTTL())
	}
}

func TestSourceConfig_Location(t *testing.T) {
	if loc := (SourceConfig{URL: "https://x.test"}).Location(); loc != "https://x.test" {
		t.Errorf("expected url location, got %q", loc)
	}
	if loc := (SourceConfig{File: "specs/x.yaml"}).Location(); loc != "specs/x.yaml" {
		t.Errorf("expected file location, got %q", loc)
	}
}

func TestShippedExampleConfigIsValid(t *testing.T) {
	cfg, err := LoadFromFiles(filepath.Join("..", "..", "config", "toolproxy.toml"))
	if err != nil {
		t.Fatalf("failed to load example config: %v", err)
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		t.Fatalf("example config has issues: %v", issues)
	}

	cos := cfg.Sources[0]
	if cos.Name != "cos" || cos.Base != BaseRegion || cos.ToolPrefix() != "" {
		t.Errorf("expected unprefixed regional cos source, got %+v", cos)
	}
	for _, s := range cfg.Sources[1:] {
		if s.Base != BaseServer || s.ToolPrefix() != s.Name {
			t.Errorf("expected %s to use server base and its name as prefix", s.Name)
		}
	}
}
