// Command toolproxy compiles OpenAPI documents into named tools and serves
// them over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/config"
)

var (
	configFiles []string
	serverPort  int
	serverHost  string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "toolproxy",
		Short: "Expose OpenAPI operations as invokable tools",
		Long: `toolproxy reads OpenAPI documents, compiles every operation into a named
tool, and dispatches POST /invoke calls to the upstream API.

Running toolproxy without a command starts the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")
	rootCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	rootCmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")

	rootCmd.AddCommand(serveCmd(), toolsCmd(), callCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves config files, applies overrides, and validates.
func loadConfig() (*config.Config, error) {
	files := configFiles
	if len(files) == 0 {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				files = append(files, path)
				break
			}
		}
	}

	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, serverPort, serverHost)
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration error:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "Values can be set via TOML file, TOOLPROXY_* environment variables, or CLI flags.")
		return nil, fmt.Errorf("invalid configuration (%d issues)", len(issues))
	}
	return cfg, nil
}

// configSearchPaths returns TOML files to auto-discover (first match wins).
// Binary-relative paths are tried first.
func configSearchPaths() []string {
	candidates := []string{
		"toolproxy.toml",
		"config/toolproxy.toml",
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, "toolproxy.toml"),
		filepath.Join(binDir, "config", "toolproxy.toml"),
	}
	paths = append(paths, candidates...)

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// setupLogger creates an arbor logger based on config.
func setupLogger(cfg *config.Config) *common.Logger {
	return common.NewLoggerFromConfig(common.LoggingConfig{
		Level:      cfg.Logging.Level,
		Outputs:    cfg.Logging.Outputs,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}
