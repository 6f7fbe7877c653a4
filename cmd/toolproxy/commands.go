package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/openapi-toolproxy/internal/app"
	"github.com/bobmcallan/openapi-toolproxy/internal/client"
	"github.com/bobmcallan/openapi-toolproxy/internal/config"
	"github.com/bobmcallan/openapi-toolproxy/internal/dispatch"
)

// toolsCmd compiles the configured sources without serving.
func toolsCmd() *cobra.Command {
	var detail bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Compile configured sources and print the resulting tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if logLevel == "" {
				cfg.Logging.Level = "warn"
			}
			application, err := app.New(cfg, setupLogger(cfg))
			if err != nil {
				return err
			}
			defer application.Close()

			loadErr := application.Reload(cmd.Context())
			if loadErr != nil && !errors.Is(loadErr, app.ErrAllSourcesFailed) {
				return loadErr
			}

			out := cmd.OutOrStdout()
			if detail {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TOOL\tMETHOD\tPATH\tSOURCE")
				for _, rec := range application.Registry.Current().Records() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Name, rec.Method, rec.PathTemplate, rec.Source)
				}
				tw.Flush()
			} else {
				for _, name := range application.Registry.Names() {
					fmt.Fprintln(out, name)
				}
			}

			for _, report := range application.Sources() {
				if report.Error != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "source %s failed: %s\n", report.Name, report.Error)
				}
			}
			return loadErr
		},
	}
	cmd.Flags().BoolVar(&detail, "detail", false, "Print method, path and source for each tool")
	return cmd
}

// callCmd invokes a tool on a running server.
func callCmd() *cobra.Command {
	var (
		input   string
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool on a running toolproxy server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseInput(input)
			if err != nil {
				return err
			}

			res, err := client.New(addr, timeout).Invoke(cmd.Context(), args[0], req)
			if err != nil {
				if client.IsToolNotFound(err) {
					return fmt.Errorf("tool %q is not registered on %s", args[0], addr)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Invocation input as JSON, or @file to read it from a file")
	cmd.Flags().StringVar(&addr, "server", "http://localhost:8000", "Base URL of the toolproxy server")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")
	return cmd
}

// parseInput decodes the --input flag into a request.
func parseInput(raw string) (dispatch.Request, error) {
	var req dispatch.Request
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return req, nil
	}
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return req, fmt.Errorf("failed to read input file: %w", err)
		}
		data = b
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid --input JSON: %w", err)
	}
	return req, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toolproxy version %s\n", config.GetFullVersion())
		},
	}
}
