package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reqlog/internal/config"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reqlog",
		Short: "Redacting, size-bounded structured request logging",
		Long: `reqlog turns request/response events into sanitized JSON payloads:
authorization headers, secrets and token signatures are redacted, noisy
headers are dropped and oversized payloads are replaced with a summary.

Configuration is read from ~/.config/reqlog/config.yaml (or --config) and
REQLOG_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/reqlog/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "diagnostics log level override (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newEmitCmd(opts),
		newRedactCmd(),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("reqlog by Fyrsmith Labs\n")
			cmd.Printf("Version:    %s\n", version)
			cmd.Printf("Commit:     %s\n", gitCommit)
			cmd.Printf("Build Date: %s\n", buildDate)
		},
	}
}
