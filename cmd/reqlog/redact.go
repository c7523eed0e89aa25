package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reqlog/pkg/redact"
)

func newRedactCmd() *cobra.Command {
	var (
		indent      int
		scanSecrets bool
		allowlist   string
	)

	cmd := &cobra.Command{
		Use:   "redact [file]",
		Short: "Redact NDJSON events offline",
		Long: `Read one JSON event per line from a file or stdin and print its redacted,
token-truncated form. Nothing is sent to a sink and no configuration is read.
With --scan-secrets, string values are also scanned with the Gitleaks rule set.

Examples:
  # Redact a capture
  reqlog redact events.ndjson > events.redacted.ndjson

  # Pretty-print a single event
  echo '{"headers":{"Authorization":"Basic abc"}}' | reqlog redact --indent 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if indent < 0 {
				return fmt.Errorf("indent must be >= 0, got %d", indent)
			}
			in, closeIn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			r, err := buildRedactor(scanSecrets, allowlist)
			if err != nil {
				return err
			}
			return runRedact(r, in, cmd.OutOrStdout(), indent)
		},
	}

	cmd.Flags().IntVar(&indent, "indent", 0, "spaces per indentation level (0 for one line per event)")
	cmd.Flags().BoolVar(&scanSecrets, "scan-secrets", false, "also scrub secrets found in string values with the Gitleaks rule set")
	cmd.Flags().StringVar(&allowlist, "allowlist", "", "TOML allowlist for --scan-secrets")
	return cmd
}

func runRedact(redactor *redact.Redactor, r io.Reader, w io.Writer, indent int) error {
	return eachLine(r, func(lineNo int, line []byte) error {
		value, err := redact.Parse(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, err := fmt.Fprintln(w, redactor.SerializeTruncated(value, indent)); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	})
}
