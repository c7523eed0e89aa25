package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/reqlog/pkg/redact"
	"github.com/fyrsmithlabs/reqlog/pkg/reqlog"
)

// maxLineBytes bounds a single NDJSON event.
const maxLineBytes = 64 << 20

type emitOptions struct {
	metadata map[string]string
	debug    bool
	track    bool
}

func newEmitCmd(root *rootOptions) *cobra.Command {
	opts := &emitOptions{}

	cmd := &cobra.Command{
		Use:   "emit [file]",
		Short: "Emit redacted payloads for NDJSON events",
		Long: `Read one event per line from a file or stdin and emit each as a redacted
payload to the configured sink. All lines share one invocation.

Lines starting with '{' or '"' are parsed as JSON; other lines are emitted as
plain-text titles. Blank lines are skipped.

Examples:
  # Emit events from a file to stdout
  reqlog emit events.ndjson

  # Tag the invocation and record a checkpoint per line
  cat events.ndjson | reqlog emit -m service=checkout --track -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				cfg.Emitter.Debug = opts.debug
			}

			in, closeIn, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer closeIn()

			a, err := newApp(cmd.Context(), cfg, appDeps{stdout: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			_, err = runEmit(cmd.Context(), a.emitter, in, opts)
			return err
		},
	}

	cmd.Flags().StringToStringVarP(&opts.metadata, "metadata", "m", nil, "invocation metadata as key=value pairs")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "emit DEBUG level events (overrides emitter.debug)")
	cmd.Flags().BoolVar(&opts.track, "track", false, "record a tracking point after each line")
	return cmd
}

// runEmit logs each event in r under one invocation and returns the number
// of events read.
func runEmit(ctx context.Context, emitter *reqlog.Logger, r io.Reader, opts *emitOptions) (int, error) {
	metadata := make(map[string]any, len(opts.metadata))
	for k, v := range opts.metadata {
		metadata[k] = v
	}
	emitter.StartInvocation(metadata)

	n := 0
	err := eachLine(r, func(lineNo int, line []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		message, err := parseEvent(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		emitter.LogContext(ctx, message)
		n++
		if opts.track {
			return emitter.TrackPoint(fmt.Sprintf("line %d", lineNo))
		}
		return nil
	})
	return n, err
}

// parseEvent returns JSON lines as parsed values and anything else as text.
func parseEvent(line []byte) (any, error) {
	if line[0] != '{' && line[0] != '"' {
		return string(line), nil
	}
	return redact.Parse(line)
}

// eachLine calls fn for every non-blank line with its 1-based number.
func eachLine(r io.Reader, fn func(lineNo int, line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// openInput returns the named file, or stdin for no argument or "-".
func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	return f, func() { _ = f.Close() }, nil
}
