// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the perf-summary command.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"go.mystapp.dev/internal/perfreport"
	"go.mystapp.dev/internal/plog"
)

// ResultsDir is where the browser tests leave their artifacts.
const ResultsDir = "test-results"

func newRootCommand(dir string) *cobra.Command {
	return &cobra.Command{
		Use:   "perf-summary",
		Short: "Combine the timing files of earlier test runs",
		Long: fmt.Sprintf("perf-summary reads every *.timings.json under ./%s and writes %s and %s next to them.",
			ResultsDir, perfreport.SummaryMarkdown, perfreport.SummaryJSON),
		Args:         cobra.NoArgs, // do not accept positional arguments for this command
		SilenceUsage: true,         // do not print usage message when commands fail
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := plog.New().WithName("perf-summary")

			report, err := perfreport.Build(dir, log)
			if err != nil {
				return err
			}
			files, err := perfreport.Write(dir, report)
			if err != nil {
				return err
			}
			log.Info("wrote performance summary", "files", report.Files, "skipped", len(report.Skipped), "actions", len(report.Actions))
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

// Execute runs the command against ./test-results and exits non-zero on failure.
func Execute() {
	if err := plog.ValidateAndSetLogLevelAndFormatGlobally(plog.LogSpec{
		Level:  plog.LogLevel(os.Getenv("MYSTAPP_LOG_LEVEL")),
		Format: logFormat(int(os.Stderr.Fd())),
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCommand(ResultsDir).Execute(); err != nil {
		os.Exit(1)
	}
}

// logFormat keeps JSON logs for CI and switches to the console format when a person is watching.
func logFormat(fd int) plog.LogFormat {
	if term.IsTerminal(fd) {
		return plog.FormatCLI
	}
	return plog.FormatJSON
}
