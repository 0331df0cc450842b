// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package perfreport

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.mystapp.dev/internal/mdtable"
)

// Write stores the report as perf-summary.md and perf-summary.json in dir.
func Write(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode perf summary: %w", err)
	}
	jsonPath := filepath.Join(dir, SummaryJSON)
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return nil, fmt.Errorf("write perf summary: %w", err)
	}

	mdPath := filepath.Join(dir, SummaryMarkdown)
	if err := os.WriteFile(mdPath, []byte(Markdown(r)), 0o644); err != nil { //nolint:gosec // report is meant to be shared
		return nil, fmt.Errorf("write perf summary: %w", err)
	}
	return []string{mdPath, jsonPath}, nil
}

// Markdown renders the per action table followed by the per run table.
func Markdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Performance summary\n\n%d timing file(s)", r.Files)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d skipped", len(r.Skipped))
	}
	b.WriteString("\n\n## By action (ms)\n\n")

	rows := make([][]string, 0, len(r.Actions))
	for _, s := range r.Actions {
		rows = append(rows, []string{
			mdtable.Escape(s.Action), strconv.Itoa(s.Count),
			ms(s.Mean), ms(s.P50), ms(s.P90), ms(s.P95), ms(s.P99), ms(s.Max),
		})
	}
	b.WriteString(mdtable.Render([]string{"Action", "Count", "Mean", "p50", "p90", "p95", "p99", "Max"}, rows))

	b.WriteString("\n## By run (ms)\n\n")
	actions := make([]string, 0, len(r.Actions))
	for _, s := range r.Actions {
		actions = append(actions, s.Action)
	}
	slices.Sort(actions)

	headers := append([]string{"Run"}, actions...)
	rows = make([][]string, 0, len(r.Runs))
	for _, run := range r.Runs {
		row := []string{mdtable.Escape(run.Name)}
		for _, action := range actions {
			if v, ok := run.Timings[action]; ok {
				row = append(row, ms(v))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	b.WriteString(mdtable.Render(headers, rows))
	return b.String()
}

func ms(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
