// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package perfreport combines every timing file of earlier test runs into one report.
package perfreport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.mystapp.dev/internal/constable"
	"go.mystapp.dev/internal/plog"
	"go.mystapp.dev/internal/timing"
)

// ErrNoTimingFiles means there was nothing to aggregate.
const ErrNoTimingFiles = constable.Error("no timing files found")

// Report file names, written into the results directory.
const (
	SummaryMarkdown = "perf-summary.md"
	SummaryJSON     = "perf-summary.json"
)

// Run is the content of one timing file.
type Run struct {
	Name    string             `json:"name"`
	Timings map[string]float64 `json:"timings"`
}

// Stats aggregates one action across runs. Durations are in milliseconds.
type Stats struct {
	Action string  `json:"action"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

// Report is the combined summary.
type Report struct {
	Files   int      `json:"files"`
	Skipped []string `json:"skipped,omitempty"`
	Actions []Stats  `json:"actions"`
	Runs    []Run    `json:"runs"`
}

// Discover returns every timing file under root in lexical order.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), timing.FileSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("discover timing files in %s: %w", root, err)
	}
	return files, nil
}

// Load reads one timing file as a flat action to milliseconds mapping.
func Load(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var timings map[string]float64
	if err := json.Unmarshal(data, &timings); err != nil {
		return nil, err
	}
	if timings == nil {
		return nil, fmt.Errorf("%s holds no timing object", path)
	}
	return timings, nil
}

// Percentile is nearest rank: the value at ceil(p*n)-1 of the sorted values, clamped.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	i := int(math.Ceil(p*float64(len(sorted)))) - 1
	i = max(0, min(i, len(sorted)-1))
	return sorted[i]
}

// Aggregate computes per action statistics over runs, in action name order.
func Aggregate(runs []Run) []Stats {
	byAction := map[string][]float64{}
	for _, r := range runs {
		for action, ms := range r.Timings {
			byAction[action] = append(byAction[action], ms)
		}
	}

	out := make([]Stats, 0, len(byAction))
	for action, values := range byAction {
		var total float64
		for _, v := range values {
			total += v
		}
		out = append(out, Stats{
			Action: action,
			Count:  len(values),
			Mean:   total / float64(len(values)),
			P50:    Percentile(values, 0.50),
			P90:    Percentile(values, 0.90),
			P95:    Percentile(values, 0.95),
			P99:    Percentile(values, 0.99),
			Max:    slices.Max(values),
		})
	}
	slices.SortFunc(out, func(a, b Stats) int { return strings.Compare(a.Action, b.Action) })
	return out
}

// Build discovers and loads every timing file under root. Unreadable or malformed files are
// listed in Skipped and otherwise ignored.
func Build(root string, log plog.Logger) (*Report, error) {
	files, err := Discover(root)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, path := range files {
		timings, err := Load(path)
		if err != nil {
			log.Debug("skipping timing file", "path", path, "error", err.Error())
			report.Skipped = append(report.Skipped, path)
			continue
		}
		name, _ := filepath.Rel(root, path)
		report.Runs = append(report.Runs, Run{Name: strings.TrimSuffix(filepath.ToSlash(name), timing.FileSuffix), Timings: timings})
	}
	report.Files = len(report.Runs)
	if report.Files == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoTimingFiles, root)
	}
	report.Actions = Aggregate(report.Runs)
	return report, nil
}
