// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package stress

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Percentile sorts a copy of durations and returns the element at floor(p*len), clamped to the slice.
func Percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	i := int(math.Floor(p * float64(len(sorted))))
	i = max(0, min(i, len(sorted)-1))
	return sorted[i]
}

// Summary describes a set of durations.
type Summary struct {
	Count    int
	Failures int
	Min      time.Duration
	Max      time.Duration
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
}

// Summarize covers the total duration of every successful attempt.
func Summarize(attempts []Attempt) Summary {
	var durations []time.Duration
	failures := 0
	for _, a := range attempts {
		if a.Err != nil {
			failures++
			continue
		}
		durations = append(durations, a.Outcome.Total)
	}
	s := summarize(durations)
	s.Failures = failures
	return s
}

// SummarizeAPI covers the API latencies that were measured. Omitted measurements are not counted.
func SummarizeAPI(attempts []Attempt) Summary {
	var durations []time.Duration
	for _, a := range attempts {
		if a.Err == nil && a.Outcome.API != nil {
			durations = append(durations, a.Outcome.API.Latency)
		}
	}
	return summarize(durations)
}

func summarize(durations []time.Duration) Summary {
	s := Summary{Count: len(durations)}
	if len(durations) == 0 {
		return s
	}
	var total time.Duration
	s.Min, s.Max = durations[0], durations[0]
	for _, d := range durations {
		total += d
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Mean = total / time.Duration(len(durations))
	s.P50 = Percentile(durations, 0.50)
	s.P95 = Percentile(durations, 0.95)
	s.P99 = Percentile(durations, 0.99)
	return s
}

// SLO holds optional thresholds; zero means unset.
type SLO struct {
	Max time.Duration
	P95 time.Duration
	P99 time.Duration
}

// SLOViolationError lists every threshold that was exceeded.
type SLOViolationError struct {
	Violations []string
}

func (e *SLOViolationError) Error() string {
	return "login latency exceeded its thresholds: " + strings.Join(e.Violations, ", ")
}

// Check compares the summary against every configured threshold.
func (s Summary) Check(slo SLO) error {
	var violations []string
	for _, c := range []struct {
		name      string
		got, want time.Duration
	}{
		{"max", s.Max, slo.Max},
		{"p95", s.P95, slo.P95},
		{"p99", s.P99, slo.P99},
	} {
		if c.want > 0 && c.got > c.want {
			violations = append(violations, fmt.Sprintf("%s %dms > %dms", c.name, c.got.Milliseconds(), c.want.Milliseconds()))
		}
	}
	if len(violations) > 0 {
		return &SLOViolationError{Violations: violations}
	}
	return nil
}
