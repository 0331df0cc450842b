// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/constable"
	"go.mystapp.dev/internal/plog"
)

// ErrAmbiguous means the grid neither showed data nor ever showed its empty indicator in time.
const ErrAmbiguous = constable.Error("grid did not settle")

const (
	DefaultWindow   = 45 * time.Second
	DefaultInterval = 250 * time.Millisecond
)

// State of a results grid.
type State int

const (
	Pending State = iota
	Ready
	ConfirmedEmpty
	Ambiguous
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	case ConfirmedEmpty:
		return "ConfirmedEmpty"
	case Ambiguous:
		return "Ambiguous"
	default:
		return "Unknown"
	}
}

// Tracker decides when a grid has settled from a series of observations.
// An empty indicator is only trusted once the whole window has elapsed, because grids commonly
// flash "no records" while the first page of data is still loading.
type Tracker struct {
	start    time.Time
	window   time.Duration
	sawEmpty bool
}

func NewTracker(start time.Time, window time.Duration) *Tracker {
	return &Tracker{start: start, window: window}
}

// Observe records one poll and returns the state plus whether it is final.
func (t *Tracker) Observe(now time.Time, rows int, emptyVisible bool) (State, bool) {
	if rows >= 2 {
		return Ready, true
	}
	if emptyVisible {
		t.sawEmpty = true
	}
	if now.Sub(t.start) < t.window {
		return Pending, false
	}
	if t.sawEmpty {
		return ConfirmedEmpty, true
	}
	return Ambiguous, true
}

// Probe reports the number of data rows and whether the empty indicator is visible.
type Probe func(ctx context.Context) (rows int, emptyVisible bool, err error)

// WaitOptions tune WaitReady. Zero values take the defaults.
type WaitOptions struct {
	Window   time.Duration
	Interval time.Duration
	Clock    clock.PassiveClock
	Log      plog.Logger
}

// WaitReady polls probe until the grid has data, is confirmed empty, or the window runs out.
// Ambiguous is returned together with an error wrapping ErrAmbiguous.
func WaitReady(ctx context.Context, probe Probe, opts WaitOptions) (State, error) {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Log == nil {
		opts.Log = plog.New()
	}

	tracker := NewTracker(opts.Clock.Now(), opts.Window)
	state, lastRows := Pending, 0
	err := wait.PollUntilContextCancel(ctx, opts.Interval, true, func(ctx context.Context) (bool, error) {
		rows, empty, err := probe(ctx)
		if err != nil {
			// The empty indicator may still have been seen while the table was being replaced.
			opts.Log.TraceErr("grid probe failed", err, "emptyVisible", empty)
			rows = 0
		}
		lastRows = rows
		var done bool
		state, done = tracker.Observe(opts.Clock.Now(), rows, empty)
		return done, nil
	})
	if err != nil {
		return Pending, fmt.Errorf("waiting for grid: %w", err)
	}

	opts.Log.Debug("grid settled", "state", state.String(), "rows", lastRows)
	if state == Ambiguous {
		return state, fmt.Errorf("%w: %d data row(s) and no empty indicator after %s", ErrAmbiguous, lastRows, opts.Window)
	}
	return state, nil
}
