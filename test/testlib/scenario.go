// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testlib

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"go.mystapp.dev/internal/config"
	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/datefill"
	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/grid"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/login"
	"go.mystapp.dev/internal/plog"
	"go.mystapp.dev/internal/timing"
)

// AppPage is everything the scenarios do with a page.
type AppPage interface {
	login.Page
	datefill.Page
	grid.Page
}

// LoginOptions builds the login options for cfg, skipping the test when no base URL is configured.
func LoginOptions(t *testing.T, cfg *config.Config) login.Options {
	t.Helper()
	loginURL, err := cfg.LoginURL()
	SkipWhenNotConfigured(t, err)
	return login.Options{
		LoginURL:        loginURL,
		LoginPath:       cfg.LoginPath,
		Selectors:       cfg.Selectors,
		APIPattern:      cfg.APILatencyPattern,
		PostSubmitDelay: cfg.PostSubmitDelay,
		Log:             plog.New().WithValues("test", t.Name()),
	}
}

// Login signs in as cred and records the login and API latencies.
func Login(ctx context.Context, t *testing.T, page AppPage, cfg *config.Config, cred credentials.Credential, timings *timing.Recorder) login.Outcome {
	t.Helper()
	out, err := login.Login(ctx, page, cred, LoginOptions(t, cfg))
	require.NoError(t, err)
	timings.Record("login", out.Total)
	if out.API != nil {
		timings.Record("login_api", out.API.Latency)
	} else {
		t.Logf("login API latency omitted: %s", out.APIOmitted)
	}
	return out
}

// ApplyDateRange fills the start and end date filters, applies them, and waits for the grid to settle.
// The time from applying the filter to a settled grid is recorded as grid_ready.
func ApplyDateRange(ctx context.Context, t *testing.T, page AppPage, cfg *config.Config, start, end string, wait grid.WaitOptions, timings *timing.Recorder) grid.State {
	t.Helper()
	log := plog.New().WithValues("test", t.Name())
	resolver := &locator.Resolver{Querier: page, Overrides: cfg.Selectors, Log: log}
	filler := &datefill.Filler{Page: page, Format: cfg.DateFormat, Log: log}

	for _, field := range []struct {
		field locator.Field
		value string
	}{
		{field: locator.StartDate, value: start},
		{field: locator.EndDate, value: end},
	} {
		el, err := resolver.Resolve(ctx, field.field, dom.AnyFrame)
		require.NoError(t, err)
		require.NoError(t, filler.Fill(ctx, el, field.value))
	}

	refresh, err := resolver.Resolve(ctx, locator.Refresh, dom.AnyFrame)
	require.NoError(t, err)

	grids := &grid.Grids{Page: page, Selectors: cfg.Selectors, Log: log}
	if wait.Log == nil {
		wait.Log = log
	}
	var state grid.State
	require.NoError(t, timings.Measure("grid_ready", func() error {
		if err := page.Click(ctx, refresh, false); err != nil {
			return err
		}
		state, err = grids.WaitReady(ctx, wait)
		return err
	}))
	return state
}

// OpenFirstRecord opens the record in the first data row and records how long that took.
func OpenFirstRecord(ctx context.Context, t *testing.T, page AppPage, cfg *config.Config, timings *timing.Recorder) grid.Opened {
	t.Helper()
	grids := &grid.Grids{Page: page, Selectors: cfg.Selectors, Log: plog.New().WithValues("test", t.Name())}

	cell, err := grids.RecordCell(ctx, 0, cfg.RecordField)
	require.NoError(t, err)

	var opened grid.Opened
	require.NoError(t, timings.Measure("open_record", func() error {
		opened, err = grids.Open(ctx, cell, grid.OpenOptions{})
		return err
	}))
	return opened
}
