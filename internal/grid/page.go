// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package grid waits for result grids to settle and opens records from them.
package grid

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/constable"
	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/plog"
)

// ErrNotOpened means clicking a record neither opened a tab nor navigated.
const ErrNotOpened = constable.Error("clicking the record did not open it")

// Page is the subset of page interactions grids need.
type Page interface {
	locator.Querier
	Table(ctx context.Context, grid dom.Element) (Table, error)
	Click(ctx context.Context, el dom.Element, force bool) error
	URL(ctx context.Context) (string, error)
	// ExpectNewTab starts listening right away and delivers the URL of the next tab the page opens.
	// The channel is closed without a value when ctx ends first.
	ExpectNewTab(ctx context.Context) <-chan string
}

// Grids finds grids on one page.
type Grids struct {
	Page      Page
	Selectors map[locator.Field]string
	Log       plog.Logger
}

func (g *Grids) cascade(f locator.Field) locator.Cascade {
	if css := g.Selectors[f]; css != "" {
		return locator.Override(css)
	}
	return locator.Default(f)
}

func (g *Grids) log() plog.Logger {
	if g.Log == nil {
		return plog.New()
	}
	return g.Log
}

// Probe looks up the grid and the empty indicator afresh on every call, since grids are often
// replaced wholesale while loading.
func (g *Grids) Probe() Probe {
	return func(ctx context.Context) (int, bool, error) {
		empty := false
		noRecords := g.cascade(locator.NoRecords)
		if notices, err := g.Page.Query(ctx, noRecords.Candidates); err == nil {
			_, _, empty = noRecords.Select(notices)
		}

		table, ok, err := g.Snapshot(ctx)
		if err != nil || !ok {
			return 0, empty, err
		}
		return len(table.Rows), empty, nil
	}
}

// Snapshot returns the current contents of the first visible grid, if any.
func (g *Grids) Snapshot(ctx context.Context) (Table, bool, error) {
	gridCascade := g.cascade(locator.Grid)
	candidates, err := g.Page.Query(ctx, gridCascade.Candidates)
	if err != nil {
		return Table{}, false, err
	}
	el, _, ok := gridCascade.Select(candidates)
	if !ok {
		return Table{}, false, nil
	}
	table, err := g.Page.Table(ctx, el)
	if err != nil {
		return Table{}, false, err
	}
	return table, true, nil
}

// WaitReady waits for the grid on this page to settle.
func (g *Grids) WaitReady(ctx context.Context, opts WaitOptions) (State, error) {
	if opts.Log == nil {
		opts.Log = g.log()
	}
	return WaitReady(ctx, g.Probe(), opts)
}

// RecordCell picks the cell that opens the record named by field in the given data row.
func (g *Grids) RecordCell(ctx context.Context, rowIndex int, field string) (dom.Element, error) {
	if css := g.Selectors[locator.RecordCell]; css != "" {
		candidates, err := g.Page.Query(ctx, css)
		if err != nil {
			return dom.Element{}, err
		}
		if el, _, ok := locator.Override(css).Select(candidates); ok {
			return el, nil
		}
		return dom.Element{}, &locator.NotFoundError{Field: locator.RecordCell}
	}

	table, ok, err := g.Snapshot(ctx)
	if err != nil {
		return dom.Element{}, err
	}
	if !ok || rowIndex >= len(table.Rows) {
		return dom.Element{}, &locator.NotFoundError{Field: locator.RecordCell}
	}
	column := ColumnIndex(table.Headers, field)
	el, strategy, ok := PickCell(table.Rows[rowIndex], column, field)
	if !ok {
		return dom.Element{}, &locator.NotFoundError{Field: locator.RecordCell}
	}
	g.log().Debug("picked record cell", "field", field, "column", column, "strategy", strategy, "text", el.Text)
	return el, nil
}

// Opened describes how a record opened.
type Opened struct {
	NewTab bool
	URL    string
}

// OpenOptions tune Open. Zero values take the defaults.
type OpenOptions struct {
	// Grace is how long to wait for a new tab after the click before checking for navigation.
	Grace    time.Duration
	Timeout  time.Duration
	Interval time.Duration
	Clock    clock.Clock
}

// Open clicks cell and accepts either a new tab or a same-tab navigation as success.
func (g *Grids) Open(ctx context.Context, cell dom.Element, opts OpenOptions) (Opened, error) {
	if opts.Grace <= 0 {
		opts.Grace = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	before, err := g.Page.URL(ctx)
	if err != nil {
		return Opened{}, fmt.Errorf("read url before opening record: %w", err)
	}

	tabCtx, cancel := context.WithTimeout(ctx, opts.Grace+opts.Timeout)
	defer cancel()
	tabs := g.Page.ExpectNewTab(tabCtx)

	if err := g.Page.Click(ctx, cell, false); err != nil {
		return Opened{}, fmt.Errorf("click record: %w", err)
	}

	select {
	case u, ok := <-tabs:
		if ok {
			return g.opened(Opened{NewTab: true, URL: u}), nil
		}
	case <-opts.Clock.After(opts.Grace):
	case <-ctx.Done():
		return Opened{}, ctx.Err()
	}

	var result Opened
	err = wait.PollUntilContextTimeout(ctx, opts.Interval, opts.Timeout, true, func(ctx context.Context) (bool, error) {
		select {
		case u, ok := <-tabs:
			if ok {
				result = Opened{NewTab: true, URL: u}
				return true, nil
			}
		default:
		}
		u, err := g.Page.URL(ctx)
		if err != nil {
			return false, nil //nolint:nilerr // mid navigation
		}
		if u != before {
			result = Opened{URL: u}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return Opened{}, ctx.Err()
		}
		return Opened{}, fmt.Errorf("%w: still on %s after %s", ErrNotOpened, before, opts.Grace+opts.Timeout)
	}
	return g.opened(result), nil
}

func (g *Grids) opened(o Opened) Opened {
	g.log().Info("opened record", "newTab", o.NewTab, "url", o.URL)
	return o
}
