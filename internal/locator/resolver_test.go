// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/plog"
)

type fakeQuerier struct {
	mu      sync.Mutex
	calls   int
	queries []string
	// results are returned one per call, the last one repeats
	results [][]dom.Element
	err     error
}

func (f *fakeQuerier) Query(_ context.Context, css string) ([]dom.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, css)
	defer func() { f.calls++ }()
	if f.err != nil && f.calls == 0 {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return nil, nil
	}
	if f.calls < len(f.results) {
		return f.results[f.calls], nil
	}
	return f.results[len(f.results)-1], nil
}

func TestResolve(t *testing.T) {
	hidden := dom.Element{Ref: "pw", Tag: "input", Type: "password"}
	shown := hidden
	shown.Visible = true

	t.Run("waits until the element is visible", func(t *testing.T) {
		q := &fakeQuerier{results: [][]dom.Element{{hidden}, {hidden}, {shown}}}
		log, buf := plog.TestLogger(t)
		r := &Resolver{Querier: q, Interval: time.Millisecond, Timeout: time.Second, Log: log}

		got, err := r.Resolve(context.Background(), Password, dom.AnyFrame)
		require.NoError(t, err)
		require.Equal(t, shown, got)
		require.Equal(t, 3, q.calls)
		require.Contains(t, buf.String(), `"message":"resolved field","field":"password","strategy":"password-input"`)
	})

	t.Run("query errors are retried", func(t *testing.T) {
		q := &fakeQuerier{err: errors.New("execution context was destroyed"), results: [][]dom.Element{{shown}}}
		r := &Resolver{Querier: q, Interval: time.Millisecond, Timeout: time.Second}

		got, err := r.Resolve(context.Background(), Password, dom.AnyFrame)
		require.NoError(t, err)
		require.Equal(t, "pw", got.Ref)
	})

	t.Run("override selector is used verbatim", func(t *testing.T) {
		q := &fakeQuerier{results: [][]dom.Element{{{Ref: "x", Tag: "div", Visible: true}}}}
		r := &Resolver{Querier: q, Overrides: map[Field]string{Submit: "#go"}, Interval: time.Millisecond, Timeout: time.Second}

		got, err := r.Resolve(context.Background(), Submit, dom.AnyFrame)
		require.NoError(t, err)
		require.Equal(t, "x", got.Ref)
		require.Equal(t, []string{"#go"}, q.queries)
	})

	t.Run("frame filter", func(t *testing.T) {
		inFrame := shown
		inFrame.Frame = 1
		q := &fakeQuerier{results: [][]dom.Element{{shown, inFrame}}}
		r := &Resolver{Querier: q, Interval: time.Millisecond, Timeout: time.Second}

		got, err := r.Resolve(context.Background(), Password, 1)
		require.NoError(t, err)
		require.Equal(t, 1, got.Frame)
	})

	t.Run("not found names the override variable", func(t *testing.T) {
		q := &fakeQuerier{results: [][]dom.Element{{hidden}}}
		r := &Resolver{Querier: q, Interval: time.Millisecond, Timeout: 20 * time.Millisecond}

		_, err := r.Resolve(context.Background(), Password, dom.AnyFrame)
		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, Password, notFound.Field)
		require.EqualError(t, err, `no visible element found for field "password" within 20ms (set MYSTAPP_SEL_PASSWORD to a CSS selector to override the heuristics)`)
	})

	t.Run("cancelled context is not reported as not found", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &Resolver{Querier: &fakeQuerier{}, Interval: time.Millisecond, Timeout: time.Second}

		_, err := r.Resolve(ctx, Username, dom.AnyFrame)
		require.ErrorIs(t, err, context.Canceled)
	})
}
