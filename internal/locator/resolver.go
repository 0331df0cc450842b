// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/plog"
)

const (
	defaultInterval = 250 * time.Millisecond
	defaultTimeout  = 20 * time.Second
)

// Querier collects snapshots of the elements matching a CSS selector in every frame of a page.
type Querier interface {
	Query(ctx context.Context, css string) ([]dom.Element, error)
}

// NotFoundError is returned when no visible candidate for a field appeared in time.
type NotFoundError struct {
	Field  Field
	Waited time.Duration
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no visible element found for field %q within %s (set %s to a CSS selector to override the heuristics)",
		e.Field, e.Waited, e.Field.OverrideVar())
}

// Resolver finds single elements for logical fields, preferring configured overrides.
type Resolver struct {
	Querier   Querier
	Overrides map[Field]string
	Interval  time.Duration
	Timeout   time.Duration
	Log       plog.Logger
}

// Cascade returns the cascade Resolve uses for the field.
func (r *Resolver) Cascade(f Field) Cascade {
	if css := r.Overrides[f]; css != "" {
		return Override(css)
	}
	return Default(f)
}

// Resolve waits for the field to become visible in the given frame (or dom.AnyFrame).
func (r *Resolver) Resolve(ctx context.Context, f Field, frame int) (dom.Element, error) {
	return r.ResolveCascade(ctx, f, r.Cascade(f), frame)
}

// ResolveCascade is Resolve with an explicit cascade, reported under the given field on failure.
func (r *Resolver) ResolveCascade(ctx context.Context, f Field, c Cascade, frame int) (dom.Element, error) {
	interval, timeout := r.Interval, r.Timeout
	if interval <= 0 {
		interval = defaultInterval
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var (
		found    dom.Element
		strategy string
	)
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		elements, err := r.Querier.Query(ctx, c.Candidates)
		if err != nil {
			// pages navigate underneath us all the time; a failed query just means try again
			r.log().Trace("field query failed", "field", f, "error", err)
			return false, nil
		}
		var ok bool
		found, strategy, ok = c.Select(dom.InFrame(elements, frame))
		return ok, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return dom.Element{}, fmt.Errorf("resolving field %q: %w", f, ctxErr)
		}
		return dom.Element{}, &NotFoundError{Field: f, Waited: timeout}
	}

	r.log().Debug("resolved field", "field", f, "strategy", strategy, "frame", found.Frame, "ref", found.Ref)
	return found, nil
}

func (r *Resolver) log() plog.Logger {
	if r.Log == nil {
		return plog.New()
	}
	return r.Log
}
