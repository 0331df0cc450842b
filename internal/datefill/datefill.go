// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package datefill enters dates into inputs that resist ordinary filling: read-only pickers, masked
// text inputs and native date controls.
package datefill

import (
	"context"
	"fmt"

	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/multierror"
	"go.mystapp.dev/internal/plog"
)

// Page is the subset of page interactions the filler needs.
type Page interface {
	RemoveAttribute(ctx context.Context, el dom.Element, name string) error
	Fill(ctx context.Context, el dom.Element, value string) error
	Dispatch(ctx context.Context, el dom.Element, events ...string) error
	Value(ctx context.Context, el dom.Element) (string, error)
	Click(ctx context.Context, el dom.Element, force bool) error
	Press(ctx context.Context, key string) error
	Type(ctx context.Context, text string) error
	AssignValue(ctx context.Context, el dom.Element, value string) error
}

// FillError reports the value left in the input after every attempt failed.
type FillError struct {
	Field    string
	Expected string
	Final    string
	Reasons  error
}

func (e *FillError) Error() string {
	return fmt.Sprintf("date field %s read back %q instead of %q after every fill attempt: %v", e.Field, e.Final, e.Expected, e.Reasons)
}

func (e *FillError) Unwrap() error {
	return e.Reasons
}

var commitEvents = []string{"input", "change", "blur"} //nolint:gochecknoglobals

// Filler runs the fill attempts against one page.
type Filler struct {
	Page   Page
	Format Format
	Log    plog.Logger
}

type attempt struct {
	name string
	run  func(ctx context.Context, el dom.Element, raw, expected string) error
}

// Fill enters raw into el and returns once the input reads back the expected value. Attempts run in
// order and stop at the first one that reads back correctly:
// a direct fill with synthetic events, real keystrokes, and finally script assignment.
func (f *Filler) Fill(ctx context.Context, el dom.Element, raw string) error {
	expected, err := Expected(raw, f.Format, el.Type)
	if err != nil {
		return err
	}
	log := f.log().WithValues("field", el.AccessibleName(), "ref", el.Ref, "expected", expected)

	attempts := []attempt{
		{name: "direct fill", run: f.direct},
		{name: "keystrokes", run: f.keystrokes},
		{name: "script assignment", run: f.script},
	}

	reasons := multierror.New()
	var final string
	for _, a := range attempts {
		if err := a.run(ctx, el, raw, expected); err != nil {
			reasons.Add(fmt.Errorf("%s: %w", a.name, err))
			log.DebugErr("date fill attempt failed", err, "attempt", a.name)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		got, err := f.Page.Value(ctx, el)
		if err != nil {
			reasons.Add(fmt.Errorf("%s: reading back value: %w", a.name, err))
			continue
		}
		final = got
		if got == expected {
			log.Debug("date filled", "attempt", a.name)
			return nil
		}
		reasons.Add(fmt.Errorf("%s: read back %q", a.name, got))
		log.Debug("date fill attempt read back the wrong value", "attempt", a.name, "got", got)
	}

	return &FillError{Field: el.AccessibleName(), Expected: expected, Final: final, Reasons: reasons.ErrOrNil()}
}

func (f *Filler) direct(ctx context.Context, el dom.Element, _, expected string) error {
	if el.ReadOnly {
		if err := f.Page.RemoveAttribute(ctx, el, "readonly"); err != nil {
			return err
		}
	}
	if err := f.Page.Fill(ctx, el, expected); err != nil {
		return err
	}
	return f.Page.Dispatch(ctx, el, commitEvents...)
}

func (f *Filler) keystrokes(ctx context.Context, el dom.Element, raw, _ string) error {
	if err := f.Page.Click(ctx, el, true); err != nil {
		return err
	}
	for _, key := range []string{"Control+A", "Delete"} {
		if err := f.Page.Press(ctx, key); err != nil {
			return err
		}
	}
	if err := f.Page.Type(ctx, raw); err != nil {
		return err
	}
	// Enter commits masked inputs, Escape closes any calendar popup that opened on focus.
	for _, key := range []string{"Enter", "Escape"} {
		if err := f.Page.Press(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) script(ctx context.Context, el dom.Element, _, expected string) error {
	return f.Page.AssignValue(ctx, el, expected)
}

func (f *Filler) log() plog.Logger {
	if f.Log == nil {
		return plog.New()
	}
	return f.Log
}
