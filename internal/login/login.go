// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package login drives a login form of unknown shape and reports how long it took.
package login

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/constable"
	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/plog"
)

// ErrStillOnLoginPage means the form was submitted but the page never left the login path.
const ErrStillOnLoginPage = constable.Error("still on the login page after submitting")

// Reasons an Outcome carries no API measurement.
const (
	APIOmittedDisabled      = "no API latency pattern configured"
	APIOmittedAuthenticated = "already authenticated, no login request was sent"
	APIOmittedNoMatch       = "no matching response observed"
)

// Page is the subset of page interactions a login needs.
type Page interface {
	locator.Querier
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	Fill(ctx context.Context, el dom.Element, value string) error
	Click(ctx context.Context, el dom.Element, force bool) error
	Focus(ctx context.Context, el dom.Element) error
	Press(ctx context.Context, key string) error
	// ExpectResponse starts listening right away and delivers at most one response whose URL
	// matches. The channel is closed without a value when ctx ends first.
	ExpectResponse(ctx context.Context, pattern *regexp.Regexp) <-chan dom.Response
}

// Options configures one login. Zero durations take their defaults.
type Options struct {
	LoginURL  string
	LoginPath string
	Selectors map[locator.Field]string

	APIPattern      *regexp.Regexp
	PostSubmitDelay time.Duration

	NavigateTimeout time.Duration
	FormInterval    time.Duration
	FormTimeout     time.Duration
	SubmitTimeout   time.Duration
	LeaveTimeout    time.Duration
	APITimeout      time.Duration
	APIGrace        time.Duration

	Clock clock.Clock
	Log   plog.Logger
}

func (o Options) withDefaults() Options {
	set := func(d *time.Duration, def time.Duration) {
		if *d <= 0 {
			*d = def
		}
	}
	set(&o.NavigateTimeout, 45*time.Second)
	set(&o.FormInterval, 250*time.Millisecond)
	set(&o.FormTimeout, 20*time.Second)
	set(&o.SubmitTimeout, 5*time.Second)
	set(&o.LeaveTimeout, 20*time.Second)
	set(&o.APITimeout, 30*time.Second)
	set(&o.APIGrace, 2*time.Second)
	if o.LoginPath == "" {
		o.LoginPath = "/login"
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	if o.Log == nil {
		o.Log = plog.New()
	}
	return o
}

// Outcome is the result of one login.
type Outcome struct {
	Total time.Duration
	// API is the matched response, nil when APIOmitted says why it is missing.
	API        *dom.Response
	APIOmitted string
	State      State
}

// PathPattern matches URLs that are still on the login path.
func PathPattern(loginPath string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(loginPath) + `(?:[/?#]|$)`)
}

type attempt struct {
	page    Page
	opts    Options
	cred    credentials.Credential
	log     plog.Logger
	onLogin *regexp.Regexp
	out     Outcome
}

// Login signs cred in on page. Success means the page left the login path, which cannot tell a
// rejected login apart on apps that show errors without changing the URL.
func Login(ctx context.Context, page Page, cred credentials.Credential, opts Options) (Outcome, error) {
	opts = opts.withDefaults()
	a := &attempt{
		page:    page,
		opts:    opts,
		cred:    cred,
		log:     opts.Log.WithValues("user", cred.Username),
		onLogin: PathPattern(opts.LoginPath),
		out:     Outcome{State: NotStarted, APIOmitted: APIOmittedDisabled},
	}
	start := opts.Clock.Now()
	err := a.run(ctx)
	a.out.Total = opts.Clock.Since(start)
	if err != nil {
		a.log.DebugErr("login failed", err, "state", a.out.State.String())
		return a.out, fmt.Errorf("login as %s (reached %s): %w", cred.Username, a.out.State, err)
	}
	a.log.Debug("login finished", "state", a.out.State.String(), "total", a.out.Total)
	return a.out, nil
}

func (a *attempt) run(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, a.opts.NavigateTimeout)
	err := a.page.Navigate(navCtx, a.opts.LoginURL)
	cancel()
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", a.opts.LoginURL, err)
	}
	a.out.State = Navigated

	if u, err := a.page.URL(ctx); err == nil && !a.onLogin.MatchString(u) {
		a.log.Info("already authenticated", "url", u)
		a.out.State = AlreadyAuthenticated
		a.out.APIOmitted = APIOmittedAuthenticated
		return nil
	}
	a.out.State = FormRendering

	var responses <-chan dom.Response
	if a.opts.APIPattern != nil {
		apiCtx, cancelAPI := context.WithTimeout(ctx, a.opts.APITimeout)
		defer cancelAPI()
		responses = a.page.ExpectResponse(apiCtx, a.opts.APIPattern)
	}

	frame, err := a.waitForForm(ctx)
	if err != nil {
		return err
	}

	password, err := a.fill(ctx, frame)
	if err != nil {
		return err
	}
	a.out.State = FormFilled

	if err := a.submit(ctx, frame, password); err != nil {
		return err
	}
	a.out.State = Submitted

	if err := a.sleep(ctx, a.opts.PostSubmitDelay); err != nil {
		return err
	}

	if err := a.waitToLeave(ctx); err != nil {
		return err
	}
	a.out.State = LeftLoginPage

	if responses != nil {
		a.collectAPI(ctx, responses)
	}
	return nil
}

func (a *attempt) waitForForm(ctx context.Context) (int, error) {
	var frame int
	err := wait.PollUntilContextTimeout(ctx, a.opts.FormInterval, a.opts.FormTimeout, true, func(ctx context.Context) (bool, error) {
		elements, err := a.page.Query(ctx, locator.LoginCandidates)
		if err != nil {
			return false, nil //nolint:nilerr // the document is still loading
		}
		var ok bool
		frame, ok = locator.LoginFrame(elements)
		return ok, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &locator.NotFoundError{Field: locator.Username, Waited: a.opts.FormTimeout}
	}
	if frame != dom.MainFrame {
		a.log.Debug("login form is inside a frame", "frame", frame)
	}
	return frame, nil
}

func (a *attempt) resolver(timeout time.Duration) *locator.Resolver {
	return &locator.Resolver{
		Querier:   a.page,
		Overrides: a.opts.Selectors,
		Interval:  a.opts.FormInterval,
		Timeout:   timeout,
		Log:       a.log,
	}
}

// fill enters both values and returns the password input.
func (a *attempt) fill(ctx context.Context, frame int) (dom.Element, error) {
	r := a.resolver(a.opts.FormTimeout)

	var fields locator.LoginFields
	_, userOverride := a.opts.Selectors[locator.Username]
	_, passwordOverride := a.opts.Selectors[locator.Password]
	if userOverride || passwordOverride {
		user, err := r.Resolve(ctx, locator.Username, frame)
		if err != nil {
			return dom.Element{}, err
		}
		fields = locator.LoginFields{Username: user, PasswordPending: true}
	} else {
		elements, err := a.page.Query(ctx, locator.LoginCandidates)
		if err != nil {
			return dom.Element{}, fmt.Errorf("query login form: %w", err)
		}
		var ok bool
		if fields, ok = locator.SplitLoginFields(dom.InFrame(elements, frame)); !ok {
			return dom.Element{}, &locator.NotFoundError{Field: locator.Username}
		}
	}

	if err := a.page.Fill(ctx, fields.Username, a.cred.Username); err != nil {
		return dom.Element{}, fmt.Errorf("fill username: %w", err)
	}

	password := fields.Password
	if fields.PasswordPending {
		var err error
		password, err = r.ResolveCascade(ctx, locator.Password, r.Cascade(locator.Password).Excluding(fields.Username.Ref), frame)
		if err != nil {
			return dom.Element{}, err
		}
	}
	if err := a.page.Fill(ctx, password, a.cred.Password); err != nil {
		return dom.Element{}, fmt.Errorf("fill password: %w", err)
	}
	return password, nil
}

func (a *attempt) submit(ctx context.Context, frame int, password dom.Element) error {
	button, err := a.resolver(a.opts.SubmitTimeout).Resolve(ctx, locator.Submit, frame)
	if err == nil {
		if err = a.page.Click(ctx, button, false); err == nil {
			return nil
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	a.log.DebugErr("submit click failed, pressing enter in the password field instead", err)
	if err := a.page.Focus(ctx, password); err != nil {
		return fmt.Errorf("focus password: %w", err)
	}
	if err := a.page.Press(ctx, "Enter"); err != nil {
		return fmt.Errorf("press enter: %w", err)
	}
	return nil
}

func (a *attempt) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.opts.Clock.After(d):
		return nil
	}
}

func (a *attempt) waitToLeave(ctx context.Context) error {
	var last string
	err := wait.PollUntilContextTimeout(ctx, a.opts.FormInterval, a.opts.LeaveTimeout, true, func(ctx context.Context) (bool, error) {
		u, err := a.page.URL(ctx)
		if err != nil {
			return false, nil //nolint:nilerr // mid navigation
		}
		last = u
		return !a.onLogin.MatchString(u), nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s after %s", ErrStillOnLoginPage, last, a.opts.LeaveTimeout)
}

func (a *attempt) collectAPI(ctx context.Context, responses <-chan dom.Response) {
	a.out.APIOmitted = APIOmittedNoMatch
	select {
	case r, ok := <-responses:
		if ok {
			a.out.API, a.out.APIOmitted = &r, ""
		}
	case <-a.opts.Clock.After(a.opts.APIGrace):
	case <-ctx.Done():
	}
	if a.out.API == nil {
		a.log.Info("login API latency unavailable", "reason", a.out.APIOmitted)
	}
}
