// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package login

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/plog"
)

// fakePage is a scripted login page. Submitting (by click or by Enter) moves it to afterSubmitURL.
type fakePage struct {
	mu sync.Mutex

	url            string
	afterSubmitURL string
	// elements are returned by Query until the username is filled, then afterUser is returned if set
	elements  []dom.Element
	afterUser []dom.Element

	clickErr  error
	response  *dom.Response
	filled    map[string]string
	actions   []string
	submitted bool
}

func (f *fakePage) Query(_ context.Context, css string) ([]dom.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if css == "#broken" {
		return nil, errors.New("not a valid selector")
	}
	if f.afterUser != nil && len(f.filled) > 0 {
		return f.afterUser, nil
	}
	return f.elements, nil
}

func (f *fakePage) Navigate(_ context.Context, url string) error {
	f.record("navigate " + url)
	return nil
}

func (f *fakePage) URL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *fakePage) Fill(_ context.Context, el dom.Element, value string) error {
	f.record("fill " + el.Ref)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.filled == nil {
		f.filled = map[string]string{}
	}
	f.filled[el.Ref] = value
	return nil
}

func (f *fakePage) Click(_ context.Context, el dom.Element, _ bool) error {
	f.record("click " + el.Ref)
	if f.clickErr != nil {
		return f.clickErr
	}
	f.submit()
	return nil
}

func (f *fakePage) Focus(_ context.Context, el dom.Element) error {
	f.record("focus " + el.Ref)
	return nil
}

func (f *fakePage) Press(_ context.Context, key string) error {
	f.record("press " + key)
	if key == "Enter" {
		f.submit()
	}
	return nil
}

func (f *fakePage) ExpectResponse(ctx context.Context, pattern *regexp.Regexp) <-chan dom.Response {
	ch := make(chan dom.Response, 1)
	go func() {
		defer close(ch)
		for {
			f.mu.Lock()
			submitted, r := f.submitted, f.response
			f.mu.Unlock()
			if submitted && r != nil && pattern.MatchString(r.URL) {
				ch <- *r
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Millisecond):
			}
		}
	}()
	return ch
}

func (f *fakePage) submit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = true
	if f.afterSubmitURL != "" {
		f.url = f.afterSubmitURL
	}
}

func (f *fakePage) record(action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

var (
	userInput   = dom.Element{Ref: "u", Tag: "input", Type: "text", Role: "textbox", Label: "Username", Visible: true}
	pwInput     = dom.Element{Ref: "p", Tag: "input", Type: "password", Label: "Password", Visible: true}
	maskedID    = dom.Element{Ref: "m", Tag: "input", Type: "password", Label: "Login ID", Visible: true}
	submitInput = dom.Element{Ref: "s", Tag: "button", Type: "submit", Role: "button", Text: "Sign in", Visible: true}
)

func fastOptions(t *testing.T) Options {
	log, _ := plog.TestLogger(t)
	return Options{
		LoginURL:      "https://app.example.com/login",
		LoginPath:     "/login",
		FormInterval:  time.Millisecond,
		FormTimeout:   200 * time.Millisecond,
		SubmitTimeout: 50 * time.Millisecond,
		LeaveTimeout:  200 * time.Millisecond,
		APIGrace:      50 * time.Millisecond,
		Log:           log,
	}
}

func TestLogin(t *testing.T) {
	cred := credentials.Credential{Username: "user01", Password: "pw"}

	t.Run("fills, submits and leaves the login page", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login?next=%2F",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput, submitInput},
		}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, LeftLoginPage, out.State)
		require.True(t, out.State.Succeeded())
		require.Nil(t, out.API)
		require.Equal(t, APIOmittedDisabled, out.APIOmitted)
		require.Equal(t, []string{"navigate https://app.example.com/login", "fill u", "fill p", "click s"}, page.actions)
		require.Equal(t, map[string]string{"u": "user01", "p": "pw"}, page.filled)
	})

	t.Run("already authenticated", func(t *testing.T) {
		page := &fakePage{url: "https://app.example.com/dashboard"}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, AlreadyAuthenticated, out.State)
		require.Equal(t, APIOmittedAuthenticated, out.APIOmitted)
		require.Equal(t, []string{"navigate https://app.example.com/login"}, page.actions)
	})

	t.Run("a path that merely starts with the login path is not the login page", func(t *testing.T) {
		page := &fakePage{url: "https://app.example.com/loginhelp"}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, AlreadyAuthenticated, out.State)
	})

	t.Run("intercepted click falls back to enter", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput, submitInput},
			clickErr:       dom.ErrIntercepted,
		}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, LeftLoginPage, out.State)
		require.Equal(t, []string{"navigate https://app.example.com/login", "fill u", "fill p", "click s", "focus p", "press Enter"}, page.actions)
	})

	t.Run("no submit control at all falls back to enter", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput},
		}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, LeftLoginPage, out.State)
		require.Equal(t, []string{"navigate https://app.example.com/login", "fill u", "fill p", "focus p", "press Enter"}, page.actions)
	})

	t.Run("masked login id reveals the password after the id is filled", func(t *testing.T) {
		revealed := dom.Element{Ref: "p2", Tag: "input", Type: "password", Visible: true}
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{maskedID, submitInput},
			afterUser:      []dom.Element{maskedID, revealed, submitInput},
		}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, LeftLoginPage, out.State)
		require.Equal(t, map[string]string{"m": "user01", "p2": "pw"}, page.filled)
	})

	t.Run("form inside an iframe", func(t *testing.T) {
		inFrame := func(e dom.Element) dom.Element { e.Frame = 1; return e }
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements: []dom.Element{
				{Frame: 0, Ref: "banner", Tag: "div", Text: "Welcome", Visible: true},
				inFrame(userInput), inFrame(pwInput), inFrame(submitInput),
			},
		}

		_, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, map[string]string{"u": "user01", "p": "pw"}, page.filled)
	})

	t.Run("selector overrides", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{{Ref: "custom", Tag: "input", Type: "text", Role: "textbox", Visible: true}, pwInput, submitInput},
		}
		opts := fastOptions(t)
		opts.Selectors = map[locator.Field]string{locator.Username: "#custom"}

		_, err := Login(context.Background(), page, cred, opts)
		require.NoError(t, err)
		require.Equal(t, map[string]string{"custom": "user01", "p": "pw"}, page.filled)
	})

	t.Run("measures the matching API response", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput, submitInput},
			response:       &dom.Response{URL: "https://api.example.com/session", Status: 201, Latency: 120 * time.Millisecond},
		}
		opts := fastOptions(t)
		opts.APIPattern = regexp.MustCompile(`/session$`)

		out, err := Login(context.Background(), page, cred, opts)
		require.NoError(t, err)
		require.Equal(t, &dom.Response{URL: "https://api.example.com/session", Status: 201, Latency: 120 * time.Millisecond}, out.API)
		require.Empty(t, out.APIOmitted)
	})

	t.Run("missing API response is omitted, not fatal", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput, submitInput},
			response:       &dom.Response{URL: "https://app.example.com/metrics", Status: 200},
		}
		opts := fastOptions(t)
		opts.APIPattern = regexp.MustCompile(`/session$`)

		out, err := Login(context.Background(), page, cred, opts)
		require.NoError(t, err)
		require.Equal(t, LeftLoginPage, out.State)
		require.Nil(t, out.API)
		require.Equal(t, APIOmittedNoMatch, out.APIOmitted)
	})

	t.Run("masked login id below a site search box", func(t *testing.T) {
		search := dom.Element{Ref: "q", Tag: "input", Type: "search", Role: "searchbox", Placeholder: "Search site", Visible: true}
		passcode := dom.Element{Ref: "p2", Tag: "input", Type: "password", Label: "Passcode", Visible: true}
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{search, maskedID, passcode, submitInput},
		}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.NoError(t, err)
		require.Equal(t, LeftLoginPage, out.State)
		require.Equal(t, map[string]string{"m": "user01", "p2": "pw"}, page.filled)
	})

	t.Run("rejected login stays on the login page", func(t *testing.T) {
		page := &fakePage{
			url:      "https://app.example.com/login",
			elements: []dom.Element{userInput, pwInput, submitInput},
		}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		require.ErrorIs(t, err, ErrStillOnLoginPage)
		require.EqualError(t, err, "login as user01 (reached Submitted): still on the login page after submitting: https://app.example.com/login after 200ms")
		require.Equal(t, Submitted, out.State)
	})

	t.Run("form never renders", func(t *testing.T) {
		page := &fakePage{url: "https://app.example.com/login"}

		out, err := Login(context.Background(), page, cred, fastOptions(t))
		var notFound *locator.NotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, locator.Username, notFound.Field)
		require.Equal(t, FormRendering, out.State)
	})
}

func TestLoginWaitsOnTheInjectedClock(t *testing.T) {
	cred := credentials.Credential{Username: "user01", Password: "pw"}

	run := func(t *testing.T, page *fakePage, opts Options) (<-chan Outcome, *clocktesting.FakeClock) {
		t.Helper()
		fakeClock := clocktesting.NewFakeClock(time.Date(2099, 8, 8, 13, 57, 36, 0, time.UTC))
		opts.Clock = fakeClock
		done := make(chan Outcome, 1)
		go func() {
			out, err := Login(context.Background(), page, cred, opts)
			assert.NoError(t, err)
			done <- out
		}()
		require.Eventually(t, fakeClock.HasWaiters, 5*time.Second, time.Millisecond)
		return done, fakeClock
	}

	t.Run("post submit delay", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput, submitInput},
		}
		opts := fastOptions(t)
		opts.PostSubmitDelay = time.Hour

		done, fakeClock := run(t, page, opts)
		require.Never(t, func() bool { return len(done) > 0 }, 50*time.Millisecond, time.Millisecond)

		fakeClock.Step(time.Hour)
		out := <-done
		require.Equal(t, LeftLoginPage, out.State)
		require.Equal(t, time.Hour, out.Total)
	})

	t.Run("API grace period", func(t *testing.T) {
		page := &fakePage{
			url:            "https://app.example.com/login",
			afterSubmitURL: "https://app.example.com/home",
			elements:       []dom.Element{userInput, pwInput, submitInput},
		}
		opts := fastOptions(t)
		opts.APIPattern = regexp.MustCompile(`/session$`)
		opts.APIGrace = time.Hour

		done, fakeClock := run(t, page, opts)
		require.Never(t, func() bool { return len(done) > 0 }, 50*time.Millisecond, time.Millisecond)

		fakeClock.Step(time.Hour)
		out := <-done
		require.Equal(t, LeftLoginPage, out.State)
		require.Nil(t, out.API)
		require.Equal(t, APIOmittedNoMatch, out.APIOmitted)
	})
}

func TestPathPattern(t *testing.T) {
	re := PathPattern("/login")
	for _, u := range []string{"https://x/login", "https://x/login/", "https://x/login?next=/", "https://x/login#top", "https://x/app/login"} {
		require.True(t, re.MatchString(u), u)
	}
	for _, u := range []string{"https://x/", "https://x/loginhelp", "https://x/logout"} {
		require.False(t, re.MatchString(u), u)
	}
}

func TestStateString(t *testing.T) {
	require.Equal(t, "FormFilled", FormFilled.String())
	require.Equal(t, "Unknown", State(42).String())
	require.False(t, Submitted.Succeeded())
}
