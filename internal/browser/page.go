// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/datefill"
	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/grid"
	"go.mystapp.dev/internal/login"
	"go.mystapp.dev/internal/plog"
)

var (
	_ login.Page    = (*Page)(nil)
	_ datefill.Page = (*Page)(nil)
	_ grid.Page     = (*Page)(nil)
)

// Page is one tab. Elements it returns stay usable until the page navigates away from them.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	clock  clock.PassiveClock
	log    plog.Logger

	mu   sync.Mutex
	tabs []context.CancelFunc
}

// Context is the chromedp context of the tab, for attaching listeners such as a network capture.
func (p *Page) Context() context.Context { return p.ctx }

// Close closes the tab, any tab it opened, and its browser context.
func (p *Page) Close() {
	p.mu.Lock()
	for _, cancel := range p.tabs {
		cancel()
	}
	p.tabs = nil
	p.mu.Unlock()
	p.cancel()
}

// run executes actions on the tab for as long as ctx allows.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *Page) eval(ctx context.Context, out any, method string, args ...any) error {
	expr, err := script(method, args...)
	if err != nil {
		return err
	}
	if out == nil {
		var ignored bool
		out = &ignored
	}
	if err := p.run(ctx, chromedp.Evaluate(expr, out)); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// Navigate returns once the navigation has committed. It does not wait for the load event, so
// slow subresources do not hold it up.
func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errorText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("navigation to %s failed: %s", url, errorText)
		}
		return nil
	}))
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

// Query describes every element matching css in the page and its same-origin frames.
func (p *Page) Query(ctx context.Context, css string) ([]dom.Element, error) {
	var out []dom.Element
	if err := p.eval(ctx, &out, "query", css); err != nil {
		return nil, err
	}
	return out, nil
}

// Fill replaces the value of a text field the way typing over a selection would. Inputs whose
// value cannot be typed, such as native date pickers, are assigned instead.
func (p *Page) Fill(ctx context.Context, el dom.Element, value string) error {
	var assign bool
	if err := p.eval(ctx, &assign, "prepareFill", el.Ref); err != nil {
		return err
	}
	if assign {
		return p.eval(ctx, nil, "assign", el.Ref, value)
	}
	if value == "" {
		return p.eval(ctx, nil, "clear", el.Ref)
	}
	return p.run(ctx, input.InsertText(value))
}

// Click clicks the center of el with the mouse. It fails with dom.ErrIntercepted when something
// else covers that point, unless force is set, in which case the element is clicked directly.
func (p *Page) Click(ctx context.Context, el dom.Element, force bool) error {
	if force {
		return p.eval(ctx, nil, "forceClick", el.Ref)
	}
	var pt struct {
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		Intercepted bool    `json:"intercepted"`
		Hit         string  `json:"hit"`
	}
	if err := p.eval(ctx, &pt, "point", el.Ref); err != nil {
		return err
	}
	if pt.Intercepted {
		return fmt.Errorf("%w: %s", dom.ErrIntercepted, pt.Hit)
	}
	return p.run(ctx, chromedp.MouseClickXY(pt.X, pt.Y))
}

func (p *Page) Focus(ctx context.Context, el dom.Element) error {
	return p.eval(ctx, nil, "focus", el.Ref)
}

// Press sends one key or combination, such as "Enter" or "Control+A", to the focused element.
func (p *Page) Press(ctx context.Context, key string) error {
	c, err := parseChord(key)
	if err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.KeyEvent(c.key, chromedp.KeyModifiers(c.modifiers...))); err != nil {
		return err
	}
	if c.selectsAll() {
		return p.eval(ctx, nil, "selectActive")
	}
	return nil
}

// Type sends text to the focused element one key at a time.
func (p *Page) Type(ctx context.Context, text string) error {
	return p.run(ctx, chromedp.KeyEvent(text))
}

func (p *Page) Value(ctx context.Context, el dom.Element) (string, error) {
	var v string
	err := p.eval(ctx, &v, "value", el.Ref)
	return v, err
}

func (p *Page) RemoveAttribute(ctx context.Context, el dom.Element, name string) error {
	return p.eval(ctx, nil, "removeAttribute", el.Ref, name)
}

func (p *Page) Dispatch(ctx context.Context, el dom.Element, events ...string) error {
	return p.eval(ctx, nil, "dispatch", el.Ref, events)
}

// AssignValue sets the value property directly and reports it with input and change events.
func (p *Page) AssignValue(ctx context.Context, el dom.Element, value string) error {
	return p.eval(ctx, nil, "assign", el.Ref, value)
}

func (p *Page) Table(ctx context.Context, g dom.Element) (grid.Table, error) {
	var t grid.Table
	err := p.eval(ctx, &t, "table", g.Ref)
	return t, err
}

// ExpectResponse delivers the first response to a request whose URL matches pattern. Latency is
// measured from when the request was sent.
func (p *Page) ExpectResponse(ctx context.Context, pattern *regexp.Regexp) <-chan dom.Response {
	out := make(chan dom.Response, 1)
	listenCtx, cancel := context.WithCancel(p.ctx)

	var (
		mu      sync.Mutex
		done    bool
		started = map[network.RequestID]time.Time{}
	)
	finish := func(resp *dom.Response) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		done = true
		if resp != nil {
			out <- *resp
		}
		close(out)
		cancel()
	}

	chromedp.ListenTarget(listenCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			if pattern.MatchString(e.Request.URL) {
				mu.Lock()
				started[e.RequestID] = p.clock.Now()
				mu.Unlock()
			}
		case *network.EventResponseReceived:
			mu.Lock()
			start, ok := started[e.RequestID]
			mu.Unlock()
			if ok {
				finish(&dom.Response{URL: e.Response.URL, Status: int(e.Response.Status), Latency: p.clock.Since(start)})
			}
		}
	})
	go func() {
		select {
		case <-ctx.Done():
		case <-listenCtx.Done():
		}
		finish(nil)
	}()
	return out
}

// ExpectNewTab delivers the URL of the next tab this page opens, once it has one.
func (p *Page) ExpectNewTab(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	waitCtx, cancelWait := context.WithCancel(p.ctx)
	opener := chromedp.FromContext(p.ctx).Target.TargetID
	ids := chromedp.WaitNewTarget(waitCtx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID == opener
	})

	go func() {
		defer close(out)
		defer cancelWait()

		var id target.ID
		select {
		case <-ctx.Done():
			return
		case got, ok := <-ids:
			if !ok {
				return
			}
			id = got
		}

		tabCtx, cancelTab := chromedp.NewContext(p.ctx, chromedp.WithTargetID(id))
		p.mu.Lock()
		p.tabs = append(p.tabs, cancelTab)
		p.mu.Unlock()

		var url string
		err := wait.PollUntilContextCancel(ctx, 100*time.Millisecond, true, func(ctx context.Context) (bool, error) {
			locCtx, cancel := context.WithTimeout(tabCtx, 5*time.Second)
			defer cancel()
			if err := chromedp.Run(locCtx, chromedp.Location(&url)); err != nil {
				p.log.Debug("new tab has no location yet", "error", err.Error())
				return false, nil
			}
			return url != "" && url != "about:blank", nil
		})
		if err == nil {
			out <- url
		}
	}()
	return out
}

// Screenshot captures the whole page as a JPEG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

// HTML returns the outer HTML of the top level document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}
