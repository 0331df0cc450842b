// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package browser adapts a Chrome instance driven over the DevTools protocol to the page
// interfaces used by the login, date and grid helpers.
package browser

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chromedp/cdproto/network"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/plog"
)

// Options configures the browser process.
type Options struct {
	Headless bool
	Proxy    string
	// ExecPath overrides the Chrome binary found on the PATH.
	ExecPath string
	Log      plog.Logger
}

// Browser is one Chrome process. Pages opened from it share nothing with each other.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    plog.Logger
}

// Open starts Chrome. The process ends when Close is called or parent is cancelled.
func Open(parent context.Context, opts Options) (*Browser, error) {
	log := opts.Log
	if log == nil {
		log = plog.New()
	}
	log = log.WithName("browser")

	options := append(
		// Start with the defaults.
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.IgnoreCertErrors,
	)
	if !opts.Headless {
		options = append(options,
			chromedp.Flag("headless", false),
			chromedp.Flag("hide-scrollbars", false),
			chromedp.Flag("mute-audio", false),
		)
	}
	if runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		// When running on linux, assume that we are running inside a container for CI.
		options = append(options, chromedp.NoSandbox)
	}
	if opts.Proxy != "" {
		log.Info("configuring Chrome to use a proxy", "proxy", opts.Proxy)
		options = append(options, chromedp.ProxyServer(opts.Proxy))
	}
	if opts.ExecPath != "" {
		options = append(options, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, options...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug("chrome", "message", fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Warning("chrome", "message", fmt.Sprintf(format, args...))
		}),
	)
	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	// Start the browser subprocess. Do not use a timeout here or else the browser will close after that timeout.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &Browser{ctx: ctx, cancel: cancel, log: log}, nil
}

// Close ends the browser process and every page.
func (b *Browser) Close() {
	b.cancel()
}

// NewPage opens a tab in a fresh browser context, with its own cookies and storage.
func (b *Browser) NewPage() (*Page, error) {
	ctx, cancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())
	p := &Page{
		ctx:    ctx,
		cancel: cancel,
		clock:  clock.RealClock{},
		log:    b.log,
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev := ev.(type) {
		case *cdpruntime.EventConsoleAPICalled:
			args := make([]string, len(ev.Args))
			for i, arg := range ev.Args {
				args[i] = string(arg.Value)
			}
			p.log.Trace("console", "api", ev.Type.String(), "args", args)
		case *cdpruntime.EventExceptionThrown:
			p.log.Debug("page exception", "exception", ev.ExceptionDetails.Error())
		}
	})

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		cancel()
		return nil, fmt.Errorf("open page: %w", err)
	}
	return p, nil
}
