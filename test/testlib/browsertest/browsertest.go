// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package browsertest provides integration test helpers for our browser-based tests.
package browsertest

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.mystapp.dev/internal/browser"
	"go.mystapp.dev/internal/config"
	"go.mystapp.dev/internal/netcapture"
	"go.mystapp.dev/internal/plog"
	"go.mystapp.dev/test/testlib"
)

const dumpTimeout = 30 * time.Second

// OpenBrowser starts Chrome as a subprocess which is cleaned up at the end of the test. Pages opened
// from it do not share cookies or storage with each other. The test is skipped when Chrome is not
// installed.
func OpenBrowser(t *testing.T, cfg *config.Config) *browser.Browser {
	t.Helper()

	// Make it trivial to run all browser based tests via:
	// go test -v -race -count 1 -timeout 0 ./test/integration -run '/_Browser'
	require.Contains(t, rootTestName(t), "_Browser", "browser based tests must contain the string _Browser in their name")

	if cfg.Proxy != "" {
		t.Logf("configuring Chrome to use proxy %q", cfg.Proxy)
	}
	b, err := browser.Open(context.Background(), browser.Options{
		Headless: cfg.Headless,
		Proxy:    cfg.Proxy,
		ExecPath: os.Getenv("MYSTAPP_CHROME_PATH"),
		Log:      plog.New().WithValues("test", t.Name()),
	})
	testlib.SkipWhenBrowserIsUnavailable(t, err)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

// OpenPage opens an isolated page. When the test fails, the page's URL and HTML (and a screenshot when
// enabled) are saved to the test's artifact directory. With pausing enabled, a headed browser stays
// open after the test until the page is closed or the test deadline is reached.
func OpenPage(t *testing.T, b *browser.Browser, cfg *config.Config) *browser.Page {
	t.Helper()

	page, err := b.NewPage()
	require.NoError(t, err)

	t.Cleanup(func() {
		defer page.Close()
		if t.Failed() {
			dumpPage(t, page, cfg)
		}
		if cfg.Pause && !cfg.Headless {
			pause(t, page)
		}
	})
	return page
}

// CaptureNetwork records the page's fetch and XHR traffic until the test ends, then writes the capture
// into the test's artifact directory.
func CaptureNetwork(t *testing.T, page *browser.Page, cfg *config.Config) *netcapture.Recorder {
	t.Helper()

	rec, err := netcapture.Attach(page.Context(), netcapture.Options{
		Bodies:    cfg.Capture.Bodies,
		Filter:    cfg.Capture.Filter,
		BodyLimit: cfg.Capture.BodyLimit,
		Log:       plog.New().WithValues("test", t.Name()),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		paths, err := rec.Stop(testlib.ArtifactDir(t, cfg), testlib.ArtifactName(t))
		if err != nil {
			t.Errorf("could not write network capture: %v", err)
			return
		}
		testlib.Attach(t, paths...)
	})
	return rec
}

// WaitForURL expects the page to eventually navigate to a URL matching the specified pattern. It waits for this
// to occur and times out, failing the test, if it never does.
func WaitForURL(t *testing.T, page *browser.Page, regex *regexp.Regexp) {
	t.Helper()

	var lastURL string
	testlib.RequireEventuallyf(t,
		func(requireEventually *require.Assertions) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			url, err := page.URL(ctx)
			requireEventually.NoError(err)
			if url != lastURL {
				t.Logf("saw URL %s", url)
				lastURL = url
			}
			requireEventually.Regexp(regex, url)
		},
		30*time.Second,
		100*time.Millisecond,
		"expected to browse to %s, but never got there",
		regex,
	)
}

func dumpPage(t *testing.T, page *browser.Page, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), dumpTimeout)
	defer cancel()

	if url, err := page.URL(ctx); err == nil {
		t.Logf("Browser URL from end of test %q: %s", t.Name(), url)
	}

	dir := testlib.ArtifactDir(t, cfg)
	name := testlib.ArtifactName(t)

	if cfg.Screenshots {
		if buf, err := page.Screenshot(ctx); err != nil {
			t.Logf("could not take screenshot: %v", err)
		} else {
			writeArtifact(t, filepath.Join(dir, name+".failure.jpg"), buf)
		}
	}

	if html, err := page.HTML(ctx); err != nil {
		t.Logf("could not read page html: %v", err)
	} else {
		writeArtifact(t, filepath.Join(dir, name+".failure.html"), []byte(html))
	}
}

func writeArtifact(t *testing.T, path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // test artifacts are meant to be read
		t.Logf("could not write %s: %v", path, err)
		return
	}
	testlib.Attach(t, path)
}

func pause(t *testing.T, page *browser.Page) {
	t.Logf("paused with the browser open, close the tab or interrupt the test to continue")

	var deadline <-chan time.Time
	if d, ok := t.Deadline(); ok {
		timer := time.NewTimer(time.Until(d) - dumpTimeout)
		defer timer.Stop()
		deadline = timer.C
	}
	select {
	case <-page.Context().Done():
	case <-deadline:
	}
}

func rootTestName(t *testing.T) string {
	switch names := strings.SplitN(t.Name(), "/", 3); len(names) {
	case 0:
		panic("impossible")

	case 1:
		return names[0]

	case 2, 3:
		if strings.HasPrefix(names[0], "TestIntegration") {
			return names[1]
		}
		return names[0]

	default:
		panic("impossible")
	}
}
