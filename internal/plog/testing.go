// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"
)

// TestLogger returns a Logger that writes JSON lines to the returned buffer at every verbosity,
// with a static timestamp and line numbers replaced by <line> so that tests can compare exact output.
func TestLogger(t *testing.T) (Logger, *bytes.Buffer) {
	t.Helper()

	var log bytes.Buffer

	return New().(pLogger).withLogrMod(func(l logr.Logger) logr.Logger {
			return l.WithSink(testZapr(t, &log, "json").GetSink())
		}),
		&log
}

// TestConsoleLogger is like TestLogger but uses the human readable format of the CLI.
func TestConsoleLogger(t *testing.T, w io.Writer) Logger {
	t.Helper()

	return New().(pLogger).withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithSink(testZapr(t, w, "console").GetSink())
	})
}

func testZapr(t *testing.T, w io.Writer, encoding string) logr.Logger {
	t.Helper()

	now, err := time.Parse(time.RFC3339Nano, "2099-08-08T13:57:36.123456789Z")
	require.NoError(t, err)

	zl, _, err := newLogr(encoding,
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(math.MinInt8), // log everything during tests
		func(config *zapcore.EncoderConfig) {
			// make test assertions less painful to write while keeping them as close to the real thing as possible
			config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
				trimmed := caller.TrimmedPath()
				if idx := strings.LastIndexByte(trimmed, ':'); idx != -1 {
					trimmed = trimmed[:idx+1] + "<line>"
				}
				if encoding != "console" {
					trimmed += funcEncoder(caller)
				}
				enc.AppendString(trimmed)
			}
		},
		zap.WithClock(ZapClock(clocktesting.NewFakeClock(now))), // have the clock be static during tests
		zap.AddStacktrace(nopLevelEnabler{}),                     // do not log stacktraces
	)
	require.NoError(t, err)

	return zl
}

var _ zapcore.Clock = &clockAdapter{}

type clockAdapter struct {
	clock clock.Clock
}

func (c *clockAdapter) Now() time.Time {
	return c.clock.Now()
}

func (c *clockAdapter) NewTicker(duration time.Duration) *time.Ticker {
	return &time.Ticker{C: c.clock.Tick(duration)}
}

// ZapClock adapts a k8s clock for use as zap's clock.
func ZapClock(c clock.Clock) zapcore.Clock {
	return &clockAdapter{clock: c}
}

var _ zapcore.LevelEnabler = nopLevelEnabler{}

type nopLevelEnabler struct{}

func (nopLevelEnabler) Enabled(_ zapcore.Level) bool { return false }
