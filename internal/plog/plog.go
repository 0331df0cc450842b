// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import "github.com/go-logr/logr"

const errorKey = "error"

// Logger is the logging interface handed to every component. Messages are constant strings;
// variable data goes into the key and value pairs.
type Logger interface {
	// Error logs an unexpected failure.
	Error(msg string, err error, keysAndValues ...any)

	Warning(msg string, keysAndValues ...any)
	// WarningErr issues a Warning message with an error object as part of the message.
	WarningErr(msg string, err error, keysAndValues ...any)

	Info(msg string, keysAndValues ...any)
	// InfoErr logs an expected error, e.g. a best-effort metric that could not be collected.
	InfoErr(msg string, err error, keysAndValues ...any)

	Debug(msg string, keysAndValues ...any)
	DebugErr(msg string, err error, keysAndValues ...any)

	Trace(msg string, keysAndValues ...any)
	TraceErr(msg string, err error, keysAndValues ...any)

	All(msg string, keysAndValues ...any)

	WithValues(keysAndValues ...any) Logger
	WithName(name string) Logger

	// does not include Fatal on purpose because that is not a method you should be using
}

var _ Logger = pLogger{}

type pLogger struct {
	mods []func(logr.Logger) logr.Logger
}

// New returns a Logger backed by the current global logger. Loggers returned by New observe later
// calls to ValidateAndSetLogLevelAndFormatGlobally.
func New() Logger {
	return pLogger{}
}

func (p pLogger) Error(msg string, err error, keysAndValues ...any) {
	p.logr().WithCallDepth(1).Error(err, msg, keysAndValues...)
}

func (p pLogger) warningDepth(msg string, depth int, keysAndValues ...any) {
	if l := p.logr().V(vLevelWarning); l.Enabled() {
		// verbosity 0 has no warning concept, so mark these lines explicitly to make them easy to find
		keysAndValues = append([]any{"warning", true}, keysAndValues...)
		l.WithCallDepth(depth+1).Info(msg, keysAndValues...)
	}
}

func (p pLogger) Warning(msg string, keysAndValues ...any) {
	p.warningDepth(msg, 1, keysAndValues...)
}

func (p pLogger) WarningErr(msg string, err error, keysAndValues ...any) {
	p.warningDepth(msg, 1, append([]any{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) infoDepth(msg string, depth int, keysAndValues ...any) {
	if l := p.logr().V(vLevelInfo); l.Enabled() {
		l.WithCallDepth(depth+1).Info(msg, keysAndValues...)
	}
}

func (p pLogger) Info(msg string, keysAndValues ...any) {
	p.infoDepth(msg, 1, keysAndValues...)
}

func (p pLogger) InfoErr(msg string, err error, keysAndValues ...any) {
	p.infoDepth(msg, 1, append([]any{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) debugDepth(msg string, depth int, keysAndValues ...any) {
	if l := p.logr().V(vLevelDebug); l.Enabled() {
		l.WithCallDepth(depth+1).Info(msg, keysAndValues...)
	}
}

func (p pLogger) Debug(msg string, keysAndValues ...any) {
	p.debugDepth(msg, 1, keysAndValues...)
}

func (p pLogger) DebugErr(msg string, err error, keysAndValues ...any) {
	p.debugDepth(msg, 1, append([]any{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) traceDepth(msg string, depth int, keysAndValues ...any) {
	if l := p.logr().V(vLevelTrace); l.Enabled() {
		l.WithCallDepth(depth+1).Info(msg, keysAndValues...)
	}
}

func (p pLogger) Trace(msg string, keysAndValues ...any) {
	p.traceDepth(msg, 1, keysAndValues...)
}

func (p pLogger) TraceErr(msg string, err error, keysAndValues ...any) {
	p.traceDepth(msg, 1, append([]any{errorKey, err}, keysAndValues...)...)
}

func (p pLogger) All(msg string, keysAndValues ...any) {
	if l := p.logr().V(vLevelAll); l.Enabled() {
		l.WithCallDepth(1).Info(msg, keysAndValues...)
	}
}

func (p pLogger) WithValues(keysAndValues ...any) Logger {
	if len(keysAndValues) == 0 {
		return p
	}
	return p.withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithValues(keysAndValues...)
	})
}

func (p pLogger) WithName(name string) Logger {
	return p.withLogrMod(func(l logr.Logger) logr.Logger {
		return l.WithName(name)
	})
}

func (p pLogger) withLogrMod(mod func(logr.Logger) logr.Logger) pLogger {
	mods := make([]func(logr.Logger) logr.Logger, 0, len(p.mods)+1)
	mods = append(mods, p.mods...)
	mods = append(mods, mod)
	return pLogger{mods: mods}
}

func (p pLogger) logr() logr.Logger {
	l := globalLogger
	for _, mod := range p.mods {
		l = mod(l)
	}
	return l
}
