// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"os"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals
var (
	// these globals have no locks on purpose - they are set at init and then again after config parsing.
	globalLevel  zap.AtomicLevel
	globalLogger logr.Logger
	globalFlush  func()
)

//nolint:gochecknoinits
func init() {
	// make sure we always have a functional global logger at the "always" verbosity
	globalLevel = zap.NewAtomicLevelAt(0)
	log, flush, err := newLogr("json", zapcore.Lock(os.Stderr), globalLevel, nil)
	if err != nil {
		panic(err) // default logging config must always work
	}
	setGlobalLoggers(log, flush)
}

// Setup returns a func that flushes the global logger, for use with defer in main.
func Setup() func() {
	return func() { globalFlush() }
}

func setGlobalLoggers(log logr.Logger, flush func()) {
	globalLogger = log
	globalFlush = flush
}
