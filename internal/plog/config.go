// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"errors"
	"os"

	"go.uber.org/zap/zapcore"
)

type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatCLI  LogFormat = "cli" // human readable, used by the perf-summary command and local runs
)

var errInvalidLogFormat = errors.New("invalid log format, valid choices are the empty string, 'json' or 'cli'")

type LogSpec struct {
	Level  LogLevel  `json:"level,omitempty"`
	Format LogFormat `json:"format,omitempty"`
}

// ValidateAndSetLogLevelAndFormatGlobally replaces the global logger used by every Logger returned from New.
// It is not safe to call concurrently with logging, so call it once at process or test start.
func ValidateAndSetLogLevelAndFormatGlobally(spec LogSpec) error {
	v := verbosityFor(spec.Level)
	if v < 0 {
		return errInvalidLogLevel
	}

	var encoding string
	switch spec.Format {
	case "", FormatJSON:
		encoding = "json"
	case FormatCLI:
		encoding = "console"
	default:
		return errInvalidLogFormat
	}

	globalLevel.SetLevel(zapcore.Level(-v)) // logr verbosity is inverted when zap handles it

	log, flush, err := newLogr(encoding, zapcore.Lock(os.Stderr), globalLevel, nil)
	if err != nil {
		return err
	}
	setGlobalLoggers(log, flush)
	return nil
}
