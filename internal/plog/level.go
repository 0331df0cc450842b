// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import "errors"

// LogLevel is an enum that controls verbosity of logs.
// Valid values in order of increasing verbosity are leaving it unset, info, debug, trace and all.
type LogLevel string

const (
	// LevelWarning (i.e. leaving the log level unset) maps to verbosity 0.
	LevelWarning LogLevel = ""
	// LevelInfo maps to verbosity 2.
	LevelInfo LogLevel = "info"
	// LevelDebug maps to verbosity 4.
	LevelDebug LogLevel = "debug"
	// LevelTrace maps to verbosity 6.
	LevelTrace LogLevel = "trace"
	// LevelAll maps to verbosity 108 (conceptually it is verbosity 8).
	LevelAll LogLevel = "all"
)

const (
	vLevelWarning = iota * 2
	vLevelInfo
	vLevelDebug
	vLevelTrace
	vLevelAll
)

var errInvalidLogLevel = errors.New("invalid log level, valid choices are the empty string, info, debug, trace and all")

// verbosityFor returns the logr verbosity for the given level, or -1 when the level is unknown.
func verbosityFor(level LogLevel) int {
	switch level {
	case LevelWarning:
		return vLevelWarning
	case LevelInfo:
		return vLevelInfo
	case LevelDebug:
		return vLevelDebug
	case LevelTrace:
		return vLevelTrace
	case LevelAll:
		return vLevelAll + 100 // make all really mean all
	default:
		return -1
	}
}

func levelForVerbosity(v int) LogLevel {
	switch {
	case v >= vLevelAll:
		return LevelAll
	case v >= vLevelTrace:
		return LevelTrace
	case v >= vLevelDebug:
		return LevelDebug
	case v >= vLevelInfo:
		return LevelInfo
	default:
		return "" // warnings are marked with their own key since verbosity 0 is ambiguous
	}
}
