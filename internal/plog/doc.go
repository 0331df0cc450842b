// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package plog implements a thin layer over zap to help enforce the suite's logging convention.
// Logs are always structured as a constant message with key and value pairs of related metadata.
//
// The logging levels in order of increasing verbosity are:
// error, warning, info, debug, trace and all.
//
// error and warning logs are always emitted and should be used sparingly, ideally for things a person
// running the suite needs to act on (an unconfigured environment, a scenario that was skipped).
//
// info is for scenario progress: which user is logging in, which phase a stress run is in.
// debug is for locator decisions and polling detail that help explain a failing scenario.
// Credentials must never be logged at any level; usernames are fine, passwords and tokens are not.
//
// trace is for timing detail of individual browser actions.
//
// all is reserved for raw browser protocol traffic and is only useful when debugging the browser adapter itself.
package plog
