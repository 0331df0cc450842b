// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"regexp"
	"time"

	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/datefill"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/plog"
)

// Config is built once per process and handed to every component that needs settings.
type Config struct {
	BaseURL   string
	LoginPath string

	Credentials credentials.Source
	Selectors   map[locator.Field]string

	// APILatencyPattern selects the response whose latency is reported with each login. Nil disables it.
	APILatencyPattern *regexp.Regexp
	SLO               SLO
	Concurrency       int
	StressUsers       int

	DateFormat  datefill.Format
	StartDate   string
	EndDate     string
	GridPath    string
	RecordField string

	Capture Capture

	Pause           bool
	Screenshots     bool
	Headless        bool
	Proxy           string
	PostSubmitDelay time.Duration
	OutputDir       string
	Log             plog.LogSpec

	// LocalFile is the local config file that was read, empty when none was found.
	LocalFile string
}

// SLO holds the optional login latency thresholds. Zero means unset.
type SLO struct {
	Max time.Duration
	P95 time.Duration
	P99 time.Duration
}

// Capture configures network recording.
type Capture struct {
	Enabled   bool
	Bodies    bool
	Filter    *regexp.Regexp
	BodyLimit int
}

// localFile is the optional developer file used when the matching variables are unset.
type localFile struct {
	BaseURL  string   `json:"baseURL"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Users    []string `json:"users"`
}
