// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config builds the suite's configuration from environment variables and an optional local file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"go.mystapp.dev/internal/constable"
	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/datefill"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/multierror"
	"go.mystapp.dev/internal/plog"
)

// ErrNotConfigured is wrapped by errors about settings a scenario needs but the environment lacks.
const ErrNotConfigured = constable.Error("environment not configured")

const (
	defaultLocalFile   = "mystapp.local.json"
	defaultLoginPath   = "/login"
	defaultConcurrency = 3
	defaultStressUsers = 10
	defaultUserPad     = 2
	defaultUserStart   = 1
	defaultBodyLimit   = 2000
	defaultOutputDir   = "test-results"
	defaultRecordField = "Invoice"
)

// FromEnv loads the configuration of the current process.
func FromEnv() (*Config, error) {
	return Load(os.Getenv, os.ReadFile)
}

// Load builds a Config. Every invalid value is reported at once.
func Load(getenv func(string) string, readFile func(string) ([]byte, error)) (*Config, error) {
	p := parser{getenv: getenv, errs: multierror.New()}

	local, localPath, err := readLocal(p.str("MYSTAPP_LOCAL_CONFIG", defaultLocalFile), readFile)
	if err != nil {
		return nil, err
	}

	c := &Config{
		BaseURL:   strings.TrimRight(firstNonEmpty(getenv("MYSTAPP_BASE_URL"), local.BaseURL), "/"),
		LoginPath: p.str("MYSTAPP_LOGIN_PATH", defaultLoginPath),
		LocalFile: localPath,

		Credentials: credentials.Source{
			User:     firstNonEmpty(getenv("MYSTAPP_USER"), local.Username),
			Password: firstNonEmpty(getenv("MYSTAPP_PASSWORD"), local.Password),
			Reuse:    p.boolean("MYSTAPP_REUSE_USER", false),
			Prefix:   getenv("MYSTAPP_USER_PREFIX"),
			Pad:      p.integer("MYSTAPP_USER_PAD", defaultUserPad, 0),
			Start:    p.integer("MYSTAPP_USER_START", defaultUserStart, 0),
		},
		Selectors: map[locator.Field]string{},

		APILatencyPattern: p.regex("MYSTAPP_API_LATENCY_PATTERN"),
		SLO: SLO{
			Max: p.millis("MYSTAPP_SLO_MAX_MS"),
			P95: p.millis("MYSTAPP_SLO_P95_MS"),
			P99: p.millis("MYSTAPP_SLO_P99_MS"),
		},
		Concurrency: p.integer("MYSTAPP_CONCURRENCY", defaultConcurrency, 1),
		StressUsers: p.integer("MYSTAPP_STRESS_USERS", defaultStressUsers, 1),

		StartDate:   getenv("MYSTAPP_START_DATE"),
		EndDate:     getenv("MYSTAPP_END_DATE"),
		GridPath:    getenv("MYSTAPP_GRID_PATH"),
		RecordField: p.str("MYSTAPP_RECORD_FIELD", defaultRecordField),

		Capture: Capture{
			Enabled:   p.boolean("MYSTAPP_NETWORK_CAPTURE", false),
			Bodies:    p.boolean("MYSTAPP_NETWORK_CAPTURE_BODIES", false),
			Filter:    p.regex("MYSTAPP_NETWORK_CAPTURE_FILTER"),
			BodyLimit: p.integer("MYSTAPP_NETWORK_BODY_LIMIT", defaultBodyLimit, 0),
		},

		Pause:           p.boolean("MYSTAPP_PAUSE", false),
		Screenshots:     p.boolean("MYSTAPP_SCREENSHOTS", true),
		Headless:        p.boolean("MYSTAPP_HEADLESS", true),
		Proxy:           getenv("MYSTAPP_PROXY"),
		PostSubmitDelay: p.millis("MYSTAPP_POST_SUBMIT_DELAY_MS"),
		OutputDir:       p.str("MYSTAPP_OUTPUT_DIR", defaultOutputDir),
		Log:             plog.LogSpec{Level: plog.LogLevel(getenv("MYSTAPP_LOG_LEVEL"))},
	}

	if users := getenv("MYSTAPP_USERS"); users != "" {
		c.Credentials.Users, c.Credentials.UsersFrom = credentials.SplitList(users), "MYSTAPP_USERS"
	} else if len(local.Users) > 0 {
		c.Credentials.Users, c.Credentials.UsersFrom = local.Users, localPath+" users"
	}

	for _, f := range locator.Fields() {
		if css := strings.TrimSpace(getenv(f.OverrideVar())); css != "" {
			c.Selectors[f] = css
		}
	}

	if format, err := datefill.ParseFormat(getenv("MYSTAPP_DATE_FORMAT")); err != nil {
		p.errs.Add(fmt.Errorf("invalid MYSTAPP_DATE_FORMAT: %w", err))
	} else {
		c.DateFormat = format
	}

	if !strings.HasPrefix(c.LoginPath, "/") {
		p.errs.Add(fmt.Errorf("invalid MYSTAPP_LOGIN_PATH %q: must start with /", c.LoginPath))
	}

	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			p.errs.Add(fmt.Errorf("invalid MYSTAPP_BASE_URL %q: must be an absolute URL", c.BaseURL))
		}
	}

	if err := p.errs.ErrOrNil(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// URL resolves a path against the base URL.
func (c *Config) URL(path string) (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("%w: set MYSTAPP_BASE_URL or baseURL in %s", ErrNotConfigured, defaultLocalFile)
	}
	if path == "" {
		return c.BaseURL, nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path, nil
}

// LoginURL is the absolute URL of the login page.
func (c *Config) LoginURL() (string, error) {
	return c.URL(c.LoginPath)
}

func readLocal(path string, readFile func(string) ([]byte, error)) (localFile, string, error) {
	var local localFile
	data, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return local, "", nil
	}
	if err != nil {
		return local, "", fmt.Errorf("read local config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &local); err != nil {
		return local, "", fmt.Errorf("decode local config %s: %w", path, err)
	}
	return local, path, nil
}

type parser struct {
	getenv func(string) string
	errs   multierror.MultiError
}

func (p *parser) str(name, def string) string {
	if v := strings.TrimSpace(p.getenv(name)); v != "" {
		return v
	}
	return def
}

func (p *parser) boolean(name string, def bool) bool {
	v := strings.TrimSpace(p.getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs.Add(fmt.Errorf("invalid %s %q: must be true or false", name, v))
		return def
	}
	return b
}

func (p *parser) integer(name string, def, minimum int) int {
	v := strings.TrimSpace(p.getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < minimum {
		p.errs.Add(fmt.Errorf("invalid %s %q: must be an integer of at least %d", name, v, minimum))
		return def
	}
	return i
}

func (p *parser) millis(name string) time.Duration {
	return time.Duration(p.integer(name, 0, 0)) * time.Millisecond
}

func (p *parser) regex(name string) *regexp.Regexp {
	v := p.getenv(name)
	if v == "" {
		return nil
	}
	re, err := regexp.Compile(v)
	if err != nil {
		p.errs.Add(fmt.Errorf("invalid %s: %w", name, err))
		return nil
	}
	return re
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
