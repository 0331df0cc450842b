// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/datefill"
	"go.mystapp.dev/internal/here"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/plog"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func files(m map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		if data, ok := m[path]; ok {
			return []byte(data), nil
		}
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
}

func TestLoad(t *testing.T) {
	regexpEqual := cmp.Comparer(func(a, b *regexp.Regexp) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.String() == b.String()
	})

	defaults := Config{
		LoginPath:   "/login",
		Selectors:   map[locator.Field]string{},
		Concurrency: 3,
		StressUsers: 10,
		DateFormat:  datefill.MonthFirst,
		RecordField: "Invoice",
		Capture:     Capture{BodyLimit: 2000},
		Screenshots: true,
		Headless:    true,
		OutputDir:   "test-results",
		Credentials: credentials.Source{Pad: 2, Start: 1},
	}

	tests := []struct {
		name    string
		env     map[string]string
		files   map[string]string
		want    func(c *Config)
		wantErr string
	}{
		{
			name: "defaults",
			want: func(*Config) {},
		},
		{
			name: "everything from the environment",
			env: map[string]string{
				"MYSTAPP_BASE_URL":               "https://app.example.com/",
				"MYSTAPP_LOGIN_PATH":             "/auth/login",
				"MYSTAPP_USERS":                  "a, b,c",
				"MYSTAPP_PASSWORD":               "pw",
				"MYSTAPP_REUSE_USER":             "true",
				"MYSTAPP_USER_PREFIX":            "load",
				"MYSTAPP_USER_PAD":               "3",
				"MYSTAPP_USER_START":             "0",
				"MYSTAPP_SEL_USERNAME":           "#uid",
				"MYSTAPP_SEL_NO_RECORDS":         " .empty ",
				"MYSTAPP_API_LATENCY_PATTERN":    `/api/session`,
				"MYSTAPP_SLO_MAX_MS":             "3000",
				"MYSTAPP_SLO_P95_MS":             "2000",
				"MYSTAPP_CONCURRENCY":            "5",
				"MYSTAPP_STRESS_USERS":           "20",
				"MYSTAPP_DATE_FORMAT":            "DD/MM/YYYY",
				"MYSTAPP_START_DATE":             "01/01/2025",
				"MYSTAPP_END_DATE":               "31/01/2025",
				"MYSTAPP_GRID_PATH":              "/invoices",
				"MYSTAPP_RECORD_FIELD":           "Record",
				"MYSTAPP_NETWORK_CAPTURE":        "1",
				"MYSTAPP_NETWORK_CAPTURE_BODIES": "true",
				"MYSTAPP_NETWORK_CAPTURE_FILTER": `/api/`,
				"MYSTAPP_NETWORK_BODY_LIMIT":     "100",
				"MYSTAPP_PAUSE":                  "true",
				"MYSTAPP_SCREENSHOTS":            "false",
				"MYSTAPP_HEADLESS":               "false",
				"MYSTAPP_PROXY":                  "http://proxy:3128",
				"MYSTAPP_POST_SUBMIT_DELAY_MS":   "500",
				"MYSTAPP_OUTPUT_DIR":             "out",
				"MYSTAPP_LOG_LEVEL":              "debug",
			},
			want: func(c *Config) {
				c.BaseURL = "https://app.example.com"
				c.LoginPath = "/auth/login"
				c.Credentials = credentials.Source{
					Users: []string{"a", "b", "c"}, UsersFrom: "MYSTAPP_USERS", Password: "pw", Reuse: true,
					Prefix: "load", Pad: 3, Start: 0,
				}
				c.Selectors = map[locator.Field]string{locator.Username: "#uid", locator.NoRecords: ".empty"}
				c.APILatencyPattern = regexp.MustCompile(`/api/session`)
				c.SLO = SLO{Max: 3 * time.Second, P95: 2 * time.Second}
				c.Concurrency = 5
				c.StressUsers = 20
				c.DateFormat = datefill.DayFirst
				c.StartDate, c.EndDate = "01/01/2025", "31/01/2025"
				c.GridPath = "/invoices"
				c.RecordField = "Record"
				c.Capture = Capture{Enabled: true, Bodies: true, Filter: regexp.MustCompile(`/api/`), BodyLimit: 100}
				c.Pause = true
				c.Screenshots = false
				c.Headless = false
				c.Proxy = "http://proxy:3128"
				c.PostSubmitDelay = 500 * time.Millisecond
				c.OutputDir = "out"
				c.Log = plog.LogSpec{Level: plog.LevelDebug}
			},
		},
		{
			name: "local file fills the gaps",
			env:  map[string]string{"MYSTAPP_PASSWORD": "from-env"},
			files: map[string]string{"mystapp.local.json": here.Doc(`
				{
				  "baseURL": "http://localhost:3000",
				  "username": "dev",
				  "password": "from-file",
				  "users": ["dev1", "dev2"]
				}
			`)},
			want: func(c *Config) {
				c.BaseURL = "http://localhost:3000"
				c.LocalFile = "mystapp.local.json"
				c.Credentials.User = "dev"
				c.Credentials.Password = "from-env"
				c.Credentials.Users = []string{"dev1", "dev2"}
				c.Credentials.UsersFrom = "mystapp.local.json users"
			},
		},
		{
			name:  "local file path is configurable and yaml is accepted",
			env:   map[string]string{"MYSTAPP_LOCAL_CONFIG": "dev.yaml"},
			files: map[string]string{"dev.yaml": "baseURL: http://127.0.0.1:8080\n"},
			want: func(c *Config) {
				c.BaseURL = "http://127.0.0.1:8080"
				c.LocalFile = "dev.yaml"
			},
		},
		{
			name:    "malformed local file",
			files:   map[string]string{"mystapp.local.json": `{"users": "not-a-list"}`},
			wantErr: "decode local config mystapp.local.json: error unmarshaling JSON",
		},
		{
			name: "all invalid values are reported together",
			env: map[string]string{
				"MYSTAPP_BASE_URL":            "app.example.com",
				"MYSTAPP_LOGIN_PATH":          "login",
				"MYSTAPP_CONCURRENCY":         "0",
				"MYSTAPP_HEADLESS":            "maybe",
				"MYSTAPP_API_LATENCY_PATTERN": "(",
				"MYSTAPP_DATE_FORMAT":         "YYYY",
			},
			wantErr: here.Doc(`
				invalid configuration: 6 error(s):
				- invalid MYSTAPP_API_LATENCY_PATTERN: error parsing regexp: missing closing ): ` + "`(`" + `
				- invalid MYSTAPP_CONCURRENCY "0": must be an integer of at least 1
				- invalid MYSTAPP_HEADLESS "maybe": must be true or false
				- invalid MYSTAPP_DATE_FORMAT: unsupported date format "YYYY", must be MM/DD/YYYY or DD/MM/YYYY
				- invalid MYSTAPP_LOGIN_PATH "login": must start with /
				- invalid MYSTAPP_BASE_URL "app.example.com": must be an absolute URL`),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(envFrom(tt.env), files(tt.files))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			want := defaults
			want.Selectors = map[locator.Field]string{}
			tt.want(&want)
			require.Empty(t, cmp.Diff(&want, got, regexpEqual, cmpopts.EquateEmpty()))
		})
	}
}

func TestLoadReadError(t *testing.T) {
	_, err := Load(envFrom(nil), func(string) ([]byte, error) { return nil, errors.New("permission denied") })
	require.EqualError(t, err, "read local config mystapp.local.json: permission denied")
}

func TestURL(t *testing.T) {
	c := &Config{BaseURL: "https://app.example.com", LoginPath: "/login"}

	u, err := c.LoginURL()
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/login", u)

	u, err = c.URL("invoices")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/invoices", u)

	_, err = (&Config{}).URL("/x")
	require.ErrorIs(t, err, ErrNotConfigured)
}
