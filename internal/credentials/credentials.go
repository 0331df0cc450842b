// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package credentials turns the configured user sources into the ordered list of logins a scenario uses.
package credentials

import (
	"fmt"
	"strings"

	"go.mystapp.dev/internal/constable"
)

// ErrNotConfigured wraps every error caused by missing or insufficient credential configuration.
// Test harnesses convert it into a skip.
const ErrNotConfigured = constable.Error("credentials not configured")

// Credential is one username and password pair.
type Credential struct {
	Username string
	Password string
}

// String deliberately leaves out the password so credentials can be logged and dumped.
func (c Credential) String() string {
	return c.Username
}

// Source holds every credential source. Exactly one is consulted: an explicit user list, then a single
// user, then generated names.
type Source struct {
	// Users is the explicit list. UsersFrom names where it came from for error messages.
	Users     []string
	UsersFrom string

	User     string
	Password string
	// Reuse allows the single user to be shared by several sessions.
	Reuse bool

	Prefix string
	Pad    int
	Start  int
}

// Resolve returns exactly count credentials from the first configured source.
func Resolve(src Source, count int) ([]Credential, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid credential count %d, must be at least 1", count)
	}

	switch {
	case len(src.Users) > 0:
		if err := needPassword(src); err != nil {
			return nil, err
		}
		if len(src.Users) < count {
			return nil, fmt.Errorf("%w: %s lists %d user(s) but %d are needed, add more users or lower the count",
				ErrNotConfigured, src.usersFrom(), len(src.Users), count)
		}
		out := make([]Credential, 0, count)
		for _, u := range src.Users[:count] {
			out = append(out, Credential{Username: u, Password: src.Password})
		}
		return out, nil

	case src.User != "":
		if err := needPassword(src); err != nil {
			return nil, err
		}
		if count != 1 && !src.Reuse {
			return nil, fmt.Errorf("%w: only MYSTAPP_USER is set but %d sessions are needed; "+
				"set MYSTAPP_USERS or MYSTAPP_USER_PREFIX, or set MYSTAPP_REUSE_USER=true to share one user across sessions",
				ErrNotConfigured, count)
		}
		out := make([]Credential, count)
		for i := range out {
			out[i] = Credential{Username: src.User, Password: src.Password}
		}
		return out, nil

	case src.Prefix != "":
		if err := needPassword(src); err != nil {
			return nil, err
		}
		return Generate(src.Prefix, src.Pad, src.Start, count, src.Password), nil

	default:
		return nil, fmt.Errorf("%w: set MYSTAPP_USERS, MYSTAPP_USER or MYSTAPP_USER_PREFIX (plus MYSTAPP_PASSWORD), "+
			"or provide them in the local config file", ErrNotConfigured)
	}
}

// Generate builds count credentials named prefix followed by a zero padded index starting at start.
func Generate(prefix string, pad, start, count int, password string) []Credential {
	out := make([]Credential, count)
	for i := range out {
		out[i] = Credential{
			Username: fmt.Sprintf("%s%0*d", prefix, pad, start+i),
			Password: password,
		}
	}
	return out
}

// SplitList parses a comma separated user list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func needPassword(src Source) error {
	if src.Password == "" {
		return fmt.Errorf("%w: MYSTAPP_PASSWORD is not set", ErrNotConfigured)
	}
	return nil
}

func (s Source) usersFrom() string {
	if s.UsersFrom == "" {
		return "MYSTAPP_USERS"
	}
	return s.UsersFrom
}
