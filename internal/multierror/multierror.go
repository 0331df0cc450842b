// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package multierror collects several errors into one, for example the reasons each fallback attempt failed.
//
//	errs := multierror.New()
//	for _, attempt := range attempts {
//	  errs.Add(attempt())
//	}
//	return errs.ErrOrNil()
package multierror

import (
	"fmt"
	"strings"
)

// MultiError holds a list of errors, which may be empty.
type MultiError []error

// New returns an empty MultiError.
func New() MultiError {
	return make([]error, 0)
}

// Add appends err. Nil errors are ignored so callers can add results unconditionally.
func (m *MultiError) Add(err error) {
	if err == nil {
		return
	}
	*m = append(*m, err)
}

// Len returns the number of errors collected so far.
func (m MultiError) Len() int {
	return len(m)
}

func (m MultiError) Error() string {
	sb := strings.Builder{}
	_, _ = fmt.Fprintf(&sb, "%d error(s):", len(m))
	for _, err := range m {
		_, _ = fmt.Fprintf(&sb, "\n- %s", err.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is and errors.As see every collected error.
func (m MultiError) Unwrap() []error {
	return m
}

// ErrOrNil returns nil when no errors were added, otherwise the MultiError.
func (m MultiError) ErrOrNil() error {
	if len(m) > 0 {
		return m
	}
	return nil
}
