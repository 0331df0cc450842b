// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package stress runs many logins concurrently and summarizes their latency.
package stress

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/login"
	"go.mystapp.dev/internal/multierror"
)

// LoginFunc performs one login. It is responsible for giving the attempt its own browser context.
type LoginFunc func(ctx context.Context, index int, cred credentials.Credential) (login.Outcome, error)

// Attempt is the result of one login.
type Attempt struct {
	Index      int
	Credential credentials.Credential
	Outcome    login.Outcome
	Err        error
}

// Run logs in once per credential using at most concurrency simultaneous logins. Workers claim
// indices from a shared cursor, so every index is attempted exactly once and Run always returns
// len(creds) attempts in index order. Failed attempts are returned alongside an error listing them.
func Run(ctx context.Context, creds []credentials.Credential, concurrency int, fn LoginFunc) ([]Attempt, error) {
	n := len(creds)
	if concurrency < 1 {
		return nil, fmt.Errorf("invalid concurrency %d, must be at least 1", concurrency)
	}
	workers := min(concurrency, n)

	attempts := make([]Attempt, n)
	var cursor atomic.Int64

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for {
				i := int(cursor.Add(1) - 1)
				if i >= n {
					return nil
				}
				a := Attempt{Index: i, Credential: creds[i]}
				if err := ctx.Err(); err != nil {
					a.Err = err
				} else {
					a.Outcome, a.Err = fn(ctx, i, creds[i])
				}
				attempts[i] = a // each slot is written by exactly one worker
			}
		})
	}
	_ = eg.Wait() // workers never fail, errors are recorded per attempt

	errs := multierror.New()
	for _, a := range attempts {
		if a.Err != nil {
			errs.Add(fmt.Errorf("attempt %d (%s): %w", a.Index, a.Credential, a.Err))
		}
	}
	return attempts, errs.ErrOrNil()
}
