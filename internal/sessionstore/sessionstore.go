// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sessionstore saves the browser state of logged in users so later tests can start
// authenticated.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// defaultFileLockTimeout is how long we will wait trying to acquire the file lock on a state file before timing out.
	defaultFileLockTimeout = 10 * time.Second

	// defaultFileLockRetryInterval is how often we will poll while waiting for the file lock to become available.
	defaultFileLockRetryInterval = 10 * time.Millisecond

	kind    = "SessionState"
	version = "v1"
)

// ErrUnsupportedVersion is returned for state files written by another format version.
var ErrUnsupportedVersion = errors.New("unsupported session state version")

// Cookie mirrors what the browser reports for one cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Origin holds the local storage of one origin.
type Origin struct {
	Origin       string            `json:"origin"`
	LocalStorage map[string]string `json:"localStorage"`
}

// State is everything needed to resume a session.
type State struct {
	Kind     string    `json:"kind"`
	Version  string    `json:"version"`
	Username string    `json:"username"`
	SavedAt  time.Time `json:"savedAt"`
	Cookies  []Cookie  `json:"cookies"`
	Origins  []Origin  `json:"origins"`
}

// Store reads and writes state files under <dir>/.auth.
type Store struct {
	dir         string
	now         func() time.Time
	trylockFunc func(path string) (unlock func() error, err error)
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		now: time.Now,
		trylockFunc: func(path string) (func() error, error) {
			lock := flock.New(path + ".lock")
			ctx, cancel := context.WithTimeout(context.Background(), defaultFileLockTimeout)
			defer cancel()
			if _, err := lock.TryLockContext(ctx, defaultFileLockRetryInterval); err != nil {
				return nil, err
			}
			return lock.Unlock, nil
		},
	}
}

// Path returns the state file of the nth user, counting from one.
func (s *Store) Path(n int) string {
	return filepath.Join(s.dir, ".auth", fmt.Sprintf("user-%02d.json", n))
}

// Save writes the state of the nth user. Concurrent writers of the same file are serialized by a
// lock file and readers only ever see a complete file.
func (s *Store) Save(n int, state State) (err error) {
	path := s.Path(n)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create session state directory: %w", err)
	}

	unlock, err := s.trylockFunc(path)
	if err != nil {
		return fmt.Errorf("could not lock session state file: %w", err)
	}
	defer func() {
		if unlockErr := unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("could not unlock session state file: %w", unlockErr)
		}
	}()

	state.Kind, state.Version = kind, version
	if state.SavedAt.IsZero() {
		state.SavedAt = s.now().UTC()
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode session state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not write session state: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write session state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write session state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not write session state: %w", err)
	}
	return nil
}

// Load reads the state of the nth user. A missing file returns an error wrapping os.ErrNotExist.
func (s *Store) Load(n int) (*State, error) {
	data, err := os.ReadFile(s.Path(n))
	if err != nil {
		return nil, fmt.Errorf("could not read session state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("invalid session state file: %w", err)
	}
	if state.Kind != kind || state.Version != version {
		return nil, fmt.Errorf("%w: kind %q version %q", ErrUnsupportedVersion, state.Kind, state.Version)
	}
	return &state, nil
}
