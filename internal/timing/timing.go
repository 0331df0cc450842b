// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package timing records how long named test actions took.
package timing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/mdtable"
	"go.mystapp.dev/internal/plog"
)

// FileSuffix names every persisted record set.
const FileSuffix = ".timings.json"

// Set maps action names to milliseconds and keeps the order actions were first recorded in.
type Set struct {
	actions []string
	ms      map[string]int64
}

func (s Set) Actions() []string { return append([]string(nil), s.actions...) }

func (s Set) Get(action string) (int64, bool) {
	ms, ok := s.ms[action]
	return ms, ok
}

func (s Set) Len() int { return len(s.actions) }

// MarshalJSON writes a flat object in recording order.
func (s Set) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, action := range s.actions {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(action)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(s.ms[action], 10))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Recorder collects one Set. It is safe for concurrent use.
type Recorder struct {
	clock clock.PassiveClock
	log   plog.Logger
	run   string

	mu  sync.Mutex
	set Set
}

func New(c clock.PassiveClock, log plog.Logger) *Recorder {
	if c == nil {
		c = clock.RealClock{}
	}
	if log == nil {
		log = plog.New()
	}
	return &Recorder{clock: c, log: log, run: uuid.NewString(), set: Set{ms: map[string]int64{}}}
}

// Run identifies this recorder in the rendered table and in logs.
func (r *Recorder) Run() string { return r.run }

// Measure times fn and records the action only when fn succeeds.
func (r *Recorder) Measure(action string, fn func() error) error {
	start := r.clock.Now()
	if err := fn(); err != nil {
		return err
	}
	r.Record(action, r.clock.Since(start))
	return nil
}

// Record stores a duration measured elsewhere. Recording an action again replaces its value.
func (r *Recorder) Record(action string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.set.ms[action]; !ok {
		r.set.actions = append(r.set.actions, action)
	}
	r.set.ms[action] = d.Milliseconds()
	r.log.Debug("recorded timing", "run", r.run, "action", action, "ms", d.Milliseconds())
}

// Set returns a copy of what has been recorded so far.
func (r *Recorder) Set() Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := Set{actions: append([]string(nil), r.set.actions...), ms: make(map[string]int64, len(r.set.ms))}
	for k, v := range r.set.ms {
		out.ms[k] = v
	}
	return out
}

// Write persists <name>.timings.json and <name>.timings.md into dir and returns both paths.
func (r *Recorder) Write(dir, name string) ([]string, error) {
	set := r.Set()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create timings dir: %w", err)
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode timings: %w", err)
	}
	jsonPath := filepath.Join(dir, name+FileSuffix)
	if err := os.WriteFile(jsonPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write timings: %w", err)
	}
	mdPath := filepath.Join(dir, name+".timings.md")
	if err := os.WriteFile(mdPath, []byte(Table(name, r.run, set)), 0o600); err != nil {
		return nil, fmt.Errorf("write timings table: %w", err)
	}
	return []string{jsonPath, mdPath}, nil
}

// Table renders a set as markdown under a heading naming the test and run.
func Table(name, run string, set Set) string {
	rows := make([][]string, 0, set.Len())
	for _, action := range set.actions {
		rows = append(rows, []string{mdtable.Escape(action), strconv.FormatInt(set.ms[action], 10)})
	}
	return fmt.Sprintf("### %s\n\nrun %s\n\n%s", name, run, mdtable.Render([]string{"Action", "ms"}, rows))
}
