// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package netcapture records the fetch and XHR traffic of one page, with secrets removed,
// and writes it next to the other test artifacts.
package netcapture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/mdtable"
	"go.mystapp.dev/internal/plog"
)

// Reasons a Body carries no value.
const (
	OmittedDisabled  = "body capture disabled"
	OmittedNotText   = "content type is not text or JSON"
	OmittedNoFinish  = "response did not finish before capture stopped"
	OmittedReadError = "reading the body failed"
)

// Options configures a Recorder. Filter, when set, keeps only requests whose URL matches.
type Options struct {
	Bodies    bool
	Filter    *regexp.Regexp
	BodyLimit int
	Clock     clock.PassiveClock
	Log       plog.Logger
}

// Body is either a captured value or the reason it was omitted.
type Body struct {
	Value   any    `json:"value,omitempty"`
	Omitted string `json:"omitted,omitempty"`
}

// Entry is one captured request and, when it arrived, its response.
type Entry struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	RequestHeaders  map[string]string `json:"requestHeaders"`
	RequestBody     *Body             `json:"requestBody,omitempty"`
	Status          int               `json:"status,omitempty"`
	MIMEType        string            `json:"mimeType,omitempty"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	ResponseBody    *Body             `json:"responseBody,omitempty"`
	Failure         string            `json:"failure,omitempty"`
	Started         time.Time         `json:"started"`
	DurationMS      *int64            `json:"durationMs,omitempty"`
}

// Capture is the persisted form of a recording.
type Capture struct {
	Session string  `json:"session"`
	Entries []Entry `json:"entries"`
}

// Request is the browser independent view of an outgoing request.
type Request struct {
	ID      string
	Type    string
	Method  string
	URL     string
	Headers map[string]string
	// Body is nil when the request carries none.
	Body []byte
}

// Response is the browser independent view of a response.
type Response struct {
	ID       string
	Status   int
	MIMEType string
	Headers  map[string]string
}

// Recorder accumulates entries. It is safe for concurrent use.
type Recorder struct {
	opts    Options
	session string

	mu      sync.Mutex
	order   []string
	entries map[string]*Entry
	stopped bool
	detach  func()
	pending sync.WaitGroup
	files   []string
	err     error
}

// NewRecorder returns a recorder that is not attached to any page. Events are fed to it with
// OnRequest, OnResponse, OnFinished and OnFailed.
func NewRecorder(opts Options) *Recorder {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Log == nil {
		opts.Log = plog.New()
	}
	return &Recorder{
		opts:    opts,
		session: uuid.NewString(),
		entries: map[string]*Entry{},
	}
}

// Session identifies this recording in the written files.
func (r *Recorder) Session() string { return r.session }

// Wants reports whether a request of this resource type and URL is recorded.
func (r *Recorder) Wants(resourceType, url string) bool {
	switch resourceType {
	case "Fetch", "XHR", "fetch", "xhr":
	default:
		return false
	}
	return r.opts.Filter == nil || r.opts.Filter.MatchString(url)
}

func (r *Recorder) OnRequest(req Request) {
	if !r.Wants(req.Type, req.URL) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if _, ok := r.entries[req.ID]; !ok {
		r.order = append(r.order, req.ID)
	}
	// A redirect reuses the ID, the latest hop wins.
	r.entries[req.ID] = &Entry{
		ID:             req.ID,
		Type:           req.Type,
		Method:         req.Method,
		URL:            req.URL,
		RequestHeaders: Headers(req.Headers),
		RequestBody:    r.requestBody(req),
		Started:        r.opts.Clock.Now(),
	}
}

func (r *Recorder) requestBody(req Request) *Body {
	switch {
	case req.Body == nil:
		return nil
	case !r.opts.Bodies:
		return &Body{Omitted: OmittedDisabled}
	}
	var mimeType string
	for k, v := range req.Headers {
		if strings.EqualFold(k, "content-type") {
			mimeType = v
		}
	}
	return r.decode(mimeType, req.Body)
}

// decode redacts JSON and form bodies and clips everything else.
func (r *Recorder) decode(mimeType string, data []byte) *Body {
	if isForm(mimeType) {
		if v, ok := Form(string(data), r.opts.BodyLimit); ok {
			return &Body{Value: v}
		}
		return &Body{Omitted: OmittedNotText}
	}
	if !IsTextual(mimeType) {
		return &Body{Omitted: OmittedNotText}
	}
	if isJSON(mimeType) {
		if v, ok := JSON(string(data), r.opts.BodyLimit); ok {
			return &Body{Value: v}
		}
	}
	return &Body{Value: Clip(string(data), r.opts.BodyLimit)}
}

// OnResponse records response metadata. It reports whether the body should be read once
// loading finishes.
func (r *Recorder) OnResponse(resp Response) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[resp.ID]
	if !ok || r.stopped {
		return false
	}
	e.Status = resp.Status
	e.MIMEType = resp.MIMEType
	e.ResponseHeaders = Headers(resp.Headers)
	switch {
	case !r.opts.Bodies:
		e.ResponseBody = &Body{Omitted: OmittedDisabled}
	case !IsTextual(resp.MIMEType):
		e.ResponseBody = &Body{Omitted: OmittedNotText}
	default:
		e.ResponseBody = &Body{Omitted: OmittedNoFinish}
		return true
	}
	return false
}

// OnFinished stamps the duration and, when a body is wanted, stores what read returns.
// read may block, so the listener calls OnFinished off its event loop.
func (r *Recorder) OnFinished(id string, read func() ([]byte, error)) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || r.stopped {
		r.mu.Unlock()
		return
	}
	e.DurationMS = r.elapsed(e)
	wantBody := e.ResponseBody != nil && e.ResponseBody.Omitted == OmittedNoFinish
	mimeType := e.MIMEType
	r.mu.Unlock()

	if !wantBody || read == nil {
		return
	}
	var body *Body
	if data, err := read(); err != nil {
		r.opts.Log.DebugErr("could not read response body", err, "id", id)
		body = &Body{Omitted: OmittedReadError}
	} else {
		body = r.decode(mimeType, data)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.ResponseBody = body
	}
}

func (r *Recorder) OnFailed(id, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || r.stopped {
		return
	}
	e.Failure = reason
	e.DurationMS = r.elapsed(e)
}

func (r *Recorder) elapsed(e *Entry) *int64 {
	ms := r.opts.Clock.Since(e.Started).Milliseconds()
	return &ms
}

// Track runs fn in the background and makes Stop wait for it. Nothing runs once stopped.
func (r *Recorder) Track(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		fn()
	}()
}

// Entries returns a copy of the entries in request order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Stop detaches from the page, then writes <name>.network.json and <name>.network.md into dir.
// Only the first call does any work; later calls return the same files and error.
func (r *Recorder) Stop(dir, name string) ([]string, error) {
	r.mu.Lock()
	if r.stopped {
		defer r.mu.Unlock()
		return r.files, r.err
	}
	r.stopped = true
	detach := r.detach
	r.mu.Unlock()

	if detach != nil {
		detach()
	}
	r.pending.Wait()

	files, err := r.write(dir, name, r.Entries())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.files, r.err = files, err
	return files, err
}

func (r *Recorder) write(dir, name string, entries []Entry) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}

	data, err := json.MarshalIndent(Capture{Session: r.session, Entries: entries}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode network capture: %w", err)
	}
	jsonPath := filepath.Join(dir, name+".network.json")
	if err := os.WriteFile(jsonPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write network capture: %w", err)
	}

	mdPath := filepath.Join(dir, name+".network.md")
	if err := os.WriteFile(mdPath, []byte(Table(entries)), 0o600); err != nil {
		return nil, fmt.Errorf("write network table: %w", err)
	}

	r.opts.Log.Info("wrote network capture", "entries", len(entries), "path", jsonPath)
	return []string{jsonPath, mdPath}, nil
}

// Table renders the condensed one-line-per-request view.
func Table(entries []Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status, ms := "-", "-"
		if e.Status != 0 {
			status = strconv.Itoa(e.Status)
		}
		if e.Failure != "" {
			status = "failed: " + e.Failure
		}
		if e.DurationMS != nil {
			ms = strconv.FormatInt(*e.DurationMS, 10)
		}
		rows = append(rows, []string{e.Method, mdtable.Escape(e.URL), mdtable.Escape(status), ms})
	}
	return mdtable.Render([]string{"Method", "URL", "Status", "ms"}, rows)
}
