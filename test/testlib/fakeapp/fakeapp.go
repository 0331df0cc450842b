// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fakeapp serves a small invoicing application that behaves like the deployed one where it
// matters to the suite: a login form that may live in an iframe or use masked fields, a readonly
// date filter, and a grid whose rows arrive some time after the filter is applied.
package fakeapp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/securecookie"

	"go.mystapp.dev/internal/plog"
)

// LoginForm selects the shape of the login page.
type LoginForm string

const (
	// PlainLogin is a username and a password input on the login page itself.
	PlainLogin LoginForm = "plain"
	// FrameLogin is PlainLogin inside a same-origin iframe.
	FrameLogin LoginForm = "iframe"
	// MaskedLogin uses two password inputs and no text input at all.
	MaskedLogin LoginForm = "masked"
	// MaskedSearchLogin is MaskedLogin below a site search box.
	MaskedSearchLogin LoginForm = "masked-search"
)

// SessionCookie is the name of the cookie set by a successful login.
const SessionCookie = "mystapp_session"

// Options configure the app. Zero values take the defaults.
type Options struct {
	// Password is accepted for every non-empty username.
	Password string
	Form     LoginForm
	// LoginLatency delays every response of the login API.
	LoginLatency time.Duration
	// RowsDelay delays every response of the invoice API.
	RowsDelay time.Duration
	Invoices  []Invoice
	// StallAsset puts an image on the login page whose response never arrives while the test runs.
	StallAsset bool
}

// Invoice is one grid row.
type Invoice struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Date     string `json:"date"`
	Amount   string `json:"amount"`
}

// DefaultInvoices are dated in January and February 2025.
func DefaultInvoices() []Invoice {
	return []Invoice{
		{ID: "INV-1001", Customer: "Acme", Date: "2025-01-03", Amount: "120.00"},
		{ID: "INV-1002", Customer: "Globex", Date: "2025-01-15", Amount: "89.50"},
		{ID: "INV-1003", Customer: "Initech", Date: "2025-01-28", Amount: "240.00"},
		{ID: "INV-1004", Customer: "Umbrella", Date: "2025-02-10", Amount: "15.25"},
	}
}

// App is a running fake application.
type App struct {
	URL string

	opts    Options
	cookies *securecookie.SecureCookie
	log     plog.Logger

	mu     sync.Mutex
	logins map[string]int

	stop chan struct{}
}

// Start serves the app until the test ends.
func Start(t *testing.T, opts Options) *App {
	t.Helper()
	if opts.Password == "" {
		opts.Password = "correct horse battery staple"
	}
	if opts.Form == "" {
		opts.Form = PlainLogin
	}
	if opts.Invoices == nil {
		opts.Invoices = DefaultInvoices()
	}

	a := &App{
		opts:    opts,
		cookies: securecookie.New(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32)),
		log:     plog.New().WithName("fakeapp"),
		logins:  map[string]int{},
		stop:    make(chan struct{}),
	}
	server := httptest.NewServer(a.routes())
	t.Cleanup(server.Close)
	// Runs before server.Close, which waits for stalled requests.
	t.Cleanup(func() { close(a.stop) })
	a.URL = server.URL
	return a
}

// Password is the password every user logs in with.
func (a *App) Password() string {
	return a.opts.Password
}

// Logins reports how many successful logins the user made.
func (a *App) Logins(username string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins[username]
}

// TotalLogins reports how many successful logins were made by anyone.
func (a *App) TotalLogins() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, n := range a.logins {
		total += n
	}
	return total
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", a.getLogin)
	mux.HandleFunc("GET /login/frame", a.getLoginFrame)
	mux.HandleFunc("GET /assets/stall.png", a.getStalledAsset)
	mux.HandleFunc("POST /api/auth/login", a.postLogin)
	mux.HandleFunc("GET /app/invoices", a.authenticated(a.getInvoices))
	mux.HandleFunc("GET /app/invoices/{id}", a.authenticated(a.getInvoice))
	mux.HandleFunc("GET /api/invoices", a.authenticated(a.listInvoices))
	return a.logRequests(mux)
}

func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		a.log.Debug("served request",
			"method", r.Method,
			"path", r.URL.Path,
			"code", m.Code,
			"bytes", m.Written,
			"took", m.Duration,
		)
	})
}

func (a *App) user(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	var username string
	if err := a.cookies.Decode(SessionCookie, c.Value, &username); err != nil {
		a.log.DebugErr("rejected session cookie", err)
		return "", false
	}
	return username, true
}

func (a *App) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.user(r); !ok {
			if r.URL.Path == "/api/invoices" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
				return
			}
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (a *App) getLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.user(r); ok {
		http.Redirect(w, r, "/app/invoices", http.StatusFound)
		return
	}
	a.render(w, "login", pageData{Title: "Sign in", Form: a.opts.Form, Stall: a.opts.StallAsset})
}

func (a *App) getStalledAsset(_ http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-a.stop:
	}
}

func (a *App) getLoginFrame(w http.ResponseWriter, _ *http.Request) {
	a.render(w, "frame", pageData{Title: "Sign in", Form: PlainLogin})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *App) postLogin(w http.ResponseWriter, r *http.Request) {
	if !sleep(r, a.opts.LoginLatency) {
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}
	if req.Username == "" || req.Password != a.opts.Password {
		a.log.Info("rejected login", "username", req.Username)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	value, err := a.cookies.Encode(SessionCookie, req.Username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	a.mu.Lock()
	a.logins[req.Username]++
	a.mu.Unlock()
	a.log.Info("accepted login", "username", req.Username)

	writeJSON(w, http.StatusOK, map[string]any{
		"token": "tok-" + req.Username,
		"user": map[string]string{
			"username": req.Username,
			"password": req.Password,
		},
	})
}

func (a *App) getInvoices(w http.ResponseWriter, _ *http.Request) {
	a.render(w, "invoices", pageData{Title: "Invoices"})
}

func (a *App) getInvoice(w http.ResponseWriter, r *http.Request) {
	for _, inv := range a.opts.Invoices {
		if inv.ID == r.PathValue("id") {
			a.render(w, "invoice", pageData{Title: inv.ID, Invoice: inv})
			return
		}
	}
	http.NotFound(w, r)
}

func (a *App) listInvoices(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start: " + err.Error()})
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end: " + err.Error()})
		return
	}
	if !sleep(r, a.opts.RowsDelay) {
		return
	}

	rows := make([]Invoice, 0, len(a.opts.Invoices))
	for _, inv := range a.opts.Invoices {
		date, _ := time.Parse(time.DateOnly, inv.Date)
		if !date.Before(start) && !date.After(end) {
			rows = append(rows, inv)
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *App) render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", cspValue)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		a.log.Error("could not render page", err, "page", name)
	}
}

// parseDate accepts what the date filter inputs can hold: ISO dates from native date inputs and
// MM/DD/YYYY from text inputs.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse("01/02/2006", s)
}

// sleep waits for d and reports whether the client is still there.
func sleep(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
