// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fakeapp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func login(t *testing.T, c *http.Client, app *App, username, password string) *http.Response {
	t.Helper()
	resp, err := c.Post(app.URL+"/api/auth/login", "application/json", //nolint:noctx
		strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestLoginPages(t *testing.T) {
	tests := []struct {
		form     LoginForm
		want     []string
		wantNone []string
	}{
		{
			form:     PlainLogin,
			want:     []string{`<label for="userid">User ID</label>`, `type="password"`, `<button type="submit">Sign in</button>`},
			wantNone: []string{"<iframe"},
		},
		{
			form:     FrameLogin,
			want:     []string{`<iframe src="/login/frame"`},
			wantNone: []string{"<input"},
		},
		{
			form:     MaskedLogin,
			want:     []string{`<input id="member" name="member" type="password"`, `<input id="passcode" name="passcode" type="password"`},
			wantNone: []string{`type="text"`, `type="search"`},
		},
		{
			form: MaskedSearchLogin,
			want: []string{
				`<input id="site-search" name="q" type="search" placeholder="Search site"`,
				`<input id="member" name="member" type="password"`,
				`<input id="passcode" name="passcode" type="password"`,
			},
			wantNone: []string{`type="text"`, "<iframe"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.form), func(t *testing.T) {
			app := Start(t, Options{Form: tt.form})

			resp, body := get(t, newClient(t), app.URL+"/login")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
			require.Contains(t, resp.Header.Get("Content-Security-Policy"), "script-src '"+cspHash(minifiedJS)+"'")
			for _, s := range tt.want {
				require.Contains(t, body, s)
			}
			for _, s := range tt.wantNone {
				require.NotContains(t, body, s)
			}
		})
	}

	t.Run("frame content", func(t *testing.T) {
		app := Start(t, Options{Form: FrameLogin})
		_, body := get(t, newClient(t), app.URL+"/login/frame")
		require.Contains(t, body, `<label for="userid">User ID</label>`)
		require.Contains(t, body, "<script>"+minifiedJS+"</script>")
		require.Contains(t, body, "<style>"+minifiedCSS+"</style>")
	})
}

func TestStalledAsset(t *testing.T) {
	app := Start(t, Options{StallAsset: true})
	c := newClient(t)

	_, body := get(t, c, app.URL+"/login")
	require.Contains(t, body, `<img src="/assets/stall.png"`)

	c.Timeout = 200 * time.Millisecond
	_, err := c.Get(app.URL + "/assets/stall.png") //nolint:bodyclose,noctx // there is no response to close
	require.Error(t, err)
	require.True(t, os.IsTimeout(err), "expected a client timeout, got %v", err)

	_, body = get(t, newClient(t), Start(t, Options{}).URL+"/login")
	require.NotContains(t, body, "stall.png")
}

func TestLoginAPI(t *testing.T) {
	app := Start(t, Options{Password: "pw"})
	c := newClient(t)

	resp := login(t, c, app, "user01", "nope")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, resp.Cookies())
	require.Zero(t, app.TotalLogins())

	resp, _ = get(t, c, app.URL+"/app/invoices")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?next=%2Fapp%2Finvoices", resp.Header.Get("Location"))

	resp = login(t, c, app, "user01", "pw")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "tok-user01", body.Token)
	require.Equal(t, "user01", body.User.Username)
	require.Equal(t, 1, app.Logins("user01"))
	require.Equal(t, 1, app.TotalLogins())

	resp, page := get(t, c, app.URL+"/app/invoices")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, page, `<p id="empty" role="status">No records found</p>`)
	require.Contains(t, page, `<input id="start" name="start" type="text" placeholder="MM/DD/YYYY" readonly>`)

	resp, _ = get(t, c, app.URL+"/login")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/app/invoices", resp.Header.Get("Location"))
}

func TestInvoiceAPI(t *testing.T) {
	app := Start(t, Options{})
	c := newClient(t)

	resp, _ := get(t, c, app.URL+"/api/invoices?start=2025-01-01&end=2025-01-31")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.Equal(t, http.StatusOK, login(t, c, app, "user01", app.Password()).StatusCode)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []string
	}{
		{name: "iso range", query: "start=2025-01-01&end=2025-01-31", wantStatus: http.StatusOK, wantIDs: []string{"INV-1001", "INV-1002", "INV-1003"}},
		{name: "us start", query: "start=01/15/2025&end=2025-02-28", wantStatus: http.StatusOK, wantIDs: []string{"INV-1002", "INV-1003", "INV-1004"}},
		{name: "inclusive", query: "start=2025-01-15&end=2025-01-15", wantStatus: http.StatusOK, wantIDs: []string{"INV-1002"}},
		{name: "empty", query: "start=2024-01-01&end=2024-12-31", wantStatus: http.StatusOK, wantIDs: []string{}},
		{name: "bad date", query: "start=tomorrow&end=2025-01-31", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, c, app.URL+"/api/invoices?"+tt.query)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantIDs == nil {
				return
			}
			var rows []Invoice
			require.NoError(t, json.Unmarshal([]byte(body), &rows))
			ids := make([]string, 0, len(rows))
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
		})
	}

	resp, page := get(t, c, app.URL+"/app/invoices/INV-1003")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, page, "<h1>Invoice INV-1003</h1>")

	resp, _ = get(t, c, app.URL+"/app/invoices/INV-9999")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
