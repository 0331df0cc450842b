// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fakeapp

import (
	"crypto/sha256"
	_ "embed" // Needed to trigger //go:embed directives below.
	"encoding/base64"
	"html/template"
	"strings"

	"github.com/tdewolff/minify/v2/minify"
)

//nolint:gochecknoglobals // This package uses globals to ensure that all parsing and minifying happens at init.
var (
	//go:embed app.css
	rawCSS      string
	minifiedCSS = panicOnError(minify.CSS(rawCSS))

	//go:embed app.js
	rawJS      string
	minifiedJS = panicOnError(minify.JS(rawJS))

	//go:embed pages.gohtml
	rawHTMLTemplate string

	pages = template.Must(template.New("pages.gohtml").Funcs(template.FuncMap{
		"minifiedCSS": func() template.CSS { return template.CSS(minifiedCSS) }, //nolint:gosec // This is 100% static input, not attacker-controlled.
		"minifiedJS":  func() template.JS { return template.JS(minifiedJS) },    //nolint:gosec // This is 100% static input, not attacker-controlled.
	}).Parse(rawHTMLTemplate))

	// Only the embedded script and style may run, and the page may only talk to its own origin.
	cspValue = strings.Join([]string{
		`default-src 'none'`,
		`script-src '` + cspHash(minifiedJS) + `'`,
		`style-src '` + cspHash(minifiedCSS) + `'`,
		`img-src 'self'`,
		`connect-src 'self'`,
		`frame-src 'self'`,
		`frame-ancestors 'self'`,
	}, "; ")
)

func cspHash(s string) string {
	hashBytes := sha256.Sum256([]byte(s))
	return "sha256-" + base64.StdEncoding.EncodeToString(hashBytes[:])
}

func panicOnError(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}

type pageData struct {
	Title   string
	Form    LoginForm
	Invoice Invoice
	// Stall adds an image that never finishes loading, so the load event never fires.
	Stall bool
}
