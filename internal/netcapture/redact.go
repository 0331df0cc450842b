// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package netcapture

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	// Redacted replaces the value of every sensitive JSON key.
	Redacted = "[redacted]"

	maxDepth    = 6
	maxElements = 50
)

//nolint:gochecknoglobals
var (
	droppedHeaders = sets.New("authorization", "cookie", "set-cookie", "proxy-authorization", "api-key")
	sensitiveKey   = regexp.MustCompile(`(?i)password|token|secret|key|authorization|cookie`)
)

// Headers returns a copy of headers without any of the sensitive ones, whatever their case.
func Headers(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if droppedHeaders.Has(strings.ToLower(k)) {
			continue
		}
		out[k] = v
	}
	return out
}

// JSON parses body and redacts it. ok is false when body is not JSON.
func JSON(body string, limit int) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, false
	}
	return redact(v, 0, limit), true
}

func redact(v any, depth, limit int) any {
	if depth >= maxDepth {
		switch v.(type) {
		case map[string]any, []any:
			return fmt.Sprintf("[truncated at depth %d]", maxDepth)
		}
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if sensitiveKey.MatchString(k) {
				out[k] = Redacted
				continue
			}
			out[k] = redact(child, depth+1, limit)
		}
		return out
	case []any:
		n := min(len(t), maxElements)
		out := make([]any, 0, n+1)
		for _, child := range t[:n] {
			out = append(out, redact(child, depth+1, limit))
		}
		if len(t) > n {
			out = append(out, fmt.Sprintf("[%d more item(s)]", len(t)-n))
		}
		return out
	case string:
		return Clip(t, limit)
	default:
		return v
	}
}

// Form parses a URL encoded body and redacts it like JSON keys. ok is false when body does not parse.
func Form(body string, limit int) (string, bool) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return "", false
	}
	for k := range values {
		if sensitiveKey.MatchString(k) {
			values[k] = []string{Redacted}
		}
	}
	return Clip(values.Encode(), limit), true
}

// Clip shortens s to at most limit characters. A limit below one disables clipping.
func Clip(s string, limit int) string {
	if limit < 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + fmt.Sprintf("...[%d more char(s)]", len(r)-limit)
}

// IsTextual reports whether a response with this MIME type may have its body captured.
func IsTextual(mimeType string) bool {
	m := baseType(mimeType)
	switch {
	case strings.HasPrefix(m, "text/"),
		m == "application/json",
		strings.HasSuffix(m, "+json"),
		m == "application/javascript",
		m == "application/xml",
		strings.HasSuffix(m, "+xml"):
		return true
	}
	return false
}

func isJSON(mimeType string) bool {
	m := baseType(mimeType)
	return m == "application/json" || strings.HasSuffix(m, "+json")
}

func isForm(mimeType string) bool {
	return baseType(mimeType) == "application/x-www-form-urlencoded"
}

func baseType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
