// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package dom holds the browser-independent view of a page that the interaction helpers work against.
// A page adapter produces Elements from a live document; everything that decides which element to use
// only ever sees these snapshots.
package dom

import (
	"strings"
	"time"

	"go.mystapp.dev/internal/constable"
)

// ErrIntercepted means another element would have received a click aimed at the target.
const ErrIntercepted = constable.Error("click would be intercepted by another element")

// MainFrame is the frame index of the top level document. Nested same-origin frames are numbered
// in document order starting at 1.
const MainFrame = 0

// AnyFrame can be passed wherever a frame index is expected to search every frame.
const AnyFrame = -1

// Element is a snapshot of one candidate element.
type Element struct {
	Frame int    `json:"frame"`
	Ref   string `json:"ref"`

	Tag         string            `json:"tag"`
	Type        string            `json:"type,omitempty"`
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	AriaLabel   string            `json:"ariaLabel,omitempty"`
	Label       string            `json:"label,omitempty"`
	Role        string            `json:"role,omitempty"`
	Text        string            `json:"text,omitempty"`
	Data        map[string]string `json:"data,omitempty"`

	Visible  bool `json:"visible"`
	ReadOnly bool `json:"readOnly,omitempty"`
}

// AccessibleName approximates the name assistive technology would announce for the element.
func (e Element) AccessibleName() string {
	for _, s := range []string{e.Label, e.AriaLabel, e.Placeholder, e.Text} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// IsPassword reports whether the element is a masked text input.
func (e Element) IsPassword() bool {
	return e.Tag == "input" && strings.EqualFold(e.Type, "password")
}

// InFrame filters elements down to one frame. AnyFrame returns the input unchanged.
func InFrame(elements []Element, frame int) []Element {
	if frame == AnyFrame {
		return elements
	}
	var out []Element
	for _, e := range elements {
		if e.Frame == frame {
			out = append(out, e)
		}
	}
	return out
}

// Response describes a network response observed by the page.
type Response struct {
	URL     string        `json:"url"`
	Status  int           `json:"status"`
	Latency time.Duration `json:"latency"`
}
