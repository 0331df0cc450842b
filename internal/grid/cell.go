// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/locator"
)

// Table is a snapshot of a grid. Header rows are not part of Rows.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Row is one data row: its cells in column order and every interactive descendant.
type Row struct {
	Cells    []dom.Element `json:"cells"`
	Children []dom.Element `json:"children,omitempty"`
}

var digitsRe = regexp.MustCompile(`\d+`)

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ColumnIndex returns the index of the header naming field, preferring an exact case-insensitive
// match over a header that merely contains it. It returns -1 when no header matches.
func ColumnIndex(headers []string, field string) int {
	want := fold(field)
	if want == "" {
		return -1
	}
	for i, h := range headers {
		if fold(h) == want {
			return i
		}
	}
	for i, h := range headers {
		if strings.Contains(fold(h), want) {
			return i
		}
	}
	return -1
}

// PickCell chooses what to click in row to open the record identified by field. The column is used
// when it exists in this row; virtualized grids often render fewer cells than headers, so the
// fallbacks look for something record-like instead.
func PickCell(row Row, column int, field string) (dom.Element, string, bool) {
	if column >= 0 && column < len(row.Cells) {
		return row.Cells[column], "column", true
	}

	everything := make([]dom.Element, 0, len(row.Cells)+len(row.Children))
	everything = append(everything, row.Cells...)
	everything = append(everything, row.Children...)

	want := fold(field)
	if el, name, ok := (locator.Cascade{Strategies: []locator.Strategy{
		{Name: "data-attribute", Match: func(e dom.Element) bool {
			for k, v := range e.Data {
				if want != "" && (strings.Contains(fold(k), want) || strings.Contains(fold(v), want)) {
					return true
				}
			}
			return false
		}},
		{Name: "link", Match: func(e dom.Element) bool { return e.Role == "link" }},
		{Name: "anchor", Match: func(e dom.Element) bool { return e.Tag == "a" }},
	}}).Select(everything); ok {
		return el, name, true
	}

	if el, ok := longestNumeric(row.Cells); ok {
		return el, "numeric", true
	}

	for _, c := range row.Cells {
		if c.Visible && strings.TrimSpace(c.Text) != "" {
			return c, "first-non-empty", true
		}
	}
	return dom.Element{}, "", false
}

func longestNumeric(cells []dom.Element) (dom.Element, bool) {
	var (
		best    dom.Element
		bestLen int
	)
	for _, c := range cells {
		if !c.Visible {
			continue
		}
		for _, m := range digitsRe.FindAllString(c.Text, -1) {
			if len(m) > bestLen {
				best, bestLen = c, len(m)
			}
		}
	}
	return best, bestLen > 0
}
