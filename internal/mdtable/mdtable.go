// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package mdtable renders the small summary tables written next to test artifacts.
package mdtable

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var cell = lipgloss.NewStyle().Padding(0, 1)

// Render returns a GitHub flavored markdown table, one line per row.
func Render(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		StyleFunc(func(int, int) lipgloss.Style { return cell }).
		Headers(headers...).
		Rows(rows...)
	return strings.TrimSpace(t.String()) + "\n"
}

// Escape keeps a value from breaking the table layout.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
