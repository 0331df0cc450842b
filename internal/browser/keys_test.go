// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"testing"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/require"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in         string
		want       chord
		selectsAll bool
		wantErr    string
	}{
		{in: "Enter", want: chord{key: kb.Enter}},
		{in: "escape", want: chord{key: kb.Escape}},
		{in: "Delete", want: chord{key: kb.Delete}},
		{in: "x", want: chord{key: "x"}},
		{in: "X", want: chord{key: "X"}},
		{in: "Control+A", want: chord{key: "a", modifiers: []input.Modifier{input.ModifierCtrl}}, selectsAll: true},
		{in: "Meta+a", want: chord{key: "a", modifiers: []input.Modifier{input.ModifierMeta}}, selectsAll: true},
		{in: "Shift+Tab", want: chord{key: kb.Tab, modifiers: []input.Modifier{input.ModifierShift}}},
		{in: "Control++", want: chord{key: "+", modifiers: []input.Modifier{input.ModifierCtrl}}},
		{in: "+", want: chord{key: "+"}},
		{in: "Hyper+A", wantErr: `unknown modifier "Hyper" in key "Hyper+A"`},
		{in: "F13", wantErr: `unknown key "F13"`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseChord(tt.in)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.selectsAll, got.selectsAll())
		})
	}
}

func TestScript(t *testing.T) {
	expr, err := script("query", `input[type="password"]`)
	require.NoError(t, err)
	require.Contains(t, expr, "refAttr: 'data-mystapp-ref'")
	require.Regexp(t, `\)\.query\("input\[type=\\"password\\"\]"\)$`, expr)

	expr, err = script("dispatch", "e12", []string{"input", "change"})
	require.NoError(t, err)
	require.Regexp(t, `\)\.dispatch\("e12", \["input","change"\]\)$`, expr)

	_, err = script("query", func() {})
	require.ErrorContains(t, err, "encode argument of query: ")
}
