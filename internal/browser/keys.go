// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp/kb"
)

//nolint:gochecknoglobals
var (
	namedKeys = map[string]string{
		"enter":      kb.Enter,
		"escape":     kb.Escape,
		"esc":        kb.Escape,
		"delete":     kb.Delete,
		"backspace":  kb.Backspace,
		"tab":        kb.Tab,
		"arrowup":    kb.ArrowUp,
		"arrowdown":  kb.ArrowDown,
		"arrowleft":  kb.ArrowLeft,
		"arrowright": kb.ArrowRight,
		"home":       kb.Home,
		"end":        kb.End,
		"pageup":     kb.PageUp,
		"pagedown":   kb.PageDown,
		"space":      " ",
	}
	modifierKeys = map[string]input.Modifier{
		"control": input.ModifierCtrl,
		"ctrl":    input.ModifierCtrl,
		"shift":   input.ModifierShift,
		"alt":     input.ModifierAlt,
		"meta":    input.ModifierMeta,
		"command": input.ModifierMeta,
	}
)

// chord is a parsed key combination such as "Control+A".
type chord struct {
	key       string
	modifiers []input.Modifier
}

// selectsAll reports whether the chord is the select all shortcut, which headless Chrome does
// not act on when it only arrives as a key event.
func (c chord) selectsAll() bool {
	if !strings.EqualFold(c.key, "a") {
		return false
	}
	for _, m := range c.modifiers {
		if m == input.ModifierCtrl || m == input.ModifierMeta {
			return true
		}
	}
	return false
}

func parseChord(s string) (chord, error) {
	parts := strings.Split(s, "+")
	// "+" on its own, or as the last key of a combination.
	if strings.HasSuffix(s, "++") || s == "+" {
		parts = append(strings.Split(strings.TrimSuffix(s, "++"), "+"), "+")
		if s == "+" {
			parts = []string{"+"}
		}
	}

	var c chord
	for i, p := range parts {
		last := i == len(parts)-1
		if !last {
			m, ok := modifierKeys[strings.ToLower(p)]
			if !ok {
				return chord{}, fmt.Errorf("unknown modifier %q in key %q", p, s)
			}
			c.modifiers = append(c.modifiers, m)
			continue
		}
		if named, ok := namedKeys[strings.ToLower(p)]; ok {
			c.key = named
			continue
		}
		if len([]rune(p)) != 1 {
			return chord{}, fmt.Errorf("unknown key %q", s)
		}
		c.key = p
		if len(c.modifiers) > 0 {
			c.key = strings.ToLower(p)
		}
	}
	return c, nil
}
