// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"slices"

	"go.mystapp.dev/internal/dom"
)

// LoginCandidates is the selector a login form probe should query.
const LoginCandidates = `input[type=password], label, ` + textCandidates

// LoginFrame returns the first frame that looks like it holds a login form: a password input,
// a text entry role, or a username-like label. The main document is checked before nested frames.
func LoginFrame(elements []dom.Element) (int, bool) {
	var frames []int
	for _, e := range elements {
		if !slices.Contains(frames, e.Frame) {
			frames = append(frames, e.Frame)
		}
	}
	slices.Sort(frames)

	for _, frame := range frames {
		for _, e := range dom.InFrame(elements, frame) {
			if !e.Visible {
				continue
			}
			if e.IsPassword() || e.Role == "textbox" || usernameRe.MatchString(e.Label) {
				return frame, true
			}
			if e.Tag == "label" && usernameRe.MatchString(e.Text) {
				return frame, true
			}
		}
	}
	return 0, false
}

// LoginFields is the outcome of splitting a login form into its inputs.
type LoginFields struct {
	Username dom.Element
	Password dom.Element
	// PasswordPending means no password input could be told apart from the username yet, so the
	// password must be resolved again with PendingPassword after the username has been filled.
	PasswordPending bool
}

// SplitLoginFields picks the username and password inputs from the elements of one frame.
// Some forms mask the login ID too, in which case the first masked input is the login ID and the
// second is the password. Two masked inputs win over a text input that only matched as a generic
// textbox or email input. When only one masked input is visible and nothing else looks like a
// username, it is treated as the login ID and the password is expected to appear later.
func SplitLoginFields(elements []dom.Element) (LoginFields, bool) {
	var masked []dom.Element
	for _, e := range elements {
		if e.Visible && e.IsPassword() {
			masked = append(masked, e)
		}
	}

	user, strategy, ok := Default(Username).Select(elements)
	if ok && len(masked) >= 2 && !specificUsernameStrategy(strategy) {
		// A bare text input next to two masked inputs is something else on the page, a search box
		// for instance.
		ok = false
	}
	if ok {
		fields := LoginFields{Username: user}
		if pw, _, ok := Default(Password).Excluding(user.Ref).Select(elements); ok {
			fields.Password = pw
		} else {
			fields.PasswordPending = true
		}
		return fields, true
	}

	switch len(masked) {
	case 0:
		return LoginFields{}, false
	case 1:
		return LoginFields{Username: masked[0], PasswordPending: true}, true
	default:
		return LoginFields{Username: masked[0], Password: masked[1]}, true
	}
}

// specificUsernameStrategy reports whether the username was matched by its label, placeholder or
// attribute rather than by being the only kind of text input around.
func specificUsernameStrategy(name string) bool {
	switch name {
	case "label", "placeholder", "attribute":
		return true
	default:
		return false
	}
}

// PendingPassword resolves the password input after the username has been filled.
func PendingPassword(elements []dom.Element, username dom.Element) (dom.Element, bool) {
	pw, _, ok := Default(Password).Excluding(username.Ref).Select(elements)
	return pw, ok
}
