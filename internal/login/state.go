// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package login

// State is how far a login attempt got.
type State int

const (
	NotStarted State = iota
	Navigated
	AlreadyAuthenticated
	FormRendering
	FormFilled
	Submitted
	LeftLoginPage
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Navigated:
		return "Navigated"
	case AlreadyAuthenticated:
		return "AlreadyAuthenticated"
	case FormRendering:
		return "FormRendering"
	case FormFilled:
		return "FormFilled"
	case Submitted:
		return "Submitted"
	case LeftLoginPage:
		return "LeftLoginPage"
	default:
		return "Unknown"
	}
}

// Succeeded reports whether the attempt ended authenticated.
func (s State) Succeeded() bool {
	return s == AlreadyAuthenticated || s == LeftLoginPage
}
