// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package constable provides a string error type so sentinel errors can be declared as constants.
package constable

var _ error = Error("")

type Error string

func (e Error) Error() string {
	return string(e)
}
