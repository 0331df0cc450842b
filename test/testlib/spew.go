// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testlib

import "github.com/davecgh/go-spew/spew"

// Sdump renders values for test failure messages. Credentials only print their username.
func Sdump(a ...any) string {
	config := spew.ConfigState{
		Indent:                  "\t",
		MaxDepth:                10, // prevent log explosion
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
		SpewKeys:                true,
	}
	return config.Sdump(a...)
}
