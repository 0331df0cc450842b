// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"go.mystapp.dev/cmd/perf-summary/cmd"
)

func main() {
	cmd.Execute()
}
