// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed page.js
var pageJS string

// script returns an expression that calls method of the page helper with JSON encoded args.
func script(method string, args ...any) (string, error) {
	encoded := make([]string, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encode argument of %s: %w", method, err)
		}
		encoded = append(encoded, string(b))
	}
	return fmt.Sprintf("(%s).%s(%s)", pageJS, method, strings.Join(encoded, ", ")), nil
}
