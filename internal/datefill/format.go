// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package datefill

import (
	"fmt"
	"strings"
	"time"
)

// Format is the day and month order of slash delimited dates entered into text inputs.
type Format string

const (
	MonthFirst Format = "MM/DD/YYYY"
	DayFirst   Format = "DD/MM/YYYY"

	isoLayout = "2006-01-02"
)

// ParseFormat accepts either supported format, case-insensitively. The empty string means MonthFirst.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(strings.TrimSpace(s))) {
	case "", MonthFirst:
		return MonthFirst, nil
	case DayFirst:
		return DayFirst, nil
	default:
		return "", fmt.Errorf("unsupported date format %q, must be %s or %s", s, MonthFirst, DayFirst)
	}
}

func (f Format) layout() string {
	if f == DayFirst {
		return "02/01/2006"
	}
	return "01/02/2006"
}

// Parse reads a raw date in this format. Single digit days and months are accepted.
func (f Format) Parse(raw string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q is not in %s format", raw, f)
	}
	for i := 0; i < 2; i++ {
		if len(parts[i]) == 1 {
			parts[i] = "0" + parts[i]
		}
	}
	t, err := time.Parse(f.layout(), strings.Join(parts, "/"))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not in %s format: %w", raw, f, err)
	}
	return t, nil
}

// Expected is the value an input should read back after raw was entered: ISO 8601 for native
// date inputs, otherwise the raw string itself.
func Expected(raw string, f Format, inputType string) (string, error) {
	t, err := f.Parse(raw)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(inputType, "date") {
		return t.Format(isoLayout), nil
	}
	return strings.TrimSpace(raw), nil
}
