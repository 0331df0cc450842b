// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package locator

import "strings"

// Field names one logical element the scenarios need to find, independently of the concrete markup.
type Field string

const (
	Username   Field = "username"
	Password   Field = "password"
	Submit     Field = "submit"
	StartDate  Field = "start_date"
	EndDate    Field = "end_date"
	Grid       Field = "grid"
	RecordCell Field = "record_cell"
	Refresh    Field = "refresh"
	NoRecords  Field = "no_records"
)

// Fields lists every field in a stable order.
func Fields() []Field {
	return []Field{Username, Password, Submit, StartDate, EndDate, Grid, RecordCell, Refresh, NoRecords}
}

// OverrideVar is the environment variable holding a CSS selector that replaces the field's heuristics.
func (f Field) OverrideVar() string {
	return "MYSTAPP_SEL_" + strings.ToUpper(string(f))
}
