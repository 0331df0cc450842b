// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package datefill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.mystapp.dev/internal/dom"
	"go.mystapp.dev/internal/mocks/mockdatefill"
	"go.mystapp.dev/internal/plog"
)

func TestFill(t *testing.T) {
	ctx := context.Background()
	native := dom.Element{Ref: "3", Tag: "input", Type: "date", Label: "Start date", Visible: true}
	picker := dom.Element{Ref: "4", Tag: "input", Type: "text", Label: "From", Visible: true, ReadOnly: true}

	tests := []struct {
		name    string
		el      dom.Element
		format  Format
		raw     string
		expect  func(m *mockdatefill.MockPageMockRecorder)
		wantErr string
	}{
		{
			name:   "direct fill of a native date input",
			el:     native,
			format: MonthFirst,
			raw:    "02/01/2025",
			expect: func(m *mockdatefill.MockPageMockRecorder) {
				gomock.InOrder(
					m.Fill(ctx, native, "2025-02-01").Return(nil),
					m.Dispatch(ctx, native, "input", "change", "blur").Return(nil),
					m.Value(ctx, native).Return("2025-02-01", nil),
				)
			},
		},
		{
			name:   "day first order reaches the native input as iso",
			el:     native,
			format: DayFirst,
			raw:    "02/01/2025",
			expect: func(m *mockdatefill.MockPageMockRecorder) {
				gomock.InOrder(
					m.Fill(ctx, native, "2025-01-02").Return(nil),
					m.Dispatch(ctx, native, "input", "change", "blur").Return(nil),
					m.Value(ctx, native).Return("2025-01-02", nil),
				)
			},
		},
		{
			name:   "readonly picker falls through to keystrokes",
			el:     picker,
			format: MonthFirst,
			raw:    "02/01/2025",
			expect: func(m *mockdatefill.MockPageMockRecorder) {
				gomock.InOrder(
					m.RemoveAttribute(ctx, picker, "readonly").Return(nil),
					m.Fill(ctx, picker, "02/01/2025").Return(nil),
					m.Dispatch(ctx, picker, "input", "change", "blur").Return(nil),
					m.Value(ctx, picker).Return("", nil),

					m.Click(ctx, picker, true).Return(nil),
					m.Press(ctx, "Control+A").Return(nil),
					m.Press(ctx, "Delete").Return(nil),
					m.Type(ctx, "02/01/2025").Return(nil),
					m.Press(ctx, "Enter").Return(nil),
					m.Press(ctx, "Escape").Return(nil),
					m.Value(ctx, picker).Return("02/01/2025", nil),
				)
			},
		},
		{
			name:   "script assignment after both interactive attempts fail",
			el:     picker,
			format: MonthFirst,
			raw:    "02/01/2025",
			expect: func(m *mockdatefill.MockPageMockRecorder) {
				gomock.InOrder(
					m.RemoveAttribute(ctx, picker, "readonly").Return(errors.New("element detached")),
					m.Click(ctx, picker, true).Return(nil),
					m.Press(ctx, "Control+A").Return(nil),
					m.Press(ctx, "Delete").Return(nil),
					m.Type(ctx, "02/01/2025").Return(nil),
					m.Press(ctx, "Enter").Return(nil),
					m.Press(ctx, "Escape").Return(nil),
					m.Value(ctx, picker).Return("02/01/20", nil),
					m.AssignValue(ctx, picker, "02/01/2025").Return(nil),
					m.Value(ctx, picker).Return("02/01/2025", nil),
				)
			},
		},
		{
			name:   "every attempt fails",
			el:     native,
			format: MonthFirst,
			raw:    "02/01/2025",
			expect: func(m *mockdatefill.MockPageMockRecorder) {
				gomock.InOrder(
					m.Fill(ctx, native, "2025-02-01").Return(nil),
					m.Dispatch(ctx, native, "input", "change", "blur").Return(nil),
					m.Value(ctx, native).Return("", nil),
					m.Click(ctx, native, true).Return(dom.ErrIntercepted),
					m.AssignValue(ctx, native, "2025-02-01").Return(nil),
					m.Value(ctx, native).Return("2025-01-01", nil),
				)
			},
			wantErr: "date field Start date read back \"2025-01-01\" instead of \"2025-02-01\" after every fill attempt: 3 error(s):\n" +
				"- direct fill: read back \"\"\n" +
				"- keystrokes: click would be intercepted by another element\n" +
				"- script assignment: read back \"2025-01-01\"",
		},
		{
			name:    "unparseable input never touches the page",
			el:      native,
			format:  DayFirst,
			raw:     "31/31/2025",
			expect:  func(*mockdatefill.MockPageMockRecorder) {},
			wantErr: `date "31/31/2025" is not in DD/MM/YYYY format: parsing time "31/31/2025": month out of range`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			page := mockdatefill.NewMockPage(ctrl)
			tt.expect(page.EXPECT())
			log, _ := plog.TestLogger(t)

			err := (&Filler{Page: page, Format: tt.format, Log: log}).Fill(ctx, tt.el, tt.raw)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFillErrorExposesAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	page := mockdatefill.NewMockPage(ctrl)
	el := dom.Element{Ref: "1", Tag: "input", Type: "text"}
	m := page.EXPECT()
	m.Fill(gomock.Any(), el, "01/02/2025").Return(context.DeadlineExceeded)
	m.Click(gomock.Any(), el, true).Return(context.DeadlineExceeded)
	m.AssignValue(gomock.Any(), el, "01/02/2025").Return(context.DeadlineExceeded)

	err := (&Filler{Page: page, Format: MonthFirst}).Fill(context.Background(), el, "01/02/2025")

	var fillErr *FillError
	require.ErrorAs(t, err, &fillErr)
	require.Equal(t, "", fillErr.Final)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
