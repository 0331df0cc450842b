// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package multierror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultierror(t *testing.T) {
	errs := New()

	require.Nil(t, errs.ErrOrNil())

	errs.Add(nil)
	require.Nil(t, errs.ErrOrNil())

	errs.Add(errors.New("direct fill read back \"\""))
	require.EqualError(t, errs.ErrOrNil(), "1 error(s):\n- direct fill read back \"\"")

	errs.Add(errors.New("keystrokes read back \"02/01\""))
	errs.Add(fmt.Errorf("script assignment: %w", context.DeadlineExceeded))
	require.Equal(t, 3, errs.Len())
	require.EqualError(t, errs.ErrOrNil(),
		"3 error(s):\n- direct fill read back \"\"\n- keystrokes read back \"02/01\"\n- script assignment: context deadline exceeded")
	require.ErrorIs(t, errs.ErrOrNil(), context.DeadlineExceeded)
}
