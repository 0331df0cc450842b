// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mockdatefill

//go:generate go run -v go.uber.org/mock/mockgen  -destination=mockdatefill.go -package=mockdatefill -copyright_file=../../../hack/header.txt go.mystapp.dev/internal/datefill Page
