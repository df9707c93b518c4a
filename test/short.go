// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test holds shared helpers for the test suites.
package test

import "testing"

// MarkAsShort marks a test as part of the short suite.
func MarkAsShort(t *testing.T) {
	t.Helper()
}

// MarkAsLong skips a test when the short suite is requested.
func MarkAsLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping long running test in short mode")
	}
}
