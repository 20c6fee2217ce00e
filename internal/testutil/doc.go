// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// immediately on setup errors, for both the host filesystem (MustWriteFile)
// and fsys adapters (WriteFiles).
package testutil
