// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the forge command line: `forge build`, `forge config`
// and the shared rendering of reports and actionable errors.
package cmd
