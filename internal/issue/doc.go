// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling for forge.
//
// ActionableError carries the failed operation, the resource involved, and
// remediation hints. The issue catalog maps well-known failure classes to
// Markdown guidance rendered with glamour by the CLI.
package issue
