// SPDX-License-Identifier: MPL-2.0

// Package manifest parses package.json files and caches them for the
// lifetime of one build invocation.
package manifest
