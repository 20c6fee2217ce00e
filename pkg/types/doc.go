// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the forge packages.
//
// This package is a leaf dependency: it imports only the standard library.
package types
