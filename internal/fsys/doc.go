// SPDX-License-Identifier: MPL-2.0

// Package fsys defines the FileSystem capability through which every build
// stage performs I/O, with OS and in-memory implementations backed by afero.
package fsys
