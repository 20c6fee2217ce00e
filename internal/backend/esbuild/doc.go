// SPDX-License-Identifier: MPL-2.0

// Package esbuild implements the backend Transpiler and Bundler on top of
// esbuild's Go API.
//
// The bundler registers a plugin that routes every resolution through the
// task's resolver and every module load through the supplied load function,
// so esbuild itself never touches the filesystem while reading sources.
// Without bundling, imports of other script modules are kept external and
// point at the chunk each of those modules renders to.
package esbuild
