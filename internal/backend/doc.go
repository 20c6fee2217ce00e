// SPDX-License-Identifier: MPL-2.0

// Package backend defines the engines the build pipeline delegates to: a
// single-file Transpiler, a multi-file Bundler and a declaration Compiler,
// together with the output artifacts they produce.
//
// The pipeline never depends on a concrete engine. The esbuild and tsc
// subpackages provide the production implementations; tests substitute
// fakes.
package backend
