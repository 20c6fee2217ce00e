// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of a build:
//   - configuration parsing and schema validation
//   - task merging and input glob expansion
//   - diagnostic normalization
//   - an end-to-end esbuild run
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
