// SPDX-License-Identifier: MPL-2.0

// Package build turns tasks into runnable builds and aggregates their
// results.
//
// Run expands a configuration into tasks and builds them one after another.
// Each task moves through the states INIT, RESOLVE, TRANSFORM, BUNDLE and
// OUTPUT before ending in DONE or FAILED. A failing task never stops the
// tasks after it; its error, or a recovered panic, becomes the Failure of
// its Result.
package build
