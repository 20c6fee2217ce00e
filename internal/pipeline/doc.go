// SPDX-License-Identifier: MPL-2.0

// Package pipeline holds the stages that run around the build backends and
// the per-invocation state they share.
//
// A Pipeline is an ordered list of stages. Each stage implements only the
// hooks it cares about (Starter, Resolver, Cleaner, Declarer, Annotator,
// Writer) and receives an explicit StageContext. Shared caches live on the
// Invocation, which the orchestrator creates for one top-level build and
// resets when it returns.
package pipeline
