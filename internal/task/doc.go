// SPDX-License-Identifier: MPL-2.0

// Package task defines the declarative build task, the configuration that
// seeds a list of tasks, and the deep merge that combines task fragments.
//
// Merging works over a closed set of container kinds. List is an ordered,
// de-duplicated list; Set is an unordered set; Dict is a keyed record merged
// key by key. Scalar fields are pointers: a fragment that leaves a scalar nil
// never overwrites the target.
package task
