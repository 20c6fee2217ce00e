// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing and validation utilities.
//
// Every forge config format ends up validated against the same embedded CUE
// schema. CUE and JSON sources are compiled directly; TOML and YAML sources
// are decoded by their own libraries first and then encoded into CUE values:
//
//	result, err := cueutil.ParseAndDecode[map[string]any](
//	    schemaBytes,
//	    fileBytes,
//	    "#Config",
//	    cueutil.WithFilename("forge.cue"),
//	)
//
//	result, err := cueutil.ValidateAndDecode[map[string]any](
//	    schemaBytes,
//	    decodedYAML,
//	    "#Config",
//	    cueutil.WithFilename("forge.yaml"),
//	)
package cueutil
