// SPDX-License-Identifier: MPL-2.0

// Package diag normalizes diagnostics from the bundler, the transpiler and
// the declaration compiler into one Message shape.
//
// Each backend vocabulary is a separate variant type with its own mapping
// function:
//
//	BundlerLog          -> FromBundlerLog  -> Message
//	TranspilerMessage   -> TranspilerToLog -> BundlerLog
//	CompilerDiagnostic  -> CompilerToLog   -> BundlerLog
//
// Format removes provenance prefixes from message text once the structured
// fields carry them, and Render produces the human-readable form.
package diag
