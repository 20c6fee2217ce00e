// SPDX-License-Identifier: MPL-2.0

// Package tsc emits TypeScript declarations by running a compiler command
// line through an embedded POSIX shell (mvdan.cc/sh).
//
// Sources are mirrored from the compiler host into a scratch directory,
// the command runs there, emitted files are handed back to the host, and
// the compiler's text diagnostics are parsed into diag.CompilerDiagnostic
// values. The command receives its paths through environment variables:
//
//	FORGE_DTS_ROOT      mirrored source root
//	FORGE_DTS_OUT       directory the compiler must emit into
//	FORGE_DTS_FILES     space-separated mirrored root files
//	FORGE_DTS_TSCONFIG  tsconfig path, when the task names one
package tsc
