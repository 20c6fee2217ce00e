// SPDX-License-Identifier: MPL-2.0

package pipeline

import "strings"

// BuiltinPrefix marks a platform builtin module id.
const BuiltinPrefix = "node:"

var builtinModules = map[string]struct{}{
	"assert": {}, "assert/strict": {}, "async_hooks": {}, "buffer": {},
	"child_process": {}, "cluster": {}, "console": {}, "constants": {},
	"crypto": {}, "dgram": {}, "diagnostics_channel": {}, "dns": {},
	"dns/promises": {}, "domain": {}, "events": {}, "fs": {},
	"fs/promises": {}, "http": {}, "http2": {}, "https": {},
	"inspector": {}, "inspector/promises": {}, "module": {}, "net": {},
	"os": {}, "path": {}, "path/posix": {}, "path/win32": {},
	"perf_hooks": {}, "process": {}, "punycode": {}, "querystring": {},
	"readline": {}, "readline/promises": {}, "repl": {}, "stream": {},
	"stream/consumers": {}, "stream/promises": {}, "stream/web": {},
	"string_decoder": {}, "sys": {}, "timers": {}, "timers/promises": {},
	"tls": {}, "trace_events": {}, "tty": {}, "url": {},
	"util": {}, "util/types": {}, "v8": {}, "vm": {},
	"wasi": {}, "worker_threads": {}, "zlib": {},
}

// IsBuiltin reports whether specifier names a platform builtin module,
// with or without the node: prefix. Every node:-prefixed id counts.
func IsBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, BuiltinPrefix) {
		return len(specifier) > len(BuiltinPrefix)
	}
	_, ok := builtinModules[specifier]
	return ok
}

// BuiltinID returns the canonical id of a builtin specifier.
func BuiltinID(specifier string) string {
	if strings.HasPrefix(specifier, BuiltinPrefix) {
		return specifier
	}
	return BuiltinPrefix + specifier
}

// IsVirtual reports whether specifier follows the virtual module naming
// convention: a NUL prefix, or a virtual: prefix optionally preceded by NUL.
func IsVirtual(specifier string) bool {
	if strings.HasPrefix(specifier, "\x00") {
		return true
	}
	return strings.HasPrefix(specifier, "virtual:")
}
