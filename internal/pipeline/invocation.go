// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/invowk/forge/internal/manifest"
)

// Invocation owns the state shared by every task of one top-level build:
// the set of directories already cleaned and the package manifest cache.
// It is not safe for concurrent use; concurrent builds use separate
// Invocations.
type Invocation struct {
	cleaned   map[string]struct{}
	manifests *manifest.Cache
	logger    *slog.Logger
}

// NewInvocation returns an empty Invocation. A nil logger uses slog.Default.
func NewInvocation(logger *slog.Logger) *Invocation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invocation{
		cleaned:   make(map[string]struct{}),
		manifests: manifest.NewCache(),
		logger:    logger,
	}
}

func (inv *Invocation) Logger() *slog.Logger {
	return inv.logger
}

// Manifests returns the package.json cache.
func (inv *Invocation) Manifests() *manifest.Cache {
	return inv.manifests
}

// IsCleaned reports whether path was recorded by MarkCleaned.
func (inv *Invocation) IsCleaned(path string) bool {
	_, ok := inv.cleaned[cacheKey(path)]
	return ok
}

// MarkCleaned records paths as cleaned.
func (inv *Invocation) MarkCleaned(paths ...string) {
	for _, p := range paths {
		inv.cleaned[cacheKey(p)] = struct{}{}
	}
}

// Cleaned returns the recorded paths in sorted order.
func (inv *Invocation) Cleaned() []string {
	out := make([]string, 0, len(inv.cleaned))
	for p := range inv.cleaned {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Reset clears both caches.
func (inv *Invocation) Reset() {
	clear(inv.cleaned)
	inv.manifests.Reset()
}

func cacheKey(path string) string {
	return filepath.Clean(path)
}
