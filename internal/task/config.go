// SPDX-License-Identifier: MPL-2.0

package task

import "github.com/invowk/forge/internal/fsys"

// Config is the structured value handed to the engine by a loader.
type Config struct {
	// FS redirects all build I/O. Nil means the host filesystem.
	FS fsys.FileSystem `json:"-"`

	// Base seeds every entry of Tasks.
	Base Task `json:"base"`

	// Tasks lists the build units. When empty, a single task is inferred
	// from Base.
	Tasks []*Task `json:"tasks,omitempty"`
}

// Expand returns the concrete task list: Merge(Base, t) for every listed
// task, or just Base when none are listed.
func (c *Config) Expand() []*Task {
	if c == nil {
		return nil
	}
	if len(c.Tasks) == 0 {
		return []*Task{Merge(&c.Base)}
	}
	out := make([]*Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		out = append(out, Merge(&c.Base, t))
	}
	return out
}

// FileSystem returns the configured adapter, or the host filesystem.
func (c *Config) FileSystem() fsys.FileSystem {
	if c == nil || c.FS == nil {
		return fsys.OS()
	}
	return c.FS
}
