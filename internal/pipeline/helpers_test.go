// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/invowk/forge/internal/fsys"
	"github.com/invowk/forge/internal/task"
)

const testRoot = "/proj/"

type countingFS struct {
	fsys.FileSystem
	removed map[string]int
}

func newCountingFS() *countingFS {
	return &countingFS{FileSystem: fsys.Memory(), removed: map[string]int{}}
}

func (c *countingFS) RemoveAll(path string) error {
	c.removed[filepath.Clean(path)]++
	return c.FileSystem.RemoveAll(path)
}

// startResolver returns a started ResolveStage and its context.
func startResolver(t *testing.T, files fsys.FileSystem, tk *task.Task) (*ResolveStage, *StageContext) {
	t.Helper()
	sc := NewStageContext(NewInvocation(nil), tk, testRoot, files)
	s := NewResolveStage()
	if err := s.OnStart(context.Background(), sc); err != nil {
		t.Fatalf("OnStart() error = %v", err)
	}
	return s, sc
}
