// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
)

// WriteStage stores artifacts through the task filesystem when the task
// writes output. Artifacts already stored by the bundler's native writer
// are skipped.
type WriteStage struct{}

func (WriteStage) Name() string { return "write" }

func (WriteStage) OnWrite(_ context.Context, sc *StageContext, b *Bundle) error {
	if !sc.Task.IsWrite() {
		return nil
	}
	for _, o := range b.Outputs {
		if o.Written {
			continue
		}
		path := filepath.Join(sc.Outdir, filepath.FromSlash(o.FileName))
		if err := sc.FS.MkdirAll(filepath.Dir(path)); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := sc.FS.WriteFile(path, o.Content()); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		o.Written = true
	}
	return nil
}
