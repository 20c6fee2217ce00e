// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invowk/forge/internal/diag"
)

// CleanSkippedCode marks the warning for an output directory that holds the
// task root and is therefore left in place.
const CleanSkippedCode = "CLEAN_SKIPPED"

// CleanStage empties the output directory once per invocation. Both the
// task root and the output directory are recorded as cleaned, so a later
// task sharing either path skips the removal.
type CleanStage struct{}

func (CleanStage) Name() string { return "clean" }

func (CleanStage) OnClean(_ context.Context, sc *StageContext) error {
	t := sc.Task
	if !t.IsClean() || !t.IsWrite() {
		return nil
	}
	if sc.Invocation.IsCleaned(sc.Outdir) {
		sc.Logger.Debug("output directory already cleaned", "outdir", sc.Outdir)
		return nil
	}
	if containsPath(sc.Outdir, sc.Root) {
		sc.Report(diag.Message{
			Code:   CleanSkippedCode,
			Level:  diag.LevelWarn,
			Plugin: "clean",
			Text:   fmt.Sprintf("not cleaning %s: it contains the task root", sc.Outdir),
		})
		return nil
	}

	sc.Logger.Debug("cleaning output directory", "outdir", sc.Outdir)
	if err := sc.FS.RemoveAll(sc.Outdir); err != nil {
		return fmt.Errorf("removing %s: %w", sc.Outdir, err)
	}
	if err := sc.FS.MkdirAll(sc.Outdir); err != nil {
		return fmt.Errorf("creating %s: %w", sc.Outdir, err)
	}
	sc.Invocation.MarkCleaned(sc.Root, sc.Outdir)
	return nil
}

// containsPath reports whether child is dir or lies inside it.
func containsPath(dir, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
