// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"fmt"

	"github.com/invowk/forge/internal/issue"
	"github.com/invowk/forge/internal/pipeline"
	"github.com/invowk/forge/internal/task"
)

// Run builds every task of cfg in order and returns their results. A task
// failure is recorded in its Result and does not stop later tasks.
// Configuration errors are returned as *issue.ActionableError before any
// task runs. A nil cfg yields an empty report.
func Run(ctx context.Context, cfg *task.Config, opts Options) (*Report, error) {
	report := &Report{}
	if cfg == nil {
		return report, nil
	}

	tasks := cfg.Expand()
	if err := validate(tasks); err != nil {
		return nil, err
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	files := cfg.FileSystem()
	inv := pipeline.NewInvocation(opts.Logger)
	defer inv.Reset()

	for _, t := range tasks {
		r := NewRunnable(inv, t, files, opts)
		res := r.Run(ctx)
		opts.Logger.Debug("task finished",
			"task", t.DisplayName(), "state", r.State(), "outputs", len(res.Outputs), "size", res.Size())
		report.Builds = append(report.Builds, res)
	}
	return report, nil
}

func validate(tasks []*task.Task) error {
	for i, t := range tasks {
		resource := fmt.Sprintf("task %d (%s)", i, t.DisplayName())
		if err := t.Validate(); err != nil {
			return issue.NewErrorContext().
				WithOperation("validate build configuration").
				WithResource(resource).
				WithSuggestion("Use one of the documented values for format, declaration and platform").
				WithIssue(issue.ConfigInvalidId).
				Wrap(err).
				BuildError()
		}
	}
	return nil
}
