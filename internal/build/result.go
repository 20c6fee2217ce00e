// SPDX-License-Identifier: MPL-2.0

package build

import (
	"encoding/json"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/task"
)

type (
	// Result is the outcome of one task. Outputs are kept even when the
	// task failed part way through.
	Result struct {
		Failure  *diag.Failure
		Format   task.Format
		Messages []diag.Message
		Outdir   string
		Outputs  []*backend.Output
		// Root is absolute with a trailing separator.
		Root string
		// Task is the effective task without its entry points.
		Task *task.Task
	}

	// Report collects the results of one Run in task order.
	Report struct {
		Builds []*Result
	}

	resultJSON struct {
		Failure  *diag.Failure     `json:"failure"`
		Format   task.Format       `json:"format"`
		Messages []diag.Message    `json:"messages"`
		Outdir   string            `json:"outdir"`
		Outputs  []*backend.Output `json:"outputs"`
		Root     string            `json:"root"`
		Size     int               `json:"size"`
		Task     *task.Task        `json:"task"`
	}

	reportJSON struct {
		Builds []*Result `json:"builds"`
		Size   int       `json:"size"`
	}
)

// Size is the total byte length of the outputs.
func (r *Result) Size() int {
	n := 0
	for _, o := range r.Outputs {
		n += len(o.Content())
	}
	return n
}

// Failed reports whether the task ended with a failure.
func (r *Result) Failed() bool {
	return r.Failure != nil
}

func (r *Result) MarshalJSON() ([]byte, error) {
	msgs := r.Messages
	if msgs == nil {
		msgs = []diag.Message{}
	}
	outs := r.Outputs
	if outs == nil {
		outs = []*backend.Output{}
	}
	return json.Marshal(resultJSON{
		Failure:  r.Failure,
		Format:   r.Format,
		Messages: msgs,
		Outdir:   r.Outdir,
		Outputs:  outs,
		Root:     r.Root,
		Size:     r.Size(),
		Task:     r.Task,
	})
}

// Size is the sum of the build sizes.
func (r *Report) Size() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, b := range r.Builds {
		n += b.Size()
	}
	return n
}

// Failed reports whether any build failed.
func (r *Report) Failed() bool {
	if r == nil {
		return false
	}
	for _, b := range r.Builds {
		if b.Failed() {
			return true
		}
	}
	return false
}

func (r *Report) MarshalJSON() ([]byte, error) {
	builds := []*Result{}
	if r != nil && r.Builds != nil {
		builds = r.Builds
	}
	return json.Marshal(reportJSON{Builds: builds, Size: r.Size()})
}
