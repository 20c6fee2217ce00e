// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"slices"
)

// MetadataStage sets the byte size of every artifact and sorts its export
// and import lists.
type MetadataStage struct{}

func (MetadataStage) Name() string { return "metadata" }

func (MetadataStage) OnAnnotate(_ context.Context, _ *StageContext, b *Bundle) error {
	for _, o := range b.Outputs {
		o.Bytes = len(o.Content())
		slices.Sort(o.Exports)
		slices.Sort(o.Imports)
	}
	return nil
}
