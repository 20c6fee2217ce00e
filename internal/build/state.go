// SPDX-License-Identifier: MPL-2.0

package build

// State is the lifecycle position of a Runnable.
type State string

const (
	StateInit      State = "INIT"
	StateResolve   State = "RESOLVE"
	StateTransform State = "TRANSFORM"
	StateBundle    State = "BUNDLE"
	StateOutput    State = "OUTPUT"
	StateDone      State = "DONE"
	StateFailed    State = "FAILED"
)

func (s State) String() string { return string(s) }

// IsTerminal reports whether no further transitions can happen.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}
