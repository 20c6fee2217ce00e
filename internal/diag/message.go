// SPDX-License-Identifier: MPL-2.0

package diag

import "encoding/json"

type (
	// Location points into a source file. Line is 1-based, Column is a
	// 0-based byte offset within the line.
	//
	// Fields are declared in key order so JSON encoding is canonical.
	Location struct {
		Column int    `json:"column"`
		File   string `json:"file,omitempty"`
		Line   int    `json:"line"`
	}

	// Message is the canonical diagnostic. Fields are declared in key order
	// so JSON encoding emits sorted keys.
	Message struct {
		Code   string    `json:"code,omitempty"`
		Frame  string    `json:"frame,omitempty"`
		Hook   string    `json:"hook,omitempty"`
		Level  Level     `json:"level"`
		Loc    *Location `json:"loc,omitempty"`
		Plugin string    `json:"plugin,omitempty"`
		Stack  string    `json:"stack,omitempty"`
		Text   string    `json:"text"`
	}

	// Failure is a Message whose level is always error.
	Failure struct {
		Message
	}
)

// NewFailure copies m with its level forced to error.
func NewFailure(m Message) *Failure {
	m.Level = LevelError
	return &Failure{Message: m}
}

// MarshalJSON encodes the embedded Message with the level pinned to error.
func (f *Failure) MarshalJSON() ([]byte, error) {
	m := f.Message
	m.Level = LevelError
	return json.Marshal(m)
}

// Error implements error so a Failure can travel through error returns.
func (f *Failure) Error() string {
	return f.Text
}

// HasErrors reports whether any message is at error level.
func HasErrors(msgs []Message) bool {
	for _, m := range msgs {
		if m.Level == LevelError {
			return true
		}
	}
	return false
}
