// SPDX-License-Identifier: MPL-2.0

package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type (
	stackTracer interface {
		StackTrace() errors.StackTrace
	}

	coder interface {
		Code() string
	}
)

// Format strips "[plugin <name>] " and "<file> (<line>:<col>): " prefixes
// from the text when Plugin and Loc already carry that information.
func Format(m Message) Message {
	text := m.Text
	if m.Plugin != "" {
		text = strings.TrimPrefix(text, "[plugin "+m.Plugin+"] ")
	}
	if m.Loc != nil && m.Loc.File != "" {
		text = strings.TrimPrefix(text, locationPrefix(m.Loc))
	}
	m.Text = text
	return m
}

// FormatAll applies Format to every message.
func FormatAll(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Format(m)
	}
	return out
}

func locationPrefix(loc *Location) string {
	return loc.File + " (" + strconv.Itoa(loc.Line) + ":" + strconv.Itoa(loc.Column) + "): "
}

// Render returns a human-readable rendering of m:
//
//	[plugin resolve] src/a.ts (3:4): TS2322: message text
//	  const a: number = "x";
func Render(m Message) string {
	m = Format(m)

	var b strings.Builder
	if m.Plugin != "" {
		fmt.Fprintf(&b, "[plugin %s] ", m.Plugin)
	}
	if m.Loc != nil && m.Loc.File != "" {
		b.WriteString(locationPrefix(m.Loc))
	}
	if m.Code != "" {
		b.WriteString(m.Code)
		b.WriteString(": ")
	}
	b.WriteString(m.Text)
	if m.Frame != "" {
		b.WriteString("\n  ")
		b.WriteString(m.Frame)
	}
	return b.String()
}

// FromError converts err into a Failure. The stack captured by
// github.com/pkg/errors is kept; errors without one are stamped here.
func FromError(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return NewFailure(f.Message)
	}

	m := Message{Text: err.Error()}

	var c coder
	if errors.As(err, &c) {
		m.Code = c.Code()
	}

	var st stackTracer
	if !errors.As(err, &st) {
		err = errors.WithStack(err)
	}
	m.Stack = fmt.Sprintf("%+v", err)

	return NewFailure(m)
}
