// SPDX-License-Identifier: MPL-2.0

package diag

import (
	"fmt"
	"strings"
)

const (
	CategoryWarning    CompilerCategory = "Warning"
	CategoryError      CompilerCategory = "Error"
	CategorySuggestion CompilerCategory = "Suggestion"
	CategoryMessage    CompilerCategory = "Message"

	SeverityDebug   TranspilerSeverity = "debug"
	SeverityVerbose TranspilerSeverity = "verbose"
	SeverityInfo    TranspilerSeverity = "info"
	SeverityWarning TranspilerSeverity = "warning"
	SeverityError   TranspilerSeverity = "error"
)

type (
	// BundlerLog is a diagnostic in the bundler's vocabulary. Message holds
	// the free text that becomes Message.Text.
	BundlerLog struct {
		Code    string
		Frame   string
		Hook    string
		Level   BundlerLevel
		Loc     *Location
		Message string
		Plugin  string
		// Pos is the byte offset of Loc within the source, when known.
		Pos   *int
		Stack string
	}

	// TranspilerSeverity is the transpiler's severity vocabulary.
	TranspilerSeverity string

	// TranspilerLocation is where a transpiler message points. Line is
	// 1-based, Column is a 0-based byte offset.
	TranspilerLocation struct {
		File   string
		Line   int
		Column int
		Length int
	}

	// TranspilerMessage is a diagnostic emitted by the single-file transpiler.
	TranspilerMessage struct {
		ID         string
		PluginName string
		Text       string
		Location   *TranspilerLocation
	}

	// CompilerCategory is the declaration compiler's diagnostic category.
	CompilerCategory string

	// CompilerDiagnostic is a diagnostic emitted by the declaration compiler.
	CompilerDiagnostic struct {
		Category CompilerCategory
		Code     int
		Text     string
		// File is the path of the attached source file, if any.
		File string
		// Source is the text of File.
		Source string
		// Start is the byte offset into Source. Ignored when File is empty.
		Start int
	}
)

// FromBundlerLog converts a bundler log into a Message. The free-text field
// becomes Text and the byte position is dropped.
func FromBundlerLog(log BundlerLog) Message {
	m := Message{
		Code:   log.Code,
		Frame:  log.Frame,
		Hook:   log.Hook,
		Level:  LevelFromBundler(log.Level),
		Plugin: log.Plugin,
		Stack:  log.Stack,
		Text:   log.Message,
	}
	if log.Loc != nil {
		loc := *log.Loc
		m.Loc = &loc
	}
	return m
}

// Level maps a transpiler severity onto the bundler vocabulary.
func (s TranspilerSeverity) Level() BundlerLevel {
	switch s {
	case SeverityDebug, SeverityVerbose:
		return BundlerDebug
	case SeverityWarning:
		return BundlerWarn
	case SeverityError:
		return BundlerError
	default:
		return BundlerInfo
	}
}

// TranspilerToLog converts a transpiler message at the given severity. When
// the message has a location, source is used to compute the byte offset and
// the one-line frame.
func TranspilerToLog(msg TranspilerMessage, severity TranspilerSeverity, source string) BundlerLog {
	log := BundlerLog{
		Code:    msg.ID,
		Level:   severity.Level(),
		Message: msg.Text,
		Plugin:  msg.PluginName,
	}
	if msg.Location == nil {
		return log
	}
	loc := msg.Location
	log.Loc = &Location{File: loc.File, Line: loc.Line, Column: loc.Column}
	if pos, ok := OffsetOf(source, loc.Line, loc.Column); ok {
		log.Pos = &pos
		log.Frame = LineAt(source, pos)
	}
	return log
}

// Level maps a compiler category onto the bundler vocabulary. Errors are
// downgraded to warnings so declaration emission never fails a build; every
// other category is informational.
func (c CompilerCategory) Level() BundlerLevel {
	switch c {
	case CategoryError:
		return BundlerWarn
	default:
		return BundlerInfo
	}
}

// CompilerToLog converts a declaration compiler diagnostic.
func CompilerToLog(d CompilerDiagnostic) BundlerLog {
	log := BundlerLog{
		Level:   d.Category.Level(),
		Message: d.Text,
		Plugin:  "declaration",
	}
	if d.Code != 0 {
		log.Code = fmt.Sprintf("TS%d", d.Code)
	}
	if d.File == "" {
		return log
	}
	start := min(max(d.Start, 0), len(d.Source))
	line, column := LineColumn(d.Source, start)
	log.Loc = &Location{File: d.File, Line: line, Column: column}
	log.Pos = &start
	log.Frame = LineAt(d.Source, start)
	return log
}

// OffsetOf returns the byte offset of a 1-based line and 0-based column in
// source. ok is false when the line does not exist.
func OffsetOf(source string, line, column int) (int, bool) {
	if line < 1 {
		return 0, false
	}
	offset := 0
	for current := 1; current < line; current++ {
		nl := strings.IndexByte(source[offset:], '\n')
		if nl < 0 {
			return 0, false
		}
		offset += nl + 1
	}
	end := len(source)
	if nl := strings.IndexByte(source[offset:], '\n'); nl >= 0 {
		end = offset + nl
	}
	return min(offset+max(column, 0), end), true
}

// LineColumn returns the 1-based line and 0-based byte column of offset.
func LineColumn(source string, offset int) (int, int) {
	offset = min(max(offset, 0), len(source))
	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	column := offset - (strings.LastIndexByte(before, '\n') + 1)
	return line, column
}

// LineAt returns the line containing offset, from its start up to the next
// newline, without the line terminator.
func LineAt(source string, offset int) string {
	offset = min(max(offset, 0), len(source))
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := len(source)
	if nl := strings.IndexByte(source[offset:], '\n'); nl >= 0 {
		end = offset + nl
	}
	return strings.TrimSuffix(source[start:end], "\r")
}
