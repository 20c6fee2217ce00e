// SPDX-License-Identifier: MPL-2.0

package tsc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/invowk/forge/internal/backend"
	"github.com/invowk/forge/internal/diag"
)

var (
	// src/a.ts(3,7): error TS2322: Type 'string' is not assignable to type 'number'.
	locatedLine = regexp.MustCompile(`^(.+)\((\d+),(\d+)\): (error|warning|message|suggestion) TS(\d+): (.*)$`)
	// error TS5023: Unknown compiler option 'foo'.
	bareLine = regexp.MustCompile(`^(error|warning|message|suggestion) TS(\d+): (.*)$`)
)

func category(word string) diag.CompilerCategory {
	switch word {
	case "error":
		return diag.CategoryError
	case "warning":
		return diag.CategoryWarning
	case "suggestion":
		return diag.CategorySuggestion
	default:
		return diag.CategoryMessage
	}
}

// parseDiagnostics reads compiler output in --pretty false form. Indented
// continuation lines are appended to the preceding diagnostic's text.
func parseDiagnostics(output string, m *mirror, host backend.CompilerHost) []diag.CompilerDiagnostic {
	var (
		out     []diag.CompilerDiagnostic
		sources = map[string]string{}
	)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if match := locatedLine.FindStringSubmatch(line); match != nil {
			file := m.hostPath(match[1])
			src, ok := sources[file]
			if !ok {
				if data, err := host.ReadFile(file); err == nil {
					src = string(data)
				}
				sources[file] = src
			}
			lineNo, _ := strconv.Atoi(match[2])
			col, _ := strconv.Atoi(match[3])
			code, _ := strconv.Atoi(match[5])
			start, _ := diag.OffsetOf(src, lineNo, col-1)
			out = append(out, diag.CompilerDiagnostic{
				Category: category(match[4]),
				Code:     code,
				Text:     match[6],
				File:     file,
				Source:   src,
				Start:    start,
			})
			continue
		}
		if match := bareLine.FindStringSubmatch(line); match != nil {
			code, _ := strconv.Atoi(match[2])
			out = append(out, diag.CompilerDiagnostic{
				Category: category(match[1]),
				Code:     code,
				Text:     match[3],
			})
			continue
		}
		if len(out) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			out[len(out)-1].Text += "\n" + strings.TrimSpace(line)
		}
	}
	return out
}
