// SPDX-License-Identifier: MPL-2.0

package esbuild

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/invowk/forge/internal/diag"
	"github.com/invowk/forge/internal/task"
)

var (
	loaders = map[string]api.Loader{
		"base64":  api.LoaderBase64,
		"binary":  api.LoaderBinary,
		"copy":    api.LoaderCopy,
		"css":     api.LoaderCSS,
		"dataurl": api.LoaderDataURL,
		"empty":   api.LoaderEmpty,
		"file":    api.LoaderFile,
		"js":      api.LoaderJS,
		"json":    api.LoaderJSON,
		"jsx":     api.LoaderJSX,
		"text":    api.LoaderText,
		"ts":      api.LoaderTS,
		"tsx":     api.LoaderTSX,
	}

	esTargets = map[string]api.Target{
		"es5":    api.ES5,
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
		"es2023": api.ES2023,
		"es2024": api.ES2024,
		"esnext": api.ESNext,
	}

	engines = map[string]api.EngineName{
		"chrome":  api.EngineChrome,
		"deno":    api.EngineDeno,
		"edge":    api.EngineEdge,
		"firefox": api.EngineFirefox,
		"ios":     api.EngineIOS,
		"node":    api.EngineNode,
		"opera":   api.EngineOpera,
		"safari":  api.EngineSafari,
	}

	engineTarget = regexp.MustCompile(`^([a-z]+)(\d[\d.]*)$`)
)

func toLoader(name string) api.Loader {
	if l, ok := loaders[name]; ok {
		return l
	}
	return api.LoaderDefault
}

func toFormat(f task.Format) api.Format {
	switch f {
	case task.FormatESM:
		return api.FormatESModule
	case task.FormatCJS:
		return api.FormatCommonJS
	case task.FormatIIFE:
		return api.FormatIIFE
	default:
		return api.FormatDefault
	}
}

func toPlatform(p task.Platform) api.Platform {
	switch p {
	case task.PlatformBrowser:
		return api.PlatformBrowser
	case task.PlatformNeutral:
		return api.PlatformNeutral
	default:
		return api.PlatformNode
	}
}

func toJSX(mode string) api.JSX {
	switch mode {
	case "preserve":
		return api.JSXPreserve
	case "automatic":
		return api.JSXAutomatic
	default:
		return api.JSXTransform
	}
}

// toTargets splits a target list such as ["es2020", "node18", "chrome100"]
// into esbuild's language target and engine list.
func toTargets(targets []string) (api.Target, []api.Engine, error) {
	target := api.DefaultTarget
	var list []api.Engine
	for _, raw := range targets {
		name := strings.ToLower(strings.TrimSpace(raw))
		if t, ok := esTargets[name]; ok {
			target = t
			continue
		}
		m := engineTarget.FindStringSubmatch(name)
		if m == nil {
			return 0, nil, fmt.Errorf("unsupported target %q", raw)
		}
		engine, ok := engines[m[1]]
		if !ok {
			return 0, nil, fmt.Errorf("unsupported target engine %q", m[1])
		}
		list = append(list, api.Engine{Name: engine, Version: m[2]})
	}
	return target, list, nil
}

func toTranspilerMessages(msgs []api.Message) []diag.TranspilerMessage {
	out := make([]diag.TranspilerMessage, 0, len(msgs))
	for _, m := range msgs {
		tm := diag.TranspilerMessage{ID: m.ID, PluginName: m.PluginName, Text: m.Text}
		if m.Location != nil {
			tm.Location = &diag.TranspilerLocation{
				File:   m.Location.File,
				Line:   m.Location.Line,
				Column: m.Location.Column,
				Length: m.Location.Length,
			}
		}
		out = append(out, tm)
	}
	return out
}

// toBundlerLogs keeps esbuild's build messages in the bundler vocabulary.
func toBundlerLogs(msgs []api.Message, level diag.BundlerLevel) []diag.BundlerLog {
	out := make([]diag.BundlerLog, 0, len(msgs))
	for _, m := range msgs {
		log := diag.BundlerLog{
			Code:    m.ID,
			Level:   level,
			Message: m.Text,
			Plugin:  m.PluginName,
		}
		if m.Location != nil {
			log.Loc = &diag.Location{File: m.Location.File, Line: m.Location.Line, Column: m.Location.Column}
			log.Frame = m.Location.LineText
		}
		out = append(out, log)
	}
	return out
}
