// SPDX-License-Identifier: MPL-2.0

package esbuild

import (
	"context"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/invowk/forge/internal/backend"
)

// Transpiler implements backend.Transpiler with api.Transform.
type Transpiler struct{}

// NewTranspiler returns a Transpiler.
func NewTranspiler() *Transpiler {
	return &Transpiler{}
}

// Transform converts one source file. Syntax errors are returned in
// TransformResult.Errors rather than as an error value.
func (*Transpiler) Transform(ctx context.Context, req backend.TransformRequest) (*backend.TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, engineList, err := toTargets(req.Target)
	if err != nil {
		return nil, err
	}

	opts := api.TransformOptions{
		Loader:            toLoader(req.Loader),
		Format:            toFormat(req.Format),
		Platform:          toPlatform(req.Platform),
		Target:            target,
		Engines:           engineList,
		Define:            req.Define,
		MinifyWhitespace:  req.Minify,
		MinifyIdentifiers: req.Minify,
		MinifySyntax:      req.Minify,
		JSX:               toJSX(req.JSX),
		TsconfigRaw:       req.TSConfigRaw,
		Sourcefile:        req.Path,
		LogLevel:          api.LogLevelSilent,
	}
	if req.Sourcemap {
		opts.Sourcemap = api.SourceMapExternal
	}

	result := api.Transform(req.Source, opts)
	return &backend.TransformResult{
		Code:     string(result.Code),
		Map:      string(result.Map),
		Warnings: toTranspilerMessages(result.Warnings),
		Errors:   toTranspilerMessages(result.Errors),
	}, nil
}
