// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	ConfigParseErrorId
	ConfigInvalidId
	NoInputsId
	ModuleNotResolvedId
	BuildFailedId
	DeclarationCompilerFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the Markdown guidance with the given glamour style
// ("dark", "light", "auto", "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# No build configuration found!

forge looks for one of these files in the working directory:
- forge.cue
- forge.json
- forge.toml
- forge.yaml / forge.yml

## Things you can try:
- Point at a file explicitly:
~~~
$ forge build --config ./config/forge.cue
~~~
- Create a minimal configuration:
~~~cue
input: ["src/index.ts"]
outdir: "dist"
format: "esm"
~~~`,
	}

	configParseErrorIssue = &Issue{
		id: ConfigParseErrorId,
		mdMsg: `
# Failed to parse the build configuration!

The file could not be decoded. The error above names the offending line or
field path (for example ` + "`tasks[1].format`" + `).

## Things you can try:
- Check the file syntax for its format (CUE, JSON, TOML or YAML)
- Print the expanded tasks once the file parses:
~~~
$ forge config show
~~~`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Build configuration does not match the schema!

## Allowed values:
- **format**: esm, cjs, iife
- **declaration**: off, on, auto
- **platform**: node, browser, neutral

Fields set at the top level seed every entry of ` + "`tasks`" + `. Lists are
merged as ordered unions, maps are merged key by key.`,
	}

	noInputsIssue = &Issue{
		id: NoInputsId,
		mdMsg: `
# Task inputs matched no files!

The task was skipped. Patterns are expanded relative to the task root, and
a task without ` + "`input`" + ` builds every script module under ` + "`src`" + `.

~~~cue
input: ["lib/index.ts"]
~~~`,
	}

	moduleNotResolvedIssue = &Issue{
		id: ModuleNotResolvedId,
		mdMsg: `
# Module could not be resolved!

## Common causes:
- The file extension is not in ` + "`resolve.extensions`" + `
- The package is not installed in node_modules
- An alias in ` + "`resolve.alias`" + ` points to a missing path

Only the task that imported the module fails; other tasks still run.`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# One or more builds failed!

Each failed build is listed with its first error. Run with ` + "`--verbose`" + `
to see the captured stack for every failure.`,
	}

	declarationCompilerFailedIssue = &Issue{
		id: DeclarationCompilerFailedId,
		mdMsg: `
# Declaration compiler could not run!

Declaration emission runs the command configured in
` + "`transform.declaration_command`" + ` (default: ` + "`tsc`" + `).

## Things you can try:
- Install TypeScript in the project: ` + "`npm i -D typescript`" + `
- Disable declarations for the task: ` + "`declaration: \"off\"`",
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():            configNotFoundIssue,
		configParseErrorIssue.Id():          configParseErrorIssue,
		configInvalidIssue.Id():             configInvalidIssue,
		noInputsIssue.Id():                  noInputsIssue,
		moduleNotResolvedIssue.Id():         moduleNotResolvedIssue,
		buildFailedIssue.Id():               buildFailedIssue,
		declarationCompilerFailedIssue.Id(): declarationCompilerFailedIssue,
	}

	// codeIssues links diagnostic codes to their catalog entry.
	codeIssues = map[string]Id{
		"NO_ENTRIES":         NoInputsId,
		"UNRESOLVED_IMPORT":  ModuleNotResolvedId,
		"DECLARATION_FAILED": DeclarationCompilerFailedId,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, v := range issues {
		values = append(values, v)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForCode returns the catalog entry for a diagnostic code, or nil.
func ForCode(code string) *Issue {
	id, ok := codeIssues[code]
	if !ok {
		return nil
	}
	return issues[id]
}
