// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/invowk/forge/internal/issue"
	"github.com/invowk/forge/internal/task"
	"github.com/invowk/forge/pkg/cueutil"
	"github.com/invowk/forge/pkg/types"
)

const (
	// FileBaseName is the config file name without extension.
	FileBaseName = "forge"
	// EnvPrefix prefixes environment overrides, as in FORGE_OUTDIR.
	EnvPrefix = "FORGE"

	schemaPath = "#Config"
	tasksKey   = "tasks"
)

var (
	//go:embed config_schema.cue
	configSchema []byte

	// Extensions lists the supported formats in lookup order.
	Extensions = []string{".cue", ".json", ".toml", ".yaml", ".yml"}

	// ErrNotFound is returned when no config file exists.
	ErrNotFound = errors.New("config file not found")
	// ErrUnsupportedFormat is returned for an unknown file extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// envKey binds a base task field to its environment variable.
type envKey struct {
	field string
	kind  envKind
}

type envKind int

const (
	envString envKind = iota
	envBool
	envList
)

// envOverrides are the base task fields settable from the environment.
var envOverrides = []envKey{
	{"outdir", envString},
	{"format", envString},
	{"platform", envString},
	{"declaration", envString},
	{"root", envString},
	{"bundle", envBool},
	{"clean", envBool},
	{"write", envBool},
	{"native_write", envBool},
	{"sourcemap", envBool},
	{"input", envList},
	{"external", envList},
}

type (
	// LoadOptions selects the config file.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific file when set.
		ConfigFilePath types.FilesystemPath
		// Dir is searched for forge.<ext> when ConfigFilePath is empty.
		// Empty means the working directory.
		Dir types.FilesystemPath
	}

	// File is a loaded configuration and where it came from.
	File struct {
		Path   string
		Config *task.Config
	}
)

// Find returns the first forge.<ext> file in dir, in Extensions order.
func Find(dir string) (string, error) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, FileBaseName+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// Load locates, parses and validates the configuration, then applies
// environment overrides.
func Load(ctx context.Context, opts LoadOptions) (*File, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	path, err := locate(opts)
	if err != nil {
		return nil, err
	}

	raw, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(raw)

	cfg, err := toConfig(raw, path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load build configuration").
			WithResource(path).
			WithSuggestion("Check the FORGE_* environment variables for invalid values").
			WithIssue(issue.ConfigInvalidId).
			Wrap(err).
			BuildError()
	}
	return &File{Path: path, Config: cfg}, nil
}

func locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return "", issue.NewErrorContext().
				WithOperation("load build configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithIssue(issue.ConfigNotFoundId).
				Wrap(fmt.Errorf("%w: %s", ErrNotFound, path)).
				BuildError()
		}
		return path, nil
	}

	dir := string(opts.Dir)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		dir = cwd
	}
	path, err := Find(dir)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("load build configuration").
			WithResource(dir).
			WithSuggestion("Create forge.cue, forge.json, forge.toml or forge.yaml in the project root").
			WithSuggestion("Pass a file explicitly with --config").
			WithIssue(issue.ConfigNotFoundId).
			Wrap(err).
			BuildError()
	}
	return path, nil
}

// decodeFile parses path by extension and validates it against #Config.
func decodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return nil, err
	}

	parseErr := func(err error) error {
		return issue.NewErrorContext().
			WithOperation("parse build configuration").
			WithResource(path).
			WithSuggestion("Check the file syntax").
			WithIssue(issue.ConfigParseErrorId).
			Wrap(err).
			BuildError()
	}

	var result *cueutil.ParseResult[map[string]any]
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue", ".json":
		result, err = cueutil.ParseAndDecode[map[string]any](configSchema, data, schemaPath,
			cueutil.WithFilename(path), cueutil.WithConcrete(false))
	case ".toml":
		var doc map[string]any
		if uerr := toml.Unmarshal(data, &doc); uerr != nil {
			return nil, parseErr(uerr)
		}
		result, err = validate(doc, path)
	case ".yaml", ".yml":
		var doc map[string]any
		if uerr := yaml.Unmarshal(data, &doc); uerr != nil {
			return nil, parseErr(uerr)
		}
		result, err = validate(doc, path)
	default:
		return nil, parseErr(fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext))
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate build configuration").
			WithResource(path).
			WithSuggestion("Verify the configuration values match the schema").
			WithSuggestion("Run 'forge config schema' to print the schema").
			WithIssue(issue.ConfigInvalidId).
			Wrap(err).
			BuildError()
	}
	return *result.Value, nil
}

func validate(doc map[string]any, path string) (*cueutil.ParseResult[map[string]any], error) {
	if doc == nil {
		doc = map[string]any{}
	}
	return cueutil.ValidateAndDecode[map[string]any](configSchema, doc, schemaPath,
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
}

// applyEnv layers FORGE_* variables over the base task fields of raw.
// Only scalar and list fields are bound: Viper folds key case, which would
// corrupt alias and define maps.
func applyEnv(raw map[string]any) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, k := range envOverrides {
		if !v.IsSet(k.field) {
			continue
		}
		switch k.kind {
		case envBool:
			raw[k.field] = v.GetBool(k.field)
		case envList:
			raw[k.field] = splitList(v.GetString(k.field))
		default:
			raw[k.field] = v.GetString(k.field)
		}
	}
}

func splitList(s string) []any {
	var out []any
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// toConfig converts the validated map into a task.Config. Top-level task
// fields become Base; the tasks list becomes Tasks. Values pass through
// the task package's JSON decoding.
func toConfig(raw map[string]any, path string) (*task.Config, error) {
	base := make(map[string]any, len(raw))
	for k, val := range raw {
		if k != tasksKey {
			base[k] = val
		}
	}

	cfg := &task.Config{}
	if err := roundTrip(base, &cfg.Base); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if tasks, ok := raw[tasksKey]; ok {
		if err := roundTrip(tasks, &cfg.Tasks); err != nil {
			return nil, fmt.Errorf("%s: tasks: %w", path, err)
		}
	}
	for _, t := range cfg.Expand() {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func roundTrip(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Schema returns the embedded CUE schema source.
func Schema() []byte {
	return configSchema
}
