// SPDX-License-Identifier: MPL-2.0

// Package config loads forge build configuration files.
//
// A configuration is a base task plus an optional "tasks" list, written as
// forge.cue, forge.json, forge.toml, forge.yaml or forge.yml. Every format is
// validated against the embedded CUE schema (config_schema.cue). Scalar
// fields of the base task can be overridden through FORGE_* environment
// variables, which Viper layers over the file values.
package config
