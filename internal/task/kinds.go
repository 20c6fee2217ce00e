// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
)

const (
	FormatESM  Format = "esm"
	FormatCJS  Format = "cjs"
	FormatIIFE Format = "iife"

	// DeclarationOff never emits type declarations.
	DeclarationOff DeclarationMode = "off"
	// DeclarationOn emits declarations for every TypeScript module in the bundle.
	DeclarationOn DeclarationMode = "on"
	// DeclarationAuto emits declarations when at least one input is TypeScript.
	DeclarationAuto DeclarationMode = "auto"

	PlatformNode    Platform = "node"
	PlatformBrowser Platform = "browser"
	PlatformNeutral Platform = "neutral"
)

var (
	// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidDeclarationMode is the sentinel error wrapped by InvalidDeclarationModeError.
	ErrInvalidDeclarationMode = errors.New("invalid declaration mode")
	// ErrInvalidPlatform is the sentinel error wrapped by InvalidPlatformError.
	ErrInvalidPlatform = errors.New("invalid platform")
)

type (
	// Format is the module format of generated chunks.
	Format string

	// DeclarationMode controls type declaration emission.
	DeclarationMode string

	// Platform selects builtin handling and default resolution conditions.
	Platform string

	InvalidFormatError struct {
		Value Format
	}

	InvalidDeclarationModeError struct {
		Value DeclarationMode
	}

	InvalidPlatformError struct {
		Value Platform
	}
)

func (f Format) String() string { return string(f) }

// IsValid returns whether the Format is one of esm, cjs or iife.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatESM, FormatCJS, FormatIIFE:
		return true, nil
	default:
		return false, []error{&InvalidFormatError{Value: f}}
	}
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q (valid: esm, cjs, iife)", e.Value)
}

func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

func (m DeclarationMode) String() string { return string(m) }

// IsValid returns whether the DeclarationMode is one of off, on or auto.
func (m DeclarationMode) IsValid() (bool, []error) {
	switch m {
	case DeclarationOff, DeclarationOn, DeclarationAuto:
		return true, nil
	default:
		return false, []error{&InvalidDeclarationModeError{Value: m}}
	}
}

func (e *InvalidDeclarationModeError) Error() string {
	return fmt.Sprintf("invalid declaration mode %q (valid: off, on, auto)", e.Value)
}

func (e *InvalidDeclarationModeError) Unwrap() error { return ErrInvalidDeclarationMode }

func (p Platform) String() string { return string(p) }

// IsValid returns whether the Platform is one of node, browser or neutral.
func (p Platform) IsValid() (bool, []error) {
	switch p {
	case PlatformNode, PlatformBrowser, PlatformNeutral:
		return true, nil
	default:
		return false, []error{&InvalidPlatformError{Value: p}}
	}
}

func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q (valid: node, browser, neutral)", e.Value)
}

func (e *InvalidPlatformError) Unwrap() error { return ErrInvalidPlatform }
