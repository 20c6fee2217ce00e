// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/invowk/forge/internal/build"
	"github.com/invowk/forge/internal/config"
	"github.com/invowk/forge/internal/task"
)

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and delegate loading and building through its interfaces.
	App struct {
		Config  config.Provider
		Builder BuildService
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Builder BuildService
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// BuildService runs every task of a configuration.
	BuildService interface {
		Run(ctx context.Context, cfg *task.Config, opts build.Options) (*build.Report, error)
	}

	engineBuildService struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Builder == nil {
		deps.Builder = engineBuildService{}
	}

	return &App{
		Config:  deps.Config,
		Builder: deps.Builder,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

func (engineBuildService) Run(ctx context.Context, cfg *task.Config, opts build.Options) (*build.Report, error) {
	return build.Run(ctx, cfg, opts)
}
