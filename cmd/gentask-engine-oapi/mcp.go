package main

import (
	"context"

	"github.com/alexandremahdhaoui/gentask/internal/mcpserver"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/caarlos0/env/v11"
)

// runMCPServer serves the generate tool on stdio.
func runMCPServer(ctx context.Context) error {
	envs := Envs{} //nolint:exhaustruct // unmarshal
	if err := env.Parse(&envs); err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	server := mcpserver.New(Name, Version)
	mcpserver.RegisterEngine(server, codegen.DefaultEngineTool, newEngine(envs))

	return server.Run(ctx)
}
