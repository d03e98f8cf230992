package main

import (
	"github.com/spf13/cobra"

	"github.com/lmburns/lwm/internal/mcp"
)

func (a *app) newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients;
every tool forwards to the running daemon over its socket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Debug("mcp server starting", "socket", a.client().SocketPath())
			return mcp.NewServer(a.client(), a.logger).Run(cmd.Context())
		},
	})
	return cmd
}
