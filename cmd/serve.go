/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/josephgoksu/promptforge/internal/logger"
	"github.com/josephgoksu/promptforge/mcp"
)

// serveCmd starts the MCP server exposing improve_prompt and wizard_turn
// over stdio. Grounded on the teacher's mcp command's NewServer/AddTool/
// Run(ctx, NewStdioTransport()) bootstrap sequence.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server exposing improve_prompt and wizard_turn",
	Long: `Start a Model Context Protocol (MCP) server so AI tools like Claude Code
or Cursor can call improve_prompt and wizard_turn directly. The server
runs over stdin/stdout until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	logger.SetCommand("serve")
	engine, sessions, watcher, _, err := buildEngine(cfgFile)
	if err != nil {
		return fmt.Errorf("wire engine: %w", err)
	}
	if watcher != nil {
		defer watcher.Close()
	}

	impl := &mcpsdk.Implementation{Name: "promptforge", Version: version}
	server := mcpsdk.NewServer(impl, nil)

	if err := mcp.RegisterPromptTools(server, engine, sessions); err != nil {
		return fmt.Errorf("register mcp tools: %w", err)
	}

	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
