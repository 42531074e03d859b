// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to work with deal recaps via stdio
package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/atstrading/dealrecap/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the deal recap pipeline as an MCP (Model Context Protocol) server,
exposing extraction and session tools over stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an agent host)
  recap mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "dealrecap": {
  #       "command": "recap",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" && !quiet {
		log.Println("Warning: OPENAI_API_KEY not set - extraction tools will report unavailability")
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assembler := newAssembler(st, cfg)

	server := mcpserver.NewMCPServer(
		"Deal Recap",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, st, assembler)

	if !quiet {
		log.Println("Deal recap MCP server starting on stdio...")
	}
	if err := mcpserver.ServeStdio(server); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
