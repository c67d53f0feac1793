package main

import (
	"github.com/spf13/cobra"

	"github.com/pdf-agent/backend/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the local_pdf_citation tool over MCP stdio",
	Long:  "Run as an MCP server on stdin/stdout exposing the local_pdf_citation tool. Logs go to stderr.",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	// stdout carries the protocol
	cfg, err := loadConfig("stderr")
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	return mcpserver.New(rt.engine, cfg.Agent.MaxQuestionLength, version).ServeStdio()
}
