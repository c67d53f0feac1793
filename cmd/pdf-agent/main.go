// Package main is the pdf-agent command: it answers questions from a folder of
// PDFs over HTTP, over MCP stdio, or once from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:     "pdf-agent",
	Short:   "Answer questions from local PDFs with citations",
	Long:    "pdf-agent ranks the PDFs in a folder by relevance to a question, answers from each with inline citations, scores every answer and returns the best one.",
	Version: version,
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (default: ./config.yaml if present)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
