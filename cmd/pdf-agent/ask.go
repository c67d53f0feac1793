package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdf-agent/backend/internal/middleware/validation"
	"github.com/pdf-agent/backend/internal/query"
)

var (
	askVerbose bool
	askFull    bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the result as JSON",
	Long:  "Run the pipeline once for the question and print {answer, evaluation, source_pdf} as JSON. Logs go to stderr.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "Print pipeline progress to stderr")
	askCmd.Flags().BoolVar(&askFull, "full", false, "Print the full response including citations and run metadata")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig("stderr")
	if err != nil {
		return err
	}

	question, err := validation.SanitizeQuestion(strings.Join(args, " "), cfg.Agent.MaxQuestionLength)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	req := query.QueryRequest{Question: question}
	if askVerbose {
		req.Observer = progressPrinter(cmd.ErrOrStderr())
	}

	response, err := rt.engine.ProcessQuery(cmd.Context(), req)
	if err != nil {
		return err
	}

	return writeResponse(cmd.OutOrStdout(), response, askFull)
}

func progressPrinter(w io.Writer) query.Observer {
	return func(ev query.Event) {
		line := fmt.Sprintf("[%s] %s", ev.Stage, ev.Outcome)
		if ev.PDF != "" {
			line += " " + ev.PDF
		}
		if ev.Score != nil {
			line += fmt.Sprintf(" score=%.1f", *ev.Score)
		}
		if ev.Error != "" {
			line += ": " + ev.Error
		}
		fmt.Fprintln(w, line)
	}
}

func writeResponse(w io.Writer, response *query.QueryResponse, full bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if full {
		return enc.Encode(response)
	}
	return enc.Encode(response.Result())
}
