package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/pdfquiz/internal/config"
	"github.com/abhisek/pdfquiz/internal/pipeline"
)

// stdout receives the result document and nothing else.
var stdout io.Writer = os.Stdout

// errReported marks a failure whose JSON document has already been written.
var errReported = errors.New("error already reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pdfquiz [flags] <pdf-path>",
		Short: "Generate multiple-choice questions from a PDF",
		Long: "pdfquiz extracts the text of a PDF and asks an LLM for 10 multiple-choice questions.\n" +
			"It writes one JSON document to stdout; logs go to stderr.",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuiz(cmd, args)
		},
	}
	root.SetOut(os.Stderr)
	root.SetErr(os.Stderr)
	root.SetVersionTemplate("pdfquiz {{.Version}}\n")

	// Only llm is a subcommand. "help" and "completion" are PDF paths like
	// any other argument; --help still prints usage.
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuiz(cmd, append([]string{cmd.Name()}, args...))
		},
	})

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newLLMCmd())
	return root
}

// Execute runs the root command. Errors not yet reported are written to
// stdout as {"error": "..."}; a non-nil return means the process should
// exit with status 1.
func Execute() error {
	return execute(newRootCmd(), os.Args[1:])
}

func execute(root *cobra.Command, args []string) error {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		_ = pipeline.Write(stdout, pipeline.ErrorDocument{Error: err.Error()})
	}
	return err
}
