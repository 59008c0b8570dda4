package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pdfquiz/internal/config"
	"github.com/abhisek/pdfquiz/internal/extract"
	"github.com/abhisek/pdfquiz/internal/llm"
	"github.com/abhisek/pdfquiz/internal/pipeline"
	"github.com/abhisek/pdfquiz/internal/quiz"
	"github.com/abhisek/pdfquiz/internal/store"
)

// missingPathDocument is written byte for byte when no path is given.
const missingPathDocument = `{"error": "No PDF file path provided."}` + "\n"

// runQuiz loads configuration, builds dependencies, and processes one PDF.
func runQuiz(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if _, err := io.WriteString(stdout, missingPathDocument); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return errReported
	}
	pdfPath := args[0]

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := config.InitLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	ctx := llm.WithRunID(cmd.Context(), runID)

	var eventRepo store.EventRepo
	if cfg.Audit.DB != "" {
		st, err := openAudit(cfg.Audit.DB)
		if err != nil {
			log.Warn("audit: disabled", zap.String("db", cfg.Audit.DB), zap.Error(err))
		} else {
			defer st.Close()
			eventRepo = st.EventRepo()
		}
	}

	extractor, err := extract.New(cfg.Extract)
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(cfg.LLM, eventRepo, log)
	if err != nil {
		return err
	}
	generator := quiz.New(provider, quiz.Config{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, log)

	log.Info("pdfquiz: processing", zap.String("path", pdfPath))
	out, runErr := pipeline.New(extractor, generator, log).Run(ctx, pdfPath)

	if err := pipeline.Write(stdout, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if runErr != nil {
		return errReported
	}
	return nil
}

func openAudit(path string) (*store.Store, error) {
	if err := store.EnsureDir(path); err != nil {
		return nil, err
	}
	return store.Open(path)
}
