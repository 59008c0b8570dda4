package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pdfquiz/internal/config"
	"github.com/abhisek/pdfquiz/internal/store"
)

func newLLMCmd() *cobra.Command {
	llmCmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect recorded LLM requests (requires --audit-db)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent LLM events",
		Args:  cobra.NoArgs,
		RunE:  runLLMList,
	}
	listCmd.Flags().Int("limit", 20, "Maximum number of events to show")
	listCmd.Flags().String("run", "", "Only show events from this run ID")

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View full request/response for an LLM event",
		Args:  cobra.ExactArgs(1),
		RunE:  runLLMView,
	}

	llmCmd.AddCommand(listCmd, viewCmd)
	return llmCmd
}

// openAuditFromFlags opens the audit database named by configuration.
func openAuditFromFlags(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Audit.DB == "" {
		return nil, fmt.Errorf("no audit database configured (set --audit-db or audit.db)")
	}
	s, err := store.Open(cfg.Audit.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func runLLMList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")

	s, err := openAuditFromFlags(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, RunID: runID})
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(stdout, "No LLM events found.")
		return nil
	}

	fmt.Fprintf(stdout, "%-5s  %-19s  %-36s  %-24s  %-6s  %-6s  %-7s  %s\n",
		"ID", "Timestamp", "Run", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(stdout, strings.Repeat("-", 120))

	for _, e := range events {
		ok := "yes"
		if !e.Success {
			ok = "no"
		}
		model := e.Model
		if len(model) > 24 {
			model = model[:24]
		}
		fmt.Fprintf(stdout, "%-5d  %-19s  %-36s  %-24s  %-6d  %-6d  %-7d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.RunID,
			model,
			e.InputTokens,
			e.OutputTokens,
			e.LatencyMs,
			ok,
		)
	}
	return nil
}

func runLLMView(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ID %q: %w", args[0], err)
	}

	s, err := openAuditFromFlags(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return fmt.Errorf("event %d not found", id)
	}

	sep := strings.Repeat("-", 60)
	w := stdout

	fmt.Fprintf(w, "ID:        %d\n", e.ID)
	fmt.Fprintf(w, "Run:       %s\n", e.RunID)
	fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider:  %s\n", e.Provider)
	fmt.Fprintf(w, "Model:     %s\n", e.Model)
	fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
	fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
	fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
	fmt.Fprintf(w, "Success:   %v\n", e.Success)
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", e.ErrorMessage)
	}

	for _, section := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sep)
		fmt.Fprintln(w, section.title)
		fmt.Fprintln(w, sep)
		if section.body != "" {
			fmt.Fprintln(w, section.body)
		} else {
			fmt.Fprintln(w, "(not captured)")
		}
	}
	return nil
}
