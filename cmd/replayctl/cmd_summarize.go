package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gosight/gosight/summarizer/internal/config"
	"github.com/gosight/gosight/summarizer/internal/llm"
	"github.com/gosight/gosight/summarizer/internal/summarizer"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [recording.json]",
	Short: "Process a recording and print its natural-language summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var multiCmd = &cobra.Command{
	Use:   "multi [summary.txt...]",
	Short: "Combine several session summaries into one overview",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runMulti,
}

func newSummarizer(ctx context.Context, cfg *config.Config) (*summarizer.Summarizer, error) {
	gemini, err := llm.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.EmbeddingModel)
	if err != nil {
		return nil, err
	}
	return summarizer.New(llm.NewClient(gemini, cfg.LLM), cfg.Summarizer), nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := processFile(args[0])
	if err != nil {
		return err
	}

	sum, err := newSummarizer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	summary, err := sum.SummarizeSession(cmd.Context(), s)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

func runMulti(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	summaries := make([]string, 0, len(args))
	for _, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		summaries = append(summaries, string(b))
	}

	sum, err := newSummarizer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	overview, err := sum.SummarizeMulti(cmd.Context(), summaries)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), overview)
	return nil
}
