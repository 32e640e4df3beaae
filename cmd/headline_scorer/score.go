package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/headline-scorer/internal/config"
	"github.com/jonathan/headline-scorer/internal/headlines"
	"github.com/jonathan/headline-scorer/internal/observability"
	"github.com/jonathan/headline-scorer/internal/scoring"
	"github.com/spf13/cobra"
)

var (
	scoreFile     string
	scoreEndpoint string
	scoreTimeout  time.Duration
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the headlines in a text file",
	Long:  `Read a UTF-8 text file with one headline per line, send it to the scoring backend and print the labels and a per-label summary.`,
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "Text file with one headline per line (required)")
	scoreCmd.Flags().StringVar(&scoreEndpoint, "endpoint", "", "Scoring endpoint URL (default from SCORER_ENDPOINT)")
	scoreCmd.Flags().DurationVar(&scoreTimeout, "timeout", 0, "Request timeout (default from SCORER_TIMEOUT)")

	if err := scoreCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	opts, err := scoreOptions()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(scoreFile)
	if err != nil {
		return fmt.Errorf("failed to read headlines file: %w", err)
	}

	store := headlines.NewStore()
	if _, err := store.ImportFile(raw); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := scoring.NewClient(opts).Score(ctx, store.Scorable())
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintResult(result)
	printer.PrintSummary(result)
	return nil
}

// scoreOptions layers the command flags over the environment configuration
func scoreOptions() (*scoring.Options, error) {
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if scoreEndpoint != "" {
		cfg.Endpoint = scoreEndpoint
	}
	if scoreTimeout != 0 {
		cfg.Timeout = config.Duration(scoreTimeout)
	}
	if err := cfg.ValidateScoring(); err != nil {
		return nil, err
	}

	return &scoring.Options{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.TimeoutDuration(),
	}, nil
}
