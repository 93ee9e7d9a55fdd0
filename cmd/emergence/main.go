// Command emergence scores AI conversation transcripts for emergence
// patterns. It runs as a batch CLI (analyze, view) or as an HTTP service
// (serve).
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"emergence/internal/config"
	"emergence/internal/scorer"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "emergence",
	Short: "Conversation pattern scoring toolkit",
	Long: `emergence assigns heuristic scores to AI conversation transcripts:
an emergence score, a coherence value, and a categorical pattern type.
All measurements are deterministic text arithmetic; no model inference.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgPath != "" {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.Server.LogLevel.Slog(),
		})))
		return nil
	},
}

func main() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newScorer builds a scorer from the loaded configuration. Zero thresholds
// keep the built-in defaults.
func newScorer() *scorer.Scorer {
	return scorer.New(
		scorer.WithCriticalPoint(cfg.Scoring.CriticalPoint),
		scorer.WithCriticalWindow(cfg.Scoring.CriticalWindow),
		scorer.WithFuzzyThreshold(cfg.Scoring.FuzzyThreshold),
	)
}
