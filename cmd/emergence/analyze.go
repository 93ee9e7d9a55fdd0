package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"emergence/internal/detector"
	"emergence/internal/report"
	"emergence/internal/tools"
	"emergence/pkg/types"
)

var analyzeOutput string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "",
		"result file path (default: a session directory under output.dir)")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript-file>",
	Short: "Score a transcript and write the result bundle",
	Long: `Analyze reads a conversation transcript, scores every exchange, and
writes the result bundle as JSON.

The transcript file is either JSON ({"turns": [{"speaker": ..., "text": ...}]})
or plain text with one "speaker: text" turn per line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, err := loadTranscript(args[0])
		if err != nil {
			return err
		}

		sc := newScorer()
		set, err := tools.NewSet(sc, cfg.Tools.Active)
		if err != nil {
			return err
		}
		sess := detector.NewSession(sc,
			detector.WithEmergenceThreshold(cfg.Scoring.EmergenceThreshold))

		sess.ObserveTranscript(transcript)
		record := sc.Score(transcript)
		bundle := report.New(sess, record, set)

		path := analyzeOutput
		if path == "" {
			path, err = report.WriteSession(cfg.Output.Dir, bundle)
		} else {
			err = report.Write(path, bundle)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "emergence_score: %.3f\n", record.EmergenceScore)
		fmt.Fprintf(out, "pattern_type:    %s\n", record.PatternType)
		fmt.Fprintf(out, "coherence:       %.3f\n", record.Coherence)
		fmt.Fprintf(out, "tools:           %s\n", bundle.ToolSummary)
		fmt.Fprintf(out, "result:          %s\n", path)
		return nil
	},
}

// loadTranscript reads a transcript file. JSON content is decoded as a
// [types.Transcript]; anything else is parsed as one "speaker: text" turn per
// line, with blank lines skipped.
func loadTranscript(path string) (types.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var t types.Transcript
		if err := json.Unmarshal(data, &t); err != nil {
			return types.Transcript{}, fmt.Errorf("decode transcript %s: %w", path, err)
		}
		return t, nil
	}

	var t types.Transcript
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		speaker, text, found := strings.Cut(line, ":")
		if !found {
			t.Turns = append(t.Turns, types.Turn{Text: line})
			continue
		}
		t.Turns = append(t.Turns, types.Turn{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(text),
		})
	}
	return t, nil
}
