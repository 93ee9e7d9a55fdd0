package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"emergence/internal/report"
)

var (
	viewTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)

	viewLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(18)

	viewValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	viewActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	viewInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	viewFindingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				PaddingLeft(2)
)

var viewCmd = &cobra.Command{
	Use:   "view <result-file>",
	Short: "Render a result bundle in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := report.Read(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, viewTitleStyle.Render("Emergence Analysis"))
		fmt.Fprintln(out)

		row := func(label, value string) {
			fmt.Fprintln(out, viewLabelStyle.Render(label)+viewValueStyle.Render(value))
		}
		row("session", bundle.SessionID)
		row("generated", bundle.GeneratedAt.Format("2006-01-02 15:04:05"))
		row("emergence score", fmt.Sprintf("%.3f", bundle.Record.EmergenceScore))
		row("pattern type", fmt.Sprintf("%s (%s)", bundle.Record.PatternType, bundle.Record.PatternType.Description()))
		row("coherence", fmt.Sprintf("%.3f", bundle.Record.Coherence))
		row("exchanges", fmt.Sprintf("%d", len(bundle.Observations)))

		fmt.Fprintln(out)
		fmt.Fprintln(out, viewLabelStyle.Render("tools")+viewValueStyle.Render(bundle.ToolSummary))
		for _, ts := range bundle.Tools {
			marker := viewInactiveStyle.Render("○ " + ts.Name)
			if ts.Active {
				marker = viewActiveStyle.Render("● " + ts.Name)
			}
			fmt.Fprintln(out, "  "+marker)
		}

		if bundle.Report != nil && len(bundle.Report.Findings) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, viewLabelStyle.Render("findings"))
			for _, f := range bundle.Report.Findings {
				fmt.Fprintln(out, viewFindingStyle.Render("- "+f))
			}
		}

		if bundle.Report != nil && len(bundle.Report.Events) > 0 {
			fmt.Fprintln(out)
			var turns []string
			for _, ev := range bundle.Report.Events {
				turns = append(turns, fmt.Sprintf("turn %d (%.3f)", ev.Turn, ev.Score))
			}
			fmt.Fprintln(out, viewLabelStyle.Render("emergence events")+
				viewValueStyle.Render(strings.Join(turns, ", ")))
		}
		return nil
	},
}
