package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/worklog-sync/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	realStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	syntheticStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Reconstruct and list work sessions",
	Long: `Run the local pipeline stages (reconstruction, commit assignment,
polishing, deduplication) over the configured exports and list the
resulting sessions. No calendar access is performed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}

		report := internal.NewRunReport()
		events, commits, err := loadInputs(cfg, report)
		if err != nil {
			return err
		}

		sessions := internal.NewPipeline().Run(events, commits, report)

		fmt.Println(headerStyle.Render(fmt.Sprintf("Work Sessions (%d)", len(sessions))))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tSTART\tEND\tHOURS\tTYPE\tSOURCE\tCATEGORY\tCONF\tID")
		for _, s := range sessions {
			source := realStyle.Render(string(s.Source))
			if s.Source == internal.SourceSynthetic {
				source = syntheticStyle.Render(string(s.Source))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\t%.2f\t%s\n",
				s.Date(),
				s.StartTime.Format("15:04"),
				s.EndTime.Format("15:04"),
				s.WorkHours,
				s.Type,
				source,
				s.Category,
				s.Confidence,
				idStyle.Render(s.SessionID),
			)
		}
		w.Flush()

		fmt.Println(summaryStyle.Render(fmt.Sprintf(
			"total %.2fh | %d rejected interval(s), %d dropped, %d duplicate(s)",
			internal.HoursTotal(sessions), len(report.RejectedIntervals), len(report.Dropped), len(report.Duplicates),
		)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
