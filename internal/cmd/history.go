package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historySession string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent tagging sessions",
	Long: `List the tagging sessions recorded in ~/.mediatag/logs, newest first.

Pass --session with a session id to list the files tagged in that session.`,
	Args: cobra.NoArgs,
	RunE: runHistoryCommand,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of sessions to list")
	historyCmd.Flags().StringVar(&historySession, "session", "", "show the files of one session")
	rootCmd.AddCommand(historyCmd)
}

func runHistoryCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	limit := historyLimit
	if historySession != "" {
		limit = 0
	}
	sessions, err := log.ReadSessions(limit)
	if err != nil {
		return fmt.Errorf("failed to read log sessions: %w", err)
	}

	if historySession != "" {
		for _, s := range sessions {
			if s.Metadata.SessionID == historySession {
				fmt.Fprintln(out, renderTable([]string{"Status", "Subject", "File", "Error"}, operationRows(s), nil))
				return nil
			}
		}
		return fmt.Errorf("session %s not found", historySession)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "No tagging sessions recorded.")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		m := s.Metadata
		rows = append(rows, []string{
			m.SessionID,
			m.Timestamp.Local().Format("2006-01-02 15:04"),
			strings.Join(m.CommandArgs, " "),
			strconv.Itoa(m.SuccessfulOps),
			strconv.Itoa(m.FailedOps),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Session", "Started", "Command", "Tagged", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func operationRows(s *log.LogSession) [][]string {
	rows := make([][]string, 0, len(s.Operations))
	for _, op := range s.Operations {
		status := "ok"
		if !op.Success {
			status = "failed"
		}
		rows = append(rows, []string{status, op.Subject, op.Path, op.Error})
	}
	return rows
}
