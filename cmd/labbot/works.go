package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ideamans/go-sheettable/coursework"
)

var worksCmd = &cobra.Command{
	Use:   "works",
	Short: "Inspect submitted coursework",
}

var worksSince string

var worksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted links",
	Long: `List prints the latest link of every user who submitted one.

--since takes a date (2006-01-02), an RFC 3339 time or a duration
counted back from now (72h).

Example:
  labbot works list
  labbot works list --since 2026-09-01
  labbot works list --since 168h --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openRoster(cmd.Context())
		if err != nil {
			return err
		}
		book := coursework.New(r.Store(), logger)

		var works []coursework.Work
		if worksSince != "" {
			since, perr := parseSince(worksSince, time.Now())
			if perr != nil {
				return perr
			}
			works, err = book.Since(cmd.Context(), since)
		} else {
			works, err = book.List(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("list works: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), works)
		}
		rows := make([][]string, len(works))
		for i, w := range works {
			submitted := ""
			if !w.SubmittedAt.IsZero() {
				submitted = w.SubmittedAt.Local().Format("2006-01-02 15:04")
			}
			rows[i] = []string{w.Username, w.Link, submitted}
		}
		printTable(cmd.OutOrStdout(), "work", []string{"USERNAME", "LINK", "SUBMITTED"}, rows)
		return nil
	},
}

func init() {
	worksListCmd.Flags().StringVar(&worksSince, "since", "", "only works submitted at or after this time")

	worksCmd.AddCommand(worksListCmd)
}

// parseSince accepts a date, an RFC 3339 timestamp or a look-back duration.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want 2006-01-02, RFC 3339 or a duration like 72h", s)
}
