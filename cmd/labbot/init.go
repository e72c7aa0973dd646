package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ideamans/go-sheettable/roster"
)

var initTitle string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the roster spreadsheet",
	Long: `Init creates a spreadsheet with the Students, Teachers and Works tables,
writes their header rows and makes it readable by anyone with the link.

Put the printed ID into spreadsheet.id (or LABBOT_SPREADSHEET_ID).

Example:
  labbot init
  labbot init --title "Study staff 2026"`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initTitle, "title", "", "spreadsheet title (default: spreadsheet.title)")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx, nil)
	if err != nil {
		return err
	}

	title := initTitle
	if title == "" {
		title = cfg.Spreadsheet.Title
	}
	id, err := roster.New(store).CreateSpreadsheet(ctx, title, cfg.Spreadsheet.RowCount, cfg.Spreadsheet.ColumnCount)
	if err != nil {
		return fmt.Errorf("create spreadsheet: %w", err)
	}
	logger.Info("spreadsheet created", zap.String("spreadsheet_id", id), zap.String("title", title))

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]string{"id": id, "url": store.URL(), "title": title})
	}
	fmt.Fprintf(out, "Spreadsheet: %s\n", id)
	fmt.Fprintf(out, "URL:         %s\n", store.URL())
	return nil
}
