package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"babysteps/internal/config"
	"babysteps/internal/services"
	sheetsgoogle "babysteps/internal/sheets/google"
)

var (
	flagExportYear  int
	flagExportMonth int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month of expenses to the configured Google Sheet",
	Long: "Appends the month's expenses to the spreadsheet named by " +
		"GOOGLE_SPREADSHEET_ID, using the OAuth client and token from the " +
		"GOOGLE_OAUTH_* settings.",
	RunE: runExport,
}

func init() {
	now := time.Now()
	exportCmd.Flags().IntVar(&flagExportYear, "year", now.Year(), "Year to export")
	exportCmd.Flags().IntVar(&flagExportMonth, "month", int(now.Month()), "Month to export (1-12)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	if !cfg.ExportEnabled() {
		return errors.New("export not configured, set GOOGLE_SPREADSHEET_ID and the GOOGLE_OAUTH_* settings")
	}

	s, err := connect()
	if err != nil {
		return err
	}

	writer, err := sheetsgoogle.New(context.Background(), sheetsgoogle.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
		OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
	})
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	export := services.NewExportService(s.backend, writer, writer, logger())
	count, ref, err := export.ExportMonth(s.ctx(), s.user.UserID, flagExportYear, flagExportMonth)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println(mutedStyle.Render("Nothing to export for this period."))
		return nil
	}

	fmt.Printf("Exported %d expenses to %s\n", count, ref)
	return nil
}
