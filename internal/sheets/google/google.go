// Package google implements the sheets ports over the Google Sheets API,
// authenticated with a user OAuth client and a stored token.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"babysteps/internal/core"
	ports "babysteps/internal/sheets"
)

// Config carries the export destination and the OAuth material. Client and
// token each accept either inline JSON or a file path; inline wins.
type Config struct {
	SpreadsheetID string
	SheetName     string

	OAuthClientFile string
	OAuthTokenFile  string
	OAuthClientJSON string
	OAuthTokenJSON  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year; tabs are kept per calendar year.
	sheetBase string
}

var (
	_ ports.ExpenseWriter = (*Client)(nil)
	_ ports.SummaryWriter = (*Client)(nil)
)

// New builds a Sheets client from the OAuth client and token in cfg.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	clientJSON, err := material(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	tokenJSON, err := material(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	oauthCfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Expenses"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetBase:     base,
	}, nil
}

// material resolves inline JSON or a file path, preferring inline.
func material(inline, file string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	if strings.TrimSpace(file) == "" {
		return nil, errors.New("no inline JSON and no file configured")
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return b, nil
}

// Append writes the expense rows to the current year's tab and returns the
// written range.
func (c *Client) Append(ctx context.Context, expenses []core.Expense) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rows := ports.Rows(expenses)
	if len(rows) == 0 {
		return "", nil
	}

	sheet := yearPrefixedName(c.sheetBase, time.Now().Year())
	rng := fmt.Sprintf("%s!A:D", sheet)
	vr := &gsheet.ValueRange{Values: rows}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// WriteSummary records a month's totals on the year tab, columns F:I of the
// month's row: month number, spent, budget, percentage.
func (c *Client) WriteSummary(ctx context.Context, year int, month int, summary core.MonthlySummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month: %d", month)
	}

	sheet := yearPrefixedName(c.sheetBase, year)
	rng := fmt.Sprintf("%s!F%d:I%d", sheet, month+1, month+1)
	vr := &gsheet.ValueRange{Values: [][]any{{
		month,
		summary.TotalSpent.Dollars(),
		summary.Budget.Dollars(),
		summary.Percentage,
	}}}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
