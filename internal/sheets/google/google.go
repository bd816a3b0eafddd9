package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"dompet/internal/sheets"
)

// Client exports ledger snapshots into one spreadsheet, two tabs per owner.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

var _ sheets.Exporter = (*Client)(nil)

// New creates a Sheets client. When credentialsFile is empty the
// service account JSON is taken from GOOGLE_SERVICE_ACCOUNT_JSON, then
// application default credentials. Extra options are appended last.
func New(ctx context.Context, spreadsheetID, credentialsFile string, extra ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	opts, err := credentialOptions(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsScope))
	opts = append(opts, extra...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID)
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func credentialOptions(ctx context.Context, credentialsFile string) ([]goption.ClientOption, error) {
	credentialsFile = strings.TrimSpace(credentialsFile)
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))

	switch {
	case credentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", credentialsFile)
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return []goption.ClientOption{goption.WithCredentialsJSON(data)}, nil
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []goption.ClientOption{goption.WithCredentialsJSON([]byte(inline))}, nil
	default:
		slog.InfoContext(ctx, "Using application default credentials")
		return nil, nil
	}
}

// Export replaces both owner tabs with the snapshot contents. Missing tabs
// are created first.
func (c *Client) Export(ctx context.Context, snap sheets.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(snap.Owner) == "" {
		return errors.New("export: empty owner")
	}

	txTab, debtTab := sheets.TabNames(snap.Owner)
	if err := c.ensureTabs(ctx, txTab, debtTab); err != nil {
		return err
	}

	clearReq := &gsheet.BatchClearValuesRequest{
		Ranges: []string{quote(txTab) + "!A:Z", quote(debtTab) + "!A:Z"},
	}
	if _, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, clearReq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear tabs: %w", err)
	}

	update := &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*gsheet.ValueRange{
			{Range: quote(txTab) + "!A1", Values: sheets.TransactionRows(snap.Transactions)},
			{Range: quote(debtTab) + "!A1", Values: sheets.DebtRows(snap.DebtCredits)},
		},
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, update).Context(ctx).Do(); err != nil {
		return fmt.Errorf("write tabs: %w", err)
	}

	slog.InfoContext(ctx, "Exported ledger snapshot",
		"owner", snap.Owner,
		"transactions", len(snap.Transactions),
		"debt_credits", len(snap.DebtCredits))
	return nil
}

func (c *Client) ensureTabs(ctx context.Context, titles ...string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	have := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			have[sh.Properties.Title] = true
		}
	}

	var reqs []*gsheet.Request
	for _, t := range titles {
		if !have[t] {
			reqs = append(reqs, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: t}},
			})
		}
	}
	if len(reqs) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tabs: %w", err)
	}
	slog.InfoContext(ctx, "Created sheet tabs", "count", len(reqs))
	return nil
}

// quote wraps a sheet title for A1 notation.
func quote(title string) string {
	return "'" + title + "'"
}
