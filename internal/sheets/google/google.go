package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finboard/internal/core"
	"finboard/internal/ledger"
)

// Client reads the transaction book from a spreadsheet and appends change
// events to a second sheet used as an audit log.
type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	changesSheet      string
}

// Ensure interface conformance
var (
	_ ledger.TransactionLister = (*Client)(nil)
	_ ledger.ChangeRecorder    = (*Client)(nil)
)

// Options selects the spreadsheet and the sheet names inside it.
type Options struct {
	SpreadsheetID     string
	TransactionsSheet string
	ChangesSheet      string
}

// New creates a Sheets client authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.TransactionsSheet == "" {
		opts.TransactionsSheet = "Transactions"
	}
	if opts.ChangesSheet == "" {
		opts.ChangesSheet = "Changes"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     opts.SpreadsheetID,
		transactionsSheet: opts.TransactionsSheet,
		changesSheet:      opts.ChangesSheet,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ListTransactions reads A:G of the transactions sheet, newest first.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:G", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	txs, skipped := parseTransactions(resp.Values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed transaction rows",
			"sheet", c.transactionsSheet, "count", skipped)
	}
	return txs, nil
}

// RecordChange appends one row: timestamp, kind, op, id, name.
func (c *Client) RecordChange(ctx context.Context, ev core.ChangeEvent) error {
	rng := fmt.Sprintf("%s!A:E", c.changesSheet)
	vr := &gsheet.ValueRange{Values: [][]interface{}{changeRow(ev)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append change to %s: %w", c.changesSheet, err)
	}
	return nil
}

func changeRow(ev core.ChangeEvent) []interface{} {
	return []interface{}{ev.At.UTC().Format(time.RFC3339), string(ev.Kind), string(ev.Op), ev.ID, ev.Name}
}
