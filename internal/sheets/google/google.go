// Package google mirrors the ledger into a Google Sheets spreadsheet. One
// row per transaction, keyed by the transaction id in column A.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/ports"
)

const DefaultSheetName = "Transações"

var _ ports.LedgerExporter = (*Exporter)(nil)

type Config struct {
	SpreadsheetID string
	SheetName     string
	// Location renders transaction dates. Defaults to UTC.
	Location *time.Location
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
	logger        *applog.Logger

	mu      sync.Mutex
	sheetID *int64
}

// New creates an exporter authenticated with service account credentials
// taken from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config, logger *applog.Logger) *Exporter {
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = DefaultSheetName
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		loc:           loc,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, logger *applog.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Read service account credentials", "path", serviceAccountFile, "size", len(data))
		credentialsJSON = data
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

// UpsertTransaction rewrites the transaction's row, appending one when
// the id is not in the sheet yet.
func (e *Exporter) UpsertTransaction(ctx context.Context, t core.Transaction, category string) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	row := transactionRow(t, category, e.loc)

	if n := findRow(ids, t.ID); n > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", e.sheetName, n, lastColumn, n)
		_, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in sheet %s: %w", n, e.sheetName, err)
		}
		e.logger.DebugContext(ctx, "Updated ledger row", applog.FieldEntityID, t.ID, "row", n)
		return nil
	}

	values := [][]any{row}
	if len(ids) == 0 {
		values = [][]any{header(), row}
	}
	rng := fmt.Sprintf("%s!A:%s", e.sheetName, lastColumn)
	_, err = e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}
	e.logger.DebugContext(ctx, "Appended ledger row", applog.FieldEntityID, t.ID)
	return nil
}

// RemoveTransaction deletes the transaction's row. A missing row is not an
// error.
func (e *Exporter) RemoveTransaction(ctx context.Context, id int64) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	n := findRow(ids, id)
	if n == 0 {
		e.logger.DebugContext(ctx, "Ledger row already absent", applog.FieldEntityID, id)
		return nil
	}

	sheetID, err := e.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(n - 1),
					EndIndex:   int64(n),
					// zero is a valid sheet id and row index
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", n, e.sheetName, err)
	}
	e.logger.DebugContext(ctx, "Removed ledger row", applog.FieldEntityID, id, "row", n)
	return nil
}

func (e *Exporter) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// resolveSheetID looks up the numeric id of the sheet tab once.
func (e *Exporter) resolveSheetID(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sheetID != nil {
		return *e.sheetID, nil
	}

	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == e.sheetName {
			id := s.Properties.SheetId
			e.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", e.sheetName)
}
