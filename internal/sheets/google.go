package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const valueInputOption = "RAW"

// Spreadsheet is a Google spreadsheet whose sheets are used as tables. All
// tables of one spreadsheet share a write limiter.
type Spreadsheet struct {
	values  *gsheets.SpreadsheetsValuesService
	id      string
	limiter *rate.Limiter
}

// NewSpreadsheet connects with a service account credentials file. perMinute
// caps API calls; zero disables the cap.
func NewSpreadsheet(ctx context.Context, credentialsFile, id string, perMinute int) (*Spreadsheet, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}

	return &Spreadsheet{
		values:  svc.Spreadsheets.Values,
		id:      id,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (s *Spreadsheet) Table(name string) *GoogleTable {
	return &GoogleTable{spreadsheet: s, name: name}
}

type GoogleTable struct {
	spreadsheet *Spreadsheet
	name        string
}

func (t *GoogleTable) Name() string { return t.name }

func (t *GoogleTable) Values(ctx context.Context) ([][]string, error) {
	if err := t.spreadsheet.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := t.spreadsheet.values.Get(t.spreadsheet.id, quoteRange(t.name, "")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", t.name, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for idx, cell := range raw {
			row[idx] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *GoogleTable) Update(ctx context.Context, updates []RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if err := t.spreadsheet.limiter.Wait(ctx); err != nil {
		return err
	}

	req := &gsheets.BatchUpdateValuesRequest{ValueInputOption: valueInputOption}
	for _, update := range updates {
		req.Data = append(req.Data, &gsheets.ValueRange{
			Range:  quoteRange(t.name, fmt.Sprintf("A%d", update.Row)),
			Values: [][]any{update.Values},
		})
	}

	if _, err := t.spreadsheet.values.BatchUpdate(t.spreadsheet.id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %q: %w", t.name, err)
	}
	return nil
}

func (t *GoogleTable) Append(ctx context.Context, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if err := t.spreadsheet.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := t.spreadsheet.values.Append(t.spreadsheet.id, quoteRange(t.name, "A1"), &gsheets.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %q: %w", t.name, err)
	}
	return nil
}

// quoteRange builds an A1 range for a sheet name that may contain spaces or quotes.
func quoteRange(sheet, cells string) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}
