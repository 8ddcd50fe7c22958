package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"appointment-workers/internal/common/config"
	apperrors "appointment-workers/internal/common/errors"
)

// SheetsAPISource reads through the Sheets API v4 with unformatted values, so
// dates arrive as serial numbers.
type SheetsAPISource struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsAPISource authenticates with an API key when one is configured,
// otherwise with service-account JSON (inline or a file path).
func NewSheetsAPISource(ctx context.Context, cfg config.SheetsConfig, extra ...option.ClientOption) (*SheetsAPISource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, apperrors.NewSheetSourceMisconfiguredError("spreadsheet id is empty")
	}

	opts := clientOptions(cfg)
	if len(opts) == 0 && len(extra) == 0 {
		return nil, apperrors.NewSheetSourceMisconfiguredError("sheets api source needs an api key or credentials")
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsAPISource{service: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func clientOptions(cfg config.SheetsConfig) []option.ClientOption {
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return []option.ClientOption{option.WithAPIKey(key)}
	}
	creds := strings.TrimSpace(cfg.CredentialsJSON)
	if creds == "" {
		return nil
	}
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if strings.HasPrefix(creds, "{") {
		return append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	return append(opts, option.WithCredentialsFile(creds))
}

func (s *SheetsAPISource) Fetch(ctx context.Context, tab string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, tab+"!A1:F").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets api get %s: %w", tab, err)
	}

	table := make([][]interface{}, 0, len(resp.Values))
	for _, row := range resp.Values {
		if isBlankRow(row) {
			continue
		}
		table = append(table, row)
	}
	return table, nil
}
