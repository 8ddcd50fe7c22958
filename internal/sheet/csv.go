package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/url"
	"strings"

	apphttp "appointment-workers/internal/common/http"
)

// CSVSource reads the public CSV export of a shared spreadsheet. Every cell
// arrives as text.
type CSVSource struct {
	baseURL       string
	spreadsheetID string
	client        *apphttp.Client
}

func NewCSVSource(baseURL, spreadsheetID string, client *apphttp.Client) *CSVSource {
	return &CSVSource{
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		client:        client,
	}
}

func (s *CSVSource) URL(tab string) string {
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s", s.baseURL, s.spreadsheetID, url.QueryEscape(tab))
}

func (s *CSVSource) Fetch(ctx context.Context, tab string) ([][]interface{}, error) {
	body, err := s.client.GetBody(ctx, s.URL(tab))
	if err != nil {
		return nil, fmt.Errorf("fetch csv for tab %s: %w", tab, err)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv for tab %s: %w", tab, err)
	}

	table := make([][]interface{}, 0, len(records))
	for _, record := range records {
		row := make([]interface{}, len(record))
		for i, field := range record {
			row[i] = strings.TrimSpace(field)
		}
		if isBlankRow(row) {
			continue
		}
		table = append(table, row)
	}
	return table, nil
}
