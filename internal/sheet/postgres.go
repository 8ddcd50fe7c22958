package sheet

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	apperrors "appointment-workers/internal/common/errors"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresSource reads a mirror of the spreadsheet kept as one row per cell:
// (tab, row_index, col_index, value).
type PostgresSource struct {
	db    *sql.DB
	query string
}

func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if table == "" {
		table = "sheet_cells"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, apperrors.NewSheetSourceMisconfiguredError(fmt.Sprintf("invalid mirror table name %q", table))
	}
	return &PostgresSource{
		db:    db,
		query: fmt.Sprintf("SELECT row_index, col_index, value FROM %s WHERE tab = $1 ORDER BY row_index, col_index", table),
	}, nil
}

func (s *PostgresSource) Fetch(ctx context.Context, tab string) ([][]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, s.query, tab)
	if err != nil {
		return nil, fmt.Errorf("query mirror for tab %s: %w", tab, err)
	}
	defer rows.Close()

	var (
		table   [][]interface{}
		current []interface{}
		lastRow = -1
	)
	flush := func() {
		if current != nil && !isBlankRow(current) {
			table = append(table, current)
		}
		current = nil
	}

	for rows.Next() {
		var (
			rowIdx, colIdx int
			value          sql.NullString
		)
		if err := rows.Scan(&rowIdx, &colIdx, &value); err != nil {
			return nil, fmt.Errorf("scan mirror cell: %w", err)
		}
		if colIdx < 0 {
			continue
		}
		if rowIdx != lastRow {
			flush()
			lastRow = rowIdx
		}
		for len(current) <= colIdx {
			current = append(current, "")
		}
		current[colIdx] = value.String
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mirror rows: %w", err)
	}
	flush()

	if table == nil {
		table = [][]interface{}{}
	}
	return table, nil
}
