package sheet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"appointment-workers/internal/common/config"
	apperrors "appointment-workers/internal/common/errors"
	apphttp "appointment-workers/internal/common/http"
)

// Source reads one tab as a 2-D cell table, header row included. Cells are
// string, float64 or time.Time depending on the backend.
type Source interface {
	Fetch(ctx context.Context, tab string) ([][]interface{}, error)
}

// Tabs names the three tabs a snapshot is built from.
type Tabs struct {
	Input    string
	Contacts string
	Settings string
}

func TabsFromConfig(cfg config.TabConfig) Tabs {
	return Tabs{Input: cfg.Input, Contacts: cfg.Contacts, Settings: cfg.Settings}
}

// NewSource picks the backend named by cfg.Source. db is only used by the
// postgres backend and may be nil otherwise.
func NewSource(ctx context.Context, cfg config.SheetsConfig, db *sql.DB) (Source, error) {
	switch cfg.Source {
	case "", "csv":
		if cfg.SpreadsheetID == "" {
			return nil, apperrors.NewSheetSourceMisconfiguredError("spreadsheet id is empty")
		}
		client := apphttp.NewClient(config.GetDuration(cfg.Timeout))
		return NewCSVSource(cfg.CSVBaseURL, cfg.SpreadsheetID, client), nil
	case "api":
		return NewSheetsAPISource(ctx, cfg)
	case "postgres":
		if db == nil {
			return nil, apperrors.NewSheetSourceMisconfiguredError("postgres source selected without a database")
		}
		return NewPostgresSource(db, cfg.MirrorTable)
	default:
		return nil, apperrors.NewSheetSourceMisconfiguredError(fmt.Sprintf("unknown source %q", cfg.Source))
	}
}

// isBlankRow reports whether every cell renders empty.
func isBlankRow(cells []interface{}) bool {
	for _, c := range cells {
		switch v := c.(type) {
		case nil:
		case string:
			if v != "" {
				return false
			}
		case time.Time:
			if !v.IsZero() {
				return false
			}
		default:
			return false
		}
	}
	return true
}
