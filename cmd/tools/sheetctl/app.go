package main

import (
	"context"
	"database/sql"
	"fmt"

	"appointment-workers/internal/appointment"
	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/database"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/sheet"
)

// app is the pipeline wiring shared by the data commands. close releases
// the database handle when the postgres backend is used.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	loader  appointment.SnapshotLoader
	service *appointment.Service
	close   func()
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFromFile(opts.configPath)
	}
	return config.Load()
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	log := logger.NewStructured(opts.logLevel, "console", "stderr")
	a := &app{log: log, close: func() {}}

	if opts.snapshotPath != "" {
		snap, err := sheet.ReadSnapshotFile(opts.snapshotPath)
		if err != nil {
			return nil, err
		}
		a.loader = &sheet.StaticLoader{Snapshot: snap}
		a.service = appointment.NewService(a.loader, settingsFor(opts, log), log)
		return a, nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	var db *sql.DB
	if cfg.Sheets.Source == "postgres" {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db = pg.GetDB()
		a.close = func() { _ = pg.Close() }
	}

	source, err := sheet.NewSource(ctx, cfg.Sheets, db)
	if err != nil {
		a.close()
		return nil, err
	}
	a.loader = sheet.NewLoader(source, nil, sheet.TabsFromConfig(cfg.Sheets.Tabs), log)
	a.service = appointment.NewService(a.loader, appointment.SettingsFromConfig(cfg), log)
	return a, nil
}

// settingsFor uses the config file's vocabulary when one is given, defaults otherwise.
func settingsFor(opts *rootOptions, log logger.Logger) appointment.Settings {
	if opts.configPath == "" {
		return appointment.DefaultSettings()
	}
	cfg, err := config.LoadFromFile(opts.configPath)
	if err != nil {
		log.Warn("config unreadable, using default settings", map[string]interface{}{"error": err})
		return appointment.DefaultSettings()
	}
	return appointment.SettingsFromConfig(cfg)
}
