package sheet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
)

// Loader produces snapshots: from the cache when possible, otherwise by
// fetching the three tabs concurrently. A source failure is the only error
// it returns; cache trouble is logged and bypassed.
type Loader struct {
	source Source
	cache  SnapshotCache
	tabs   Tabs
	now    func() time.Time
	logger logger.Logger
}

func NewLoader(source Source, cache SnapshotCache, tabs Tabs, log logger.Logger) *Loader {
	if cache == nil {
		cache = NopCache{}
	}
	return &Loader{source: source, cache: cache, tabs: tabs, now: time.Now, logger: log}
}

func (l *Loader) Load(ctx context.Context, force bool) (*Snapshot, error) {
	if !force {
		snap, err := l.cache.Get(ctx)
		switch {
		case err != nil:
			metrics.SnapshotCacheLookups.WithLabelValues("error").Inc()
			l.logger.Warn("snapshot cache read failed, loading from source", map[string]interface{}{
				"error": apperrors.NewSnapshotCacheFailedError("get", err),
			})
		case snap != nil:
			metrics.SnapshotCacheLookups.WithLabelValues("hit").Inc()
			l.logger.Debug("snapshot served from cache", map[string]interface{}{"snapshotId": snap.ID})
			return snap, nil
		default:
			metrics.SnapshotCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	snap, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.cache.Set(ctx, snap); err != nil {
		l.logger.Warn("snapshot cache write failed", map[string]interface{}{
			"error": apperrors.NewSnapshotCacheFailedError("set", err),
		})
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Load reads the source.
func (l *Loader) Invalidate(ctx context.Context) error {
	if err := l.cache.Invalidate(ctx); err != nil {
		return apperrors.NewSnapshotCacheFailedError("invalidate", err)
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context) (*Snapshot, error) {
	var input, contacts, settings [][]interface{}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range []struct {
		tab string
		dst *[][]interface{}
	}{
		{l.tabs.Input, &input},
		{l.tabs.Contacts, &contacts},
		{l.tabs.Settings, &settings},
	} {
		job := job
		g.Go(func() error {
			table, err := l.source.Fetch(gctx, job.tab)
			if err != nil {
				return apperrors.NewSheetSourceUnavailableError(job.tab, err)
			}
			*job.dst = stripHeader(table)
			metrics.SheetRowsLoaded.WithLabelValues(job.tab).Add(float64(len(*job.dst)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.Error("sheet load failed", map[string]interface{}{"error": err})
		return nil, err
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		FetchedAt: l.now().UTC(),
		Input:     input,
		Contacts:  contacts,
		Settings:  settings,
	}
	l.logger.Info("sheet snapshot loaded", map[string]interface{}{
		"snapshotId": snap.ID,
		"inputRows":  len(input),
		"contacts":   len(contacts),
		"settings":   len(settings),
	})
	return snap, nil
}

func stripHeader(table [][]interface{}) [][]interface{} {
	if len(table) <= 1 {
		return [][]interface{}{}
	}
	return table[1:]
}
