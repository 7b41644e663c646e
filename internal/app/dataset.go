package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
)

// DatasetRepository holds the normalized dataset for the process lifetime.
// It reloads only when invalidated or when the source reports a new version.
type DatasetRepository struct {
	src  domain.Source
	norm *analysis.Normalizer
	now  func() time.Time

	mu      sync.RWMutex
	current *domain.Dataset
	stale   bool
	failed  string // source version whose load failed; not retried implicitly

	group singleflight.Group
}

func NewDatasetRepository(src domain.Source, norm *analysis.Normalizer) *DatasetRepository {
	return &DatasetRepository{src: src, norm: norm, now: time.Now}
}

// Dataset returns the loaded dataset, loading it first if needed. Once a
// dataset is loaded it keeps being served when the version check or an
// implicit reload fails; a version whose load failed is only retried by an
// explicit Reload or Invalidate.
func (r *DatasetRepository) Dataset(ctx context.Context) (*domain.Dataset, error) {
	r.mu.RLock()
	cur, stale, failed := r.current, r.stale, r.failed
	r.mu.RUnlock()

	if cur == nil {
		return r.Reload(ctx)
	}

	v, err := r.src.Version(ctx)
	if err != nil {
		log.Warn().Err(err).Str("source", r.src.Name()).Msg("source version check failed; serving loaded dataset")
		return cur, nil
	}
	switch {
	case stale:
	case v == cur.Version || v == failed:
		return cur, nil
	default:
		log.Info().Str("old", cur.Version).Str("new", v).Msg("source changed; reloading dataset")
	}

	ds, err := r.Reload(ctx)
	if err != nil {
		r.mu.Lock()
		r.stale, r.failed = false, v
		r.mu.Unlock()
		log.Warn().Err(err).Str("version", v).Msg("reload failed; serving previous dataset")
		return cur, nil
	}
	return ds, nil
}

// Invalidate marks the dataset stale; the next Dataset call reloads it.
func (r *DatasetRepository) Invalidate() {
	r.mu.Lock()
	r.stale, r.failed = true, ""
	r.mu.Unlock()
}

// Reload reads and normalizes the source. Concurrent callers share one load.
// On failure the previous dataset, if any, stays in place.
func (r *DatasetRepository) Reload(ctx context.Context) (*domain.Dataset, error) {
	v, err, _ := r.group.Do("load", func() (any, error) {
		ds, err := r.load(ctx)
		if err != nil {
			observability.ObserveDatasetLoad(r.src.Name(), "error")
			return nil, err
		}
		r.mu.Lock()
		r.current, r.stale, r.failed = ds, false, ""
		r.mu.Unlock()
		observability.ObserveDatasetLoad(r.src.Name(), "ok")
		observability.SetDatasetRows(ds.Drops.Kept, ds.Drops.Dropped())
		return ds, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	return v.(*domain.Dataset), nil
}

func (r *DatasetRepository) load(ctx context.Context) (*domain.Dataset, error) {
	start := r.now()
	version, err := r.src.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", r.src.Name(), err)
	}
	rows, err := r.src.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.src.Name(), err)
	}
	reviews, drops := r.norm.NormalizeAll(rows)

	ds := &domain.Dataset{
		Reviews:  reviews,
		Version:  version,
		Source:   r.src.Name(),
		LoadedAt: r.now(),
		Drops:    drops,
	}
	for i, rv := range reviews {
		if i == 0 || rv.CreatedDate.Before(ds.MinDate) {
			ds.MinDate = rv.CreatedDate
		}
		if i == 0 || rv.CreatedDate.After(ds.MaxDate) {
			ds.MaxDate = rv.CreatedDate
		}
	}

	log.Info().
		Str("source", ds.Source).
		Str("version", version).
		Str("mode", string(r.norm.Mode())).
		Int("read", drops.Read).
		Int("kept", drops.Kept).
		Int("dropped", drops.Dropped()).
		Dur("took", r.now().Sub(start)).
		Msg("dataset loaded")
	return ds, nil
}
