package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_dashboard/internal/adapters/csvsource"
	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/shared"
	mysqlrepo "review_dashboard/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("csv", cfg.CSVPath).
		Int("workers", cfg.ImportWorkers).
		Int("batch", cfg.ImportBatch).
		Msg("importer starting")

	raw, err := csvsource.New(cfg.CSVPath).ReadRows(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("read csv failed")
	}
	reviews, rep := analysis.NewNormalizer(analysis.ModeLenient).NormalizeAll(raw)
	log.Info().
		Int("read", rep.Read).
		Int("kept", rep.Kept).
		Interface("dropped", rep.Reasons).
		Msg("rows normalized")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	workers := cfg.ImportWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for i, batch := range batches(reviews, cfg.ImportBatch) {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(n int, rs []domain.Review) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := repo.UpsertReviews(ctx, rs); err != nil {
				failed.Add(int64(len(rs)))
				log.Warn().Int("batch", n).Int("rows", len(rs)).Err(err).Msg("upsert failed")
				return
			}
			log.Debug().Int("batch", n).Int("rows", len(rs)).Msg("upsert ok")
		}(i, batch)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Fatal().Int64("failed_rows", n).Msg("import finished with errors")
	}
	log.Info().Int("rows", len(reviews)).Msg("import completed")
}

// batches splits rs into consecutive chunks of at most size.
func batches(rs []domain.Review, size int) [][]domain.Review {
	if size <= 0 {
		size = 500
	}
	var out [][]domain.Review
	for start := 0; start < len(rs); start += size {
		end := min(start+size, len(rs))
		out = append(out, rs[start:end])
	}
	return out
}
