package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/csvsource"
	server "review_dashboard/internal/adapters/http_server"
	"review_dashboard/internal/adapters/nlp"
	"review_dashboard/internal/adapters/observability"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/shared"
	mysqlrepo "review_dashboard/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	mode, err := analysis.ParseMode(cfg.MissingFieldMode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MISSING_FIELD_MODE")
	}

	// source
	var src domain.Source
	switch cfg.DataSource {
	case "csv":
		src = csvsource.New(cfg.CSVPath)
	case "mysql":
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer db.Close()
		log.Info().Msg("database connection ok")
		src = mysqlrepo.New(db)
	default:
		log.Fatal().Str("source", cfg.DataSource).Msg("DATA_SOURCE must be csv or mysql")
	}

	repo := app.NewDatasetRepository(src, analysis.NewNormalizer(mode))
	if _, err := repo.Reload(ctx); err != nil {
		log.Fatal().Err(err).Str("source", src.Name()).Msg("initial dataset load failed")
	}

	// optional collaborators
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; cache errors will be ignored")
		}
		defer rc.Close()
		cache = rc
	}

	text := app.TextServices{}
	stop := analysis.DefaultStopwords
	if cfg.StopwordsPath != "" {
		if stop, err = analysis.LoadStopwords(cfg.StopwordsPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.StopwordsPath).Msg("load stopwords failed")
		}
	}
	text.Terms = analysis.NewTermCounter(stop)
	if cfg.NLPBase != "" {
		client, err := nlp.New(cfg.NLPBase, cfg.NLPKey, cfg.NLPRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize NLP client")
		}
		text.Scorer = client
		text.Cloud = client
	}

	q := app.NewQueryService(repo, cache, app.Settings{
		DeltaPrecision: cfg.DeltaPrecision,
		NegativeRating: cfg.NegativeRating,
		CacheTTL:       cfg.CacheTTL,
	}, text)

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Str("source", src.Name()).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
