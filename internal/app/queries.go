package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
)

// DatasetProvider is satisfied by *DatasetRepository.
type DatasetProvider interface {
	Dataset(ctx context.Context) (*domain.Dataset, error)
	Reload(ctx context.Context) (*domain.Dataset, error)
}

type Settings struct {
	DeltaPrecision int
	NegativeRating int
	CacheTTL       time.Duration
}

// TextServices are the collaborators of the negative-comment views. Scorer
// and Cloud are optional.
type TextServices struct {
	Terms  *analysis.TermCounter
	Scorer domain.SentimentScorer
	Cloud  domain.CloudRenderer
}

type QueryService struct {
	data      DatasetProvider
	cache     domain.Cache
	cacheTTL  time.Duration
	metrics   analysis.MetricsCalculator
	negRating int
	text      TextServices
}

func NewQueryService(d DatasetProvider, c domain.Cache, s Settings, text TextServices) *QueryService {
	if s.NegativeRating == 0 {
		s.NegativeRating = analysis.MinRating
	}
	if text.Terms == nil {
		text.Terms = analysis.NewTermCounter(analysis.DefaultStopwords)
	}
	return &QueryService{
		data:      d,
		cache:     c,
		cacheTTL:  s.CacheTTL,
		metrics:   analysis.MetricsCalculator{DeltaPrecision: s.DeltaPrecision},
		negRating: s.NegativeRating,
		text:      text,
	}
}

func (s *QueryService) Info(ctx context.Context) (domain.DatasetInfo, error) {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return ds.Info(), nil
}

func (s *QueryService) Reload(ctx context.Context) (domain.DatasetInfo, error) {
	ds, err := s.data.Reload(ctx)
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return ds.Info(), nil
}

// filtered runs the filter engine over the current dataset.
func (s *QueryService) filtered(ctx context.Context, sel domain.Selection) (analysis.Result, string, error) {
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return analysis.Result{}, "", err
	}
	res, err := analysis.Apply(ds.Reviews, sel)
	if err != nil {
		return analysis.Result{}, "", err
	}
	return res, ds.Version, nil
}

func (s *QueryService) Dashboard(ctx context.Context, sel domain.Selection) (domain.DashboardView, error) {
	if sel.Start != nil && sel.End != nil && sel.Start.After(*sel.End) {
		return domain.DashboardView{}, domain.ErrInvalidRange
	}
	ds, err := s.data.Dataset(ctx)
	if err != nil {
		return domain.DashboardView{}, err
	}

	key := fmt.Sprintf("dashboard:%s:%s", ds.Version, SelectionKey(sel))
	var out domain.DashboardView
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dashboard cache get failed; recomputing")
		} else if ok {
			return out, nil
		}
	}

	start := time.Now()
	res, err := analysis.Apply(ds.Reviews, sel)
	if err != nil {
		return domain.DashboardView{}, err
	}
	byCat, err := aggregateView(res.Reviews, analysis.ByCategory)
	if err != nil {
		return domain.DashboardView{}, err
	}
	byProd, err := aggregateView(res.Reviews, analysis.ByProduct)
	if err != nil {
		return domain.DashboardView{}, err
	}
	out = domain.DashboardView{
		DatasetVersion: ds.Version,
		Options:        res.Options,
		Metrics:        s.metrics.Compute(res.Reviews),
		ByCategory:     byCat,
		ByProduct:      byProd,
		Reviews:        tableRows(res.Reviews),
	}
	observability.ObservePipeline("dashboard", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dashboard cache set failed")
		}
	}
	return out, nil
}

func (s *QueryService) Options(ctx context.Context, sel domain.Selection) (domain.Options, error) {
	res, _, err := s.filtered(ctx, sel)
	if err != nil {
		return domain.Options{}, err
	}
	return res.Options, nil
}

func (s *QueryService) Metrics(ctx context.Context, sel domain.Selection) (domain.Metrics, error) {
	res, _, err := s.filtered(ctx, sel)
	if err != nil {
		return domain.Metrics{}, err
	}
	start := time.Now()
	m := s.metrics.Compute(res.Reviews)
	observability.ObservePipeline("metrics", time.Since(start))
	return m, nil
}

func (s *QueryService) Reviews(ctx context.Context, sel domain.Selection) ([]domain.TableRow, error) {
	res, _, err := s.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}
	return tableRows(res.Reviews), nil
}

// Aggregate returns the "category" or "product" grouped view.
func (s *QueryService) Aggregate(ctx context.Context, sel domain.Selection, group string) (domain.AggregateView, error) {
	var fields []domain.GroupField
	switch group {
	case "category":
		fields = analysis.ByCategory
	case "product":
		fields = analysis.ByProduct
	default:
		return domain.AggregateView{}, fmt.Errorf("%w: aggregate %q", domain.ErrNotFound, group)
	}
	res, _, err := s.filtered(ctx, sel)
	if err != nil {
		return domain.AggregateView{}, err
	}
	start := time.Now()
	v, err := aggregateView(res.Reviews, fields)
	observability.ObservePipeline("aggregate_"+group, time.Since(start))
	return v, err
}

func (s *QueryService) NegativeTexts(ctx context.Context, sel domain.Selection, field domain.TextField) ([]string, error) {
	res, _, err := s.filtered(ctx, sel)
	if err != nil {
		return nil, err
	}
	return analysis.ExtractTexts(res.Reviews, s.negRating, field)
}

func (s *QueryService) NegativeTerms(ctx context.Context, sel domain.Selection, field domain.TextField, limit int) ([]domain.TermCount, error) {
	texts, err := s.NegativeTexts(ctx, sel, field)
	if err != nil {
		return nil, err
	}
	return s.text.Terms.Top(texts, limit), nil
}

func (s *QueryService) NegativeSentiment(ctx context.Context, sel domain.Selection, field domain.TextField) (domain.SentimentSummary, error) {
	if s.text.Scorer == nil {
		return domain.SentimentSummary{}, fmt.Errorf("%w: sentiment scorer", domain.ErrNotConfigured)
	}
	texts, err := s.NegativeTexts(ctx, sel, field)
	if err != nil {
		return domain.SentimentSummary{}, err
	}
	out := domain.SentimentSummary{Scores: make([]domain.SentimentScore, 0, len(texts))}
	sum := 0.0
	for _, t := range texts {
		score, err := s.text.Scorer.ScoreText(ctx, t)
		if err != nil {
			return domain.SentimentSummary{}, fmt.Errorf("score text: %w", err)
		}
		out.Scores = append(out.Scores, domain.SentimentScore{Text: t, Score: score})
		sum += score
	}
	if n := len(out.Scores); n > 0 {
		mean := analysis.Round(sum/float64(n), 2)
		out.Mean = &mean
	}
	return out, nil
}

func (s *QueryService) NegativeCloud(ctx context.Context, sel domain.Selection, field domain.TextField) ([]byte, string, error) {
	if s.text.Cloud == nil {
		return nil, "", fmt.Errorf("%w: cloud renderer", domain.ErrNotConfigured)
	}
	texts, err := s.NegativeTexts(ctx, sel, field)
	if err != nil {
		return nil, "", err
	}
	return s.text.Cloud.RenderCloud(ctx, texts)
}

func aggregateView(rs []domain.Review, fields []domain.GroupField) (domain.AggregateView, error) {
	rows, err := analysis.AggregateByYear(rs, fields)
	if err != nil {
		return domain.AggregateView{}, err
	}
	return domain.AggregateView{Fields: fields, Rows: rows}, nil
}

func tableRows(rs []domain.Review) []domain.TableRow {
	out := make([]domain.TableRow, len(rs))
	for i, r := range rs {
		out[i] = r.TableRow()
	}
	return out
}

// SelectionKey is a stable hash of a selection; value order does not matter.
func SelectionKey(sel domain.Selection) string {
	sorted := func(in []string) string {
		c := append([]string(nil), in...)
		sort.Strings(c)
		return strings.Join(c, "\x1f")
	}
	ratings := append([]int(nil), sel.Ratings...)
	sort.Ints(ratings)
	rs := make([]string, len(ratings))
	for i, n := range ratings {
		rs[i] = strconv.Itoa(n)
	}
	date := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.DateOnly)
	}
	sig := strings.Join([]string{
		date(sel.Start), date(sel.End),
		sorted(sel.Brands), sorted(sel.Categories), sorted(sel.Products),
		strings.Join(rs, ","),
	}, "|")
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])
}
