package app_test

import (
	"context"
	"errors"
	"strings"

	"review_dashboard/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	version    string
	rows       []domain.RawRow
	reads      int
	readErr    error
	versionErr error
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Version(ctx context.Context) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return f.version, nil
}
func (f *fakeSource) ReadRows(ctx context.Context) ([]domain.RawRow, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

type fakeCache struct {
	store map[string]any
	sets  int
	err   error // returned by Get and Set when set
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.DashboardView:
		*d = v.(domain.DashboardView)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.err != nil {
		return c.err
	}
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	c.sets++
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error { delete(c.store, key); return nil }

// fakeScorer scores by the number of "!" in the text, negated.
type fakeScorer struct{ fail bool }

func (s fakeScorer) ScoreText(ctx context.Context, text string) (float64, error) {
	if s.fail {
		return 0, errors.New("scorer down")
	}
	return -float64(strings.Count(text, "!")), nil
}

type fakeCloud struct{ got []string }

func (c *fakeCloud) RenderCloud(ctx context.Context, texts []string) ([]byte, string, error) {
	c.got = texts
	return []byte("PNG"), "image/png", nil
}

func row(brand, category, product, rating, date, headline string) domain.RawRow {
	return domain.RawRow{
		"Brand Name":      brand,
		"PGC_Desc":        category,
		"Product Name":    product,
		"Review Rating":   rating,
		"Created Date":    date,
		"Review Headline": headline,
	}
}

func sampleRows() []domain.RawRow {
	return []domain.RawRow{
		row("Acme", "Electronics-Catalog", "Phone", "1", "2022-03-01", "Dead on arrival!!"),
		row("Acme", "Electronics-Catalog", "Phone", "5", "2023-03-01", "Great"),
		row("Acme", "Home - OTHER", "Lamp", "1", "2023-05-01", "Flickers!"),
		row("Bolt", "Garden-Solo", "Hose", "4", "2021-08-09", ""),
		row("Bolt", "Garden-Solo", "Hose", "x", "2021-08-09", "bad rating"),
	}
}
