package analysis_test

import (
	"errors"
	"reflect"
	"testing"

	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
)

func ids(rs []domain.Review) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestApply_NoSelection(t *testing.T) {
	base := fixture()
	res, err := analysis.Apply(base, domain.Selection{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Reviews) != len(base) {
		t.Fatalf("expected pass-through, got %d rows", len(res.Reviews))
	}
	want := domain.Options{
		Brands:     []string{"Acme", "Bolt"},
		Categories: []string{"Electronics", "Garden", "Home"},
		Products:   []string{"Hose", "Lamp", "Phone", "Radio"},
		Ratings:    []int{1, 2, 3, 4, 5},
	}
	if !reflect.DeepEqual(res.Options, want) {
		t.Fatalf("options = %+v, want %+v", res.Options, want)
	}
}

func TestApply_DependentDomains(t *testing.T) {
	cases := []struct {
		name string
		sel  domain.Selection
		rows int
		want domain.Options
	}{
		{
			name: "date range narrows every domain",
			sel:  domain.Selection{Start: ptr(day("2023-01-01")), End: ptr(day("2023-12-31"))},
			rows: 4,
			want: domain.Options{
				Brands:     []string{"Acme", "Bolt"},
				Categories: []string{"Electronics", "Garden", "Home"},
				Products:   []string{"Hose", "Lamp", "Radio"},
				Ratings:    []int{2, 3, 4, 5},
			},
		},
		{
			name: "brand narrows category, product and rating but not brand",
			sel:  domain.Selection{Brands: []string{"Bolt"}},
			rows: 3,
			want: domain.Options{
				Brands:     []string{"Acme", "Bolt"},
				Categories: []string{"Electronics", "Garden"},
				Products:   []string{"Hose", "Radio"},
				Ratings:    []int{2, 3, 5},
			},
		},
		{
			name: "category narrows product and rating only",
			sel:  domain.Selection{Brands: []string{"Acme"}, Categories: []string{"Home"}},
			rows: 2,
			want: domain.Options{
				Brands:     []string{"Acme", "Bolt"},
				Categories: []string{"Electronics", "Home"},
				Products:   []string{"Lamp"},
				Ratings:    []int{4, 5},
			},
		},
		{
			name: "product narrows rating; rating is terminal",
			sel:  domain.Selection{Products: []string{"Phone"}, Ratings: []int{1}},
			rows: 1,
			want: domain.Options{
				Brands:     []string{"Acme", "Bolt"},
				Categories: []string{"Electronics", "Garden", "Home"},
				Products:   []string{"Hose", "Lamp", "Phone", "Radio"},
				Ratings:    []int{1, 5},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := analysis.Apply(fixture(), tc.sel)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if len(res.Reviews) != tc.rows {
				t.Fatalf("rows = %d (%v), want %d", len(res.Reviews), ids(res.Reviews), tc.rows)
			}
			if !reflect.DeepEqual(res.Options, tc.want) {
				t.Fatalf("options = %+v, want %+v", res.Options, tc.want)
			}
		})
	}
}

func TestApply_InclusiveDateBounds(t *testing.T) {
	res, err := analysis.Apply(fixture(), domain.Selection{Start: ptr(day("2023-01-15")), End: ptr(day("2023-02-20"))})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Reviews) != 2 {
		t.Fatalf("expected both boundary rows, got %v", ids(res.Reviews))
	}
}

func TestApply_StaleSelectionIsEmptyNotError(t *testing.T) {
	sel := domain.Selection{Brands: []string{"Bolt"}, Products: []string{"Hose"}, Ratings: []int{5}}
	res, err := analysis.Apply(fixture(), sel)
	if err != nil {
		t.Fatalf("stale selection must not error: %v", err)
	}
	if len(res.Reviews) != 0 {
		t.Fatalf("expected empty result, got %v", ids(res.Reviews))
	}

	res, err = analysis.Apply(fixture(), domain.Selection{Brands: []string{"Gone"}})
	if err != nil || len(res.Reviews) != 0 {
		t.Fatalf("unknown brand: rows=%d err=%v", len(res.Reviews), err)
	}
}

func TestApply_InvalidRange(t *testing.T) {
	_, err := analysis.Apply(fixture(), domain.Selection{Start: ptr(day("2024-01-02")), End: ptr(day("2024-01-01"))})
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestApply_SubsetIdempotentAndPure(t *testing.T) {
	base := fixture()
	snapshot := fixture()
	sels := []domain.Selection{
		{Brands: []string{"Acme"}},
		{Categories: []string{"Electronics"}, Ratings: []int{5, 3}},
		{Start: ptr(day("2022-06-01")), Products: []string{"Radio", "Phone"}},
	}
	for _, sel := range sels {
		first, err := analysis.Apply(base, sel)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		all := map[string]bool{}
		for _, r := range base {
			all[r.ID] = true
		}
		for _, r := range first.Reviews {
			if !all[r.ID] {
				t.Fatalf("row %s not in base", r.ID)
			}
		}
		second, err := analysis.Apply(first.Reviews, sel)
		if err != nil {
			t.Fatalf("Apply again: %v", err)
		}
		if !reflect.DeepEqual(ids(first.Reviews), ids(second.Reviews)) {
			t.Fatalf("not idempotent: %v vs %v", ids(first.Reviews), ids(second.Reviews))
		}
	}
	if !reflect.DeepEqual(base, snapshot) {
		t.Fatalf("base dataset was mutated")
	}
}
