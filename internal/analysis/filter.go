package analysis

import (
	"sort"
	"time"

	"review_dashboard/internal/domain"
)

// Result is the filtered view plus the selectable values of every stage.
type Result struct {
	Reviews []domain.Review
	Options domain.Options
}

// Apply runs the dependent filters in fixed order: date range, brand,
// category, product, rating. Each stage narrows the domain offered to the
// stages after it and never to the ones before. Unset stages pass through;
// values absent from the current domain simply match nothing.
//
// The input slice is never modified.
func Apply(reviews []domain.Review, sel domain.Selection) (Result, error) {
	if sel.Start != nil && sel.End != nil && sel.Start.After(*sel.End) {
		return Result{}, domain.ErrInvalidRange
	}

	cur := keep(reviews, func(r domain.Review) bool {
		if sel.Start != nil && r.CreatedDate.Before(civil(*sel.Start)) {
			return false
		}
		if sel.End != nil && r.CreatedDate.After(civil(*sel.End)) {
			return false
		}
		return true
	})

	var opts domain.Options
	opts.Brands = distinct(cur, brandOf)
	opts.Categories = distinct(cur, categoryOf)
	opts.Products = distinct(cur, productOf)
	opts.Ratings = distinctRatings(cur)

	if len(sel.Brands) > 0 {
		cur = keepIn(cur, brandOf, sel.Brands)
		opts.Categories = distinct(cur, categoryOf)
		opts.Products = distinct(cur, productOf)
		opts.Ratings = distinctRatings(cur)
	}
	if len(sel.Categories) > 0 {
		cur = keepIn(cur, categoryOf, sel.Categories)
		opts.Products = distinct(cur, productOf)
		opts.Ratings = distinctRatings(cur)
	}
	if len(sel.Products) > 0 {
		cur = keepIn(cur, productOf, sel.Products)
		opts.Ratings = distinctRatings(cur)
	}
	if len(sel.Ratings) > 0 {
		want := make(map[int]struct{}, len(sel.Ratings))
		for _, v := range sel.Ratings {
			want[v] = struct{}{}
		}
		cur = keep(cur, func(r domain.Review) bool {
			_, ok := want[r.Rating]
			return ok
		})
	}

	return Result{Reviews: cur, Options: opts}, nil
}

func brandOf(r domain.Review) string    { return r.Brand }
func categoryOf(r domain.Review) string { return r.Category }
func productOf(r domain.Review) string  { return r.ProductName }

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// keep always returns a fresh slice.
func keep(in []domain.Review, pred func(domain.Review) bool) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func keepIn(in []domain.Review, get func(domain.Review) string, values []string) []domain.Review {
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	return keep(in, func(r domain.Review) bool {
		_, ok := want[get(r)]
		return ok
	})
}

// distinct returns the sorted non-empty values of a field.
func distinct(in []domain.Review, get func(domain.Review) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range in {
		v := get(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func distinctRatings(in []domain.Review) []int {
	seen := make(map[int]struct{})
	out := []int{}
	for _, r := range in {
		if _, ok := seen[r.Rating]; ok {
			continue
		}
		seen[r.Rating] = struct{}{}
		out = append(out, r.Rating)
	}
	sort.Ints(out)
	return out
}
