package analysis

import (
	"fmt"
	"sort"
	"strings"

	"review_dashboard/internal/domain"
)

// Group-field presets used by the dashboard tables.
var (
	ByCategory = []domain.GroupField{domain.FieldBrand, domain.FieldCategory}
	ByProduct  = []domain.GroupField{domain.FieldBrand, domain.FieldProduct}
)

func fieldValue(r domain.Review, f domain.GroupField) (string, error) {
	switch f {
	case domain.FieldBrand:
		return r.Brand, nil
	case domain.FieldCategory:
		return r.Category, nil
	case domain.FieldProduct:
		return r.ProductName, nil
	case domain.FieldSKU:
		return deref(r.SKU), nil
	}
	return "", fmt.Errorf("%w: group field %q", domain.ErrUnknownField, f)
}

type group struct {
	key   []string
	year  int
	sum   int
	count int
}

// AggregateByYear groups by fields plus creation year and reports the mean
// rating of each group. Rows are ordered by year descending, then by key
// fields ascending.
func AggregateByYear(reviews []domain.Review, fields []domain.GroupField) ([]domain.AggregateRow, error) {
	for _, f := range fields {
		if _, err := fieldValue(domain.Review{}, f); err != nil {
			return nil, err
		}
	}

	groups := make(map[string]*group)
	for _, r := range reviews {
		key := make([]string, len(fields))
		for i, f := range fields {
			key[i], _ = fieldValue(r, f)
		}
		id := fmt.Sprintf("%d\x1f%s", r.Year(), strings.Join(key, "\x1f"))
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, year: r.Year()}
			groups[id] = g
		}
		g.sum += r.Rating
		g.count++
	}

	out := make([]domain.AggregateRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.AggregateRow{
			Key:        g.key,
			Year:       g.year,
			MeanRating: meanOf(g.sum, g.count),
			Count:      g.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		for k := range out[i].Key {
			if out[i].Key[k] != out[j].Key[k] {
				return out[i].Key[k] < out[j].Key[k]
			}
		}
		return false
	})
	return out, nil
}
