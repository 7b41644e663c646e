package analysis_test

import (
	"time"

	"review_dashboard/internal/analysis"
	"review_dashboard/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rv(brand, category, product string, rating int, date string) domain.Review {
	return domain.Review{
		ID:          brand + "/" + product + "/" + date,
		Brand:       brand,
		ProductName: product,
		CategoryRaw: category,
		Category:    analysis.ExtractCategory(category),
		Rating:      rating,
		CreatedDate: day(date),
	}
}

// fixture: two brands over two years.
func fixture() []domain.Review {
	return []domain.Review{
		rv("Acme", "Electronics-Catalog", "Phone", 5, "2022-03-01"),
		rv("Acme", "Electronics-Catalog", "Phone", 1, "2022-06-10"),
		rv("Acme", "Home - OTHER", "Lamp", 4, "2023-01-15"),
		rv("Acme", "Home - OTHER", "Lamp", 5, "2023-02-20"),
		rv("Bolt", "Garden-Solo", "Hose", 2, "2023-04-01"),
		rv("Bolt", "Electronics-Catalog", "Radio", 3, "2023-05-05"),
		rv("Bolt", "Electronics-Catalog", "Radio", 5, "2022-07-07"),
	}
}
