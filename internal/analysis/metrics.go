package analysis

import (
	"github.com/shopspring/decimal"

	"review_dashboard/internal/domain"
)

// Expected shares of 1-star and 5-star reviews, as fractions of the count.
var (
	ExpectedOneStarShare  = decimal.RequireFromString("0.05")
	ExpectedFiveStarShare = decimal.RequireFromString("0.60")
)

// MetricsCalculator computes the headline numbers of a filtered view.
// DeltaPrecision is the number of decimals kept on deltas; 0 rounds to integers.
type MetricsCalculator struct {
	DeltaPrecision int
}

func (c MetricsCalculator) Compute(reviews []domain.Review) domain.Metrics {
	m := domain.Metrics{Count: len(reviews)}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		switch r.Rating {
		case MinRating:
			m.OneStarCount++
		case MaxRating:
			m.FiveStarCount++
		}
	}
	if m.Count > 0 {
		mean := meanOf(sum, m.Count)
		m.MeanRating = &mean
	}

	count := decimal.NewFromInt(int64(m.Count))
	expOne := count.Mul(ExpectedOneStarShare)
	expFive := count.Mul(ExpectedFiveStarShare)
	m.ExpectedOneStar = expOne.InexactFloat64()
	m.ExpectedFiveStar = expFive.InexactFloat64()
	m.OneStarDelta = c.delta(m.OneStarCount, expOne)
	m.FiveStarDelta = c.delta(m.FiveStarCount, expFive)
	return m
}

// delta keeps its sign: negative means below expectation.
func (c MetricsCalculator) delta(actual int, expected decimal.Decimal) float64 {
	p := c.DeltaPrecision
	if p < 0 {
		p = 0
	}
	return decimal.NewFromInt(int64(actual)).Sub(expected).RoundBank(int32(p)).InexactFloat64()
}
