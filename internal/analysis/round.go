package analysis

import "github.com/shopspring/decimal"

// Round rounds half to even at the given number of decimal places.
func Round(x float64, places int) float64 {
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(x).RoundBank(int32(places)).InexactFloat64()
}

// meanOf returns sum/n rounded to 2 places; n must be > 0.
func meanOf(sum, n int) float64 {
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(n))).
		RoundBank(2).
		InexactFloat64()
}
