package domain

import "time"

// RawRow is one source row keyed by header name.
type RawRow map[string]string

type Review struct {
	ID          string    `json:"id"`
	Brand       string    `json:"brand"`
	ProductName string    `json:"product_name"`
	SKU         *string   `json:"sku,omitempty"`
	CategoryRaw string    `json:"category_raw"`
	Category    string    `json:"category"` // always derived from CategoryRaw
	Rating      int       `json:"rating"`
	CreatedDate time.Time `json:"created_date"` // civil date, 00:00 UTC
	Headline    *string   `json:"headline,omitempty"`
	Comments    *string   `json:"comments,omitempty"`
}

// Year is the grouping year of the review's creation date.
func (r Review) Year() int { return r.CreatedDate.Year() }

// TableRow is the subset of a review shown in the reviews table.
type TableRow struct {
	ID          string  `json:"id"`
	Brand       string  `json:"brand"`
	SKU         *string `json:"sku,omitempty"`
	ProductName string  `json:"product_name"`
	Rating      int     `json:"rating"`
	Headline    *string `json:"headline,omitempty"`
	Comments    *string `json:"comments,omitempty"`
}

func (r Review) TableRow() TableRow {
	return TableRow{
		ID:          r.ID,
		Brand:       r.Brand,
		SKU:         r.SKU,
		ProductName: r.ProductName,
		Rating:      r.Rating,
		Headline:    r.Headline,
		Comments:    r.Comments,
	}
}
