package domain

import "time"

// Selection is the user's filter choice for one query. Empty sets and nil
// dates mean "no restriction".
type Selection struct {
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Brands     []string   `json:"brands,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Products   []string   `json:"products,omitempty"`
	Ratings    []int      `json:"ratings,omitempty"`
}

// Options are the selectable values of each filter stage, each computed
// from the rows left by the stages before it.
type Options struct {
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
	Products   []string `json:"products"`
	Ratings    []int    `json:"ratings"`
}

type Metrics struct {
	Count            int      `json:"count"`
	MeanRating       *float64 `json:"mean_rating"` // nil when Count == 0
	OneStarCount     int      `json:"one_star_count"`
	FiveStarCount    int      `json:"five_star_count"`
	ExpectedOneStar  float64  `json:"expected_one_star"`
	ExpectedFiveStar float64  `json:"expected_five_star"`
	OneStarDelta     float64  `json:"one_star_delta"`
	FiveStarDelta    float64  `json:"five_star_delta"`
}

type GroupField string

const (
	FieldBrand    GroupField = "brand"
	FieldCategory GroupField = "category"
	FieldProduct  GroupField = "product"
	FieldSKU      GroupField = "sku"
)

type AggregateRow struct {
	Key        []string `json:"key"`
	Year       int      `json:"year"`
	MeanRating float64  `json:"mean_rating"`
	Count      int      `json:"count"`
}

type TextField string

const (
	FieldHeadline TextField = "headline"
	FieldComments TextField = "comments"
)

type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type SentimentScore struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type SentimentSummary struct {
	Scores []SentimentScore `json:"scores"`
	Mean   *float64         `json:"mean"`
}

// AggregateView carries one grouped table with its field names.
type AggregateView struct {
	Fields []GroupField   `json:"fields"`
	Rows   []AggregateRow `json:"rows"`
}

type DashboardView struct {
	DatasetVersion string        `json:"dataset_version"`
	Options        Options       `json:"options"`
	Metrics        Metrics       `json:"metrics"`
	ByCategory     AggregateView `json:"by_category"`
	ByProduct      AggregateView `json:"by_product"`
	Reviews        []TableRow    `json:"reviews"`
}
