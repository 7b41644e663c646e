package analysis

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

/********** alias registry (single source of truth) **********/

const (
	colID       = "id"
	colBrand    = "brand"
	colProduct  = "product"
	colSKU      = "sku"
	colCategory = "category_raw"
	colRating   = "rating"
	colCreated  = "created_date"
	colHeadline = "headline"
	colComments = "comments"
)

// columnAliases maps each logical column to the header names it may appear
// under. The first alias present in a row wins.
var columnAliases = map[string][]string{
	colID:       {"UGC ID", "Review ID", "review_id", "id"},
	colBrand:    {"Brand Name", "Brand", "brand"},
	colProduct:  {"Product Name", "Product", "product_name"},
	colSKU:      {"SKU", "sku"},
	colCategory: {"PGC_Desc", "PGC Desc", "category_raw"},
	colRating:   {"Review Rating", "Rating", "rating"},
	colCreated:  {"Created Date", "created_date"},
	colHeadline: {"Review Headline", "Headline", "headline"},
	colComments: {"Review Comments", "Comments", "comments"},
}

// strictColumns are checked for emptiness in strict mode, in this order.
var strictColumns = []string{colBrand, colProduct, colSKU, colCategory, colRating, colCreated, colHeadline, colComments}

// categorySuffixes are stripped from the raw classification, in order.
var categorySuffixes = []string{"-Catalog", "-E-Collections", "-Solo", "- CATALOG", "-CATALOG", "- OTHER"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"Jan 2, 2006",
	"2 Jan 2006",
}

const (
	MinRating = 1
	MaxRating = 5
)

// Mode selects how rows with missing fields are treated.
type Mode string

const (
	// ModeLenient keeps rows whose optional or free-text fields are missing.
	ModeLenient Mode = "lenient"
	// ModeStrict drops rows with any missing mapped field.
	ModeStrict Mode = "strict"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLenient, ModeStrict:
		return m, nil
	case "":
		return ModeLenient, nil
	}
	return "", fmt.Errorf("unknown missing-field mode %q", s)
}

/********** tiny helpers **********/

// lookup returns the first alias present in the row and its value.
func lookup(row domain.RawRow, col string) (string, string, bool) {
	for _, a := range columnAliases[col] {
		if v, ok := row[a]; ok {
			return a, v, true
		}
	}
	return columnAliases[col][0], "", false
}

func value(row domain.RawRow, col string) string {
	_, v, _ := lookup(row, col)
	return strings.TrimSpace(v)
}

func ptrStr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ExtractCategory derives the normalized category from a raw classification.
func ExtractCategory(raw string) string {
	out := strings.TrimSpace(raw)
	for _, suffix := range categorySuffixes {
		out = strings.TrimSpace(strings.ReplaceAll(out, suffix, ""))
	}
	return out
}

// ParseDate coerces a raw date representation into a calendar date at 00:00 UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", domain.ErrParse, s)
}

// ParseRating accepts integral values such as "4" or "4.0" on the 1..5 scale.
func ParseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("%w: rating %q", domain.ErrParse, s)
		}
		n = int(f)
	}
	if n < MinRating || n > MaxRating {
		return 0, fmt.Errorf("%w: rating %d out of range", domain.ErrParse, n)
	}
	return n, nil
}

/********** normalizer **********/

type Normalizer struct {
	mode Mode
}

func NewNormalizer(mode Mode) *Normalizer {
	if mode == "" {
		mode = ModeLenient
	}
	return &Normalizer{mode: mode}
}

func (n *Normalizer) Mode() Mode { return n.mode }

// Normalize turns one raw row into a Review. Returned errors wrap
// domain.ErrParse or domain.ErrMissingField inside a *domain.RowError.
func (n *Normalizer) Normalize(raw domain.RawRow) (domain.Review, error) {
	if n.mode == ModeStrict {
		// Sources key every header column, so a short or NULL cell arrives as "".
		for _, col := range strictColumns {
			name, v, ok := lookup(raw, col)
			if ok && strings.TrimSpace(v) == "" {
				return domain.Review{}, &domain.RowError{Column: name, Err: domain.ErrMissingField}
			}
		}
	}

	ratingCol, ratingRaw, _ := lookup(raw, colRating)
	if strings.TrimSpace(ratingRaw) == "" {
		return domain.Review{}, &domain.RowError{Column: ratingCol, Err: domain.ErrMissingField}
	}
	rating, err := ParseRating(ratingRaw)
	if err != nil {
		return domain.Review{}, &domain.RowError{Column: ratingCol, Err: err}
	}

	dateCol, dateRaw, _ := lookup(raw, colCreated)
	if strings.TrimSpace(dateRaw) == "" {
		return domain.Review{}, &domain.RowError{Column: dateCol, Err: domain.ErrMissingField}
	}
	created, err := ParseDate(dateRaw)
	if err != nil {
		return domain.Review{}, &domain.RowError{Column: dateCol, Err: err}
	}

	categoryRaw := value(raw, colCategory)
	rv := domain.Review{
		Brand:       value(raw, colBrand),
		ProductName: value(raw, colProduct),
		SKU:         ptrStr(value(raw, colSKU)),
		CategoryRaw: categoryRaw,
		Category:    ExtractCategory(categoryRaw),
		Rating:      rating,
		CreatedDate: created,
		Headline:    ptrStr(value(raw, colHeadline)),
		Comments:    ptrStr(value(raw, colComments)),
	}

	// ID: prefer the export's own id; else a stable signature of the row.
	if id := value(raw, colID); id != "" {
		rv.ID = id
	} else {
		sig := strings.Join([]string{
			rv.Brand, rv.ProductName, deref(rv.SKU), rv.CategoryRaw,
			strconv.Itoa(rv.Rating), rv.CreatedDate.Format(time.DateOnly),
			deref(rv.Headline), deref(rv.Comments),
		}, "|")
		sum := sha1.Sum([]byte(sig))
		rv.ID = hex.EncodeToString(sum[:])
	}
	return rv, nil
}

// NormalizeAll normalizes a batch, dropping unusable rows. Line numbers in
// logs are 1-based data rows (header excluded).
func (n *Normalizer) NormalizeAll(rows []domain.RawRow) ([]domain.Review, domain.DropReport) {
	out := make([]domain.Review, 0, len(rows))
	rep := domain.DropReport{Read: len(rows)}
	for i, raw := range rows {
		rv, err := n.Normalize(raw)
		if err != nil {
			reason := dropReason(err)
			if rep.Reasons == nil {
				rep.Reasons = map[string]int{}
			}
			rep.Reasons[reason]++
			log.Debug().Int("line", i+1).Str("reason", reason).Err(err).Msg("row dropped")
			continue
		}
		out = append(out, rv)
	}
	rep.Kept = len(out)
	return out, rep
}

func dropReason(err error) string {
	var re *domain.RowError
	if !errors.As(err, &re) {
		return "other"
	}
	kind := "parse"
	if errors.Is(re.Err, domain.ErrMissingField) {
		kind = "missing"
	}
	return kind + ":" + re.Column
}
