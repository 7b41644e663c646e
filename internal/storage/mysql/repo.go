package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Open connects and pings with bounded retries so the service can start
// alongside a database that is still booting.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	attempt := 0
	err = backoff.Retry(
		func() error {
			attempt++
			if err := db.PingContext(ctx); err != nil {
				log.Warn().Err(err).Int("attempt", attempt).Msg("db ping failed")
				return err
			}
			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5),
			ctx,
		),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	q, args := buildUpsert(rs)
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

func buildUpsert(rs []domain.Review) (string, []any) {
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*reviewColumns)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.ID,
			rv.Brand,
			rv.ProductName,
			valStr(rv.SKU),
			rv.CategoryRaw,
			rv.Rating,
			rv.CreatedDate.Format(time.DateOnly),
			valStr(rv.Headline),
			valStr(rv.Comments),
		)
	}
	return insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup, args
}

// ---- Source ----

func (r *Repo) Name() string { return "mysql" }

// Version changes whenever a row is inserted, deleted or updated.
func (r *Repo) Version(ctx context.Context) (string, error) {
	var n int64
	var last string
	if err := r.db.QueryRowContext(ctx, versionSQL).Scan(&n, &last); err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10) + "@" + last, nil
}

// ReadRows returns the table as raw rows.
func (r *Repo) ReadRows(ctx context.Context) ([]domain.RawRow, error) {
	rows, err := r.db.QueryContext(ctx, selectReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RawRow
	for rows.Next() {
		var rr reviewRow
		if err := rows.Scan(&rr.id, &rr.brand, &rr.product, &rr.sku, &rr.categoryRaw,
			&rr.rating, &rr.created, &rr.headline, &rr.comments); err != nil {
			return nil, err
		}
		out = append(out, rr.raw())
	}
	return out, rows.Err()
}

// reviewRow is one scanned line of selectReviewsSQL.
type reviewRow struct {
	id, brand, product, categoryRaw, created string
	rating                                   int
	sku, headline, comments                  sql.NullString
}

// raw keys the row by the normalizer's canonical aliases. Every column is
// always set; NULL becomes "" so strict mode sees the field as missing.
func (rr reviewRow) raw() domain.RawRow {
	return domain.RawRow{
		"id":           rr.id,
		"brand":        rr.brand,
		"product_name": rr.product,
		"sku":          rr.sku.String,
		"category_raw": rr.categoryRaw,
		"rating":       strconv.Itoa(rr.rating),
		"created_date": rr.created,
		"headline":     rr.headline.String,
		"comments":     rr.comments.String,
	}
}
