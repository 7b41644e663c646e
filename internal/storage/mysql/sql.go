package mysql

const reviewColumns = 9

const insertReviewsPrefix = "INSERT INTO reviews\n  (id, brand, product_name, sku, category_raw, rating, created_date, headline, comments)\nVALUES "

// COALESCE keeps the stored free text when the incoming row has none.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  brand        = VALUES(brand),\n" +
	"  product_name = VALUES(product_name),\n" +
	"  sku          = COALESCE(VALUES(sku), reviews.sku),\n" +
	"  category_raw = VALUES(category_raw),\n" +
	"  rating       = VALUES(rating),\n" +
	"  created_date = VALUES(created_date),\n" +
	"  headline     = COALESCE(VALUES(headline), reviews.headline),\n" +
	"  comments     = COALESCE(VALUES(comments), reviews.comments)\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Column aliases match the canonical keys understood by the normalizer.
const selectReviewsSQL = `
SELECT
  id,
  brand,
  product_name,
  sku,
  category_raw,
  rating,
  DATE_FORMAT(created_date, '%Y-%m-%d'),
  headline,
  comments
FROM reviews
ORDER BY created_date, id
`

const versionSQL = `
SELECT COUNT(*), COALESCE(DATE_FORMAT(MAX(updated_at), '%Y-%m-%d %H:%i:%s.%f'), '')
FROM reviews
`
