package mysql

// The UNIQUE KEY on (company, text_hash) is what makes UpsertReviews an
// upsert: a review re-collected later, or seen on a second source, lands on
// the same row instead of duplicating it.

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (source, company, author, rating, reviewed_at, title, `text`, text_hash, app_version)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  author      = COALESCE(VALUES(author), reviews.author),\n" +
	"  rating      = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  reviewed_at = COALESCE(VALUES(reviewed_at), reviews.reviewed_at),\n" +
	"  title       = COALESCE(VALUES(title), reviews.title),\n" +
	"  app_version = COALESCE(VALUES(app_version), reviews.app_version)\n"

const insertRunSQL = `
INSERT INTO scrape_runs (source, company, pages, collected, stop_reason)
VALUES (?, ?, ?, ?, ?)
`

const listReviewsSQL = `
SELECT
  id,
  source,
  company,
  author,
  rating,
  reviewed_at,
  title,
  ` + "`text`" + `,
  app_version
FROM reviews
WHERE company = ?
  AND (? = '' OR source = ?)
ORDER BY reviewed_at DESC, id DESC
LIMIT ?
`

const listCompaniesSQL = `
SELECT DISTINCT company FROM reviews ORDER BY company
`
