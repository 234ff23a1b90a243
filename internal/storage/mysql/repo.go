package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"strings"

	"reviewscope/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// textHash keys dedup at rest. Company is part of the UNIQUE KEY, so the
// hash covers text only.
func textHash(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*9)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?)")
		var at any
		if rv.Date != nil {
			at = *rv.Date
		}
		args = append(args,
			string(rv.Source),
			rv.Company,
			valStr(rv.Username),
			valInt(rv.Rating),
			at,
			valStr(rv.Title),
			rv.Text,
			textHash(rv.Text),
			valStr(rv.AppVersion),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogRun(ctx context.Context, src domain.Source, company string, pages, collected int, reason domain.StopReason) error {
	_, err := r.db.ExecContext(ctx, insertRunSQL, string(src), company, pages, collected, string(reason))
	return err
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10000 // unbounded callers (stats recompute) still get a sane cap
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, q.Company, string(q.Source), string(q.Source), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var src string
		var (
			author  sql.NullString
			rating  sql.NullInt64
			at      sql.NullTime
			title   sql.NullString
			version sql.NullString
		)
		if err := rows.Scan(
			&rv.ID,
			&src,
			&rv.Company,
			&author,
			&rating,
			&at,
			&title,
			&rv.Text,
			&version,
		); err != nil {
			return nil, err
		}
		rv.Source = domain.Source(src)
		if author.Valid {
			rv.Username = author.String
		}
		if rating.Valid {
			n := int(rating.Int64)
			rv.Rating = &n
		}
		if at.Valid {
			t := at.Time
			rv.Date = &t
		}
		if title.Valid {
			rv.Title = title.String
		}
		if version.Valid {
			rv.AppVersion = version.String
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListCompanies(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listCompaniesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
