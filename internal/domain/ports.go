package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("reviewscope: not found")
	// ErrNoData signals an analysis run that found no snapshot to work on.
	ErrNoData = errors.New("reviewscope: no review data found")
)

// Target identifies one app/business at one source.
type Target struct {
	Company string
	// AppID is the App Store numeric id, the Play package name, or the
	// Trustpilot business domain depending on the connector.
	AppID    string
	Country  string
	MaxPages int // 0 means the connector's default cap
}

// Connector performs one paginated fetch against a review source. It never
// returns an error: failures terminate the stream and are reported through
// the ScrapeResult reason code.
type Connector interface {
	Source() Source
	Fetch(ctx context.Context, t Target) ScrapeResult
}

type ReviewRepository interface {
	// Write paths
	UpsertReviews(ctx context.Context, rs []Review) error
	LogRun(ctx context.Context, source Source, company string, pages, collected int, reason StopReason) error

	// Read paths
	ListReviews(ctx context.Context, q ReviewsQuery) ([]Review, error)
	ListCompanies(ctx context.Context) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type ReviewsQuery struct {
	Company string
	Source  Source // empty means all sources
	Limit   int
}
