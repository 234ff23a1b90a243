package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reviewscope/internal/adapters/observability"
	"reviewscope/internal/domain"
)

// DefaultMaxPages matches the RSS feed's 500-review ceiling (50 per page).
const DefaultMaxPages = 10

// Client reads customer reviews from the iTunes RSS feed.
type Client struct {
	base    string // e.g. https://itunes.apple.com
	country string
	hc      *http.Client
	rl      *rate.Limiter
}

func New(base, country string, pageDelay time.Duration) *Client {
	if pageDelay <= 0 {
		pageDelay = 500 * time.Millisecond
	}
	if country == "" {
		country = "us"
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		country: country,
		hc:      &http.Client{Timeout: 30 * time.Second},
		rl:      rate.NewLimiter(rate.Every(pageDelay), 1),
	}
}

func (c *Client) Source() domain.Source { return domain.SourceAppStore }

func (c *Client) Fetch(ctx context.Context, t domain.Target) domain.ScrapeResult {
	maxPages := t.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var out []domain.Review
	for page := 1; page <= maxPages; page++ {
		if err := c.rl.Wait(ctx); err != nil {
			return domain.ScrapeResult{Reviews: out, Pages: page - 1, Reason: domain.StopTransportError, Err: err}
		}

		url := fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortby=mostrecent/json",
			c.base, c.country, page, t.AppID)
		feed, reason, err := c.getPage(ctx, url)
		if err != nil {
			return domain.ScrapeResult{Reviews: out, Pages: page - 1, Reason: reason, Err: err}
		}

		pageReviews := mapEntries(t.Company, feed.Feed.Entry)
		observability.ObservePage(string(domain.SourceAppStore), t.Company, len(pageReviews))

		// the first entry is often app metadata, so an entry list that
		// yields zero parseable reviews ends the stream
		if len(pageReviews) == 0 {
			return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopExhausted}
		}
		out = append(out, pageReviews...)
	}
	return domain.ScrapeResult{Reviews: out, Pages: maxPages, Reason: domain.StopExhausted}
}

// label is the RSS JSON convention of wrapping every value in {"label": ...}.
type label struct {
	Label string `json:"label"`
}

type rssEntry struct {
	Rating  *label `json:"im:rating"` // absent on non-review entries
	Updated label  `json:"updated"`
	Title   label  `json:"title"`
	Content label  `json:"content"`
	Version label  `json:"im:version"`
	Author  struct {
		Name label `json:"name"`
	} `json:"author"`
}

type rssFeed struct {
	Feed struct {
		Entry []rssEntry `json:"entry"`
	} `json:"feed"`
}

func (c *Client) getPage(ctx context.Context, url string) (*rssFeed, domain.StopReason, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.StopTransportError, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(string(domain.SourceAppStore), 0, time.Since(start))
		return nil, domain.StopTransportError, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(string(domain.SourceAppStore), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, domain.StopTransportError, fmt.Errorf("appstore: status %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, domain.StopMalformedResponse, fmt.Errorf("appstore: decode feed: %w", err)
	}
	return &feed, "", nil
}

func mapEntries(company string, entries []rssEntry) []domain.Review {
	out := make([]domain.Review, 0, len(entries))
	for _, e := range entries {
		if e.Rating == nil {
			continue
		}
		rv := domain.Review{
			Source:     domain.SourceAppStore,
			Company:    company,
			Title:      e.Title.Label,
			Text:       e.Content.Label,
			Username:   e.Author.Name.Label,
			AppVersion: e.Version.Label,
		}
		if n, err := strconv.Atoi(e.Rating.Label); err == nil {
			rv.Rating = &n
		}
		if d, err := time.Parse(time.RFC3339, e.Updated.Label); err == nil {
			rv.Date = &d
		}
		out = append(out, rv)
	}
	return out
}
