package googleplay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reviewscope/internal/adapters/observability"
	"reviewscope/internal/domain"
)

const (
	rpcID    = "UsvDTd"
	pageSize = 100
	// DefaultMaxPages bounds a fetch at 500 most-recent reviews.
	DefaultMaxPages = 5
)

// Client lists Play Store reviews through the web UI's batchexecute RPC.
// There is no public API; the endpoint answers an anti-JSON-hijacking
// envelope wrapping positional arrays, newest review first, token paginated.
type Client struct {
	base    string // e.g. https://play.google.com
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

func (c *Client) Source() domain.Source { return domain.SourceGooglePlay }

func (c *Client) Fetch(ctx context.Context, t domain.Target) domain.ScrapeResult {
	maxPages := t.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var out []domain.Review
	token := ""
	for page := 1; page <= maxPages; page++ {
		if err := c.rl.Wait(ctx); err != nil {
			return domain.ScrapeResult{Reviews: out, Pages: page - 1, Reason: domain.StopTransportError, Err: err}
		}

		payload, reason, err := c.post(ctx, t.AppID, token)
		if err != nil {
			return domain.ScrapeResult{Reviews: out, Pages: page - 1, Reason: reason, Err: err}
		}

		pageReviews, next := decodePayload(t.Company, payload)
		observability.ObservePage(string(domain.SourceGooglePlay), t.Company, len(pageReviews))

		if len(pageReviews) == 0 {
			return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopExhausted}
		}
		out = append(out, pageReviews...)

		if next == "" {
			return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopExhausted}
		}
		token = next
	}
	return domain.ScrapeResult{Reviews: out, Pages: maxPages, Reason: domain.StopExhausted}
}

// post issues one batchexecute call and returns the decoded inner payload.
func (c *Client) post(ctx context.Context, pkg, token string) (any, domain.StopReason, error) {
	inner, err := json.Marshal([]any{
		nil, nil,
		[]any{2, 2, []any{pageSize, nil, emptyToNil(token)}, nil, []any{}},
		[]any{pkg, 7},
	})
	if err != nil {
		return nil, domain.StopTransportError, err
	}
	freq, err := json.Marshal([]any{[]any{[]any{rpcID, string(inner), nil, "generic"}}})
	if err != nil {
		return nil, domain.StopTransportError, err
	}

	endpoint := fmt.Sprintf("%s/_/PlayStoreUi/data/batchexecute?rpcids=%s&hl=en&gl=%s", c.base, rpcID, c.country)
	form := url.Values{"f.req": {string(freq)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.StopTransportError, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(string(domain.SourceGooglePlay), 0, time.Since(start))
		return nil, domain.StopTransportError, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(string(domain.SourceGooglePlay), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, domain.StopTransportError, fmt.Errorf("googleplay: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.StopTransportError, err
	}
	payload, err := unwrapEnvelope(body)
	if err != nil {
		return nil, domain.StopMalformedResponse, err
	}
	return payload, "", nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
