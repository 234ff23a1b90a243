package trustpilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"reviewscope/internal/adapters/observability"
	"reviewscope/internal/domain"
)

const pageSize = 20 // Trustpilot renders 20 reviews per page

// Client scrapes a Trustpilot business page. Reviews are not served over an
// API; they ride inside the __NEXT_DATA__ JSON blob embedded in the HTML.
type Client struct {
	base string // e.g. https://ie.trustpilot.com/review
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client whose page fetches are spaced at least pageDelay apart.
func New(base string, pageDelay time.Duration) *Client {
	if pageDelay <= 0 {
		pageDelay = time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
		rl:   rate.NewLimiter(rate.Every(pageDelay), 1),
	}
}

func (c *Client) Source() domain.Source { return domain.SourceTrustpilot }

func (c *Client) Fetch(ctx context.Context, t domain.Target) domain.ScrapeResult {
	var out []domain.Review
	totalPages := 0

	for page := 1; ; page++ {
		if err := c.rl.Wait(ctx); err != nil {
			return domain.ScrapeResult{Reviews: out, Pages: page - 1, Reason: domain.StopTransportError, Err: err}
		}

		url := fmt.Sprintf("%s/%s?page=%d", c.base, t.AppID, page)
		data, reason, err := c.getPage(ctx, url)
		if err != nil {
			return domain.ScrapeResult{Reviews: out, Pages: page - 1, Reason: reason, Err: err}
		}

		pp := data.Props.PageProps
		if totalPages == 0 && pp.BusinessUnit != nil {
			totalPages = (pp.BusinessUnit.NumberOfReviews + pageSize - 1) / pageSize
		}

		pageReviews := mapReviews(t.Company, pp.Reviews)
		observability.ObservePage(string(domain.SourceTrustpilot), t.Company, len(pageReviews))

		if len(pageReviews) == 0 {
			// Past ~200 reviews Trustpilot swaps the page for a sign-up
			// redirect; that is a recognized end of stream, not a failure.
			if pp.IsSignup != nil || pp.RedirectURL != nil {
				return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopAuthWall}
			}
			return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopExhausted}
		}
		out = append(out, pageReviews...)

		if totalPages > 0 && page >= totalPages {
			return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopExhausted}
		}
		if t.MaxPages > 0 && page >= t.MaxPages {
			return domain.ScrapeResult{Reviews: out, Pages: page, Reason: domain.StopExhausted}
		}
	}
}

type nextData struct {
	Props struct {
		PageProps pageProps `json:"pageProps"`
	} `json:"props"`
}

type pageProps struct {
	BusinessUnit *struct {
		NumberOfReviews int `json:"numberOfReviews"`
	} `json:"businessUnit"`
	Reviews []tpReview `json:"reviews"`
	// presence of either field marks the sign-in wall
	IsSignup    json.RawMessage `json:"isSignup"`
	RedirectURL json.RawMessage `json:"redirectUrl"`
}

type tpReview struct {
	Rating *int   `json:"rating"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Dates  struct {
		PublishedDate   string `json:"publishedDate"`
		ExperiencedDate string `json:"experiencedDate"`
	} `json:"dates"`
	Consumer struct {
		DisplayName string `json:"displayName"`
	} `json:"consumer"`
}

func (c *Client) getPage(ctx context.Context, url string) (*nextData, domain.StopReason, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.StopTransportError, err
	}
	// browser-shaped headers; the bare default UA gets blocked
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(string(domain.SourceTrustpilot), 0, time.Since(start))
		return nil, domain.StopTransportError, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(string(domain.SourceTrustpilot), resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, domain.StopTransportError, fmt.Errorf("trustpilot: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.StopMalformedResponse, err
	}
	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil, domain.StopMalformedResponse, fmt.Errorf("trustpilot: __NEXT_DATA__ script not found")
	}
	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, domain.StopMalformedResponse, fmt.Errorf("trustpilot: decode __NEXT_DATA__: %w", err)
	}
	return &data, "", nil
}

func mapReviews(company string, in []tpReview) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		if r.Rating == nil || r.Text == "" {
			continue
		}
		rv := domain.Review{
			Source:   domain.SourceTrustpilot,
			Company:  company,
			Rating:   r.Rating,
			Title:    r.Title,
			Text:     r.Text,
			Username: r.Consumer.DisplayName,
		}
		// publishedDate is preferred; experiencedDate fills the gap
		if d := parseDate(r.Dates.PublishedDate); d != nil {
			rv.Date = d
		} else if d := parseDate(r.Dates.ExperiencedDate); d != nil {
			rv.Date = d
		}
		out = append(out, rv)
	}
	return out
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
