package domain

import "time"

// Source is the platform a review originated from.
type Source string

const (
	SourceAppStore   Source = "App Store"
	SourceGooglePlay Source = "Google Play"
	SourceTrustpilot Source = "Trustpilot"
)

type Review struct {
	ID         int64
	Source     Source
	Company    string
	Rating     *int // 1..5, nil when the source omitted it
	Date       *time.Time
	Title      string
	Text       string
	Username   string
	AppVersion string
}

// Key is the identity used for deduplication. Two reviews with the same
// company and text body are the same review regardless of source or rating.
func (r Review) Key() string {
	return r.Company + "\x00" + r.Text
}

// StopReason records why a paginated fetch terminated.
type StopReason string

const (
	StopExhausted         StopReason = "exhausted"
	StopTransportError    StopReason = "transport_error"
	StopMalformedResponse StopReason = "malformed_response"
	StopAuthWall          StopReason = "auth_wall"
)

// ScrapeResult is what a connector hands back: everything collected before
// the stop condition plus the terminal reason. A non-exhausted reason is a
// partial result, not a failure; Err carries the cause for logging only and
// never crosses the connector boundary as a returned error.
type ScrapeResult struct {
	Reviews []Review
	Pages   int
	Reason  StopReason
	Err     error
}
