package googleplay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"reviewscope/internal/domain"
)

// unwrapEnvelope peels the two layers around the review data: the `)]}'`
// prefix guarding the outer array, then the payload string at [0][2] which
// is itself JSON.
func unwrapEnvelope(body []byte) (any, error) {
	trimmed := bytes.TrimSpace(body)
	trimmed = bytes.TrimPrefix(trimmed, []byte(")]}'"))

	var outer []any
	if err := json.Unmarshal(trimmed, &outer); err != nil {
		return nil, fmt.Errorf("googleplay: decode envelope: %w", err)
	}
	raw := asString(outer, 0, 2)
	if raw == "" {
		return nil, fmt.Errorf("googleplay: envelope payload missing")
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("googleplay: decode payload: %w", err)
	}
	return payload, nil
}

// decodePayload turns the positional review arrays into records and pulls
// the next-page token. Reviews sit at payload[0], the token at
// payload[1][1]; within a review: id 0, author name [1][0], star rating 2,
// body text 4, posted-at seconds [5][0], app version 10.
func decodePayload(company string, payload any) (reviews []domain.Review, nextToken string) {
	entries, ok := at(payload, 0).([]any)
	if !ok {
		return nil, ""
	}
	for _, e := range entries {
		text := asString(e, 4)
		if text == "" {
			continue
		}
		rv := domain.Review{
			Source:     domain.SourceGooglePlay,
			Company:    company,
			Text:       text,
			Username:   asString(e, 1, 0),
			AppVersion: asString(e, 10),
		}
		if f, ok := asFloat(e, 2); ok {
			n := int(f)
			rv.Rating = &n
		}
		if secs, ok := asFloat(e, 5, 0); ok {
			d := time.Unix(int64(secs), 0).UTC()
			rv.Date = &d
		}
		reviews = append(reviews, rv)
	}
	return reviews, asString(payload, 1, 1)
}

// at walks nested positional arrays, nil on any miss.
func at(v any, path ...int) any {
	for _, i := range path {
		arr, ok := v.([]any)
		if !ok || i < 0 || i >= len(arr) {
			return nil
		}
		v = arr[i]
	}
	return v
}

func asString(v any, path ...int) string {
	if s, ok := at(v, path...).(string); ok {
		return s
	}
	return ""
}

func asFloat(v any, path ...int) (float64, bool) {
	if f, ok := at(v, path...).(float64); ok {
		return f, true
	}
	return 0, false
}
