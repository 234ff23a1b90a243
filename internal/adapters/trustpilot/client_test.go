package trustpilot_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reviewscope/internal/adapters/trustpilot"
	"reviewscope/internal/domain"
)

func page(nextData string) string {
	return fmt.Sprintf(`<html><head></head><body><script id="__NEXT_DATA__" type="application/json">%s</script></body></html>`, nextData)
}

func reviewsJSON(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"rating":4,"title":"t%d","text":"review body %d","dates":{"publishedDate":"2024-01-02T03:04:05Z","experiencedDate":"2023-12-31"},"consumer":{"displayName":"user%d"}}`, i, i, i)
	}
	return "[" + out + "]"
}

func TestFetch_SinglePageExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := fmt.Sprintf(`{"props":{"pageProps":{"businessUnit":{"numberOfReviews":2},"reviews":%s}}}`, reviewsJSON(2))
		fmt.Fprint(w, page(data))
	}))
	defer ts.Close()

	cl := trustpilot.New(ts.URL, time.Millisecond)
	res := cl.Fetch(context.Background(), domain.Target{Company: "Calm", AppID: "calm.com"})

	if res.Reason != domain.StopExhausted {
		t.Fatalf("reason = %s, want exhausted (err: %v)", res.Reason, res.Err)
	}
	if res.Pages != 1 || len(res.Reviews) != 2 {
		t.Fatalf("pages=%d reviews=%d, want 1/2", res.Pages, len(res.Reviews))
	}

	rv := res.Reviews[0]
	if rv.Company != "Calm" || rv.Source != domain.SourceTrustpilot {
		t.Fatalf("bad mapping: %+v", rv)
	}
	if rv.Rating == nil || *rv.Rating != 4 || rv.Username != "user0" {
		t.Fatalf("bad mapping: %+v", rv)
	}
	// publishedDate takes precedence over experiencedDate
	if rv.Date == nil || rv.Date.Year() != 2024 {
		t.Fatalf("bad date: %v", rv.Date)
	}
}

func TestFetch_AuthWallAfterFirstPage(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			data := fmt.Sprintf(`{"props":{"pageProps":{"businessUnit":{"numberOfReviews":400},"reviews":%s}}}`, reviewsJSON(20))
			fmt.Fprint(w, page(data))
		default:
			// sign-up gate: no reviews, redirect marker present
			fmt.Fprint(w, page(`{"props":{"pageProps":{"reviews":[],"isSignup":true,"redirectUrl":"/signup"}}}`))
		}
	}))
	defer ts.Close()

	cl := trustpilot.New(ts.URL, time.Millisecond)
	res := cl.Fetch(context.Background(), domain.Target{Company: "Calm", AppID: "calm.com"})

	if res.Reason != domain.StopAuthWall {
		t.Fatalf("reason = %s, want auth_wall", res.Reason)
	}
	if res.Pages != 2 || len(res.Reviews) != 20 {
		t.Fatalf("pages=%d reviews=%d, want 2/20 (partial kept)", res.Pages, len(res.Reviews))
	}
}

func TestFetch_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer ts.Close()

	cl := trustpilot.New(ts.URL, time.Millisecond)
	res := cl.Fetch(context.Background(), domain.Target{Company: "Calm", AppID: "calm.com"})

	if res.Reason != domain.StopTransportError || res.Err == nil {
		t.Fatalf("reason=%s err=%v, want transport_error", res.Reason, res.Err)
	}
	if res.Pages != 0 || len(res.Reviews) != 0 {
		t.Fatalf("pages=%d reviews=%d, want 0/0", res.Pages, len(res.Reviews))
	}
}

func TestFetch_MissingNextData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	}))
	defer ts.Close()

	cl := trustpilot.New(ts.URL, time.Millisecond)
	res := cl.Fetch(context.Background(), domain.Target{Company: "Calm", AppID: "calm.com"})

	if res.Reason != domain.StopMalformedResponse || res.Err == nil {
		t.Fatalf("reason=%s err=%v, want malformed_response", res.Reason, res.Err)
	}
}

func TestFetch_MaxPagesCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := fmt.Sprintf(`{"props":{"pageProps":{"businessUnit":{"numberOfReviews":400},"reviews":%s}}}`, reviewsJSON(20))
		fmt.Fprint(w, page(data))
	}))
	defer ts.Close()

	cl := trustpilot.New(ts.URL, time.Millisecond)
	res := cl.Fetch(context.Background(), domain.Target{Company: "Calm", AppID: "calm.com", MaxPages: 2})

	if res.Reason != domain.StopExhausted || res.Pages != 2 || len(res.Reviews) != 40 {
		t.Fatalf("reason=%s pages=%d reviews=%d, want exhausted/2/40", res.Reason, res.Pages, len(res.Reviews))
	}
}
