package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reviewscope/internal/classify"
)

func TestExtractComplaints(t *testing.T) {
	got := classify.ExtractComplaints("The app can't download offline and the timer doesn't work properly")

	require.Contains(t, got, classify.Complaint{Type: "inability", Detail: "download offline"})
	require.Contains(t, got, classify.Complaint{Type: "failure", Detail: "work properly"})
	require.Contains(t, got, classify.Complaint{Type: "broken_feature", Detail: "timer doesn't"})
}

func TestExtractComplaints_None(t *testing.T) {
	require.Empty(t, classify.ExtractComplaints("Absolutely love this app, use it every night"))
	require.Empty(t, classify.ExtractComplaints(""))
}

func TestExtractFeatureRequests(t *testing.T) {
	got := classify.ExtractFeatureRequests("Wish it had a dark mode for night sessions.")
	require.Equal(t, []string{"had a dark mode for night sessions"}, got)
}

func TestExtractFeatureRequests_BillingStoplist(t *testing.T) {
	// refund talk phrased like a request is not a feature request
	got := classify.ExtractFeatureRequests("Wish they would refund my subscription, total waste")
	require.Empty(t, got)
}

func TestExtractFeatureRequests_TooShort(t *testing.T) {
	require.Empty(t, classify.ExtractFeatureRequests("wish it was better!"))
}
