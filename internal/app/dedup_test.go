package app_test

import (
	"testing"

	"reviewscope/internal/app"
	"reviewscope/internal/domain"
)

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	in := []domain.Review{
		{Company: "Calm", Source: domain.SourceAppStore, Text: "Great app", Username: "first"},
		{Company: "Calm", Source: domain.SourceGooglePlay, Text: "Great app", Username: "second"},
		{Company: "Headspace", Source: domain.SourceAppStore, Text: "Great app"},
	}

	kept, removed := app.Deduplicate(in)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(kept) != 2 {
		t.Fatalf("kept = %d, want 2", len(kept))
	}
	// Same text from a different source collapses onto the first record seen.
	if kept[0].Username != "first" || kept[0].Source != domain.SourceAppStore {
		t.Fatalf("wrong survivor: %+v", kept[0])
	}
	// Same text under a different company is a different review.
	if kept[1].Company != "Headspace" {
		t.Fatalf("company-scoped identity broken: %+v", kept[1])
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []domain.Review{
		{Company: "Calm", Text: "a"},
		{Company: "Calm", Text: "b"},
		{Company: "Calm", Text: "a"},
	}

	once, removed := app.Deduplicate(in)
	if removed != 1 {
		t.Fatalf("first pass removed = %d, want 1", removed)
	}

	twice, removed := app.Deduplicate(once)
	if removed != 0 {
		t.Fatalf("second pass removed = %d, want 0", removed)
	}
	if len(twice) != len(once) {
		t.Fatalf("second pass changed length: %d vs %d", len(twice), len(once))
	}
	for i := range once {
		if twice[i] != once[i] {
			t.Fatalf("second pass changed record %d", i)
		}
	}
}

func TestDeduplicate_RatingDoesNotSplitIdentity(t *testing.T) {
	r2, r5 := 2, 5
	in := []domain.Review{
		{Company: "Calm", Text: "same words", Rating: &r2},
		{Company: "Calm", Text: "same words", Rating: &r5},
	}
	kept, removed := app.Deduplicate(in)
	if removed != 1 || len(kept) != 1 {
		t.Fatalf("kept=%d removed=%d", len(kept), removed)
	}
	if *kept[0].Rating != 2 {
		t.Fatalf("expected first record's rating to survive, got %d", *kept[0].Rating)
	}
}
