package main

import (
	"testing"

	"review_dashboard/internal/domain"
)

func TestBatches(t *testing.T) {
	rs := make([]domain.Review, 7)
	got := batches(rs, 3)
	if len(got) != 3 || len(got[0]) != 3 || len(got[2]) != 1 {
		t.Fatalf("unexpected batches: %d", len(got))
	}
	if len(batches(nil, 3)) != 0 {
		t.Fatalf("expected no batches for empty input")
	}
	if len(batches(rs, 0)) != 1 {
		t.Fatalf("non-positive size should fall back to the default")
	}
}
