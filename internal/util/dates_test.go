package util

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestParseDateRange_NilInputs(t *testing.T) {
	_, hasStart, _, hasEnd, err := ParseDateRange(nil, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if hasStart || hasEnd {
		t.Fatalf("expected no bounds, got hasStart=%v hasEnd=%v", hasStart, hasEnd)
	}
}

func TestParseDateRange_DateOnlyEndIsInclusive(t *testing.T) {
	start, hasStart, endExclusive, hasEnd, err := ParseDateRange(strPtr("2026-01-01"), strPtr("2026-01-31"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !hasStart || !hasEnd {
		t.Fatal("expected both bounds")
	}
	if start != time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start = %v", start)
	}
	// date-only end covers the whole end day
	if endExclusive != time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("endExclusive = %v", endExclusive)
	}
}

func TestParseDateRange_RFC3339EndIsExclusive(t *testing.T) {
	want := time.Date(2026, 1, 31, 12, 30, 0, 0, time.UTC)
	_, _, endExclusive, hasEnd, err := ParseDateRange(nil, strPtr("2026-01-31T12:30:00Z"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !hasEnd || !endExclusive.Equal(want) {
		t.Fatalf("endExclusive = %v, want %v", endExclusive, want)
	}
}

func TestParseDateRange_SwapsReversedBounds(t *testing.T) {
	start, _, endExclusive, _, err := ParseDateRange(strPtr("2026-03-01"), strPtr("2026-01-01"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !start.Before(endExclusive) {
		t.Fatalf("expected start < end after swap, got %v / %v", start, endExclusive)
	}
	if start != time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start = %v", start)
	}
}

func TestParseDateRange_InvalidFormat(t *testing.T) {
	_, _, _, _, err := ParseDateRange(strPtr("31/01/2026"), nil)
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestParseDateRange_BlankStringsIgnored(t *testing.T) {
	_, hasStart, _, hasEnd, err := ParseDateRange(strPtr("   "), strPtr(""))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if hasStart || hasEnd {
		t.Fatal("blank strings must not set bounds")
	}
}
