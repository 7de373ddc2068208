package normalize

import (
	"errors"
	"testing"
	"time"

	"cotflow/internal/models"
)

func TestDateCompact(t *testing.T) {
	got, err := Date("240820", models.EncodingCompact)
	if err != nil {
		t.Fatalf("parse compact: %v", err)
	}
	want := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDateISO(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2024-08-20", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"2024-08-20 00:00:00", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"08/20/2024", time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := Date(tc.raw, models.EncodingISO)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("parse %q: expected %v, got %v", tc.raw, tc.want, got)
		}
	}
}

func TestDateFailure(t *testing.T) {
	for _, raw := range []string{"", "not-a-date", "13/45/2024"} {
		if _, err := Date(raw, models.EncodingISO); !errors.Is(err, ErrUnparseableDate) {
			t.Errorf("expected ErrUnparseableDate for %q, got %v", raw, err)
		}
	}
	if _, err := Date("2024-08-20", models.EncodingCompact); !errors.Is(err, ErrUnparseableDate) {
		t.Errorf("expected ErrUnparseableDate for ISO value under compact encoding")
	}
}

func TestCount(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"12345", 12345},
		{" 12345 ", 12345},
		{`"12,345"`, 12345},
		{"1234.0", 1234},
		{"", 0},
		{".", 0},
		{"n/a", 0},
		{"-42", 0},
	}
	for _, tc := range cases {
		if got := Count(tc.raw); got != tc.want {
			t.Errorf("Count(%q) = %d, expected %d", tc.raw, got, tc.want)
		}
	}
}
