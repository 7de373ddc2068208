package stats

import (
	"testing"
	"time"

	"cotflow/internal/models"
)

func record(date time.Time, long, short int64) models.CanonicalRecord {
	return models.CanonicalRecord{
		ReferenceDate:   date,
		AssetIdentifier: "GOLD - CME (GC)",
		LongCount:       long,
		ShortCount:      short,
	}
}

func weeklyHistory(nets []int64) []models.CanonicalRecord {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.CanonicalRecord, len(nets))
	for i, n := range nets {
		long := n
		var short int64
		if n < 0 {
			long = 0
			short = -n
		}
		out[i] = record(start.AddDate(0, 0, 7*i), long, short)
	}
	return out
}

func TestExtremity(t *testing.T) {
	// Twelve records around mean 100 with known spread.
	nets := []int64{90, 110, 95, 105, 100, 100, 92, 108, 97, 103, 100, 100}
	history := weeklyHistory(nets)

	sigma := Describe(history).Net.StdDev
	if sigma <= 0 {
		t.Fatalf("expected positive sigma, got %f", sigma)
	}

	at := func(net int64) models.CanonicalRecord {
		return record(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), net, 0)
	}

	twoSigmaUp := int64(100 + 2*sigma + 1)
	if got := Extremity(history, at(twoSigmaUp)); got != models.ExtremityBullish {
		t.Errorf("record at mean+2sigma: expected %q, got %q", models.ExtremityBullish, got)
	}
	if got := Extremity(history, at(100)); got != models.ExtremityNormal {
		t.Errorf("record at mean: expected %q, got %q", models.ExtremityNormal, got)
	}
	twoSigmaDown := int64(100 - 2*sigma - 1)
	if got := Extremity(history, at(twoSigmaDown)); got != models.ExtremityBearish {
		t.Errorf("record at mean-2sigma: expected %q, got %q", models.ExtremityBearish, got)
	}
}

func TestExtremityZeroSpread(t *testing.T) {
	history := weeklyHistory([]int64{50, 50, 50, 50})
	current := record(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 500, 0)
	if got := Extremity(history, current); got != models.ExtremityNormal {
		t.Errorf("expected normal with zero sigma, got %q", got)
	}
}

func TestPeriodDelta(t *testing.T) {
	history := weeklyHistory([]int64{10, 25, 40})
	current := history[2]
	if got := PeriodDelta(history, current); got != 15 {
		t.Errorf("expected delta 15, got %d", got)
	}

	first := history[0]
	if got := PeriodDelta(history, first); got != 0 {
		t.Errorf("expected delta 0 with no prior record, got %d", got)
	}
}

func TestSeasonalAverages(t *testing.T) {
	var history []models.CanonicalRecord
	for year := 2023; year <= 2024; year++ {
		for month := 1; month <= 12; month++ {
			date := time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
			// 2023 carries net = month, 2024 carries net = 3*month.
			net := int64(month)
			if year == 2024 {
				net = int64(3 * month)
			}
			history = append(history, record(date, net, 0))
		}
	}

	got := SeasonalAverages(history)
	if len(got) != 12 {
		t.Fatalf("expected 12 monthly rows, got %d", len(got))
	}
	for i, ma := range got {
		wantMonth := time.Month(i + 1)
		if ma.Month != wantMonth {
			t.Errorf("row %d: expected month %v, got %v", i, wantMonth, ma.Month)
		}
		wantAvg := float64(2 * (i + 1)) // mean of month and 3*month
		if ma.AverageNet != wantAvg {
			t.Errorf("month %v: expected average %f, got %f", ma.Month, wantAvg, ma.AverageNet)
		}
		if ma.Count != 2 {
			t.Errorf("month %v: expected 2 samples, got %d", ma.Month, ma.Count)
		}
	}
}

func TestDescribe(t *testing.T) {
	history := []models.CanonicalRecord{
		record(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 10, 4),
		record(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), 20, 4),
		record(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), 30, 4),
		record(time.Date(2024, 1, 23, 0, 0, 0, 0, time.UTC), 20, 4),
	}

	s := Describe(history)

	if s.Long.Count != 4 {
		t.Errorf("long count: expected 4, got %d", s.Long.Count)
	}
	if s.Long.Mean != 20 {
		t.Errorf("long mean: expected 20, got %f", s.Long.Mean)
	}
	if s.Long.Median != 20 {
		t.Errorf("long median: expected 20, got %f", s.Long.Median)
	}
	if s.Long.Mode != 20 {
		t.Errorf("long mode: expected 20, got %d", s.Long.Mode)
	}
	if s.Long.Min != 10 || s.Long.Max != 30 {
		t.Errorf("long min/max: expected 10/30, got %d/%d", s.Long.Min, s.Long.Max)
	}
	if s.Short.StdDev != 0 {
		t.Errorf("short stddev: expected 0, got %f", s.Short.StdDev)
	}
	if s.Net.Mean != 16 {
		t.Errorf("net mean: expected 16, got %f", s.Net.Mean)
	}
}

func TestModeTieBreak(t *testing.T) {
	if got := modeOf([]int64{7, 3, 7, 3, 9}); got != 3 {
		t.Errorf("expected tie to resolve to smallest value 3, got %d", got)
	}
}
