package stats

import (
	"math"
	"sort"
	"time"

	"cotflow/internal/models"
)

// extremityThreshold is the number of population standard deviations the
// latest net position must sit from its historical mean to be flagged.
// The value is fixed for comparability across runs and deployments.
const extremityThreshold = 1.5

// Extremity classifies current against the full history of the same
// asset. A history with zero spread never flags.
func Extremity(history []models.CanonicalRecord, current models.CanonicalRecord) models.Extremity {
	if len(history) == 0 {
		return models.ExtremityNormal
	}

	nets := netSeries(history)
	mean := meanOf(nets)
	sigma := stdDevOf(nets, mean)
	if sigma == 0 {
		return models.ExtremityNormal
	}

	net := float64(current.NetPosition())
	switch {
	case net > mean+extremityThreshold*sigma:
		return models.ExtremityBullish
	case net < mean-extremityThreshold*sigma:
		return models.ExtremityBearish
	default:
		return models.ExtremityNormal
	}
}

// PeriodDelta returns the change in net position between current and the
// immediately preceding record by reference date, or zero when no prior
// record exists.
func PeriodDelta(history []models.CanonicalRecord, current models.CanonicalRecord) int64 {
	var prev *models.CanonicalRecord
	for i := range history {
		r := &history[i]
		if !r.ReferenceDate.Before(current.ReferenceDate) {
			continue
		}
		if prev == nil || r.ReferenceDate.After(prev.ReferenceDate) {
			prev = r
		}
	}
	if prev == nil {
		return 0
	}
	return current.NetPosition() - prev.NetPosition()
}

// SeasonalAverages groups the history by calendar month and averages the
// net position per month across all years present. Months are returned
// ascending; months absent from the history are omitted.
func SeasonalAverages(history []models.CanonicalRecord) []models.MonthlyAverage {
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, r := range history {
		m := r.ReferenceDate.Month()
		sums[m] += float64(r.NetPosition())
		counts[m]++
	}

	out := make([]models.MonthlyAverage, 0, len(sums))
	for m := time.January; m <= time.December; m++ {
		if counts[m] == 0 {
			continue
		}
		out = append(out, models.MonthlyAverage{
			Month:      m,
			AverageNet: sums[m] / float64(counts[m]),
			Count:      counts[m],
		})
	}
	return out
}

// Describe computes the descriptive summary of the long, short and net
// series over one asset's history.
func Describe(history []models.CanonicalRecord) models.StatisticalSummary {
	longs := make([]int64, len(history))
	shorts := make([]int64, len(history))
	nets := make([]int64, len(history))
	for i, r := range history {
		longs[i] = r.LongCount
		shorts[i] = r.ShortCount
		nets[i] = r.NetPosition()
	}
	return models.StatisticalSummary{
		Long:  describeSeries(longs),
		Short: describeSeries(shorts),
		Net:   describeSeries(nets),
	}
}

func describeSeries(values []int64) models.SeriesSummary {
	if len(values) == 0 {
		return models.SeriesSummary{}
	}

	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = float64(v)
	}
	mean := meanOf(fs)

	return models.SeriesSummary{
		Count:  len(values),
		Mean:   mean,
		Median: medianOf(values),
		Mode:   modeOf(values),
		StdDev: stdDevOf(fs, mean),
		Min:    minOf(values),
		Max:    maxOf(values),
	}
}

func netSeries(history []models.CanonicalRecord) []float64 {
	out := make([]float64, len(history))
	for i, r := range history {
		out[i] = float64(r.NetPosition())
	}
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDevOf is the population standard deviation (divisor N, not N-1).
func stdDevOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func medianOf(values []int64) float64 {
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

// modeOf returns the most frequent value; ties resolve to the smallest.
func modeOf(values []int64) int64 {
	freq := make(map[int64]int, len(values))
	for _, v := range values {
		freq[v]++
	}
	var mode int64
	best := -1
	for v, c := range freq {
		if c > best || (c == best && v < mode) {
			mode = v
			best = c
		}
	}
	return mode
}

func minOf(values []int64) int64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []int64) int64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
