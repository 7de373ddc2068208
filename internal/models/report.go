package models

import (
	"time"
)

// RawRow is one line of a raw feed before any normalization. Field
// positions only have meaning relative to a LayoutDescriptor.
type RawRow struct {
	Fields []string
	Line   int
}

// Field returns the raw field at idx or an empty string when the row is
// too short. Callers that care about short rows must check Len themselves.
func (r RawRow) Field(idx int) string {
	if idx < 0 || idx >= len(r.Fields) {
		return ""
	}
	return r.Fields[idx]
}

// Len reports the number of raw fields in the row.
func (r RawRow) Len() int {
	return len(r.Fields)
}

// DateEncoding selects how the raw date field of a feed variant is parsed.
type DateEncoding string

const (
	// EncodingISO covers ISO-like textual dates such as "2024-08-20".
	EncodingISO DateEncoding = "iso"
	// EncodingCompact covers the two digit year numeric form "YYMMDD".
	EncodingCompact DateEncoding = "compact"
)

// LayoutDescriptor maps raw field positions to semantic fields for one
// feed variant. Variants are always selected explicitly by name, never
// inferred from content.
type LayoutDescriptor struct {
	Name       string       `yaml:"name"`
	AssetIndex int          `yaml:"asset_index"`
	DateIndex  int          `yaml:"date_index"`
	LongIndex  int          `yaml:"long_index"`
	ShortIndex int          `yaml:"short_index"`
	DateFormat DateEncoding `yaml:"date_format"`
	// Category documents which report sub-category the long/short columns
	// of this variant carry (e.g. dealer aggregate vs leveraged funds).
	Category string `yaml:"category"`
}

// MaxIndex returns the highest field position the layout reads. Rows with
// fewer fields cannot be parsed under this layout.
func (l LayoutDescriptor) MaxIndex() int {
	max := l.AssetIndex
	for _, idx := range []int{l.DateIndex, l.LongIndex, l.ShortIndex} {
		if idx > max {
			max = idx
		}
	}
	return max
}

// Sentiment is the binary label derived from the sign of the net position.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
)

// Extremity classifies the latest net position against its own history.
type Extremity string

const (
	ExtremityBullish Extremity = "extreme bullish"
	ExtremityBearish Extremity = "extreme bearish"
	ExtremityNormal  Extremity = "normal"
)

// Enrichment carries the derived, non-authoritative attributes of an
// asset identifier. Missing values use fixed sentinels rather than nulls.
type Enrichment struct {
	FriendlyName string `json:"friendly_name"`
	Sector       string `json:"sector"`
	Exchange     string `json:"exchange"`
	ShortCode    string `json:"short_code"`
}

// CanonicalRecord is the unit of canonical output: one asset on one
// reference date with normalized counts and derived attributes.
type CanonicalRecord struct {
	ReferenceDate   time.Time  `json:"data_referencia"`
	AssetIdentifier string     `json:"nome_ativo"`
	LongCount       int64      `json:"Comprados"`
	ShortCount      int64      `json:"Vendidos"`
	Enrichment      Enrichment `json:"enrichment"`
}

// NetPosition is always recomputed from the two counts so the value can
// never drift from its inputs.
func (r CanonicalRecord) NetPosition() int64 {
	return r.LongCount - r.ShortCount
}

// Sentiment labels the record Bullish on a positive net position and
// Bearish otherwise. Zero is Bearish; the tie-break is fixed.
func (r CanonicalRecord) Sentiment() Sentiment {
	if r.NetPosition() > 0 {
		return SentimentBullish
	}
	return SentimentBearish
}

// Snapshot is one immutable canonical dataset produced by a single
// pipeline run. Consumers only ever read a published snapshot; the next
// run replaces it wholesale.
type Snapshot struct {
	ID         string            `json:"id"`
	Key        string            `json:"key"`
	SourceURL  string            `json:"source_url"`
	Layout     string            `json:"layout"`
	IngestedAt time.Time         `json:"ingested_at"`
	Records    []CanonicalRecord `json:"records"`
}

// SeriesSummary holds the descriptive statistics of one numeric series.
type SeriesSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Mode   int64   `json:"mode"`
	StdDev float64 `json:"std_dev"`
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
}

// StatisticalSummary describes the long, short and net series of one
// asset's history. It is derived on demand and never persisted.
type StatisticalSummary struct {
	Long  SeriesSummary `json:"long"`
	Short SeriesSummary `json:"short"`
	Net   SeriesSummary `json:"net"`
}

// MonthlyAverage is the mean net position of one calendar month across
// all years present in a history.
type MonthlyAverage struct {
	Month      time.Month `json:"month"`
	AverageNet float64    `json:"average_net"`
	Count      int        `json:"count"`
}
