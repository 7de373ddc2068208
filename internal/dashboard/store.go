package dashboard

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"cotflow/internal/models"
	"cotflow/internal/stats"
)

var (
	// ErrNoDataset is returned before the first pipeline run publishes a
	// snapshot.
	ErrNoDataset = errors.New("no dataset published")
	// ErrAssetNotFound is returned when the published snapshot holds no
	// records for the requested asset.
	ErrAssetNotFound = errors.New("asset not found")
)

// AssetInfo is the listing entry for one asset in the published dataset.
// Assets are keyed by the verbatim raw identifier; the enrichment fields
// are metadata.
type AssetInfo struct {
	Identifier   string            `json:"nome_ativo"`
	FriendlyName string            `json:"friendly_name"`
	Sector       string            `json:"sector"`
	Exchange     string            `json:"exchange"`
	ShortCode    string            `json:"short_code"`
	RecordCount  int               `json:"record_count"`
	Latest       *AssetObservation `json:"latest,omitempty"`
}

// AssetObservation is one dated record of an asset's series as served by
// the read API.
type AssetObservation struct {
	Identifier    string           `json:"nome_ativo"`
	ReferenceDate string           `json:"data_referencia"`
	Long          int64            `json:"comprados"`
	Short         int64            `json:"vendidos"`
	Net           int64            `json:"posicao_liquida"`
	Sentiment     models.Sentiment `json:"sentimento"`
}

// AssetSummary is the analytical view of one asset's full history.
type AssetSummary struct {
	Identifier       string                    `json:"nome_ativo"`
	FriendlyName     string                    `json:"friendly_name"`
	Sector           string                    `json:"sector"`
	Extremity        models.Extremity          `json:"extremity"`
	PeriodDelta      int64                     `json:"period_delta"`
	Statistics       models.StatisticalSummary `json:"statistics"`
	SeasonalAverages []models.MonthlyAverage   `json:"seasonal_averages"`
	Latest           AssetObservation          `json:"latest"`
}

// Store serves read access to the most recently published snapshot. A
// publish replaces the whole dataset; partial updates do not exist.
type Store struct {
	mu          sync.RWMutex
	snapshot    *models.Snapshot
	byAsset     map[string][]models.CanonicalRecord
	identifiers []string
}

func NewStore() *Store {
	return &Store{}
}

// Publish replaces the served dataset with the given snapshot. Records
// are grouped by the verbatim raw identifier once here so reads stay
// cheap; distinct markets stay distinct even when enrichment maps them
// to the same friendly name.
func (s *Store) Publish(snapshot *models.Snapshot) {
	grouped := make(map[string][]models.CanonicalRecord)
	var identifiers []string
	for _, rec := range snapshot.Records {
		key := assetKey(rec.AssetIdentifier)
		if _, seen := grouped[key]; !seen {
			identifiers = append(identifiers, rec.AssetIdentifier)
		}
		grouped[key] = append(grouped[key], rec)
	}
	sort.Strings(identifiers)

	s.mu.Lock()
	s.snapshot = snapshot
	s.byAsset = grouped
	s.identifiers = identifiers
	s.mu.Unlock()
}

// Snapshot returns the currently served snapshot.
func (s *Store) Snapshot() (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoDataset
	}
	return s.snapshot, nil
}

// Assets lists the distinct raw identifiers in the published dataset in
// sorted order.
func (s *Store) Assets() ([]AssetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoDataset
	}

	out := make([]AssetInfo, 0, len(s.identifiers))
	for _, id := range s.identifiers {
		records := s.byAsset[assetKey(id)]
		latest := records[len(records)-1]
		obs := observation(latest)
		out = append(out, AssetInfo{
			Identifier:   latest.AssetIdentifier,
			FriendlyName: latest.Enrichment.FriendlyName,
			Sector:       latest.Enrichment.Sector,
			Exchange:     latest.Enrichment.Exchange,
			ShortCode:    latest.Enrichment.ShortCode,
			RecordCount:  len(records),
			Latest:       &obs,
		})
	}
	return out, nil
}

// Series returns the dated observations of one asset in reference date
// order. Lookup is a case-insensitive exact match on the raw identifier,
// with a case-insensitive substring fallback.
func (s *Store) Series(name string) ([]AssetObservation, error) {
	records, err := s.records(name)
	if err != nil {
		return nil, err
	}

	out := make([]AssetObservation, 0, len(records))
	for _, rec := range records {
		out = append(out, observation(rec))
	}
	return out, nil
}

// Summary computes the analytical summary of one asset's history.
func (s *Store) Summary(name string) (AssetSummary, error) {
	records, err := s.records(name)
	if err != nil {
		return AssetSummary{}, err
	}

	latest := records[len(records)-1]
	return AssetSummary{
		Identifier:       latest.AssetIdentifier,
		FriendlyName:     latest.Enrichment.FriendlyName,
		Sector:           latest.Enrichment.Sector,
		Extremity:        stats.Extremity(records, latest),
		PeriodDelta:      stats.PeriodDelta(records, latest),
		Statistics:       stats.Describe(records),
		SeasonalAverages: stats.SeasonalAverages(records),
		Latest:           observation(latest),
	}, nil
}

// records resolves one asset's series. The substring fallback settles on
// the first matching identifier in sorted order so a broad query never
// mixes the histories of distinct markets.
func (s *Store) records(name string) ([]models.CanonicalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoDataset
	}
	if records, ok := s.byAsset[assetKey(name)]; ok && len(records) > 0 {
		return records, nil
	}

	needle := assetKey(name)
	for _, id := range s.identifiers {
		if strings.Contains(strings.ToLower(id), needle) {
			return s.byAsset[assetKey(id)], nil
		}
	}
	return nil, ErrAssetNotFound
}

func observation(rec models.CanonicalRecord) AssetObservation {
	return AssetObservation{
		Identifier:    rec.AssetIdentifier,
		ReferenceDate: rec.ReferenceDate.Format("2006-01-02"),
		Long:          rec.LongCount,
		Short:         rec.ShortCount,
		Net:           rec.NetPosition(),
		Sentiment:     rec.Sentiment(),
	}
}

func assetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
