package assembler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"cotflow/internal/enrich"
	"cotflow/internal/models"
	"cotflow/internal/normalize"
	"cotflow/logger"
)

// ErrEmptyDataset marks a run that parsed its input but produced zero
// valid canonical records. It is distinct from a fetch failure so an
// operator can tell "ingestion ran but found nothing" from "never ran".
var ErrEmptyDataset = errors.New("canonical dataset is empty")

// Report summarizes what one assembly pass did with its input.
type Report struct {
	InputRows    int
	Records      int
	DroppedDates int
}

// Assembler composes normalization, enrichment and derivation into the
// final canonical record set.
type Assembler struct {
	engine *enrich.Engine
	log    *logger.Log
}

// New builds an assembler around the given enrichment engine.
func New(engine *enrich.Engine) *Assembler {
	if engine == nil {
		engine = enrich.NewEngine(nil, nil)
	}
	return &Assembler{engine: engine, log: logger.GetLogger()}
}

// Assemble converts raw rows into canonical records under the given
// layout. Rows whose date cannot be parsed are dropped and counted; rows
// with unparseable counts survive with zero counts. Output is sorted
// ascending by (reference date, asset identifier, line) so the same input
// always yields the same bytes.
func (a *Assembler) Assemble(rows []models.RawRow, layout models.LayoutDescriptor) ([]models.CanonicalRecord, Report, error) {
	log := a.log.WithComponent("assembler").WithFields(logger.Fields{"layout": layout.Name})

	report := Report{InputRows: len(rows)}
	records := make([]models.CanonicalRecord, 0, len(rows))
	lines := make([]int, 0, len(rows))

	for _, row := range rows {
		date, err := normalize.Date(row.Field(layout.DateIndex), layout.DateFormat)
		if err != nil {
			report.DroppedDates++
			log.WithFields(logger.Fields{"line": row.Line}).WithError(err).Debug("dropping row with unparseable date")
			continue
		}

		identifier := row.Field(layout.AssetIndex)
		records = append(records, models.CanonicalRecord{
			ReferenceDate:   date,
			AssetIdentifier: identifier,
			LongCount:       normalize.Count(row.Field(layout.LongIndex)),
			ShortCount:      normalize.Count(row.Field(layout.ShortIndex)),
			Enrichment:      a.engine.Enrich(identifier),
		})
		lines = append(lines, row.Line)
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		ri, rj := records[order[x]], records[order[y]]
		if !ri.ReferenceDate.Equal(rj.ReferenceDate) {
			return ri.ReferenceDate.Before(rj.ReferenceDate)
		}
		if ri.AssetIdentifier != rj.AssetIdentifier {
			return ri.AssetIdentifier < rj.AssetIdentifier
		}
		return lines[order[x]] < lines[order[y]]
	})
	sorted := make([]models.CanonicalRecord, len(records))
	for i, idx := range order {
		sorted[i] = records[idx]
	}
	report.Records = len(sorted)

	log.WithFields(logger.Fields{
		"input_rows":    report.InputRows,
		"records":       report.Records,
		"dropped_dates": report.DroppedDates,
	}).Info("assembly finished")

	if len(sorted) == 0 {
		return nil, report, ErrEmptyDataset
	}
	return sorted, report, nil
}

// BuildSnapshot wraps an assembled record set into an immutable snapshot
// keyed by source identity and ingestion time.
func (a *Assembler) BuildSnapshot(records []models.CanonicalRecord, sourceURL string, layout models.LayoutDescriptor, ingestedAt time.Time) *models.Snapshot {
	return &models.Snapshot{
		ID:         uuid.New().String(),
		Key:        fmt.Sprintf("%s@%s", sourceURL, ingestedAt.UTC().Format(time.RFC3339)),
		SourceURL:  sourceURL,
		Layout:     layout.Name,
		IngestedAt: ingestedAt.UTC(),
		Records:    records,
	}
}
