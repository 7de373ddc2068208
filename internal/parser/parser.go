package parser

import (
	"bytes"
	"encoding/csv"
	"io"

	"cotflow/internal/models"
	"cotflow/logger"
)

// Parse extracts positional rows from a raw delimited feed according to
// the given layout. Input is headerless; fields are addressed purely by
// index. Rows with fewer fields than the layout requires are skipped and
// counted, never fatal to the batch. The returned slice is fully
// materialized so callers may iterate it any number of times.
func Parse(raw []byte, layout models.LayoutDescriptor) ([]models.RawRow, int, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	log := logger.GetLogger().WithComponent("parser").WithFields(logger.Fields{
		"layout": layout.Name,
	})

	required := layout.MaxIndex() + 1
	rows := make([]models.RawRow, 0, 1024)
	skipped := 0
	line := 0

	for {
		line++
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed line is a row-level failure: drop it and keep
			// going, same as a short row.
			skipped++
			log.WithFields(logger.Fields{"line": line}).WithError(err).Debug("dropping malformed line")
			continue
		}
		if len(fields) < required {
			skipped++
			log.WithFields(logger.Fields{
				"line":     line,
				"fields":   len(fields),
				"required": required,
			}).Debug("dropping short row")
			continue
		}
		rows = append(rows, models.RawRow{Fields: fields, Line: line})
	}

	logger.IncrementRowsParsed(len(rows))
	if skipped > 0 {
		logger.IncrementRowsDropped(skipped)
		log.WithFields(logger.Fields{"skipped_rows": skipped, "parsed_rows": len(rows)}).Warn("skipped rows during parse")
	}

	return rows, skipped, nil
}
