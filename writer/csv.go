package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"cotflow/internal/models"
	"cotflow/logger"
)

// csvHeader is the persisted canonical column set. The column names are
// part of the dataset contract and must not change between runs.
var csvHeader = []string{"data_referencia", "nome_ativo", "Comprados", "Vendidos"}

// CSVWriter persists the canonical dataset as a single CSV document.
// Every write replaces the previous document wholesale; there is no
// append path.
type CSVWriter struct {
	path string
	log  *logger.Log
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path: path,
		log:  logger.GetLogger(),
	}
}

// Write renders the snapshot's records and atomically replaces the file
// at the configured path. The temp-then-rename dance keeps readers from
// ever observing a half-written dataset.
func (w *CSVWriter) Write(snapshot *models.Snapshot) error {
	log := w.log.WithComponent("csv_writer").WithFields(logger.Fields{
		"path":         w.path,
		"record_count": len(snapshot.Records),
	})

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".canonical-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range snapshot.Records {
		row := []string{
			rec.ReferenceDate.Format("2006-01-02"),
			rec.AssetIdentifier,
			strconv.FormatInt(rec.LongCount, 10),
			strconv.FormatInt(rec.ShortCount, 10),
		}
		if err := cw.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to stat temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace csv file: %w", err)
	}

	logger.RecordSinkWrite("csv", int(info.Size()))
	log.WithFields(logger.Fields{"file_size": info.Size()}).Info("canonical dataset written")
	return nil
}
