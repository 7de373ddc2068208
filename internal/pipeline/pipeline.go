package pipeline

import (
	"context"
	"fmt"
	"time"

	"cotflow/config"
	"cotflow/internal/assembler"
	"cotflow/internal/dashboard"
	"cotflow/internal/enrich"
	"cotflow/internal/fetcher"
	"cotflow/internal/models"
	"cotflow/internal/parser"
	"cotflow/logger"
	"cotflow/writer"
)

// Sinks bundles the optional output destinations of a pipeline run. The
// CSV writer is the canonical sink; the rest are best-effort mirrors.
type Sinks struct {
	CSV      *writer.CSVWriter
	Parquet  *writer.ParquetEncoder
	S3       *writer.S3Writer
	Database *writer.DatabaseWriter
	Kafka    *writer.KafkaWriter
}

// Runner executes one full batch: fetch, parse, assemble, publish,
// persist. Runs are independent; each one replaces the published
// dataset wholesale.
type Runner struct {
	cfg       *config.Config
	fetcher   *fetcher.Fetcher
	assembler *assembler.Assembler
	cache     *assembler.Cache
	store     *dashboard.Store
	sinks     Sinks
	log       *logger.Log
	now       func() time.Time
}

func NewRunner(cfg *config.Config, store *dashboard.Store, sinks Sinks) *Runner {
	var engine *enrich.Engine
	if len(cfg.Enrichment.NameRules) > 0 || len(cfg.Enrichment.SectorRules) > 0 {
		engine = enrich.NewEngine(cfg.Enrichment.NameRules, cfg.Enrichment.SectorRules)
	}

	return &Runner{
		cfg:       cfg,
		fetcher:   fetcher.New(cfg.Source.Timeout, cfg.Source.RequestsPerMinute),
		assembler: assembler.New(engine),
		cache:     assembler.NewCache(),
		store:     store,
		sinks:     sinks,
		log:       logger.GetLogger(),
		now:       time.Now,
	}
}

// Cache exposes the snapshot cache for read access by callers.
func (r *Runner) Cache() *assembler.Cache {
	return r.cache
}

// RunWeekly ingests the weekly feed.
func (r *Runner) RunWeekly(ctx context.Context) (*models.Snapshot, error) {
	if r.cfg.Source.WeeklyURL == "" {
		return nil, fmt.Errorf("weekly source URL not configured")
	}
	return r.Run(ctx, "weekly", fetcher.SourceSpec{URL: r.cfg.Source.WeeklyURL})
}

// RunArchive ingests the yearly archive feed for the given year.
func (r *Runner) RunArchive(ctx context.Context, year int) (*models.Snapshot, error) {
	if r.cfg.Source.ArchiveURLTemplate == "" {
		return nil, fmt.Errorf("archive source URL template not configured")
	}
	spec := fetcher.SourceSpec{
		URL:          fmt.Sprintf(r.cfg.Source.ArchiveURLTemplate, year),
		Archive:      true,
		ArchiveEntry: r.cfg.Source.ArchiveEntry,
	}
	return r.Run(ctx, "archive", spec)
}

// Run executes one batch against the named layout and source. On
// success the produced snapshot has been published to the cache, the
// read store and every configured sink.
func (r *Runner) Run(ctx context.Context, layoutName string, source fetcher.SourceSpec) (*models.Snapshot, error) {
	start := r.now()
	log := r.log.WithComponent("pipeline").WithFields(logger.Fields{
		"layout": layoutName,
		"url":    source.URL,
	})

	layout, err := r.cfg.Layout(layoutName)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline run starting")

	raw, err := r.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	rows, skipped, err := parser.Parse(raw, layout)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	records, report, err := r.assembler.Assemble(rows, layout)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	snapshot := r.assembler.BuildSnapshot(records, source.URL, layout, r.now())

	// Publish before persisting so readers see the new dataset even when
	// a mirror sink fails.
	r.cache.Publish(snapshot)
	if r.store != nil {
		r.store.Publish(snapshot)
	}

	if err := r.persist(ctx, snapshot); err != nil {
		return nil, err
	}

	logger.LogPerformanceEntry(log.WithFields(logger.Fields{
		"records":       len(snapshot.Records),
		"skipped_rows":  skipped,
		"dropped_dates": report.DroppedDates,
	}), "pipeline", "run", r.now().Sub(start), nil)
	logger.LogDataFlowEntry(r.log.WithComponent("pipeline"), source.URL, "snapshot", len(snapshot.Records), "canonical_record")

	return snapshot, nil
}

// persist writes the snapshot to the configured sinks. The canonical
// CSV write is fatal; mirror sinks log and continue so a broken mirror
// never blocks publication.
func (r *Runner) persist(ctx context.Context, snapshot *models.Snapshot) error {
	log := r.log.WithComponent("pipeline")

	if r.sinks.CSV != nil {
		if err := r.sinks.CSV.Write(snapshot); err != nil {
			return fmt.Errorf("csv write: %w", err)
		}
	}

	if r.sinks.Parquet != nil {
		data, err := r.sinks.Parquet.Encode(snapshot)
		if err != nil {
			log.WithError(err).Error("parquet encode failed")
		} else if r.sinks.S3 != nil {
			if err := r.sinks.S3.Upload(ctx, snapshot, data); err != nil {
				log.WithError(err).Error("s3 upload failed")
			}
		}
	}

	if r.sinks.Database != nil {
		if err := r.sinks.Database.Replace(snapshot); err != nil {
			log.WithError(err).Error("database replace failed")
		}
	}

	if r.sinks.Kafka != nil {
		if err := r.sinks.Kafka.Publish(ctx, snapshot); err != nil {
			log.WithError(err).Error("kafka publish failed")
		}
	}

	return nil
}
