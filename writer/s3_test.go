package writer

import (
	"testing"
	"time"

	appconfig "cotflow/config"
)

func TestGenerateS3Key(t *testing.T) {
	cfg := &appconfig.Config{}
	cfg.Storage.S3.Prefix = "cot-reports"

	w := &S3Writer{config: cfg}

	snap := sampleSnapshot()
	snap.Layout = "weekly"
	snap.IngestedAt = time.Date(2024, time.March, 12, 8, 30, 0, 0, time.UTC)

	got := w.generateS3Key(snap)
	want := "cot-reports/layout=weekly/year=2024/month=03/cot_weekly_20240312083000.parquet"
	if got != want {
		t.Errorf("generateS3Key = %q, want %q", got, want)
	}
}

func TestGenerateS3KeyWithoutPrefix(t *testing.T) {
	w := &S3Writer{config: &appconfig.Config{}}

	snap := sampleSnapshot()
	snap.Layout = "archive"
	snap.IngestedAt = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	got := w.generateS3Key(snap)
	want := "layout=archive/year=2024/month=01/cot_archive_20240102000000.parquet"
	if got != want {
		t.Errorf("generateS3Key = %q, want %q", got, want)
	}
}
