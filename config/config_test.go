package config

import (
	"os"
	"testing"
	"time"

	"cotflow/internal/models"
)

// writeTempConfig creates a minimal configuration file required for LoadConfig
// and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

const minimalConfig = `cotflow:
  name: "TestApp"
  version: "1.0"
source:
  weekly_url: "https://example.com/weekly.txt"
storage:
  s3:
    enabled: false
`

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, minimalConfig)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Cotflow.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.Cotflow.Name)
	}
	if cfg.Source.Timeout != 30*time.Second {
		t.Errorf("unexpected default timeout: %s", cfg.Source.Timeout)
	}
	if cfg.Source.RequestsPerMinute != 30 {
		t.Errorf("unexpected default request rate: %d", cfg.Source.RequestsPerMinute)
	}
	if cfg.Output.CSVPath != "data/canonical.csv" {
		t.Errorf("unexpected default csv path: %s", cfg.Output.CSVPath)
	}
}

func TestLoadConfigRejectsMissingSource(t *testing.T) {
	path := writeTempConfig(t, `cotflow:
  name: "TestApp"
  version: "1.0"
`)
	defer os.Remove(path)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for missing source URLs")
	}
}

func TestLoadConfigRejectsBadArchiveTemplate(t *testing.T) {
	path := writeTempConfig(t, `cotflow:
  name: "TestApp"
  version: "1.0"
source:
  archive_url_template: "https://example.com/fin_fut_txt_2024.zip"
`)
	defer os.Remove(path)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for archive template without a year placeholder")
	}
}

func TestBuiltinLayouts(t *testing.T) {
	path := writeTempConfig(t, minimalConfig)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	weekly, err := cfg.Layout("weekly")
	if err != nil {
		t.Fatalf("weekly layout: %v", err)
	}
	if weekly.DateIndex != 2 || weekly.LongIndex != 8 || weekly.ShortIndex != 9 {
		t.Errorf("unexpected weekly indices: %+v", weekly)
	}
	if weekly.DateFormat != models.EncodingISO {
		t.Errorf("unexpected weekly date format: %s", weekly.DateFormat)
	}

	archive, err := cfg.Layout("archive")
	if err != nil {
		t.Fatalf("archive layout: %v", err)
	}
	if archive.DateIndex != 1 || archive.LongIndex != 5 || archive.ShortIndex != 6 {
		t.Errorf("unexpected archive indices: %+v", archive)
	}
	if archive.DateFormat != models.EncodingCompact {
		t.Errorf("unexpected archive date format: %s", archive.DateFormat)
	}

	if _, err := cfg.Layout("weird"); err == nil {
		t.Error("expected error for unknown layout name")
	}
}

func TestLayoutConfigOverride(t *testing.T) {
	path := writeTempConfig(t, minimalConfig+`layouts:
- name: "weekly"
  asset_index: 1
  date_index: 3
  long_index: 10
  short_index: 11
  date_format: "iso"
  category: "dealer aggregate"
`)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	weekly, err := cfg.Layout("weekly")
	if err != nil {
		t.Fatalf("weekly layout: %v", err)
	}
	if weekly.AssetIndex != 1 || weekly.DateIndex != 3 || weekly.LongIndex != 10 || weekly.ShortIndex != 11 {
		t.Errorf("config override not applied: %+v", weekly)
	}
}

func TestIsValidS3Bucket(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"valid-bucket", true},
		{"Invalid", false},
		{"ab", false},
		{"my..bucket", false},
	}
	for _, c := range cases {
		if got := isValidS3Bucket(c.name); got != c.valid {
			t.Errorf("isValidS3Bucket(%q) = %v, want %v", c.name, got, c.valid)
		}
	}
}
