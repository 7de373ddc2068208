package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cotflow/internal/enrich"
	"cotflow/internal/models"
)

type Config struct {
	Cotflow    CotflowConfig    `yaml:"cotflow"`
	Source     SourceConfig     `yaml:"source"`
	Layouts    []LayoutConfig   `yaml:"layouts"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Output     OutputConfig     `yaml:"output"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type CotflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type SourceConfig struct {
	// WeeklyURL is the single-document weekly positioning feed.
	WeeklyURL string `yaml:"weekly_url"`
	// ArchiveURLTemplate receives the four digit year, e.g.
	// "https://example.com/history/fin_fut_txt_%d.zip".
	ArchiveURLTemplate string `yaml:"archive_url_template"`
	// ArchiveEntry optionally names the report file inside the archive.
	// Empty means the archive must hold exactly one file.
	ArchiveEntry      string        `yaml:"archive_entry"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// LayoutConfig mirrors models.LayoutDescriptor for yaml overrides. Feed
// variants are always selected by name; the pipeline never sniffs the
// payload to guess a layout.
type LayoutConfig struct {
	Name       string `yaml:"name"`
	AssetIndex int    `yaml:"asset_index"`
	DateIndex  int    `yaml:"date_index"`
	LongIndex  int    `yaml:"long_index"`
	ShortIndex int    `yaml:"short_index"`
	DateFormat string `yaml:"date_format"`
	Category   string `yaml:"category"`
}

// EnrichmentConfig optionally replaces the built-in rule tables. Rules
// are ordered; first match wins.
type EnrichmentConfig struct {
	NameRules   []enrich.NameRule   `yaml:"name_rules"`
	SectorRules []enrich.SectorRule `yaml:"sector_rules"`
}

type OutputConfig struct {
	// CSVPath receives the canonical persisted dataset.
	CSVPath string        `yaml:"csv_path"`
	Parquet ParquetConfig `yaml:"parquet"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
}

type StorageConfig struct {
	S3    S3Config    `yaml:"s3"`
	Kafka KafkaConfig `yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

func LoadConfig(path string) (*Config, error) {
	path = resolveConfigPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Source: SourceConfig{
			Timeout:           30 * time.Second,
			RequestsPerMinute: 30,
		},
		Output: OutputConfig{
			CSVPath: "data/canonical.csv",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override credentials from environment variables if available
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		config.Storage.S3.Region = strings.TrimSpace(v)
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.Storage.S3.Bucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.Database.DSN = strings.TrimSpace(v)
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Cotflow.Name == "" {
		return fmt.Errorf("cotflow.name is required")
	}
	if cfg.Cotflow.Version == "" {
		return fmt.Errorf("cotflow.version is required")
	}

	if cfg.Source.WeeklyURL == "" && cfg.Source.ArchiveURLTemplate == "" {
		return fmt.Errorf("source.weekly_url or source.archive_url_template is required")
	}
	if tmpl := cfg.Source.ArchiveURLTemplate; tmpl != "" && strings.Count(tmpl, "%d") != 1 {
		return fmt.Errorf("source.archive_url_template must contain exactly one %%d year placeholder")
	}
	if cfg.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be greater than 0")
	}
	if cfg.Source.RequestsPerMinute <= 0 {
		return fmt.Errorf("source.requests_per_minute must be greater than 0")
	}

	for i, l := range cfg.Layouts {
		if l.Name == "" {
			return fmt.Errorf("layouts[%d].name is required", i)
		}
		if _, err := decodeDateFormat(l.DateFormat); err != nil {
			return fmt.Errorf("layouts[%d]: %w", i, err)
		}
		if l.AssetIndex < 0 || l.DateIndex < 0 || l.LongIndex < 0 || l.ShortIndex < 0 {
			return fmt.Errorf("layouts[%d]: field indices must be non-negative", i)
		}
	}

	if cfg.Output.CSVPath == "" {
		return fmt.Errorf("output.csv_path is required")
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	if cfg.Storage.Kafka.Enabled {
		if len(cfg.Storage.Kafka.Brokers) == 0 {
			return fmt.Errorf("storage.kafka.brokers is required when Kafka is enabled")
		}
		if cfg.Storage.Kafka.Topic == "" {
			return fmt.Errorf("storage.kafka.topic is required when Kafka is enabled")
		}
	}

	if cfg.Database.Enabled && cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when the database sink is enabled")
	}

	if cfg.Server.Enabled && cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required when the server is enabled")
	}

	return nil
}

func decodeDateFormat(raw string) (models.DateEncoding, error) {
	switch models.DateEncoding(strings.ToLower(strings.TrimSpace(raw))) {
	case models.EncodingISO:
		return models.EncodingISO, nil
	case models.EncodingCompact:
		return models.EncodingCompact, nil
	default:
		return "", fmt.Errorf("unknown date_format %q (want %q or %q)", raw, models.EncodingISO, models.EncodingCompact)
	}
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
