package writer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "cotflow/config"
	"cotflow/internal/models"
	"cotflow/logger"
)

// S3Writer uploads parquet snapshots to an S3 bucket under a
// date-partitioned key.
type S3Writer struct {
	config   *appconfig.Config
	s3Client *s3.Client
	log      *logger.Log
}

func NewS3Writer(cfg *appconfig.Config) (*S3Writer, error) {
	log := logger.GetLogger()

	ctx := context.Background()

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.WithComponent("s3_writer").WithError(err).Warn("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsConfig.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	log.WithComponent("s3_writer").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
	}).Info("s3 writer initialized")

	return &S3Writer{
		config:   cfg,
		s3Client: s3Client,
		log:      log,
	}, nil
}

// Upload stores the encoded parquet document under a key partitioned by
// layout and ingestion date.
func (w *S3Writer) Upload(ctx context.Context, snapshot *models.Snapshot, data []byte) error {
	key := w.generateS3Key(snapshot)

	log := w.log.WithComponent("s3_writer").WithFields(logger.Fields{
		"s3_key":       key,
		"data_size":    len(data),
		"record_count": len(snapshot.Records),
		"operation":    "upload",
	})
	log.Info("uploading to S3")

	input := &s3.PutObjectInput{
		Bucket:      aws.String(w.config.Storage.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"content-type":    "parquet",
			"cotflow-version": w.config.Cotflow.Version,
			"snapshot-id":     snapshot.ID,
		},
	}

	if _, err := w.s3Client.PutObject(context.WithoutCancel(ctx), input); err != nil {
		log.WithError(err).
			WithEnv("S3_BUCKET").
			WithFields(logger.Fields{"bucket": w.config.Storage.S3.Bucket}).
			Error("failed to upload to S3")
		return fmt.Errorf("failed to upload to S3 bucket %s: %w", w.config.Storage.S3.Bucket, err)
	}

	logger.RecordSinkWrite("s3", len(data))
	log.Info("successfully uploaded to S3")
	return nil
}

func (w *S3Writer) generateS3Key(snapshot *models.Snapshot) string {
	ts := snapshot.IngestedAt.UTC()

	parts := []string{
		fmt.Sprintf("layout=%s", snapshot.Layout),
		fmt.Sprintf("year=%04d", ts.Year()),
		fmt.Sprintf("month=%02d", ts.Month()),
	}
	if prefix := w.config.Storage.S3.Prefix; prefix != "" {
		parts = append([]string{prefix}, parts...)
	}

	filename := fmt.Sprintf("cot_%s_%s.parquet", snapshot.Layout, ts.Format("20060102150405"))
	key := filepath.Join(append(parts, filename)...)

	// Convert to forward slashes for S3
	return filepath.ToSlash(key)
}
