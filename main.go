package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cotflow/config"
	"cotflow/internal/dashboard"
	"cotflow/internal/pipeline"
	"cotflow/logger"
	"cotflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	mode := flag.String("mode", "weekly", "Ingestion mode: weekly or archive")
	year := flag.Int("year", time.Now().Year(), "Report year for archive mode")
	serve := flag.Bool("serve", false, "Keep running and serve the read API after ingestion")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.Cotflow.Name,
		"version":     cfg.Cotflow.Version,
		"environment": config.AppEnvironment(),
		"mode":        *mode,
	}).Info("starting cotflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Production-like deployments always run the periodic resource report.
	if strings.ToLower(cfg.Logging.Level) == "report" || config.IsProductionLike(config.AppEnvironment()) {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	if cfg.Storage.S3.Enabled || os.Getenv("AWS_REGION") != "" {
		logger.InitCloudWatch(cfg.Storage.S3.Region, cfg.Cotflow.Name, cfg.Cotflow.Name)
	}

	sinks := pipeline.Sinks{
		CSV: writer.NewCSVWriter(cfg.Output.CSVPath),
	}

	if cfg.Output.Parquet.Enabled {
		sinks.Parquet = writer.NewParquetEncoder(cfg.Output.Parquet.Compression)
	}
	if cfg.Storage.S3.Enabled {
		s3Writer, err := writer.NewS3Writer(cfg)
		if err != nil {
			log.WithError(err).Error("failed to create S3 writer")
			os.Exit(1)
		}
		sinks.S3 = s3Writer
		if sinks.Parquet == nil {
			// S3 mirrors the parquet rendering; enable it implicitly.
			sinks.Parquet = writer.NewParquetEncoder(cfg.Output.Parquet.Compression)
		}
	}
	if cfg.Database.Enabled {
		dbWriter, err := writer.NewDatabaseWriter(cfg.Database.DSN, cfg.Database.Table)
		if err != nil {
			log.WithError(err).Error("failed to create database writer")
			os.Exit(1)
		}
		sinks.Database = dbWriter
	}
	if cfg.Storage.Kafka.Enabled {
		kafkaWriter, err := writer.NewKafkaWriter(cfg.Storage.Kafka.Brokers, cfg.Storage.Kafka.Topic)
		if err != nil {
			log.WithError(err).Error("failed to create kafka writer")
			os.Exit(1)
		}
		sinks.Kafka = kafkaWriter
		defer kafkaWriter.Close()
	}

	store := dashboard.NewStore()
	runner := pipeline.NewRunner(cfg, store, sinks)

	run := func(ctx context.Context) error {
		switch strings.ToLower(*mode) {
		case "archive":
			_, err := runner.RunArchive(ctx, *year)
			return err
		default:
			_, err := runner.RunWeekly(ctx)
			return err
		}
	}

	if err := run(ctx); err != nil {
		log.WithError(err).Error("pipeline run failed")
		os.Exit(1)
	}
	log.Info("pipeline run completed")

	if !*serve && !cfg.Server.Enabled {
		log.Info("cotflow stopped")
		return
	}

	serverCfg := cfg.Server
	serverCfg.Enabled = true
	server, err := dashboard.NewServer(serverCfg, store, cfg.Cotflow.Name, cfg.Cotflow.Version)
	if err != nil {
		log.WithError(err).Error("failed to create read API server")
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run(ctx)
	}()

	log.WithFields(logger.Fields{"address": server.Address()}).Info("read API serving published dataset")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
		cancel()
		select {
		case <-serverErr:
		case <-time.After(10 * time.Second):
			log.Warn("graceful shutdown timeout exceeded")
		}
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("read API server failed")
			os.Exit(1)
		}
	}

	log.Info("cotflow stopped")
}
