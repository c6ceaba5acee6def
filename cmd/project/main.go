// Package main provides the project command, which cleans a batch of catalog
// records and derives their centimeter dimensions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"catalogsize/internal/config"
	"catalogsize/internal/formatter"
	"catalogsize/internal/logger"
	"catalogsize/internal/models"
	"catalogsize/internal/normalizer"
	"catalogsize/internal/store"
	"catalogsize/pkg/metadata"
)

const toolName = "project"

func main() {
	configPath := flag.String("config", "", "Path to YAML config (embedded defaults when empty)")
	inputPath := flag.String("input", "", "Path to input entries (.json or .jsonl)")
	outputPath := flag.String("output", "", "Path to projected output (.json or .jsonl)")
	sqlitePath := flag.String("sqlite", "", "Also store the projected entries in this SQLite database")
	workers := flag.Int("workers", 0, "Concurrent workers (overrides processing.workers)")
	logLevel := flag.String("log-level", "", "Log level (overrides logging.level)")
	reportPath := flag.String("report", "", "Write a markdown run report to this path")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Println("Usage: project -input <entries.json> -output <projected.json> [-config config.yaml]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath, *workers, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr).With("tool", toolName)
	log.Debug("Configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *inputPath, *outputPath, *sqlitePath, *reportPath); err != nil {
		log.Error("Projection failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string, workers int, level string) (*config.Config, error) {
	cfg := config.Default()

	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if workers > 0 {
		cfg.Processing.Workers = workers
	}

	if level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, inputPath, outputPath, sqlitePath, reportPath string) error {
	startTime := time.Now()

	doc, err := store.LoadDocument(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", inputPath, err)
	}

	log.Info("Loaded entries", "path", inputPath, "entries", len(doc.Entries))

	processor, err := normalizer.NewProcessor(cfg, log)
	if err != nil {
		return err
	}

	entries, stats := processor.ProcessBatch(ctx, doc.Entries)

	configHash, err := cfg.Fingerprint()
	if err != nil {
		return err
	}

	meta := metadata.New(toolName, configHash)
	if err := meta.Sign(entries, len(entries)); err != nil {
		return fmt.Errorf("failed to sign entries: %w", err)
	}

	out := &models.Document{Metadata: meta, Entries: entries}

	format := cfg.Output.Format
	if store.FormatOf(outputPath) == store.FormatJSONL {
		format = store.FormatJSONL
	}

	if err := store.SaveDocument(outputPath, out, format, cfg.Output.PrettyPrint); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputPath, err)
	}

	log.Info("Saved projected entries", "path", outputPath, "format", format, "run", meta.RunID)

	if sqlitePath != "" {
		if err := writeSQLite(ctx, cfg, sqlitePath, out); err != nil {
			return err
		}

		log.Info("Stored run in SQLite", "path", sqlitePath)
	}

	if reportPath != "" {
		if mkdirErr := os.MkdirAll(filepath.Dir(reportPath), 0755); mkdirErr != nil {
			return fmt.Errorf("failed to create directory: %w", mkdirErr)
		}

		report := formatter.RenderProjectionReport(meta, stats)
		if err := os.WriteFile(reportPath, []byte(report), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	log.Info("Projection complete",
		"records", stats.Records,
		"projected", stats.Projected,
		"invalid", stats.Invalid,
		"cancelled", stats.Cancelled,
		"duration", time.Since(startTime))

	if stats.Cancelled > 0 {
		return fmt.Errorf("interrupted with %d records unprocessed: %w", stats.Cancelled, ctx.Err())
	}

	return nil
}

func writeSQLite(ctx context.Context, cfg *config.Config, path string, doc *models.Document) error {
	sink, err := store.OpenSQLite(path, cfg.Projection.Columns.Country, cfg.Clustering.NameField)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.WriteDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	return nil
}
