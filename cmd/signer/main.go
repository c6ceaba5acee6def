// Package main provides the signer command, which verifies or re-signs the
// entries hash of a projected document.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"catalogsize/internal/config"
	"catalogsize/internal/logger"
	"catalogsize/internal/models"
	"catalogsize/internal/normalizer"
	"catalogsize/internal/store"
	"catalogsize/pkg/metadata"
)

func main() {
	inputPath := flag.String("input", "", "Path to a projected document (.json or .jsonl)")
	configPath := flag.String("config", "", "Path to YAML config (embedded defaults when empty)")
	verifyOnly := flag.Bool("verify", false, "Only check the hash; exit 1 when entries were edited")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: signer -input <projected.json> [-verify]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()

	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		cfg = loaded
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr).With("tool", "signer")

	doc, err := store.LoadDocument(*inputPath)
	if err != nil {
		log.Error("Failed to load document", "path", *inputPath, "error", err)
		os.Exit(1)
	}

	if *verifyOnly {
		if _, err := metadata.Verify(doc.Metadata, doc.Entries); err != nil {
			log.Error("Verification failed", "path", *inputPath, "error", err)
			os.Exit(1)
		}

		log.Info("Entries match their hash", "path", *inputPath, "run", doc.Metadata.RunID, "entries", len(doc.Entries))

		return
	}

	if err := sign(cfg, doc); err != nil {
		log.Error("Refusing to sign", "path", *inputPath, "error", err)
		os.Exit(1)
	}

	format := store.FormatOf(*inputPath)
	if err := store.SaveDocument(*inputPath, doc, format, cfg.Output.PrettyPrint); err != nil {
		log.Error("Failed to save document", "path", *inputPath, "error", err)
		os.Exit(1)
	}

	log.Info("Signed", "path", *inputPath, "run", doc.Metadata.RunID, "hash", doc.Metadata.EntriesHash)
}

// sign validates every entry and records a fresh hash, keeping the run id of
// existing metadata.
func sign(cfg *config.Config, doc *models.Document) error {
	v := normalizer.NewValidator(cfg)

	var errs []error

	for i, rec := range doc.Entries {
		if err := v.Validate(rec); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	if doc.Metadata == nil {
		configHash, err := cfg.Fingerprint()
		if err != nil {
			return err
		}

		doc.Metadata = metadata.New("signer", configHash)
	}

	return doc.Metadata.Sign(doc.Entries, len(doc.Entries))
}
