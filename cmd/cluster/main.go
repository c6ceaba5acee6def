// Package main provides the cluster command, which splits projected entries
// by product name and groups each name by physical size.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"catalogsize/internal/cluster"
	"catalogsize/internal/config"
	"catalogsize/internal/formatter"
	"catalogsize/internal/logger"
	"catalogsize/internal/models"
	"catalogsize/internal/store"
	"catalogsize/pkg/metadata"
)

const toolName = "cluster"

// ErrInvalidSweepFlag is returned for a -sweep value that is not lo:hi:step.
var ErrInvalidSweepFlag = errors.New("sweep must be lo:hi:step")

// sweep is an inclusive k range.
type sweep struct {
	lo, hi, step int
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config (embedded defaults when empty)")
	inputPath := flag.String("input", "", "Path to projected entries (.json or .jsonl)")
	outputDir := flag.String("output", "", "Directory for clustered result files")
	k := flag.Int("k", 0, "Number of size groups per name")
	byID := flag.Bool("by-id", false, "Use the number of distinct ids per name as k")
	sweepFlag := flag.String("sweep", "", "Try every k in lo:hi:step (inclusive)")
	splitDir := flag.String("split", "", "Also write one entries file per name and name_count.json here")
	reportPath := flag.String("report", "", "Write a markdown report to this path instead of stdout")
	logLevel := flag.String("log-level", "", "Log level (overrides logging.level)")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: cluster -input <projected.json> -output <dir> (-k n | -by-id | -sweep lo:hi:step) [-split dir]")
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

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr).With("tool", toolName)

	mode, err := selectMode(*k, *byID, *sweepFlag, *splitDir != "")
	if err != nil {
		log.Error("Invalid arguments", "error", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if mode != nil && *outputDir == "" {
		log.Error("Clustering needs an -output directory")
		os.Exit(1)
	}

	if err := run(cfg, log, *inputPath, *outputDir, *splitDir, *reportPath, mode); err != nil {
		log.Error("Clustering failed", "error", err)
		os.Exit(1)
	}
}

// mode picks k for one name group; ok is false when the group cannot be
// clustered.
type mode func(entries []models.Record, f cluster.Fields) (ks sweep, note string, ok bool)

// selectMode returns nil when only a split was requested.
func selectMode(k int, byID bool, sweepFlag string, split bool) (mode, error) {
	chosen := 0
	if k > 0 {
		chosen++
	}

	if byID {
		chosen++
	}

	if sweepFlag != "" {
		chosen++
	}

	switch {
	case chosen > 1:
		return nil, errors.New("use only one of -k, -by-id and -sweep")
	case chosen == 0 && split:
		return nil, nil
	case chosen == 0:
		return nil, errors.New("one of -k, -by-id, -sweep or -split is required")
	case k < 0:
		return nil, fmt.Errorf("k must be positive: %d", k)
	}

	if k > 0 {
		return func([]models.Record, cluster.Fields) (sweep, string, bool) {
			return sweep{k, k, 1}, "", true
		}, nil
	}

	if byID {
		return func(entries []models.Record, f cluster.Fields) (sweep, string, bool) {
			n := cluster.DistinctIDs(entries, f)
			if n == 0 {
				return sweep{}, "no ids", false
			}

			return sweep{n, n, 1}, fmt.Sprintf("k from %d ids", n), true
		}, nil
	}

	s, err := parseSweep(sweepFlag)
	if err != nil {
		return nil, err
	}

	return func([]models.Record, cluster.Fields) (sweep, string, bool) {
		return s, "", true
	}, nil
}

func parseSweep(s string) (sweep, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return sweep{}, fmt.Errorf("%w: %q", ErrInvalidSweepFlag, s)
	}

	var vals [3]int

	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return sweep{}, fmt.Errorf("%w: %q", ErrInvalidSweepFlag, s)
		}

		vals[i] = v
	}

	if vals[0] <= 0 || vals[2] <= 0 || vals[0] > vals[1] {
		return sweep{}, fmt.Errorf("%w: need 0 < lo <= hi and step > 0, got %q", ErrInvalidSweepFlag, s)
	}

	return sweep{vals[0], vals[1], vals[2]}, nil
}

func run(cfg *config.Config, log *logger.Logger, inputPath, outputDir, splitDir, reportPath string, pick mode) error {
	doc, err := store.LoadDocument(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", inputPath, err)
	}

	names, groups := cluster.GroupByName(doc.Entries, cfg.Clustering.NameField)
	log.Info("Grouped entries by name", "entries", len(doc.Entries), "names", len(names))

	configHash, err := cfg.Fingerprint()
	if err != nil {
		return err
	}

	meta := metadata.New(toolName, configHash)

	var report string

	if splitDir != "" {
		counts, err := store.SaveGroups(splitDir, names, groups, cfg.Output.PrettyPrint)
		if err != nil {
			return fmt.Errorf("failed to split by name: %w", err)
		}

		log.Info("Wrote name groups", "dir", splitDir, "files", len(counts))
		report = formatter.RenderNameCounts(meta, counts, 0)
	}

	if pick != nil {
		rows, err := clusterGroups(cfg, log, meta, names, groups, outputDir, pick)
		if err != nil {
			return err
		}

		report = formatter.RenderClusterReport(meta, rows)
	}

	if reportPath == "" {
		fmt.Print(report)
		return nil
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(reportPath), 0755); mkdirErr != nil {
		return fmt.Errorf("failed to create directory: %w", mkdirErr)
	}

	if err := os.WriteFile(reportPath, []byte(report), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func clusterGroups(cfg *config.Config, log *logger.Logger, meta *metadata.Metadata, names []string, groups map[string][]models.Record, outputDir string, pick mode) ([]formatter.SweepRow, error) {
	fields := cluster.NewFields(cfg.Clustering)
	km := cluster.NewKMeans(cfg.Clustering, 1)
	rows := make([]formatter.SweepRow, 0, len(names))

	for _, name := range names {
		entries := groups[name]
		row := formatter.SweepRow{Name: name}

		ks, note, ok := pick(entries, fields)
		row.Note = note

		if !ok {
			log.Debug("Skipping name", "name", name, "reason", note)
			rows = append(rows, row)

			continue
		}

		points, err := cluster.Sweep(entries, ks.lo, ks.hi, ks.step, km, fields)
		if errors.Is(err, cluster.ErrNoValidEntries) {
			row.Note = "no valid entries"
			log.Debug("Skipping name", "name", name, "reason", row.Note)
			rows = append(rows, row)

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("name %q: %w", name, err)
		}

		for _, p := range points {
			if err := saveResult(outputDir, name, p, *meta, cfg.Output.PrettyPrint); err != nil {
				return nil, err
			}
		}

		row.Points = points
		rows = append(rows, row)
	}

	log.Info("Clustering complete", "names", len(names), "output", outputDir)

	return rows, nil
}

func saveResult(dir, name string, p cluster.SweepPoint, meta metadata.Metadata, pretty bool) error {
	if err := meta.Sign(p.Result.Entries, len(p.Result.Entries)); err != nil {
		return fmt.Errorf("failed to sign %q: %w", name, err)
	}

	doc := &models.Document{Metadata: &meta, Entries: p.Result.Entries}
	path := filepath.Join(dir, store.ResultFileName(name, p.K))

	if err := store.SaveDocument(path, doc, store.FormatJSON, pretty); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}
