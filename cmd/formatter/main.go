// Package main provides the formatter command, which realigns the tables of
// markdown run reports after they have been edited by hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalogsize/internal/formatter"
	"catalogsize/internal/logger"
)

func main() {
	targetPath := flag.String("path", ".", "Path to a report file or a directory of reports")
	write := flag.Bool("write", false, "Write changes to file (default: false, dry-run)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	log := logger.NewLogger(*logLevel).With("tool", "formatter")

	count, changed, failed := 0, 0, 0

	err := filepath.WalkDir(*targetPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Error("Cannot access path", "path", path, "error", err)
			failed++

			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		count++

		wasChanged, procErr := processFile(path, *write)

		switch {
		case procErr != nil:
			log.Error("Failed to format", "path", path, "error", procErr)
			failed++
		case wasChanged && *write:
			changed++
			log.Info("Formatted", "path", path)
		case wasChanged:
			changed++
			log.Info("Would format", "path", path)
		}

		return nil
	})
	if err != nil {
		log.Error("Walk failed", "error", err)
		os.Exit(1)
	}

	log.Info("Summary", "scanned", count, "changed", changed, "errors", failed)

	if failed > 0 || (changed > 0 && !*write) {
		if !*write {
			fmt.Println("Run with -write to apply changes.")
		}

		os.Exit(1)
	}
}

func processFile(path string, write bool) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	original := string(content)

	formatted := formatter.FormatMarkdown(original)
	if formatted == original {
		return false, nil
	}

	if write {
		if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
			return false, err
		}
	}

	return true, nil
}
