package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"catalogsize/internal/cluster"
	"catalogsize/internal/models"
)

// NameCountFile lists the group sizes of a split, largest first.
const NameCountFile = "name_count.json"

// GroupFileName is the file a name group is written to. Slashes would
// create directories, so they become underscores.
func GroupFileName(name string) string {
	return strings.ReplaceAll(name, "/", "_") + ".json"
}

// SaveGroups writes one {"entries": [...]} file per name into dir, plus
// name_count.json, and returns the counts.
func SaveGroups(dir string, names []string, groups map[string][]models.Record, pretty bool) ([]cluster.NameCount, error) {
	if mkdirErr := os.MkdirAll(dir, 0755); mkdirErr != nil {
		return nil, fmt.Errorf("failed to create directory: %w", mkdirErr)
	}

	for _, name := range names {
		doc := &models.Document{Entries: groups[name]}
		if err := writeJSON(filepath.Join(dir, GroupFileName(name)), doc, pretty); err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
	}

	counts := cluster.NameCounts(names, groups)

	if err := writeJSON(filepath.Join(dir, NameCountFile), counts, pretty); err != nil {
		return nil, err
	}

	return counts, nil
}

// ResultFileName is the file a clustered group is written to for k, e.g.
// "billyresult_3.json".
func ResultFileName(name string, k int) string {
	return strings.TrimSuffix(GroupFileName(name), ".json") + fmt.Sprintf("result_%d.json", k)
}
