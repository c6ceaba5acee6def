package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"catalogsize/internal/cluster"
	"catalogsize/internal/models"
)

func TestSaveGroups(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "groups")

	names, groups := cluster.GroupByName([]models.Record{
		{"name": "a/b", "max_cm": 1.0},
		{"name": "billy"},
		{"name": "billy"},
	}, "name")

	counts, err := SaveGroups(dir, names, groups, false)
	if err != nil {
		t.Fatalf("SaveGroups failed: %v", err)
	}

	if counts[0].Name != "billy" || counts[0].Count != 2 {
		t.Errorf("counts = %v, want billy first", counts)
	}

	doc, err := LoadDocument(filepath.Join(dir, "a_b.json"))
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}

	if len(doc.Entries) != 1 {
		t.Errorf("a_b.json has %d entries, want 1", len(doc.Entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, NameCountFile))
	if err != nil {
		t.Fatalf("reading %s: %v", NameCountFile, err)
	}

	var saved []cluster.NameCount
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("parsing %s: %v", NameCountFile, err)
	}

	if len(saved) != 2 || saved[1].Name != "a/b" {
		t.Errorf("saved counts = %v", saved)
	}
}

func TestResultFileName(t *testing.T) {
	if got := ResultFileName("ikea/ps", 3); got != "ikea_psresult_3.json" {
		t.Errorf("ResultFileName = %q", got)
	}
}
