package integration

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"catalogsize/internal/cluster"
	"catalogsize/internal/config"
	"catalogsize/internal/geometry"
	"catalogsize/internal/models"
	"catalogsize/internal/normalizer"
	"catalogsize/internal/store"
	"catalogsize/pkg/metadata"
)

func loadFixture(t *testing.T) *models.Document {
	t.Helper()

	doc, err := store.LoadDocument(filepath.Join("..", "fixtures", "catalog.json"))
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}

	return doc
}

func assertCM(t *testing.T, rec models.Record, field string, want float64) {
	t.Helper()

	got, ok := rec.Float(field)
	if !ok {
		t.Errorf("%s missing in %v", field, rec)
		return
	}

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestPipeline_ProjectAndCluster(t *testing.T) {
	cfg := config.Default()
	doc := loadFixture(t)

	processor, err := normalizer.NewProcessor(cfg, nil)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	entries, stats := processor.ProcessBatch(context.Background(), doc.Entries)

	if stats.Records != 7 || stats.Invalid != 1 || stats.Projected != 5 {
		t.Fatalf("stats = %+v, want 7 records, 1 invalid, 5 projected", stats)
	}

	// Inches with labels.
	assertCM(t, entries[0], "width_max_cm", 80.01)
	assertCM(t, entries[0], "height_max_cm", 201.93)
	assertCM(t, entries[0], geometry.FieldMaxCM, 201.93)
	assertCM(t, entries[0], geometry.FieldMinCM, 27.94)

	// Accents folded before label lookup.
	assertCM(t, entries[1], "height_max_cm", 202)
	assertCM(t, entries[1], "depth_min_cm", 28)

	if entries[1]["country"] != "de" {
		t.Errorf("country = %v, want de", entries[1]["country"])
	}

	// Unit inferred from common centimeter sizes.
	assertCM(t, entries[2], geometry.FieldMaxCM, 100)
	assertCM(t, entries[2], geometry.FieldMinCM, 40)

	// Comma as separator.
	assertCM(t, entries[3], geometry.FieldMaxCM, 55)
	assertCM(t, entries[3], geometry.FieldMinCM, 55)

	// Diameter qualifier in the other unit column.
	assertCM(t, entries[4], "diameter_max_cm", 35)

	// Outside the dataset: passed through untouched.
	if entries[5].Has(geometry.FieldMaxCM) || entries[5]["country"] != "jp" {
		t.Errorf("invalid entry changed: %v", entries[5])
	}

	// No numbers: nothing derived, null dropped.
	if entries[6].Has(geometry.FieldMaxCM) {
		t.Errorf("unmatched entry gained max_cm: %v", entries[6])
	}

	if _, ok := entries[6]["color"]; ok {
		t.Error("null field kept")
	}

	// Round trip through the store with a signed hash.
	dir := t.TempDir()
	meta := metadata.New("project", "test")

	if err := meta.Sign(entries, len(entries)); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	path := filepath.Join(dir, "projected.json")
	if err := store.SaveDocument(path, &models.Document{Metadata: meta, Entries: entries}, store.FormatJSON, true); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	projected, err := store.LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}

	if ok, err := metadata.Verify(projected.Metadata, projected.Entries); !ok {
		t.Errorf("Verify after round trip failed: %v", err)
	}

	// Reprojecting the saved output changes nothing.
	again, _ := processor.ProcessBatch(context.Background(), projected.Entries)
	for i := range again {
		for _, field := range []string{geometry.FieldMaxCM, geometry.FieldMinCM} {
			want, had := projected.Entries[i].Float(field)
			got, has := again[i].Float(field)

			if had != has || math.Abs(got-want) > 1e-9 {
				t.Errorf("entry %d %s changed on reprojection: %v -> %v", i, field, want, got)
			}
		}
	}

	// Group by name and size.
	names, groups := cluster.GroupByName(projected.Entries, cfg.Clustering.NameField)
	if len(names) != 4 || names[0] != "billy" {
		t.Fatalf("names = %v", names)
	}

	fields := cluster.NewFields(cfg.Clustering)

	if n := cluster.DistinctIDs(groups["billy"], fields); n != 2 {
		t.Errorf("billy distinct ids = %d, want 2", n)
	}

	res, err := cluster.Assign(groups["billy"], 2, cluster.NewKMeans(cfg.Clustering, 2), fields)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if res.Valid != 2 || res.Inertia > 1e-9 {
		t.Errorf("billy result = %d valid, inertia %v", res.Valid, res.Inertia)
	}

	if g, _ := res.Entries[len(res.Entries)-1].String(cluster.FieldGroup); g != "" {
		t.Errorf("entry outside the dataset got group %q", g)
	}

	if _, err := cluster.Assign(groups["klippan"], 1, cluster.NewKMeans(cfg.Clustering, 1), fields); err == nil {
		t.Error("Assign clustered a name with no sizes")
	}
}
