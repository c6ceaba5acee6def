package cluster

import (
	"errors"
	"testing"

	"catalogsize/internal/models"
)

func billyEntries() []models.Record {
	return []models.Record{
		{"name": "billy", "max_cm": 100.0, "min_cm": 50.0},
		{"name": "billy", "note": "no size"},
		{"name": "billy", "max_cm": 10.0, "min_cm": 5.0},
		{"name": "billy", "max_cm": 10.0, "min_cm": 5.0},
	}
}

func TestAssign(t *testing.T) {
	entries := billyEntries()

	res, err := Assign(entries, 2, testKMeans(2), testFields())
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if res.K != 2 || res.Valid != 3 || res.Inertia != 0 {
		t.Errorf("result = K %d, Valid %d, Inertia %v; want 2, 3, 0", res.K, res.Valid, res.Inertia)
	}

	want := []string{"billy_100.0_50.0", "billy_10.0_5.0", "billy_10.0_5.0", ""}
	for i, w := range want {
		got, _ := res.Entries[i].String(FieldGroup)
		if got != w {
			t.Errorf("entry %d group = %q, want %q", i, got, w)
		}
	}

	if entries[0].Has(FieldGroup) {
		t.Error("Assign mutated its input")
	}
}

func TestAssign_NoValidEntries(t *testing.T) {
	entries := []models.Record{
		{"name": "billy"},
		{"max_cm": 10.0, "min_cm": 5.0},
	}

	if _, err := Assign(entries, 1, testKMeans(1), testFields()); !errors.Is(err, ErrNoValidEntries) {
		t.Errorf("Assign error = %v, want ErrNoValidEntries", err)
	}
}

func TestFormatCenter(t *testing.T) {
	tests := map[float64]string{
		25:      "25.0",
		12.5:    "12.5",
		6.35:    "6.35",
		0:       "0.0",
		1.0 / 3: "0.3333333333333333",
	}

	for in, want := range tests {
		if got := formatCenter(in); got != want {
			t.Errorf("formatCenter(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSweep(t *testing.T) {
	points, err := Sweep(billyEntries(), 1, 3, 1, testKMeans(1), testFields())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("got %d sweep points, want 3", len(points))
	}

	for i, p := range points {
		if p.K != i+1 {
			t.Errorf("point %d K = %d, want %d", i, p.K, i+1)
		}
	}

	if points[0].Result.Inertia <= points[1].Result.Inertia {
		t.Errorf("inertia did not drop from k=1 (%v) to k=2 (%v)", points[0].Result.Inertia, points[1].Result.Inertia)
	}

	if points[2].Result.Inertia != 0 {
		t.Errorf("k=3 inertia = %v, want 0", points[2].Result.Inertia)
	}
}

func TestSweep_Invalid(t *testing.T) {
	tests := []struct{ lo, hi, step int }{
		{0, 3, 1},
		{1, 3, 0},
		{4, 3, 1},
	}

	for _, tt := range tests {
		if _, err := Sweep(billyEntries(), tt.lo, tt.hi, tt.step, testKMeans(1), testFields()); !errors.Is(err, ErrInvalidSweep) {
			t.Errorf("Sweep(%d, %d, %d) error = %v, want ErrInvalidSweep", tt.lo, tt.hi, tt.step, err)
		}
	}
}
