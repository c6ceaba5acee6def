package geometry

import (
	"math"
	"reflect"
	"testing"

	"catalogsize/internal/config"
	"catalogsize/internal/models"
)

func newTestProjector(t *testing.T) *Projector {
	t.Helper()

	p, err := NewProjector(&config.Default().Projection)
	if err != nil {
		t.Fatalf("NewProjector failed: %v", err)
	}

	return p
}

func assertField(t *testing.T, rec models.Record, field string, want float64) {
	t.Helper()

	got, ok := rec.Float(field)
	if !ok {
		t.Errorf("field %s missing, want %v", field, want)
		return
	}

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("field %s = %v, want %v", field, got, want)
	}
}

func assertNoDerivedFields(t *testing.T, rec models.Record) {
	t.Helper()

	for field := range rec {
		if len(field) >= 3 && field[len(field)-3:] == "_cm" {
			t.Errorf("unexpected derived field %s = %v", field, rec[field])
		}
	}
}

func TestProjector_Project_MixedInches(t *testing.T) {
	p := newTestProjector(t)

	out, report, err := p.Project(models.Record{"country": "us", "dim1": "2 1/2", "unit": "in"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertField(t, out, FieldMaxCM, 6.35)
	assertField(t, out, FieldMinCM, 6.35)

	first := report.Columns[0]
	if first.Outcome != OutcomeProjected || first.Label != "" || first.Unit != "in" {
		t.Errorf("dim1 result = %+v, want projected, empty label, unit in", first)
	}

	if report.Projected() != 1 {
		t.Errorf("Projected() = %d, want 1", report.Projected())
	}
}

func TestProjector_Project_RunningExtremes(t *testing.T) {
	p := newTestProjector(t)

	out, _, err := p.Project(models.Record{
		"country": "us",
		"dim1":    "10",
		"dim2":    "25",
		"dim3":    "5",
		"unit":    "cm",
	})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertField(t, out, FieldMaxCM, 25)
	assertField(t, out, FieldMinCM, 5)
}

func TestProjector_Project_Labels(t *testing.T) {
	p := newTestProjector(t)

	out, _, err := p.Project(models.Record{
		"country": "de",
		"dim1":    "Breite 60,5",
		"dim2":    "Hohe 120",
		"dim3":    "T 40",
		"unit":    "cm",
	})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertField(t, out, "width_max_cm", 60.5)
	assertField(t, out, "width_min_cm", 60.5)
	assertField(t, out, "height_max_cm", 120)
	assertField(t, out, "depth_min_cm", 40)
	assertField(t, out, FieldMaxCM, 120)
	assertField(t, out, FieldMinCM, 40)
}

func TestProjector_Project_Locales(t *testing.T) {
	p := newTestProjector(t)

	out, _, _ := p.Project(models.Record{"country": "de", "dim1": "12,5", "unit": "cm"})
	assertField(t, out, FieldMaxCM, 12.5)
	assertField(t, out, FieldMinCM, 12.5)

	out, _, _ = p.Project(models.Record{"country": "ca", "dim1": "12,5", "unit": "cm"})
	assertField(t, out, FieldMaxCM, 12)
	assertField(t, out, FieldMinCM, 5)
}

func TestProjector_Project_Skips(t *testing.T) {
	p := newTestProjector(t)

	tests := []struct {
		name string
		rec  models.Record
		want Outcome
	}{
		{"no unit outside inference rules", models.Record{"country": "jp", "dim1": "12"}, OutcomeNoUnit},
		{"fraction in centimeters", models.Record{"country": "us", "dim1": "1/2", "unit": "cm"}, OutcomeUnsupported},
		{"no numbers", models.Record{"country": "us", "dim1": "n/a", "unit": "cm"}, OutcomeNoMatch},
		{"missing column", models.Record{"country": "us", "unit": "cm"}, OutcomeEmpty},
		{"unknown unit", models.Record{"country": "us", "dim1": "12", "unit": "kg"}, OutcomeNoUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, report, err := p.Project(tt.rec)
			if err != nil {
				t.Fatalf("Project returned error for a skip: %v", err)
			}

			assertNoDerivedFields(t, out)

			if got := report.Columns[0].Outcome; got != tt.want {
				t.Errorf("dim1 outcome = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProjector_Project_InferredUnits(t *testing.T) {
	p := newTestProjector(t)

	out, _, _ := p.Project(models.Record{"country": "se", "dim1": "60x40"})
	assertField(t, out, FieldMaxCM, 60)
	assertField(t, out, FieldMinCM, 40)

	out, _, _ = p.Project(models.Record{"country": "jp", "dim1": `6' 8"`})
	assertField(t, out, FieldMaxCM, 80*2.54)

	out, _, _ = p.Project(models.Record{"country": "us", "dim1": "3/4"})
	assertField(t, out, FieldMaxCM, 1.905)
}

func TestProjector_Project_NumericValue(t *testing.T) {
	p := newTestProjector(t)

	out, _, _ := p.Project(models.Record{"country": "us", "dim1": 25.0, "unit": "cm"})
	assertField(t, out, FieldMaxCM, 25)
}

func TestProjector_Project_Diameter(t *testing.T) {
	p := newTestProjector(t)

	out, report, err := p.Project(models.Record{
		"country":             "us",
		"other-measurement-1": "30",
		"other-unit-1":        "cm diameter",
	})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertField(t, out, "diameter_max_cm", 30)
	assertField(t, out, "diameter_min_cm", 30)
	assertField(t, out, FieldMaxCM, 30)

	last := report.Columns[len(report.Columns)-1]
	if last.Label != LabelDiameter || last.Column != "other-measurement-1" {
		t.Errorf("other measurement result = %+v, want diameter label", last)
	}
}

func TestProjector_Project_Thickness(t *testing.T) {
	p := newTestProjector(t)

	out, _, err := p.Project(models.Record{
		"country":             "us",
		"dim1":                "80",
		"unit":                "cm",
		"other-measurement-1": "2",
		"other-unit-1":        "cm",
		"comments":            "Thickness",
	})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertField(t, out, "thick_max_cm", 2)
	assertField(t, out, FieldMaxCM, 80)
	assertField(t, out, FieldMinCM, 2)
}

func TestProjector_Project_OtherMeasurementPlain(t *testing.T) {
	p := newTestProjector(t)

	out, _, _ := p.Project(models.Record{
		"country":             "us",
		"other-measurement-1": "45",
		"other-unit-1":        "cm",
	})

	assertField(t, out, FieldMaxCM, 45)

	if out.Has("thick_max_cm") || out.Has("diameter_max_cm") {
		t.Errorf("plain other measurement gained a forced label: %v", out)
	}
}

func TestProjector_Project_Idempotent(t *testing.T) {
	p := newTestProjector(t)

	in := models.Record{
		"country": "us",
		"dim1":    "W 60",
		"dim2":    "H 2 1/2",
		"unit":    "in",
	}

	once, _, err := p.Project(in)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	twice, _, err := p.Project(once)
	if err != nil {
		t.Fatalf("second Project failed: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("projection is not idempotent:\n once  %v\n twice %v", once, twice)
	}

	if in.Has(FieldMaxCM) {
		t.Error("Project mutated its input record")
	}
}

func TestProjector_Project_LabelWithInchMark(t *testing.T) {
	p := newTestProjector(t)

	out, _, err := p.Project(models.Record{"country": "us", "dim1": `W 23 5/8"`, "unit": "in"})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	assertField(t, out, "width_max_cm", 23.625*2.54)
	assertField(t, out, "width_min_cm", 23.625*2.54)
	assertField(t, out, FieldMaxCM, 23.625*2.54)
}
