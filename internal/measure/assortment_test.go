package measure

import (
	"errors"
	"testing"
)

func newAssortment(raws ...string) *Assortment {
	a := NewAssortment()
	for _, r := range raws {
		a.Add(NewMeasurement(r, Integer))
	}

	return a
}

func TestAssortment_ResolveUnit_Sorts(t *testing.T) {
	a := newAssortment("25", "10", "40")

	if !a.ResolveUnit("cm") {
		t.Fatal("ResolveUnit returned false")
	}

	want := []string{"10", "25", "40"}
	for i, raw := range a.Raws() {
		if raw != want[i] {
			t.Errorf("Raws()[%d] = %s, want %s", i, raw, want[i])
		}
	}

	lo, err := a.Min()
	if err != nil {
		t.Fatalf("Min error: %v", err)
	}

	hi, err := a.Max()
	if err != nil {
		t.Fatalf("Max error: %v", err)
	}

	if lo.Raw != "10" || hi.Raw != "40" {
		t.Errorf("Min, Max = %s, %s; want 10, 40", lo.Raw, hi.Raw)
	}
}

func TestAssortment_ResolveUnit_AllOrNothing(t *testing.T) {
	a := NewAssortment()
	a.Add(NewMeasurement("12", Integer))
	a.Add(NewMeasurement("1/2", Fraction))

	if a.ResolveUnit("cm") {
		t.Fatal("ResolveUnit = true, want false for fraction in cm")
	}

	for _, m := range a.Measurements() {
		if m.Resolved() {
			t.Errorf("member %s resolved after failed ResolveUnit", m.Raw)
		}
	}

	if _, err := a.Max(); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Max error = %v, want ErrUnresolved", err)
	}

	// Discovery order is kept on failure.
	if got := a.Raws(); got[0] != "12" || got[1] != "1/2" {
		t.Errorf("Raws() = %v, want [12 1/2]", got)
	}
}

func TestAssortment_Empty(t *testing.T) {
	a := NewAssortment()

	if !a.IsEmpty() {
		t.Error("IsEmpty = false for new assortment")
	}

	if a.ResolveUnit("cm") {
		t.Error("ResolveUnit = true for empty assortment")
	}

	if _, err := a.Min(); !errors.Is(err, ErrEmptyAssortment) {
		t.Errorf("Min error = %v, want ErrEmptyAssortment", err)
	}

	if _, err := a.Max(); !errors.Is(err, ErrEmptyAssortment) {
		t.Errorf("Max error = %v, want ErrEmptyAssortment", err)
	}
}

func TestAssortment_Notations(t *testing.T) {
	a := NewAssortment()
	a.Add(NewMeasurement("2 1/2", Mixed))
	a.Add(NewMeasurement("3/4", Fraction))

	got := a.Notations()
	if len(got) != 2 || got[0] != Mixed || got[1] != Fraction {
		t.Errorf("Notations() = %v, want [mixed fraction]", got)
	}
}
