package cluster

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"catalogsize/internal/models"
)

// FieldGroup is the field Assign writes.
const FieldGroup = "group"

// Assignment errors.
var (
	ErrNoValidEntries = errors.New("no entries with a name, max_cm and min_cm")
	ErrInvalidSweep   = errors.New("invalid k sweep")
)

// Result is the outcome of clustering one name group.
type Result struct {
	K       int
	Valid   int
	Inertia float64
	Centers []Point
	Entries []models.Record
}

// Assign clusters the entries that have a name, max and min into k groups.
// It returns copies of all entries; clustered ones gain a group field
// "<name>_<center max>_<center min>". Entries are sorted by group in
// descending order, with a missing group sorting as "0".
func Assign(entries []models.Record, k int, km KMeans, f Fields) (*Result, error) {
	out := make([]models.Record, len(entries))

	var (
		points []Point
		valid  []int
	)

	for i, e := range entries {
		out[i] = e.Clone()

		if !e.Has(f.Name) {
			continue
		}

		hi, lo, ok := sizeOf(e, f)
		if !ok {
			continue
		}

		points = append(points, Point{X: hi, Y: lo})
		valid = append(valid, i)
	}

	if len(points) == 0 {
		return nil, ErrNoValidEntries
	}

	km.K = k

	model, err := km.Fit(points)
	if err != nil {
		return nil, fmt.Errorf("failed to fit %d clusters: %w", k, err)
	}

	for j, i := range valid {
		c := model.Centers[model.Labels[j]]
		out[i][FieldGroup] = fmt.Sprintf("%v_%s_%s", entries[i][f.Name], formatCenter(c.X), formatCenter(c.Y))
	}

	slices.SortStableFunc(out, func(a, b models.Record) int {
		return cmp.Compare(groupKey(b), groupKey(a))
	})

	return &Result{
		K:       len(model.Centers),
		Valid:   len(points),
		Inertia: model.Inertia,
		Centers: model.Centers,
		Entries: out,
	}, nil
}

// SweepPoint is one k of a sweep.
type SweepPoint struct {
	K      int
	Result *Result
}

// Sweep runs Assign for k = lo, lo+step, ... up to and including hi.
func Sweep(entries []models.Record, lo, hi, step int, km KMeans, f Fields) ([]SweepPoint, error) {
	if lo <= 0 || step <= 0 || lo > hi {
		return nil, fmt.Errorf("%w: %d:%d:%d", ErrInvalidSweep, lo, hi, step)
	}

	var points []SweepPoint

	for k := lo; k <= hi; k += step {
		res, err := Assign(entries, k, km, f)
		if err != nil {
			return nil, err
		}

		points = append(points, SweepPoint{K: k, Result: res})
	}

	return points, nil
}

func groupKey(e models.Record) string {
	v, ok := e[FieldGroup]
	if !ok || v == nil {
		return "0"
	}

	return fmt.Sprint(v)
}

// formatCenter renders a coordinate with at least one decimal, "25.0"
// rather than "25".
func formatCenter(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
