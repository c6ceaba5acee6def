package cluster

import (
	"fmt"
	"slices"

	"catalogsize/internal/config"
	"catalogsize/internal/geometry"
	"catalogsize/internal/models"
)

// Fields names the record fields clustering reads.
type Fields struct {
	Name string
	ID   string
	Max  string
	Min  string
}

// NewFields returns the configured name and id fields with the projected
// max_cm / min_cm fields.
func NewFields(cfg config.ClusteringConfig) Fields {
	return Fields{
		Name: cfg.NameField,
		ID:   cfg.IDField,
		Max:  geometry.FieldMaxCM,
		Min:  geometry.FieldMinCM,
	}
}

// NameCount is the number of entries sharing a product name.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GroupByName splits entries by their name field. Names are returned in
// first-seen order; entries without a name are left out.
func GroupByName(entries []models.Record, nameField string) ([]string, map[string][]models.Record) {
	var names []string

	groups := make(map[string][]models.Record)

	for _, e := range entries {
		if !e.Has(nameField) {
			continue
		}

		name := fmt.Sprint(e[nameField])
		if _, seen := groups[name]; !seen {
			names = append(names, name)
		}

		groups[name] = append(groups[name], e)
	}

	return names, groups
}

// NameCounts returns the group sizes, largest first. Ties keep name order.
func NameCounts(names []string, groups map[string][]models.Record) []NameCount {
	counts := make([]NameCount, 0, len(names))
	for _, name := range names {
		counts = append(counts, NameCount{Name: name, Count: len(groups[name])})
	}

	slices.SortStableFunc(counts, func(a, b NameCount) int { return b.Count - a.Count })

	return counts
}

// DistinctIDs counts the distinct id values among entries that can be
// clustered.
func DistinctIDs(entries []models.Record, f Fields) int {
	seen := make(map[string]struct{})

	for _, e := range entries {
		if !e.Has(f.ID) {
			continue
		}

		if _, _, ok := sizeOf(e, f); !ok {
			continue
		}

		seen[fmt.Sprint(e[f.ID])] = struct{}{}
	}

	return len(seen)
}

func sizeOf(e models.Record, f Fields) (float64, float64, bool) {
	hi, ok := e.Float(f.Max)
	if !ok {
		return 0, 0, false
	}

	lo, ok := e.Float(f.Min)
	if !ok {
		return 0, 0, false
	}

	return hi, lo, true
}
