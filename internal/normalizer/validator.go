package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"catalogsize/internal/config"
	"catalogsize/internal/models"
)

// FieldYear is the optional catalog year field checked against dataset.years.
const FieldYear = "year"

// Validation errors.
var (
	ErrMissingCountry   = errors.New("record has no country")
	ErrUnknownCountry   = errors.New("country is not part of the dataset")
	ErrUnknownYear      = errors.New("year is not part of the dataset")
	ErrInvalidFieldType = errors.New("invalid field type")
)

// Validator handles record validation.
type Validator struct {
	countryField string
	countries    map[string]bool
	years        map[int]bool
}

// NewValidator creates a validator for the configured dataset.
func NewValidator(cfg *config.Config) *Validator {
	v := &Validator{
		countryField: cfg.Projection.Columns.Country,
		countries:    make(map[string]bool, len(cfg.Dataset.Countries)),
		years:        make(map[int]bool, len(cfg.Dataset.Years)),
	}

	for _, c := range cfg.Dataset.Countries {
		v.countries[strings.ToLower(strings.TrimSpace(c))] = true
	}

	for _, y := range cfg.Dataset.Years {
		v.years[y] = true
	}

	return v
}

// Validate checks that rec can be cleaned and projected.
func (v *Validator) Validate(rec models.Record) error {
	country, ok := rec.String(v.countryField)
	if !ok || country == "" {
		return fmt.Errorf("%w: field %q", ErrMissingCountry, v.countryField)
	}

	if len(v.countries) > 0 && !v.countries[strings.ToLower(country)] {
		return fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}

	if len(v.years) > 0 && rec.Has(FieldYear) {
		year, ok := rec.Float(FieldYear)
		if !ok || !v.years[int(year)] {
			return fmt.Errorf("%w: %v", ErrUnknownYear, rec[FieldYear])
		}
	}

	for _, field := range slices.Sorted(maps.Keys(rec)) {
		switch rec[field].(type) {
		case nil, string, bool, float64, float32, int, int64, json.Number:
		default:
			return fmt.Errorf("%w: field %q has %T", ErrInvalidFieldType, field, rec[field])
		}
	}

	return nil
}
