package normalizer

import (
	"errors"
	"testing"

	"catalogsize/internal/config"
	"catalogsize/internal/models"
)

func TestValidator_Validate(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Years = []int{2005, 2006}
	v := NewValidator(cfg)

	tests := []struct {
		name    string
		rec     models.Record
		wantErr error
	}{
		{"valid", models.Record{"country": "us", "dim1": "60", "price": 9.99, "new": true, "page": nil}, nil},
		{"upper case country", models.Record{"country": "DE"}, nil},
		{"known year", models.Record{"country": "se", "year": 2005.0}, nil},
		{"missing country", models.Record{"dim1": "60"}, ErrMissingCountry},
		{"blank country", models.Record{"country": "  "}, ErrMissingCountry},
		{"numeric country", models.Record{"country": 1}, ErrMissingCountry},
		{"unknown country", models.Record{"country": "jp"}, ErrUnknownCountry},
		{"unknown year", models.Record{"country": "us", "year": 1999}, ErrUnknownYear},
		{"nested value", models.Record{"country": "us", "dims": []any{"60"}}, ErrInvalidFieldType},
		{"object value", models.Record{"country": "us", "meta": map[string]any{}}, ErrInvalidFieldType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.rec)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_NoDatasetRestriction(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Countries = nil
	v := NewValidator(cfg)

	if err := v.Validate(models.Record{"country": "jp", "year": 1999}); err != nil {
		t.Errorf("Validate() error = %v, want nil without dataset lists", err)
	}
}
