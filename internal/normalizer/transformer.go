package normalizer

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"catalogsize/internal/config"
	"catalogsize/internal/models"
)

// Typographic characters that carry meaning for dimension parsing and would
// otherwise be lost by the ASCII fold.
var typographic = strings.NewReplacer(
	"½", " 1/2",
	"¼", " 1/4",
	"¾", " 3/4",
	"⅓", " 1/3",
	"⅔", " 2/3",
	"⅛", " 1/8",
	"⅜", " 3/8",
	"⅝", " 5/8",
	"⅞", " 7/8",
	"⁄", "/",
	"′", "'",
	"’", "'",
	"″", `"`,
	"“", `"`,
	"”", `"`,
	"×", "x",
	"\u00a0", " ",
)

// Transformer applies the basic field cleanup every record gets before
// projection.
type Transformer struct {
	countryField string
	includeNulls bool
}

// NewTransformer creates a new transformer instance.
func NewTransformer(cfg *config.Config) *Transformer {
	return &Transformer{
		countryField: cfg.Projection.Columns.Country,
		includeNulls: cfg.Dataset.IncludeNulls,
	}
}

// Transform returns a cleaned copy of rec: text is folded to trimmed ASCII,
// the country is lowercased, integral floats become int64 and null fields are
// dropped unless the dataset keeps them.
func (t *Transformer) Transform(rec models.Record) models.Record {
	out := make(models.Record, len(rec))

	for field, value := range rec {
		switch v := value.(type) {
		case nil:
			if !t.includeNulls {
				continue
			}
		case string:
			value = CleanText(v)
		case float64:
			value = integral(v)
		case float32:
			value = integral(float64(v))
		}

		out[field] = value
	}

	if country, ok := out.String(t.countryField); ok {
		out[t.countryField] = strings.ToLower(country)
	}

	return out
}

// CleanText folds s to ASCII: typographic fractions and primes are spelled
// out, accents are stripped and any remaining non-ASCII rune is dropped.
func CleanText(s string) string {
	s = typographic.Replace(s)

	// transform.Chain is stateful, so each call builds its own.
	fold := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)

	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}

			return r
		}, s)
	}

	return strings.TrimSpace(folded)
}

func integral(f float64) any {
	if math.Abs(f-math.Trunc(f)) < 1e-10 && math.Abs(f) < 1e15 {
		return int64(f)
	}

	return f
}
