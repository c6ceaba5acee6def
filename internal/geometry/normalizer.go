package geometry

import (
	"math"
	"strconv"
	"strings"

	"catalogsize/internal/config"
	"catalogsize/internal/measure"
)

// Normalizer repairs dimension text before matching and derives its label.
type Normalizer struct {
	matcher        *Matcher
	corrections    []config.Correction
	commaDecimal   map[string]bool
	commaSeparator map[string]bool
	labels         map[string]string
}

// NewNormalizer creates a normalizer from the projection configuration.
func NewNormalizer(cfg *config.ProjectionConfig, matcher *Matcher) *Normalizer {
	n := &Normalizer{
		matcher:        matcher,
		corrections:    cfg.DimensionCorrections,
		commaDecimal:   countrySet(cfg.CommaDecimalLocales),
		commaSeparator: countrySet(cfg.CommaSeparatorLocales),
		labels:         make(map[string]string),
	}

	for canonical, labels := range cfg.DimensionLabels {
		canonical = strings.ToLower(canonical)
		n.labels[canonical] = canonical

		for _, l := range labels {
			n.labels[strings.ToLower(strings.TrimSpace(l))] = canonical
		}
	}

	return n
}

// NormalizeDimension repairs a raw dimension value for country and returns
// the normalized text with its label. ok is false for null or empty values.
func (n *Normalizer) NormalizeDimension(country string, raw any) (text, label string, ok bool) {
	s, ok := stringify(raw)
	if !ok {
		return "", "", false
	}

	for _, c := range n.corrections {
		s = strings.ReplaceAll(s, c.Find, c.Replace)
	}

	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, ".")

	if s == "" {
		return "", "", false
	}

	country = strings.ToLower(strings.TrimSpace(country))
	commas := strings.Count(s, ",")

	switch {
	case n.commaDecimal[country] && commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case n.commaSeparator[country] && (commas == 1 || commas == 2):
		s = strings.ReplaceAll(s, ",", "-")
	}

	return s, n.label(s), true
}

// label strips numbers, separators, inch and foot marks and unit symbols, leaving the words naming
// the dimension.
func (n *Normalizer) label(text string) string {
	residue := n.matcher.Strip(text)
	residue = strings.NewReplacer("-", " ", "/", " ", "+", " ").Replace(residue)

	words := strings.Fields(residue)
	kept := words[:0]

	for _, w := range words {
		if strings.Trim(w, `'"`) == "" {
			continue
		}

		if w == "x" || measure.KnownUnit(strings.TrimRight(w, ".")) {
			continue
		}

		kept = append(kept, w)
	}

	return strings.Trim(strings.ToLower(strings.Join(kept, " ")), " .:;,()")
}

// Canonical maps a label to its canonical dimension name, or "" when the
// label is not recognized.
func (n *Normalizer) Canonical(label string) string {
	return n.labels[strings.ToLower(strings.TrimSpace(label))]
}

// stringify renders a record value as text. Numbers lose trailing zero
// decimals, so 12.0 becomes "12".
func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case nil, bool:
		return "", false
	case string:
		if strings.TrimSpace(x) == "" {
			return "", false
		}

		return x, true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float32:
		return formatFloat(float64(x)), true
	case float64:
		return formatFloat(x), true
	case interface{ String() string }:
		return stringify(x.String())
	}

	return "", false
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func countrySet(countries []string) map[string]bool {
	set := make(map[string]bool, len(countries))
	for _, c := range countries {
		set[strings.ToLower(strings.TrimSpace(c))] = true
	}

	return set
}
