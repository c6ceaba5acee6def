package geometry

import (
	"slices"
	"strings"

	"catalogsize/internal/config"
	"catalogsize/internal/measure"
)

type unitAlias struct {
	to        string
	countries map[string]bool
}

// UnitResolver decides which unit an assortment is written in.
type UnitResolver struct {
	corrections    []config.Correction
	aliases        map[string][]unitAlias
	metricLikely   map[string]bool
	imperialLikely map[string]bool
	commonCM       map[string]bool
	qualifiers     []string
}

// NewUnitResolver creates a unit resolver from the projection configuration.
func NewUnitResolver(cfg *config.ProjectionConfig) *UnitResolver {
	r := &UnitResolver{
		corrections:    cfg.UnitCorrections,
		aliases:        make(map[string][]unitAlias),
		metricLikely:   countrySet(cfg.MetricLikelyLocales),
		imperialLikely: countrySet(cfg.ImperialLikelyLocales),
		commonCM:       make(map[string]bool, len(cfg.CommonCMSizes)),
	}

	for _, a := range cfg.UnitAliases {
		from := strings.ToLower(strings.TrimSpace(a.From))
		r.aliases[from] = append(r.aliases[from], unitAlias{to: a.To, countries: countrySet(a.Countries)})
	}

	for _, size := range cfg.CommonCMSizes {
		r.commonCM[strings.TrimSpace(size)] = true
	}

	// Longest first so "diam." is removed before "dia".
	r.qualifiers = make([]string, 0, len(cfg.DiameterQualifiers))
	for _, q := range cfg.DiameterQualifiers {
		r.qualifiers = append(r.qualifiers, strings.ToLower(q))
	}

	slices.SortStableFunc(r.qualifiers, func(a, b string) int { return len(b) - len(a) })

	return r
}

// Resolve returns the unit for a, using raw when the record has a unit value
// and locale heuristics when it does not.
func (r *UnitResolver) Resolve(country string, a *measure.Assortment, raw any) (string, bool) {
	country = strings.ToLower(strings.TrimSpace(country))

	unit, present := stringify(raw)
	if !present {
		return r.infer(country, a)
	}

	// Correction tables are keyed in lower case.
	unit = strings.ToLower(unit)
	for _, c := range r.corrections {
		unit = strings.ReplaceAll(unit, c.Find, c.Replace)
	}

	unit = strings.TrimSpace(unit)

	for _, alias := range r.aliases[unit] {
		if len(alias.countries) == 0 || alias.countries[country] {
			unit = alias.to
			break
		}
	}

	if !measure.KnownUnit(unit) {
		return "", false
	}

	return unit, true
}

func (r *UnitResolver) infer(country string, a *measure.Assortment) (string, bool) {
	if a == nil || a.IsEmpty() {
		return "", false
	}

	notations := a.Notations()

	// Feet and inch marks carry their own unit.
	if allOf(notations, measure.Notation.SelfDescribing) {
		return measure.UnitFoot, true
	}

	if r.metricLikely[country] && allOf(a.Raws(), func(raw string) bool { return r.commonCM[raw] }) {
		return measure.UnitCentimeter, true
	}

	if r.imperialLikely[country] && allOf(notations, func(n measure.Notation) bool {
		return n == measure.Mixed || n == measure.Fraction
	}) {
		return measure.UnitInch, true
	}

	return "", false
}

// StripQualifiers removes diameter qualifiers from a unit value and reports
// whether any were present.
func (r *UnitResolver) StripQualifiers(raw any) (string, bool) {
	unit, ok := stringify(raw)
	if !ok {
		return "", false
	}

	lower := strings.ToLower(unit)
	found := false

	for _, q := range r.qualifiers {
		if strings.Contains(lower, q) {
			lower = strings.ReplaceAll(lower, q, " ")
			found = true
		}
	}

	return strings.Join(strings.Fields(lower), " "), found
}

func allOf[T any](items []T, pred func(T) bool) bool {
	for _, it := range items {
		if !pred(it) {
			return false
		}
	}

	return len(items) > 0
}
