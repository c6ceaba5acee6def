package geometry

import (
	"fmt"
	"strings"

	"catalogsize/internal/config"
	"catalogsize/internal/models"
)

// Derived record fields.
const (
	FieldMaxCM = "max_cm"
	FieldMinCM = "min_cm"

	LabelDiameter = "diameter"
	LabelThick    = "thick"
)

// Outcome describes what happened to one source column.
type Outcome string

// Column outcomes. Every outcome except OutcomeProjected is a silent skip.
const (
	OutcomeProjected   Outcome = "projected"
	OutcomeEmpty       Outcome = "empty"
	OutcomeNoMatch     Outcome = "no_match"
	OutcomeNoUnit      Outcome = "no_unit"
	OutcomeUnsupported Outcome = "unsupported"
)

// ColumnResult is the projection result of one source column.
type ColumnResult struct {
	Column  string
	Text    string
	Label   string
	Unit    string
	Outcome Outcome
	MinCM   float64
	MaxCM   float64
}

// Report lists the column results of one record in processing order.
type Report struct {
	Columns []ColumnResult
}

// Projected returns the number of columns that produced values.
func (r Report) Projected() int {
	n := 0

	for _, c := range r.Columns {
		if c.Outcome == OutcomeProjected {
			n++
		}
	}

	return n
}

// Projector derives canonical centimeter fields from a record's dimension
// columns.
type Projector struct {
	columns    config.ColumnsConfig
	matcher    *Matcher
	normalizer *Normalizer
	units      *UnitResolver
	thickness  map[string]bool
}

// NewProjector builds the full projection pipeline from configuration.
func NewProjector(cfg *config.ProjectionConfig) (*Projector, error) {
	grammar, err := NewGrammar(cfg.NumericalPatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar: %w", err)
	}

	matcher := NewMatcher(grammar)

	thickness := make(map[string]bool, len(cfg.ThicknessComments))
	for _, c := range cfg.ThicknessComments {
		thickness[strings.ToLower(strings.TrimSpace(c))] = true
	}

	return &Projector{
		columns:    cfg.Columns,
		matcher:    matcher,
		normalizer: NewNormalizer(cfg, matcher),
		units:      NewUnitResolver(cfg),
		thickness:  thickness,
	}, nil
}

// Project returns a copy of rec extended with <label>_max_cm, <label>_min_cm,
// max_cm and min_cm. Existing derived values are only ever widened, so
// projecting a record twice yields the same fields. Columns that cannot be
// resolved are skipped and noted in the report; an error is returned only
// when an assortment is queried out of sequence.
func (p *Projector) Project(rec models.Record) (models.Record, Report, error) {
	out := rec.Clone()
	country, _ := out.String(p.columns.Country)

	var report Report

	for _, col := range p.columns.Dimensions {
		res, err := p.projectColumn(out, country, col, out[col], out[p.columns.Unit], "")
		if err != nil {
			return rec, report, err
		}

		report.Columns = append(report.Columns, res)
	}

	if p.columns.OtherMeasurement != "" {
		unit := out[p.columns.OtherUnit]
		forced := ""

		if stripped, isDiameter := p.units.StripQualifiers(unit); isDiameter {
			forced = LabelDiameter
			unit = stripped
		} else if p.isThicknessComment(out[p.columns.Comments]) {
			forced = LabelThick
		}

		res, err := p.projectColumn(out, country, p.columns.OtherMeasurement, out[p.columns.OtherMeasurement], unit, forced)
		if err != nil {
			return rec, report, err
		}

		report.Columns = append(report.Columns, res)
	}

	return out, report, nil
}

func (p *Projector) projectColumn(out models.Record, country, col string, value, unit any, forced string) (ColumnResult, error) {
	res := ColumnResult{Column: col}

	text, label, ok := p.normalizer.NormalizeDimension(country, value)
	if !ok {
		res.Outcome = OutcomeEmpty
		return res, nil
	}

	res.Text = text
	res.Label = label

	if forced != "" {
		res.Label = forced
	}

	a := p.matcher.Extract(text)
	if a.IsEmpty() {
		res.Outcome = OutcomeNoMatch
		return res, nil
	}

	u, ok := p.units.Resolve(country, a, unit)
	if !ok {
		res.Outcome = OutcomeNoUnit
		return res, nil
	}

	res.Unit = u

	if !a.ResolveUnit(u) {
		res.Outcome = OutcomeUnsupported
		return res, nil
	}

	lo, err := a.Min()
	if err != nil {
		return res, fmt.Errorf("column %s: %w", col, err)
	}

	hi, err := a.Max()
	if err != nil {
		return res, fmt.Errorf("column %s: %w", col, err)
	}

	res.MinCM, _ = lo.Centimeters()
	res.MaxCM, _ = hi.Centimeters()
	res.Outcome = OutcomeProjected

	canonical := forced
	if canonical == "" {
		canonical = p.normalizer.Canonical(label)
	}

	if canonical != "" {
		widen(out, canonical+"_"+FieldMaxCM, canonical+"_"+FieldMinCM, res.MinCM, res.MaxCM)
	}

	widen(out, FieldMaxCM, FieldMinCM, res.MinCM, res.MaxCM)

	return res, nil
}

func (p *Projector) isThicknessComment(v any) bool {
	s, ok := stringify(v)
	if !ok {
		return false
	}

	return p.thickness[strings.ToLower(strings.TrimSpace(s))]
}

// widen keeps a running maximum and a running minimum.
func widen(out models.Record, maxField, minField string, lo, hi float64) {
	if cur, ok := out.Float(maxField); !ok || hi > cur {
		out[maxField] = hi
	}

	if cur, ok := out.Float(minField); !ok || lo < cur {
		out[minField] = lo
	}
}
