package measure

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnresolved is returned when a measurement without a resolved value is
// compared or extremized.
var ErrUnresolved = errors.New("measurement is not resolved")

// Length unit symbols understood by Resolve.
const (
	UnitInch       = "in"
	UnitFoot       = "ft"
	UnitCentimeter = "cm"
	UnitMillimeter = "mm"
	UnitMeter      = "m"
)

const cmPerInch = 2.54

// Per-unit scale factors to centimeters for decimal and integer notations.
var cmPerUnit = map[string]float64{
	UnitMillimeter: 0.1,
	UnitCentimeter: 1,
	UnitMeter:      100,
	UnitInch:       cmPerInch,
	UnitFoot:       30.48,
}

// KnownUnit reports whether unit is one of the supported length symbols.
func KnownUnit(unit string) bool {
	_, ok := cmPerUnit[unit]
	return ok
}

// Measurement is one numeric token taken from a dimension string. It is
// created unresolved and gains a value once a unit is assigned.
type Measurement struct {
	Raw      string
	Notation Notation

	cm       float64
	inches   float64
	resolved bool
}

// NewMeasurement creates an unresolved measurement.
func NewMeasurement(raw string, notation Notation) *Measurement {
	return &Measurement{Raw: raw, Notation: notation}
}

// Resolve parses Raw under its notation using unit and stores the value in
// centimeters and inches. It returns false, leaving the measurement
// unresolved even if it held a value before, when the notation and unit cannot be combined or Raw does not
// parse.
func (m *Measurement) Resolve(unit string) bool {
	inches, cm, ok := m.parse(unit)
	if !ok {
		m.reset()
		return false
	}

	m.inches = inches
	m.cm = cm
	m.resolved = true

	return true
}

func (m *Measurement) parse(unit string) (inches, cm float64, ok bool) {
	raw := strings.TrimSpace(m.Raw)

	switch m.Notation {
	case PrimeDoublePrime:
		feet, rest, found := strings.Cut(raw, "'")
		if !found {
			return 0, 0, false
		}

		f, err1 := strconv.ParseFloat(strings.TrimSpace(feet), 64)
		i, err2 := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), `"`)), 64)

		if err1 != nil || err2 != nil {
			return 0, 0, false
		}

		inches = f*12 + i

		return inches, inches * cmPerInch, true

	case Prime:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "'")), 64)
		if err != nil {
			return 0, 0, false
		}

		inches = f * 12

		return inches, inches * cmPerInch, true

	case DecimalMixed, Mixed:
		if unit != UnitInch {
			return 0, 0, false
		}

		fields := strings.Fields(raw)
		if len(fields) != 2 {
			return 0, 0, false
		}

		whole, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, 0, false
		}

		frac, ok := parseFraction(fields[1])
		if !ok {
			return 0, 0, false
		}

		inches = whole + frac

		return inches, inches * cmPerInch, true

	case Fraction:
		if unit != UnitInch {
			return 0, 0, false
		}

		frac, ok := parseFraction(raw)
		if !ok {
			return 0, 0, false
		}

		return frac, frac * cmPerInch, true

	case Decimal, Integer:
		factor, known := cmPerUnit[unit]
		if !known {
			return 0, 0, false
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, false
		}

		switch unit {
		case UnitInch:
			return v, v * cmPerInch, true
		case UnitFoot:
			return v * 12, v * factor, true
		default:
			cm = v * factor
			return cm / cmPerInch, cm, true
		}
	}

	return 0, 0, false
}

// parseFraction parses "N/D" and rejects zero denominators.
func parseFraction(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}

	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)

	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}

	return n / d, true
}

// Resolved reports whether the measurement has a value.
func (m *Measurement) Resolved() bool {
	return m.resolved
}

// Centimeters returns the resolved value in centimeters.
func (m *Measurement) Centimeters() (float64, bool) {
	return m.cm, m.resolved
}

// Inches returns the resolved value in inches.
func (m *Measurement) Inches() (float64, bool) {
	return m.inches, m.resolved
}

// Compare orders two resolved measurements by centimeters. It returns
// ErrUnresolved when either side has no value.
func (m *Measurement) Compare(other *Measurement) (int, error) {
	if m == nil || other == nil || !m.resolved || !other.resolved {
		return 0, ErrUnresolved
	}

	switch {
	case m.cm < other.cm:
		return -1, nil
	case m.cm > other.cm:
		return 1, nil
	default:
		return 0, nil
	}
}

func (m *Measurement) reset() {
	m.cm, m.inches, m.resolved = 0, 0, false
}

// String returns the centimeter value, or the raw text when unresolved.
func (m *Measurement) String() string {
	if !m.resolved {
		return fmt.Sprintf("%s(%s)", m.Notation, m.Raw)
	}

	return strconv.FormatFloat(m.cm, 'f', -1, 64)
}
